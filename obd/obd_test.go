package obd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/brutella/can"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type busStub struct {
	disconnected bool
	subscribed   bool
	stopChan     chan struct{}
	startedChan  chan struct{}
	publishChan  chan can.Frame
	publishErr   error
}

func (bus *busStub) SubscribeFunc(can.HandlerFunc) {
	bus.subscribed = true
}

func (bus *busStub) ConnectAndPublish() error {
	bus.startedChan <- struct{}{}
	<-bus.stopChan
	return nil
}

func (bus *busStub) Disconnect() error {
	bus.disconnected = true
	if bus.stopChan != nil {
		bus.stopChan <- struct{}{}
	}
	return nil
}

func (bus *busStub) Publish(f can.Frame) error {
	if bus.publishErr != nil {
		return bus.publishErr
	}
	bus.publishChan <- f
	return nil
}

func TestConnect(t *testing.T) {
	origNewBus := newBus
	bus := &busStub{
		stopChan: make(chan struct{}, 1),
	}
	newBus = func(string) (CANBus, error) {
		return bus, nil
	}
	defer func() {
		newBus = origNewBus
	}()

	c, err := Connect("fakeport")
	assert.NotNil(t, c)
	assert.NoError(t, err)
	assert.IsType(t, &busStub{}, c.bus)

	assert.NoError(t, c.Close())
	assert.True(t, bus.disconnected)
}

func TestStart(t *testing.T) {
	bus := &busStub{
		stopChan:    make(chan struct{}),
		startedChan: make(chan struct{}),
	}

	c := &Connection{
		bus:    bus,
		frames: make(chan can.Frame, frameBufferLen),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		assert.NoError(t, c.Start(ctx))
		wg.Done()
	}()
	<-bus.startedChan
	assert.True(t, bus.subscribed)
	cancel()
	wg.Wait()
	assert.True(t, bus.disconnected)
}

func TestQuery(t *testing.T) {
	bus := &busStub{
		publishChan: make(chan can.Frame, 1),
	}
	c := &Connection{
		bus:    bus,
		frames: make(chan can.Frame, frameBufferLen),
	}

	go func() {
		req := <-bus.publishChan
		assert.Equal(t, requestID, req.ID)
		assert.Equal(t, uint8(8), req.Length)
		assert.Equal(t, [8]uint8{0x02, 0x01, 0x0C}, req.Data)

		// unrelated bus traffic, filtered by id
		c.handleFrame(can.Frame{ID: 0x123, Length: 8})
		// response for a different pid, skipped by the matcher
		c.handleFrame(can.Frame{ID: 0x7E8, Length: 4, Data: [8]byte{0x03, 0x41, 0x0D, 0x50}})
		// too-short frame
		c.handleFrame(can.Frame{ID: 0x7E8, Length: 2, Data: [8]byte{0x01, 0x41}})
		// the matching response
		c.handleFrame(can.Frame{ID: 0x7E8, Length: 5, Data: [8]byte{0x04, 0x41, 0x0C, 0x1A, 0xF8}})
	}()

	v, err := c.Query(PIDRPM)
	assert.NoError(t, err)
	assert.Equal(t, 1726.0, v)
}

func TestQueryTimeout(t *testing.T) {
	bus := &busStub{
		publishChan: make(chan can.Frame, 1),
	}
	c := &Connection{
		bus:    bus,
		frames: make(chan can.Frame, frameBufferLen),
	}

	start := time.Now()
	v, err := c.Query(PIDRPM)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, ErrTimeout, errors.Cause(err))
	assert.True(t, time.Since(start) >= queryTimeout)
}

func TestQueryPublishError(t *testing.T) {
	bus := &busStub{
		publishErr: errors.New("bus off"),
	}
	c := &Connection{
		bus:    bus,
		frames: make(chan can.Frame, frameBufferLen),
	}

	_, err := c.Query(PIDRPM)
	assert.Error(t, err)
}

func TestQueryDrainsStaleFrames(t *testing.T) {
	bus := &busStub{
		publishChan: make(chan can.Frame, 1),
	}
	c := &Connection{
		bus:    bus,
		frames: make(chan can.Frame, frameBufferLen),
	}

	// a stale coolant response from an earlier query window
	c.handleFrame(can.Frame{ID: 0x7E8, Length: 4, Data: [8]byte{0x03, 0x41, 0x05, 0x80}})

	go func() {
		<-bus.publishChan
		c.handleFrame(can.Frame{ID: 0x7E8, Length: 4, Data: [8]byte{0x03, 0x41, 0x05, 0x50}})
	}()

	v, err := c.Query(PIDCoolantTemp)
	assert.NoError(t, err)
	assert.Equal(t, 40.0, v)
}

func TestHandleFrameShedsWhenFull(t *testing.T) {
	c := &Connection{
		frames: make(chan can.Frame, 2),
	}
	for i := 0; i < 10; i++ {
		c.handleFrame(can.Frame{ID: 0x7E8, Length: 4, Data: [8]byte{0x03, 0x41, 0x05, 0x50}})
	}
	assert.Len(t, c.frames, 2)
}
