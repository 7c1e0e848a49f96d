package obd

import (
	"context"
	"time"

	"github.com/brutella/can"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// Functional broadcast request id and the ECU response id window.
	requestID    uint32 = 0x7DF
	responseBase uint32 = 0x7E8
	responseMask uint32 = 0x7F8

	positiveResponse = 0x41

	queryTimeout   = 100 * time.Millisecond
	frameBufferLen = 16
)

var ErrTimeout = errors.New("no matching response within query window")

type CANBus interface {
	SubscribeFunc(can.HandlerFunc)
	ConnectAndPublish() error
	Disconnect() error
	Publish(can.Frame) error
}

// to allow testing
var newBus = func(portName string) (CANBus, error) {
	return can.NewBusForInterfaceWithName(portName)
}

// Connection is a mode-01 query client on a shared diagnostic bus. The bus
// carries arbitrary other traffic, which is ignored.
type Connection struct {
	bus    CANBus
	frames chan can.Frame
}

func Connect(portName string) (*Connection, error) {
	bus, err := newBus(portName)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		bus:    bus,
		frames: make(chan can.Frame, frameBufferLen),
	}
	return c, nil
}

// Start subscribes to bus frames and blocks servicing the bus until ctx is
// cancelled or the bus fails.
func (c *Connection) Start(ctx context.Context) error {
	c.bus.SubscribeFunc(c.handleFrame)
	log.Info("diagnostic bus opened and subscribed")

	go func() {
		<-ctx.Done()
		log.Infof("stopping diagnostic bus: %v", ctx.Err())
		if err := c.bus.Disconnect(); err != nil {
			log.WithField("err", err).Warn("unable to disconnect diagnostic bus after context")
		}
	}()

	return c.bus.ConnectAndPublish()
}

func (c *Connection) Close() error {
	if c.bus == nil {
		return errors.New("diagnostic bus not connected")
	}
	return c.bus.Disconnect()
}

func (c *Connection) handleFrame(frame can.Frame) {
	if frame.ID&responseMask != responseBase {
		// unrelated traffic on the shared bus
		return
	}
	select {
	case c.frames <- frame:
	default:
		// no query is draining; shed the frame
	}
}

// Query sends a request for pid and waits up to the query window for a
// matching positive response. Frames belonging to other queries or other
// bus traffic observed during the window are discarded. On timeout the
// cause of the returned error is ErrTimeout.
func (c *Connection) Query(pid byte) (float64, error) {
	c.drain()

	req := can.Frame{
		ID:     requestID,
		Length: 8,
		Data:   [8]uint8{0x02, 0x01, pid},
	}
	if err := c.bus.Publish(req); err != nil {
		return 0, errors.Wrapf(err, "unable to send request for pid 0x%02X", pid)
	}

	deadline := time.After(queryTimeout)
	for {
		select {
		case frame := <-c.frames:
			if frame.Length < 3 || frame.Data[1] != positiveResponse || frame.Data[2] != pid {
				continue
			}
			return Decode(pid, frame.Data)
		case <-deadline:
			return 0, errors.Wrapf(ErrTimeout, "pid 0x%02X", pid)
		}
	}
}

// drain discards responses left over from an earlier query.
func (c *Connection) drain() {
	for {
		select {
		case <-c.frames:
		default:
			return
		}
	}
}
