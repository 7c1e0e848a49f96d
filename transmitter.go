package gaugelink

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type SendStats struct {
	// Sent counts packets handed to the transport.
	Sent uint64
	// Failed counts negative delivery results. Failures are never retried.
	Failed uint64
}

// Transmitter samples all channels on a fixed cadence, stamps each packet
// with a sequence number and monotonic milliseconds, and hands the encoded
// bytes to the transport. Delivery is fire and forget: no acknowledgment,
// no retry, no backoff.
type Transmitter struct {
	interval time.Duration
	sampler  Sampler
	sender   Sender
	seq      uint32

	mu    sync.Mutex
	stats SendStats

	millis func() uint32
}

func NewTransmitter(sender Sender, sampler Sampler, interval time.Duration) *Transmitter {
	started := time.Now()
	return &Transmitter{
		interval: interval,
		sampler:  sampler,
		sender:   sender,
		millis: func() uint32 {
			return uint32(time.Since(started) / time.Millisecond)
		},
	}
}

// Start runs the transmit loop until ctx is cancelled.
func (t *Transmitter) Start(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.Tick()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Tick builds and sends one telemetry packet.
func (t *Transmitter) Tick() {
	t.seq++
	p := Packet{
		Values:    t.sampler.Sample(),
		Timestamp: t.millis(),
		Sequence:  t.seq,
	}
	b, err := p.Marshal()
	if err != nil {
		log.Error("unable to encode telemetry packet: ", err)
		return
	}

	t.mu.Lock()
	t.stats.Sent++
	t.mu.Unlock()

	if err := t.sender.Send(b); err != nil {
		log.WithField("sequence", p.Sequence).Error("unable to send telemetry packet: ", err)
		t.DeliveryResult(false)
	}
}

// DeliveryResult records a delivery report from the transport, which may
// arrive asynchronously. It only feeds the send counters.
func (t *Transmitter) DeliveryResult(ok bool) {
	if ok {
		return
	}
	t.mu.Lock()
	t.stats.Failed++
	t.mu.Unlock()
}

func (t *Transmitter) SendStats() SendStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
