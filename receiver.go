package gaugelink

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Receiver consumes raw datagrams from the wireless transport and keeps
// per-channel statistics, loss accounting and link health. OnPacket must be
// invoked from a single goroutine (the transport read loop); the accessors
// may be called from any.
type Receiver struct {
	mu       sync.Mutex
	tracker  PacketTracker
	stats    [ChannelCount]Stats
	link     *LinkMonitor
	last     Packet
	received uint64
	dropped  uint64
	started  time.Time

	now func() time.Time
}

func NewReceiver(linkTimeout time.Duration) *Receiver {
	return &Receiver{
		link:    NewLinkMonitor(linkTimeout),
		started: time.Now(),
		now:     time.Now,
	}
}

// OnPacket is the transport receive callback. Malformed datagrams are
// counted and dropped without touching any other state.
func (r *Receiver) OnPacket(b []byte) {
	p, err := UnmarshalPacket(b)
	if err != nil {
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		log.WithField("len", len(b)).Debug("dropping telemetry packet: ", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.received++
	if gap := r.tracker.Observe(p.Sequence); gap > 0 {
		log.WithField("sequence", p.Sequence).
			WithField("gap", gap).
			Warn("missed telemetry packets")
	}
	for slot, v := range p.Values {
		r.stats[slot].Observe(float64(v))
	}
	r.last = *p
	r.link.Seen(r.now())
}

// CheckLink re-classifies link health; call it on a periodic tick.
func (r *Receiver) CheckLink() LinkStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.link.Check(r.now())
}

func (r *Receiver) Link() LinkStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.link.Status()
}

func (r *Receiver) Snapshot(slot int) StatsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats[slot].Snapshot()
}

// ResetStats restores every channel's statistics to the empty state.
func (r *Receiver) ResetStats() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for slot := range r.stats {
		r.stats[slot].Reset()
	}
}

// LastValues is the channel vector from the most recent packet.
func (r *Receiver) LastValues() [ChannelCount]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last.Values
}

func (r *Receiver) Missed() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracker.Missed()
}

func (r *Receiver) Received() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.received
}

// Dropped is the count of malformed datagrams discarded.
func (r *Receiver) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *Receiver) Uptime() time.Duration {
	return time.Since(r.started)
}
