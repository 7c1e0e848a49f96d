package gaugelink

import (
	"time"
)

type LinkStatus int

const (
	// StatusWaiting means no packet has ever been seen.
	StatusWaiting LinkStatus = iota
	StatusOnline
	StatusTimeout
)

func (s LinkStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusOnline:
		return "online"
	case StatusTimeout:
		return "timeout"
	}
	return "unknown"
}

// LinkMonitor classifies the wireless link from the time the last packet
// was seen. There is no hysteresis: a single packet is enough to go back
// Online from any state.
type LinkMonitor struct {
	threshold time.Duration
	status    LinkStatus
	lastSeen  time.Time
}

func NewLinkMonitor(threshold time.Duration) *LinkMonitor {
	return &LinkMonitor{
		threshold: threshold,
	}
}

// Seen records a valid packet at now.
func (m *LinkMonitor) Seen(now time.Time) {
	m.lastSeen = now
	m.status = StatusOnline
}

// Check re-classifies the link against now; call it on a periodic tick
// independent of packet arrival. The boundary is inclusive: a check exactly
// threshold after the last packet reports Timeout.
func (m *LinkMonitor) Check(now time.Time) LinkStatus {
	if m.status == StatusOnline && now.Sub(m.lastSeen) >= m.threshold {
		m.status = StatusTimeout
	}
	return m.status
}

func (m *LinkMonitor) Status() LinkStatus {
	return m.status
}

func (m *LinkMonitor) LastSeen() time.Time {
	return m.lastSeen
}
