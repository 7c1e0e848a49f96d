package gaugelink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinkMonitorWaitingUntilFirstPacket(t *testing.T) {
	m := NewLinkMonitor(2000 * time.Millisecond)
	assert.Equal(t, StatusWaiting, m.Status())
	assert.Equal(t, StatusWaiting, m.Check(time.Now()))
}

func TestLinkMonitorTimeoutBoundary(t *testing.T) {
	m := NewLinkMonitor(2000 * time.Millisecond)
	start := time.Now()

	m.Seen(start)
	assert.Equal(t, StatusOnline, m.Status())
	assert.Equal(t, start, m.LastSeen())

	assert.Equal(t, StatusOnline, m.Check(start.Add(1999*time.Millisecond)))
	assert.Equal(t, StatusTimeout, m.Check(start.Add(2000*time.Millisecond)))
}

func TestLinkMonitorSinglePacketRecovers(t *testing.T) {
	m := NewLinkMonitor(2000 * time.Millisecond)
	start := time.Now()

	m.Seen(start)
	assert.Equal(t, StatusTimeout, m.Check(start.Add(5*time.Second)))

	m.Seen(start.Add(6 * time.Second))
	assert.Equal(t, StatusOnline, m.Status())
	assert.Equal(t, StatusOnline, m.Check(start.Add(7*time.Second)))
}

func TestLinkStatusString(t *testing.T) {
	assert.Equal(t, "waiting", StatusWaiting.String())
	assert.Equal(t, "online", StatusOnline.String())
	assert.Equal(t, "timeout", StatusTimeout.String())
}
