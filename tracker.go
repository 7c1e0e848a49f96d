package gaugelink

// PacketTracker detects gaps in the sequence numbers of received packets.
// Duplicates and reordered packets are invisible: they produce no gap and
// never subtract from the missed total.
type PacketTracker struct {
	last    uint32
	started bool
	missed  uint64
}

// Observe records seq and returns how many sequence numbers were skipped
// since the highest sequence seen so far. The first observation starts the
// stream and always returns 0.
func (t *PacketTracker) Observe(seq uint32) uint64 {
	var gap uint64
	switch {
	case !t.started:
		t.started = true
		t.last = seq
	case seq > t.last+1:
		gap = uint64(seq - t.last - 1)
		t.missed += gap
		t.last = seq
	case seq > t.last:
		t.last = seq
	}
	// seq <= last: late or duplicated delivery, nothing to account
	return gap
}

// Missed is the running total of sequence numbers never observed.
func (t *PacketTracker) Missed() uint64 {
	return t.missed
}

// Last is the highest sequence number observed so far.
func (t *PacketTracker) Last() uint32 {
	return t.last
}
