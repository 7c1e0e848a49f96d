package gaugelink

// Stats keeps running min/max/sum/count for one channel. The zero value is
// the empty state: min and max are undefined until the first observation
// sets both, so a legitimate 0.0 reading never fights a stale sentinel.
type Stats struct {
	min   float64
	max   float64
	sum   float64
	count uint64
}

type StatsSnapshot struct {
	Min   float64
	Max   float64
	Avg   float64
	Count uint64
}

func (s *Stats) Observe(v float64) {
	if s.count == 0 {
		s.min = v
		s.max = v
	} else {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	s.sum += v
	s.count++
}

// Reset restores the empty state, not a zeroed one: the next Observe seeds
// min and max again.
func (s *Stats) Reset() {
	*s = Stats{}
}

func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Min:   s.min,
		Max:   s.max,
		Count: s.count,
	}
	if s.count > 0 {
		snap.Avg = s.sum / float64(s.count)
	}
	return snap
}
