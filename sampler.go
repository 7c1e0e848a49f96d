package gaugelink

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"
)

// BusSampler fills the channel vector by querying the diagnostic bus one
// PID at a time. A failed query keeps the previous good value for that slot
// so a transient timeout never shows up as a zero reading. Each slot can
// block for a full query window, so sampling all slots serially bounds the
// minimum useful transmit interval.
type BusSampler struct {
	bus      PIDQuerier
	values   [ChannelCount]float32
	failures [ChannelCount]uint64
}

func NewBusSampler(bus PIDQuerier) *BusSampler {
	return &BusSampler{
		bus: bus,
	}
}

func (s *BusSampler) Sample() [ChannelCount]float32 {
	for slot, pid := range ChannelPIDs {
		v, err := s.bus.Query(pid)
		if err != nil {
			s.failures[slot]++
			log.WithField("channel", ChannelName(slot)).
				Debug("query failed, holding previous value: ", err)
			continue
		}
		s.values[slot] = float32(v)
	}
	return s.values
}

// Failures reports how many queries have failed per slot.
func (s *BusSampler) Failures() [ChannelCount]uint64 {
	return s.failures
}

// SimulatedSampler generates plausible moving channel values without a
// vehicle, for bench-testing the wireless link and the receiver side.
type SimulatedSampler struct {
	started time.Time
}

func NewSimulatedSampler() *SimulatedSampler {
	return &SimulatedSampler{
		started: time.Now(),
	}
}

func (s *SimulatedSampler) Sample() [ChannelCount]float32 {
	ms := float64(time.Since(s.started) / time.Millisecond)
	var v [ChannelCount]float32
	v[ChanRPM] = float32(2200 + math.Sin(ms/1000)*800)
	v[ChanVehicleSpeed] = float32(60 + math.Cos(ms/1500)*20)
	v[ChanEngineLoad] = float32(45 + math.Sin(ms/1200)*25)
	v[ChanThrottlePos] = float32(30 + math.Sin(ms/900)*20)
	v[ChanCoolantTemp] = float32(88 + math.Sin(ms/5000)*4)
	v[ChanIntakeTemp] = float32(31 + math.Cos(ms/7000)*3)
	v[ChanShortFuelTrim] = float32(math.Sin(ms/800) * 5)
	v[ChanLongFuelTrim] = float32(2 + math.Sin(ms/9000)*1.5)
	v[ChanAFR] = float32(14.7 + math.Sin(ms/1100)*0.8)
	v[ChanWidebandVoltage] = float32(2.45 + math.Sin(ms/1100)*0.35)
	return v
}
