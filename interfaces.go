package gaugelink

// Sender is the wireless transport's fire-and-forget send primitive. Any
// reliability or acknowledgment is the transport's concern and invisible
// here.
type Sender interface {
	Send([]byte) error
}

// Sampler provides the current value for every channel slot.
type Sampler interface {
	Sample() [ChannelCount]float32
}

// PIDQuerier is the diagnostic-bus query primitive a BusSampler needs.
type PIDQuerier interface {
	Query(pid byte) (float64, error)
}
