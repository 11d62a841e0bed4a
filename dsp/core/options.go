package core

// DefaultSampleRate is the EEG-like stream rate used when none is given.
const DefaultSampleRate = 250.0

// ProcessorConfig defines common sample-stream settings. Processors built
// on it advance one sample-step at a time, so there is no block size.
type ProcessorConfig struct {
	SampleRate float64
}

// DefaultProcessorConfig returns a config at DefaultSampleRate.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{SampleRate: DefaultSampleRate}
}

