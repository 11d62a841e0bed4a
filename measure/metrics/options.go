package metrics

import (
	"github.com/cwbudde/algo-neurofeedback/dsp/buffer"
	"github.com/cwbudde/algo-neurofeedback/dsp/core"
)

// DefaultWindowSeconds is the rolling analysis window length.
const DefaultWindowSeconds = 0.5

// EstimatorConfig defines configuration for the metric estimator.
type EstimatorConfig struct {
	core.ProcessorConfig
	// WindowSeconds is the duration covered by each rolling window.
	WindowSeconds float64
	// Channels lists the channel indices that own a window.
	Channels []int
}

// Option mutates an EstimatorConfig.
type Option func(*EstimatorConfig)

// DefaultEstimatorConfig returns a 250 Hz, 0.5 s configuration windowing
// channels 0 and 4.
func DefaultEstimatorConfig() EstimatorConfig {
	cfg := EstimatorConfig{
		ProcessorConfig: core.DefaultProcessorConfig(),
		WindowSeconds:   DefaultWindowSeconds,
		Channels:        []int{0, 4},
	}
	return cfg
}

// WithSampleRate sets the sample rate of pushed samples.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *EstimatorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithWindow sets the rolling window length in seconds.
func WithWindow(seconds float64) Option {
	return func(cfg *EstimatorConfig) {
		if seconds > 0 {
			cfg.WindowSeconds = seconds
		}
	}
}

// WithChannels sets the windowed channel indices.
func WithChannels(channels ...int) Option {
	return func(cfg *EstimatorConfig) {
		if len(channels) > 0 {
			cfg.Channels = append([]int(nil), channels...)
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) EstimatorConfig {
	cfg := DefaultEstimatorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Capacity returns the number of samples each window holds.
func (cfg EstimatorConfig) Capacity() int {
	return buffer.CapacityFor(cfg.SampleRate, cfg.WindowSeconds)
}
