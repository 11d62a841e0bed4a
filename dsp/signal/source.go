package signal

import (
	"math"

	"github.com/cwbudde/algo-neurofeedback/dsp/core"
)

// SourceConfig describes the synthesized signal.
type SourceConfig struct {
	// NoiseAmplitude scales uniform noise to [-NoiseAmplitude, NoiseAmplitude).
	NoiseAmplitude float64
	// InjectAmplitude is the peak of the engaged-state sinusoid.
	InjectAmplitude float64
	// InjectFreq is the sinusoid frequency in Hz.
	InjectFreq float64
}

// DefaultSourceConfig returns noise of amplitude 0.5 and a 2.0 peak, 10 Hz
// injected rhythm.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		NoiseAmplitude:  0.5,
		InjectAmplitude: 2.0,
		InjectFreq:      10,
	}
}

// Source generates channel samples from a noise stream.
type Source struct {
	cfg   SourceConfig
	noise Noise
}

// NewSource returns a source drawing from noise. A nil noise is replaced by
// an entropy-seeded one.
func NewSource(cfg SourceConfig, noise Noise) *Source {
	if noise == nil {
		noise = NewEntropyNoise()
	}
	return &Source{cfg: cfg, noise: noise}
}

// Config returns the source configuration.
func (s *Source) Config() SourceConfig {
	return s.cfg
}

// Sample returns one sample for a channel of the given role at simulation
// time t seconds.
func (s *Source) Sample(role Role, engaged bool, t float64) float64 {
	v := s.noiseSample()
	if engaged && role.IsProbe() {
		v += s.inject(t)
	}
	return v
}

// Frame fills dst with one sample per montage channel for the tick at t
// and returns it. The injected sinusoid is evaluated once and added to
// every probe channel.
func (s *Source) Frame(dst []float64, montage Montage, engaged bool, t float64) []float64 {
	dst = core.EnsureLen(dst, len(montage))
	inject := 0.0
	if engaged {
		inject = s.inject(t)
	}
	for i, ch := range montage {
		v := s.noiseSample()
		if ch.Role.IsProbe() {
			v += inject
		}
		dst[i] = v
	}
	return dst
}

func (s *Source) noiseSample() float64 {
	return (2*s.noise.Float64() - 1) * s.cfg.NoiseAmplitude
}

func (s *Source) inject(t float64) float64 {
	return s.cfg.InjectAmplitude * math.Sin(2*math.Pi*s.cfg.InjectFreq*t)
}
