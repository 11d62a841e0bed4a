package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// SequenceNoise replays a fixed list of uniform draws in [0, 1), wrapping
// around at the end. It satisfies signal.Noise.
type SequenceNoise struct {
	Values []float64
	next   int
}

// Float64 returns the next value of the sequence, or 0.5 (zero-valued
// noise after scaling) when the sequence is empty.
func (s *SequenceNoise) Float64() float64 {
	if len(s.Values) == 0 {
		return 0.5
	}
	v := s.Values[s.next]
	s.next = (s.next + 1) % len(s.Values)
	return v
}

// Silent returns a noise source whose draws all map to 0 after the
// (2u-1) scaling applied by signal sources.
func Silent() *SequenceNoise {
	return &SequenceNoise{Values: []float64{0.5}}
}
