// Package audio renders the feedback tone and plays it on the local output
// device. The tone's amplitude follows a gain envelope evaluated per sample,
// so level changes reach the speaker as ramps, never as steps.
package audio

import (
	"math"
	"sync"
)

// DefaultCarrier is the feedback tone frequency in Hz.
const DefaultCarrier = 440.0

// DefaultSampleRate is the output sample rate.
const DefaultSampleRate = 48000

// GainSource yields the output level in [0, 1] at time t in seconds.
type GainSource interface {
	Level(t float64) float64
}

// Tone is a sine oscillator with an externally driven gain.
type Tone struct {
	mu    sync.Mutex
	freq  float64
	rate  float64
	gain  GainSource
	clock func() float64
	// advance moves the local clock when no external clock is set.
	advance func(n int)
	phase   float64
}

// NewTone returns a tone at freq Hz rendered at rate samples per second.
// clock returns the current time on the gain source's timeline; a nil
// clock renders against a local sample counter starting at 0.
func NewTone(freq float64, rate int, gain GainSource, clock func() float64) *Tone {
	t := &Tone{freq: freq, rate: float64(rate), gain: gain, clock: clock}
	if t.clock == nil {
		var elapsed float64
		t.clock = func() float64 { return elapsed }
		t.advance = func(n int) { elapsed += float64(n) / t.rate }
	}
	return t
}

// SampleRate returns the render rate.
func (t *Tone) SampleRate() int {
	return int(t.rate)
}

// Render fills dst with the next samples of the tone.
func (t *Tone) Render(dst []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := t.clock()
	step := 2 * math.Pi * t.freq / t.rate
	for i := range dst {
		level := t.gain.Level(start + float64(i)/t.rate)
		dst[i] = float32(level * math.Sin(t.phase))
		t.phase += step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
	if t.advance != nil {
		t.advance(len(dst))
	}
}

// RenderInt16 fills dst with 16-bit PCM samples of the tone.
func (t *Tone) RenderInt16(dst []int16, scratch []float32) []float32 {
	if cap(scratch) < len(dst) {
		scratch = make([]float32, len(dst))
	}
	scratch = scratch[:len(dst)]
	t.Render(scratch)
	for i, v := range scratch {
		dst[i] = int16(math.Round(float64(v) * math.MaxInt16))
	}
	return scratch
}

// Reset restarts the oscillator phase.
func (t *Tone) Reset() {
	t.mu.Lock()
	t.phase = 0
	t.mu.Unlock()
}
