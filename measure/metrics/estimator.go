// Package metrics estimates band power and inter-channel coherence over
// rolling windows of band-limited probe samples.
package metrics

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-neurofeedback/dsp/buffer"
	stats "github.com/cwbudde/algo-neurofeedback/stats/time"
)

// ErrInvalidChannel reports a negative or duplicate channel index.
var ErrInvalidChannel = errors.New("metrics: invalid channel")

// Estimator owns one rolling window per configured channel.
//
// An Estimator is not safe for concurrent use; the engine's driver goroutine
// is its only caller.
type Estimator struct {
	cfg     EstimatorConfig
	slots   map[int]int
	windows []*buffer.Ring

	scratchA []float64
	scratchB []float64
}

// NewEstimator creates an estimator with empty windows.
func NewEstimator(opts ...Option) (*Estimator, error) {
	cfg := ApplyOptions(opts...)

	capacity := cfg.Capacity()
	e := &Estimator{
		cfg:      cfg,
		slots:    make(map[int]int, len(cfg.Channels)),
		windows:  make([]*buffer.Ring, len(cfg.Channels)),
		scratchA: make([]float64, 0, capacity),
		scratchB: make([]float64, 0, capacity),
	}

	for i, ch := range cfg.Channels {
		if ch < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
		}
		if _, dup := e.slots[ch]; dup {
			return nil, fmt.Errorf("%w: duplicate %d", ErrInvalidChannel, ch)
		}
		ring, err := buffer.NewRing(capacity)
		if err != nil {
			return nil, fmt.Errorf("metrics: window for channel %d: %w", ch, err)
		}
		e.slots[ch] = i
		e.windows[i] = ring
	}

	return e, nil
}

// Config returns the estimator configuration.
func (e *Estimator) Config() EstimatorConfig {
	return e.cfg
}

// Capacity returns the per-channel window capacity in samples.
func (e *Estimator) Capacity() int {
	return e.cfg.Capacity()
}

// Push appends a filtered sample to the channel's window. Samples for
// channels without a window are ignored.
func (e *Estimator) Push(ch int, v float64) {
	if w := e.window(ch); w != nil {
		w.Push(v)
	}
}

// Len returns the number of samples held for ch.
func (e *Estimator) Len(ch int) int {
	if w := e.window(ch); w != nil {
		return w.Len()
	}
	return 0
}

// Window copies the channel's window, oldest first, into dst.
func (e *Estimator) Window(ch int, dst []float64) []float64 {
	if w := e.window(ch); w != nil {
		return w.Values(dst)
	}
	return dst[:0]
}

// Power returns the RMS of the channel's window, 0 when empty or unknown.
func (e *Estimator) Power(ch int) float64 {
	w := e.window(ch)
	if w == nil || w.Len() == 0 {
		return 0
	}
	e.scratchA = w.Values(e.scratchA)
	return stats.RMS(e.scratchA)
}

// Coherence returns the signed Pearson correlation between two windows.
// It is 0 when either window is empty or unknown, the lengths differ, or a
// window has no variance.
func (e *Estimator) Coherence(a, b int) float64 {
	wa, wb := e.window(a), e.window(b)
	if wa == nil || wb == nil || wa.Len() == 0 || wa.Len() != wb.Len() {
		return 0
	}
	e.scratchA = wa.Values(e.scratchA)
	e.scratchB = wb.Values(e.scratchB)
	return stats.Pearson(e.scratchA, e.scratchB)
}

// Reset empties every window.
func (e *Estimator) Reset() {
	for _, w := range e.windows {
		w.Reset()
	}
}

func (e *Estimator) window(ch int) *buffer.Ring {
	i, ok := e.slots[ch]
	if !ok {
		return nil
	}
	return e.windows[i]
}

// ClampCoherence maps a signed correlation onto the displayed [0, 1]
// coherence: anti-correlation shows as no coherence.
func ClampCoherence(r float64) float64 {
	switch {
	case r > 1:
		return 1
	case r > 0:
		return r
	default:
		return 0
	}
}
