package buffer

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-neurofeedback/dsp/core"
)

// ErrInvalidCapacity is returned when a ring is created with capacity < 1.
var ErrInvalidCapacity = errors.New("buffer: ring capacity must be > 0")

// Ring is a fixed-capacity FIFO of the most recent samples. Once full, each
// Push evicts the oldest sample before admitting the new one, so Len never
// exceeds Cap.
//
// A Ring is not safe for concurrent use.
type Ring struct {
	buffer   []float64
	writePos int
	length   int
}

// NewRing returns an empty ring holding up to capacity samples.
func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &Ring{buffer: make([]float64, capacity)}, nil
}

// CapacityFor returns the number of samples covering seconds of signal at
// sampleRate, rounded to nearest and never below 1.
func CapacityFor(sampleRate, seconds float64) int {
	n := math.Round(sampleRate * seconds)
	if n < 1 || math.IsNaN(n) {
		return 1
	}
	return int(n)
}

// Push appends one sample, evicting the oldest when full.
func (r *Ring) Push(sample float64) {
	r.buffer[r.writePos] = sample
	r.writePos++
	if r.writePos >= len(r.buffer) {
		r.writePos = 0
	}
	if r.length < len(r.buffer) {
		r.length++
	}
}

// Len returns the number of samples currently held.
func (r *Ring) Len() int {
	return r.length
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int {
	return len(r.buffer)
}

// Full reports whether the ring holds Cap samples.
func (r *Ring) Full() bool {
	return r.length == len(r.buffer)
}

// At returns the i-th held sample, oldest first. It panics when i is out
// of [0, Len).
func (r *Ring) At(i int) float64 {
	if i < 0 || i >= r.length {
		panic(fmt.Sprintf("buffer: ring index %d out of range [0,%d)", i, r.length))
	}
	return r.buffer[r.index(i)]
}

// Values copies the held samples, oldest first, into dst (reusing its
// capacity) and returns it.
func (r *Ring) Values(dst []float64) []float64 {
	return r.Tail(r.length, dst)
}

// Tail copies the newest n samples, oldest first, into dst and returns it.
// n is limited to Len.
func (r *Ring) Tail(n int, dst []float64) []float64 {
	if n > r.length {
		n = r.length
	}
	dst = core.EnsureLen(dst, n)
	if n == 0 {
		return dst
	}

	start := r.index(r.length - n)
	first := copy(dst, r.buffer[start:min(start+n, len(r.buffer))])
	copy(dst[first:], r.buffer[:n-first])
	return dst
}

// Reset empties the ring and clears its contents.
func (r *Ring) Reset() {
	for i := range r.buffer {
		r.buffer[i] = 0
	}
	r.writePos = 0
	r.length = 0
}

// index maps the logical position i (0 = oldest) to a buffer slot.
func (r *Ring) index(i int) int {
	size := len(r.buffer)
	oldest := r.writePos - r.length
	if oldest < 0 {
		oldest += size
	}
	return (oldest + i) % size
}
