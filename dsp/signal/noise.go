package signal

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Noise yields uniform samples in [0, 1). *rand.Rand satisfies it.
type Noise interface {
	Float64() float64
}

// NewSeededNoise returns a deterministic noise source.
func NewSeededNoise(seed int64) Noise {
	return rand.New(rand.NewSource(seed))
}

// NewEntropyNoise returns a noise source seeded from the operating system's
// entropy pool. It falls back to a fixed seed if the pool is unavailable.
func NewEntropyNoise() Noise {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return NewSeededNoise(1)
	}
	return NewSeededNoise(int64(binary.LittleEndian.Uint64(b[:])))
}
