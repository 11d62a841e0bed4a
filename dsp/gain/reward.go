package gain

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-neurofeedback/dsp/core"
)

// ErrInvalidDynamicRange is returned when a reward mapping has a
// non-positive span.
var ErrInvalidDynamicRange = errors.New("gain: dynamic range must be > 0")

// Reward maps band power linearly onto [0, 1]: power at NoiseFloor gives 0
// and power at NoiseFloor+DynamicRange gives full level.
type Reward struct {
	NoiseFloor   float64
	DynamicRange float64
}

// DefaultReward returns the mapping calibrated for the default source:
// floor 0.2, range 1.3.
func DefaultReward() Reward {
	return Reward{NoiseFloor: 0.2, DynamicRange: 1.3}
}

// Level returns the target feedback level for power.
func (r Reward) Level(power float64) float64 {
	return core.Clamp01((power - r.NoiseFloor) / r.DynamicRange)
}

// Validate checks that the mapping is usable.
func (r Reward) Validate() error {
	if !(r.DynamicRange > 0) || math.IsInf(r.DynamicRange, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidDynamicRange, r.DynamicRange)
	}
	if !core.IsFinite(r.NoiseFloor) {
		return fmt.Errorf("gain: noise floor must be finite: %g", r.NoiseFloor)
	}
	return nil
}
