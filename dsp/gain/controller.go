package gain

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-neurofeedback/dsp/core"
)

// DefaultRampTime is the duration of one level transition in seconds.
const DefaultRampTime = 0.1

// ErrInvalidRampTime is returned for non-positive or non-finite ramp times.
var ErrInvalidRampTime = errors.New("gain: ramp time must be > 0")

// segment is one linear ramp. Segments are immutable once published.
type segment struct {
	from     float64
	to       float64
	start    float64
	duration float64
}

func (s *segment) level(now float64) float64 {
	switch {
	case now >= s.start+s.duration:
		return s.to
	case now <= s.start:
		return s.from
	default:
		return s.from + (s.to-s.from)*(now-s.start)/s.duration
	}
}

// Controller is a linear-ramp gain envelope. Times are seconds on the
// caller's clock.
type Controller struct {
	rampTime float64
	seg      atomic.Pointer[segment]
}

// NewController returns a controller at level 0 that ramps over rampTime
// seconds.
func NewController(rampTime float64) (*Controller, error) {
	if !(rampTime > 0) || math.IsInf(rampTime, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidRampTime, rampTime)
	}
	c := &Controller{rampTime: rampTime}
	c.Reset(0)
	return c, nil
}

// RampTime returns the configured ramp duration.
func (c *Controller) RampTime() float64 {
	return c.rampTime
}

// MaxRate returns the steepest slope the envelope can take, in level units
// per second.
func (c *Controller) MaxRate() float64 {
	return 1 / c.rampTime
}

// SetTarget clamps level to [0, 1] and starts a ramp toward it at now.
// The ramp begins at the envelope's instantaneous level, not at the old
// target. SetTarget must only be called from a single goroutine.
func (c *Controller) SetTarget(level, now float64) {
	current := c.seg.Load().level(now)
	c.seg.Store(&segment{
		from:     current,
		to:       core.Clamp01(level),
		start:    now,
		duration: c.rampTime,
	})
}

// Level returns the envelope value at now. It is safe to call from any
// goroutine.
func (c *Controller) Level(now float64) float64 {
	return c.seg.Load().level(now)
}

// Target returns the level the current ramp is heading to.
func (c *Controller) Target() float64 {
	return c.seg.Load().to
}

// LastCommand returns the time of the most recent SetTarget.
func (c *Controller) LastCommand() float64 {
	return c.seg.Load().start
}

// Settled returns the time at which the current ramp completes.
func (c *Controller) Settled() float64 {
	s := c.seg.Load()
	return s.start + s.duration
}

// Reset jumps the envelope to level with no ramp and a command time of 0.
func (c *Controller) Reset(level float64) {
	level = core.Clamp01(level)
	c.seg.Store(&segment{from: level, to: level})
}
