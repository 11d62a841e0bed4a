// Package gain maps band power onto an audio feedback level and ramps that
// level linearly so the listener never hears a step.
//
// [Reward] converts a band-power estimate into a target level in [0, 1].
// [Controller] turns a stream of targets into a piecewise-linear envelope:
// every new target starts a ramp from the level the envelope has at that
// instant, superseding whatever ramp was in flight.
//
// A controller has one writer (the engine) and any number of readers (an
// audio callback evaluating Level per sample). Ramp segments are published
// atomically so a reader always sees a complete segment.
package gain
