// Package engine runs the closed neurofeedback loop: it synthesizes the
// montage sample by sample, band-limits the probes, estimates band power
// and inter-probe coherence over rolling windows, and drives the feedback
// gain.
//
// [Pipeline] is the deterministic single-threaded core, advanced one
// sample-step at a time with an explicit engaged flag. [Loop] wraps a
// pipeline in the Idle/Running state machine, paces it against the wall
// clock with a fixed-timestep [Scheduler] and hands immutable [Snapshot]
// values to a presentation layer.
package engine
