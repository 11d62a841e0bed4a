// Package buffer provides the fixed-capacity sample FIFO backing rolling
// analysis windows and raw-signal tails.
//
// A [Ring] covers a fixed wall-clock duration: size it with [CapacityFor]
// from the sample rate and window length in seconds.
package buffer
