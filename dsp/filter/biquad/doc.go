// Package biquad provides the second-order IIR filter runtime used on
// probe channels.
//
// A [Section] implements Direct Form I processing for a single
// second-order section defined by [Coefficients]. Coefficients are plain
// values; designing them (bandpass around the alpha band, for example)
// lives in dsp/filter/design.
package biquad
