// Package design provides digital IIR filter coefficient designers.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad. Designs are computed once at configuration time and
// the resulting [biquad.Coefficients] value is shared read-only by every
// probe-channel filter.
package design
