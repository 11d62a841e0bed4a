// Package time provides time-domain estimators over sample windows.
//
//nolint:revive
package time

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// RMS returns the root-mean-square of the signal, or 0 for an empty slice.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(MeanSquare(signal))
}

// MeanSquare returns the mean of squared samples (signal power), or 0 for
// an empty slice.
func MeanSquare(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return vecmath.DotProduct(signal, signal) / float64(len(signal))
}

// DC returns the mean (DC offset) of the signal.
func DC(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	// Use Kahan summation for numerical stability.
	var sum, c float64
	for _, x := range signal {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(signal))
}
