package design

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-neurofeedback/dsp/filter/biquad"
)

var (
	// ErrInvalidSampleRate is returned for non-positive or non-finite sample rates.
	ErrInvalidSampleRate = errors.New("design: invalid sample rate")
	// ErrInvalidFrequency is returned when the center frequency is not in (0, Nyquist).
	ErrInvalidFrequency = errors.New("design: invalid center frequency")
	// ErrInvalidQ is returned for non-positive or non-finite quality factors.
	ErrInvalidQ = errors.New("design: invalid quality factor")
)

// Bandpass designs a constant 0 dB peak-gain bandpass biquad centered at
// freq (Hz) with quality factor q (RBJ cookbook form).
//
// Inputs are not validated: out-of-range designs yield degenerate
// coefficients. Use [NewBandpass] at configuration time.
func Bandpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0 := 2 * math.Pi * freq / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cw := math.Cos(w0)

	return normalizeBiquad(alpha, 0, -alpha, 1+alpha, -2*cw, 1-alpha)
}

// NewBandpass validates the design parameters and returns the coefficients
// of [Bandpass]. It never returns unstable coefficients.
func NewBandpass(freq, q, sampleRate float64) (biquad.Coefficients, error) {
	if err := ValidateBandpass(freq, q, sampleRate); err != nil {
		return biquad.Coefficients{}, err
	}

	c := Bandpass(freq, q, sampleRate)
	if !c.Stable() {
		return biquad.Coefficients{}, fmt.Errorf("%w: design at %g Hz (Q %g, fs %g) is unstable",
			ErrInvalidFrequency, freq, q, sampleRate)
	}

	return c, nil
}

// ValidateBandpass reports whether (freq, q, sampleRate) describe a
// realizable bandpass: 0 < freq < sampleRate/2 and q > 0.
func ValidateBandpass(freq, q, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRate, sampleRate)
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return fmt.Errorf("%w: %g Hz must be in (0, %g)", ErrInvalidFrequency, freq, nyquist)
	}

	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return fmt.Errorf("%w: %g must be > 0", ErrInvalidQ, q)
	}

	return nil
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
