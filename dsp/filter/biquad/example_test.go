package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-neurofeedback/dsp/filter/biquad"
)

func ExampleSection_ProcessSample() {
	s := biquad.NewSection(biquad.Coefficients{
		B0: 0.25, B1: 0.5, B2: 0.25,
		A1: -0.2, A2: 0.04,
	})

	// Step response settles at the DC gain (B0+B1+B2)/(1+A1+A2).
	var y float64
	for range 20 {
		y = s.ProcessSample(1)
	}
	fmt.Printf("settled: %.4f\n", y)
	fmt.Printf("state:   %.4f\n", s.State())
	// Output:
	// settled: 1.1905
	// state:   [1.0000 1.0000 1.1905 1.1905]
}
