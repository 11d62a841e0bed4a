package time

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-neurofeedback/internal/testutil"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRMS(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"constant positive", testutil.DC(0.3, 125), 0.3},
		{"constant negative", testutil.DC(-2, 17), 2},
		{"square", []float64{1, -1, 1, -1}, 1},
		{"single", []float64{-4}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RMS(tt.signal); !almostEqual(got, tt.want, 1e-12) {
				t.Fatalf("RMS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMS_Sinusoid(t *testing.T) {
	const amplitude = 2.0
	// 40 full periods of 10 Hz at 250 Hz.
	sine := testutil.DeterministicSine(10, 250, amplitude, 1000)

	want := amplitude / math.Sqrt2
	if got := RMS(sine); !almostEqual(got, want, 1e-9) {
		t.Fatalf("RMS(sine) = %v, want %v", got, want)
	}
}

func TestMeanSquare(t *testing.T) {
	if got := MeanSquare([]float64{1, 2, 3}); !almostEqual(got, 14.0/3, 1e-12) {
		t.Fatalf("MeanSquare = %v, want %v", got, 14.0/3)
	}
	if got := MeanSquare(nil); got != 0 {
		t.Fatalf("MeanSquare(nil) = %v, want 0", got)
	}
}

func TestDC(t *testing.T) {
	if got := DC([]float64{1, 2, 3, 4}); !almostEqual(got, 2.5, 1e-15) {
		t.Fatalf("DC = %v, want 2.5", got)
	}
	if got := DC(nil); got != 0 {
		t.Fatalf("DC(nil) = %v, want 0", got)
	}
}
