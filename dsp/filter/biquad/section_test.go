package biquad

import (
	"math"
	"testing"
)

// tolerance for floating-point comparisons.
const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// passthrough returns coefficients for a unity gain passthrough (B0=1, all else 0).
func passthrough() Coefficients {
	return Coefficients{B0: 1}
}

// simpleLowpass returns a two-tap average: H(z) = 0.5*(1 + z^-1).
func simpleLowpass() Coefficients {
	return Coefficients{B0: 0.5, B1: 0.5}
}

func TestNewSection(t *testing.T) {
	c := Coefficients{B0: 1, B1: 2, B2: 3, A1: 4, A2: 5}
	s := NewSection(c)
	if s.Coefficients != c {
		t.Fatalf("coefficients mismatch: got %v, want %v", s.Coefficients, c)
	}
	if st := s.State(); st != [4]float64{} {
		t.Fatalf("initial state not zero: %v", st)
	}
}

func TestProcessSample_Passthrough(t *testing.T) {
	s := NewSection(passthrough())
	input := []float64{1, 0, -1, 0.5, 0.25}
	for i, x := range input {
		y := s.ProcessSample(x)
		if !almostEqual(y, x, eps) {
			t.Errorf("sample %d: got %v, want %v", i, y, x)
		}
	}
}

func TestProcessSample_DFI(t *testing.T) {
	// Hand-traced difference equation with
	// B0=0.25, B1=0.5, B2=0.25, A1=-0.2, A2=0.04 and x = [1, 0, 0, 0]:
	//
	// n=0: y = 0.25
	// n=1: y = 0.5*1 + 0.2*0.25 = 0.55
	// n=2: y = 0.25*1 + 0.2*0.55 - 0.04*0.25 = 0.35
	// n=3: y = 0.2*0.35 - 0.04*0.55 = 0.048
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	s := NewSection(c)

	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i, w := range want {
		var x float64
		if i == 0 {
			x = 1
		}
		y := s.ProcessSample(x)
		if !almostEqual(y, w, eps) {
			t.Errorf("sample %d: got %.15f, want %.15f", i, y, w)
		}
	}
}

func TestProcessSample_ShiftsHistory(t *testing.T) {
	s := NewSection(Coefficients{B0: 1, A1: -0.5})

	s.ProcessSample(2)  // y = 2
	s.ProcessSample(-1) // y = -1 + 0.5*2 = 0

	want := [4]float64{-1, 2, 0, 2}
	if got := s.State(); got != want {
		t.Fatalf("state = %v, want %v", got, want)
	}
}

func TestProcessBlock_MatchesSample(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	input := []float64{1, -0.5, 0.25, 0.75, -1, 0.1, 0.2, -0.3, 0.4}

	ref := NewSection(c)
	want := make([]float64, len(input))
	for i, x := range input {
		want[i] = ref.ProcessSample(x)
	}

	s := NewSection(c)
	buf := append([]float64(nil), input...)
	s.ProcessBlock(buf)

	for i := range buf {
		if !almostEqual(buf[i], want[i], eps) {
			t.Errorf("sample %d: got %v, want %v", i, buf[i], want[i])
		}
	}
	if s.State() != ref.State() {
		t.Fatalf("state after block = %v, want %v", s.State(), ref.State())
	}
}

func TestProcessBlockTo_MatchesSample(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	src := []float64{1, 0, 0, 0, 0.5, -0.5}

	ref := NewSection(c)
	s := NewSection(c)
	dst := make([]float64, len(src))
	s.ProcessBlockTo(dst, src)

	for i, x := range src {
		want := ref.ProcessSample(x)
		if !almostEqual(dst[i], want, eps) {
			t.Errorf("sample %d: got %v, want %v", i, dst[i], want)
		}
	}

	s.ProcessBlockTo(nil, nil)
}

func TestProcessSample_ZeroCoefficients(t *testing.T) {
	s := NewSection(Coefficients{})
	for i := range 10 {
		if y := s.ProcessSample(1.0); y != 0 {
			t.Errorf("sample %d: got %v, want 0", i, y)
		}
	}
}

func TestProcessSample_PureDelay(t *testing.T) {
	s := NewSection(Coefficients{B1: 1})
	input := []float64{1, 2, 3, 4, 5}
	want := []float64{0, 1, 2, 3, 4}
	for i, x := range input {
		y := s.ProcessSample(x)
		if !almostEqual(y, want[i], eps) {
			t.Errorf("sample %d: got %v, want %v", i, y, want[i])
		}
	}
}

func TestReset(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	s := NewSection(c)

	s.ProcessSample(1)
	s.ProcessSample(0.5)

	if s.State() == [4]float64{} {
		t.Fatal("state should be non-zero after processing")
	}

	s.Reset()
	if st := s.State(); st != [4]float64{} {
		t.Fatalf("state not zero after reset: %v", st)
	}
}

func TestState_SaveRestore(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	s := NewSection(c)

	s.ProcessSample(1)
	s.ProcessSample(0.5)
	saved := s.State()

	y3 := s.ProcessSample(-0.3)
	y4 := s.ProcessSample(0.7)

	s.SetState(saved)
	y3b := s.ProcessSample(-0.3)
	y4b := s.ProcessSample(0.7)

	if !almostEqual(y3, y3b, eps) {
		t.Errorf("sample 3: got %v after restore, want %v", y3b, y3)
	}
	if !almostEqual(y4, y4b, eps) {
		t.Errorf("sample 4: got %v after restore, want %v", y4b, y4)
	}
}

func TestSections_IndependentHistory(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	left := NewSection(c)
	right := NewSection(c)

	left.ProcessSample(1)
	if right.State() != [4]float64{} {
		t.Fatal("sections sharing coefficients must not share history")
	}
}

func TestProcessSample_StabilityLongRun(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	s := NewSection(c)
	s.ProcessSample(1)

	for range 10000 {
		s.ProcessSample(0)
	}

	for i, v := range s.State() {
		if math.Abs(v) > 1e-100 {
			t.Errorf("state[%d] did not decay: %v", i, v)
		}
	}
}

func TestProcessSample_SimpleLowpass(t *testing.T) {
	s := NewSection(simpleLowpass())
	input := []float64{1, 1, 1, 1}
	want := []float64{0.5, 1, 1, 1}
	for i, x := range input {
		y := s.ProcessSample(x)
		if !almostEqual(y, want[i], eps) {
			t.Errorf("sample %d: got %v, want %v", i, y, want[i])
		}
	}
}
