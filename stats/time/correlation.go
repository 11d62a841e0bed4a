package time

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// varianceFloor is the relative threshold below which a window's spread
// n*Σx² - (Σx)² is treated as zero. Constant windows otherwise leave a
// rounding residue that would be divided by.
const varianceFloor = 1e-12

// Pearson returns the Pearson correlation coefficient of x and y:
//
//	r = (nΣxy − ΣxΣy) / sqrt((nΣx² − (Σx)²)(nΣy² − (Σy)²))
//
// It returns 0 when the slices are empty, differ in length, or either has
// zero variance. The result is signed and limited to [-1, 1].
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}

	nf := float64(n)
	sumX := vecmath.Sum(x)
	sumY := vecmath.Sum(y)
	sumXY := vecmath.DotProduct(x, y)
	sumX2 := vecmath.DotProduct(x, x)
	sumY2 := vecmath.DotProduct(y, y)

	sxx := nf*sumX2 - sumX*sumX
	syy := nf*sumY2 - sumY*sumY
	if sxx <= varianceFloor*nf*sumX2 || syy <= varianceFloor*nf*sumY2 {
		return 0
	}

	den := math.Sqrt(sxx * syy)
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0
	}

	r := (nf*sumXY - sumX*sumY) / den
	switch {
	case r > 1:
		return 1
	case r < -1:
		return -1
	}

	return r
}
