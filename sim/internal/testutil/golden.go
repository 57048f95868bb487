// Package testutil provides shared test infrastructure for the lifnet simulator.
// It holds assertion helpers used across sim/ and its sub-package tests and has
// no dependency on sim/ itself.
package testutil

import (
	"math"
	"testing"
)

// GoldenSpikeSteps are the spike steps of a noise-free neuron driven by
// I = 1.01 under the default constants (tau=200, R=20, theta=20, tau_rp=20)
// during its first 5000 steps: 92.4, 186.9, 281.4, 375.9 and 470.4 ms.
var GoldenSpikeSteps = []int64{924, 1869, 2814, 3759, 4704}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertNonIncreasing fails if any element of values exceeds its predecessor.
func AssertNonIncreasing(t *testing.T, name string, values []float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] > values[i-1] {
			t.Errorf("%s: value %d (%v) exceeds value %d (%v)", name, i, values[i], i-1, values[i-1])
			return
		}
	}
}
