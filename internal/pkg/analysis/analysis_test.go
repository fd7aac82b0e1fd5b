package analysis

import (
	"math"
	"testing"

	"gotest.tools/v3/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, -1, 1, -1})
	assert.Equal(t, s.Mean, 0.0)
	assert.Equal(t, s.RMS, 1.0)
	assert.Equal(t, s.Min, -1.0)
	assert.Equal(t, s.Max, 1.0)
	// unbiased estimate
	assert.Assert(t, math.Abs(s.StdDev-math.Sqrt(4.0/3)) < 1e-12)
}

func TestSummarizeDegenerate(t *testing.T) {
	assert.Equal(t, Summarize(nil), Summary{})
	assert.Equal(t, Summarize([]float64{2}), Summary{Mean: 2, RMS: 2, Min: 2, Max: 2})
}

func TestPhaseError(t *testing.T) {
	assert.Assert(t, math.Abs(PhaseError(3.1, -3.1)-(6.2-2*math.Pi)) < 1e-12)
	assert.Assert(t, math.Abs(PhaseError(0.2, 0.1)-0.1) < 1e-12)

	errs := PhaseErrors([]float64{0, 1, 2}, []float64{0, 1})
	assert.Equal(t, len(errs), 2)
}

func TestSettlingIndex(t *testing.T) {
	x := []float64{0, 2, 0.5, 1.05, 0.98, 1.01}
	assert.Equal(t, SettlingIndex(x, 1, 0.1), 3)
	assert.Equal(t, SettlingIndex(x, 5, 0.1), -1)
	assert.Equal(t, SettlingIndex([]float64{1, 1}, 1, 0), 0)
}

func TestTail(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	assert.DeepEqual(t, Tail(x, 0.5), []float64{3, 4})
	assert.DeepEqual(t, Tail(x, 1), x)
	assert.Equal(t, len(Tail(x, 0)), 0)
}
