// Package analysis reduces simulation traces to the figures used to judge a loop:
// steady-state statistics, phase tracking error and settling time.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the statistics of one trace column.
type Summary struct {
	Mean   float64
	StdDev float64
	RMS    float64
	Min    float64
	Max    float64
}

// Summarize returns the statistics of x. An empty slice gives a zero Summary.
func Summarize(x []float64) Summary {
	if len(x) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) == 1 {
		std = 0
	}
	return Summary{
		Mean:   mean,
		StdDev: std,
		RMS:    math.Sqrt(floats.Dot(x, x) / float64(len(x))),
		Min:    floats.Min(x),
		Max:    floats.Max(x),
	}
}

// PhaseError returns est - truth wrapped to [-pi, pi].
func PhaseError(est, truth float64) float64 {
	return math.Remainder(est-truth, 2*math.Pi)
}

// PhaseErrors applies PhaseError element-wise over the shorter of the two slices.
func PhaseErrors(est, truth []float64) []float64 {
	n := len(est)
	if len(truth) < n {
		n = len(truth)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = PhaseError(est[i], truth[i])
	}
	return out
}

// SettlingIndex returns the first index from which every sample stays within
// band of target, or -1 if the trace never settles.
func SettlingIndex(x []float64, target, band float64) int {
	idx := -1
	for i := len(x) - 1; i >= 0; i-- {
		if math.Abs(x[i]-target) > band {
			break
		}
		idx = i
	}
	return idx
}

// Tail returns the last fraction of x, the steady-state window of a run.
func Tail(x []float64, fraction float64) []float64 {
	if fraction <= 0 {
		return nil
	}
	if fraction >= 1 {
		return x
	}
	return x[len(x)-int(float64(len(x))*fraction):]
}
