// Package fae implements a fictive-axis estimator: a first-order model of a
// series R-L line that synthesizes the current of a phase that is not measured.
package fae

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfig is returned when R, L or the sample period is not positive.
var ErrConfig = errors.New("fae: invalid configuration")

// Estimator integrates the line voltage drop through the discretized
// admittance 1/(R + sL).
type Estimator struct {
	a, b  float64
	state float64
}

// New returns an estimator for a line of resistance r (ohm) and inductance l (H).
func New(r, l, ts float64) (*Estimator, error) {
	for name, v := range map[string]float64{"resistance": r, "inductance": l, "sample period": ts} {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s %v", ErrConfig, name, v)
		}
	}
	return &Estimator{
		a: ts / (l + r*ts),
		b: l / (l + r*ts),
	}, nil
}

// Run feeds the voltage drop across the line and returns the estimated current.
func (e *Estimator) Run(delta float64) float64 {
	e.state = e.a*delta + e.b*e.state
	return e.state
}

// State returns the last estimate.
func (e *Estimator) State() float64 {
	return e.state
}

// Reset zeroes the estimate.
func (e *Estimator) Reset() {
	e.state = 0
}
