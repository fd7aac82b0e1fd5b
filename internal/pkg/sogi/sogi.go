// Package sogi implements a second-order generalized integrator built from two
// coupled triple-integrator blocks. Each block approximates 1/s with the
// third-order Adams-Bashforth weights (23, -16, 5)/12.
package sogi

import (
	"errors"
	"fmt"
	"math"

	"github.com/ohowland/cgc_control/internal/pkg/transform"
)

// ErrConfig is returned for a configuration the filter cannot run with.
var ErrConfig = errors.New("sogi: invalid configuration")

type block struct {
	z1, z2, z3 float64
	output     float64
}

func (b *block) shift() {
	b.z3 = b.z2
	b.z2 = b.z1
}

func (b *block) update() {
	b.output = 23*b.z1 - 16*b.z2 + 5*b.z3
}

// SOGI3 produces an in-phase and a 90 degree lagging estimate of a
// single-phase signal at the angular frequency omega.
type SOGI3 struct {
	states   [2]block
	omega    float64
	gain     float64
	constant float64 // Ts/12
}

// New returns a SOGI tuned to omega0 (rad/s) with zeroed states.
func New(gain, omega0, ts float64) (*SOGI3, error) {
	if !(ts > 0) || math.IsInf(ts, 0) {
		return nil, fmt.Errorf("%w: sample period %v", ErrConfig, ts)
	}
	if !(gain > 0) || math.IsInf(gain, 0) {
		return nil, fmt.Errorf("%w: gain %v", ErrConfig, gain)
	}
	if !(omega0 > 0) || math.IsInf(omega0, 0) {
		return nil, fmt.Errorf("%w: omega %v", ErrConfig, omega0)
	}
	return &SOGI3{
		omega:    omega0,
		gain:     gain,
		constant: ts / 12,
	}, nil
}

// Omega returns the angular frequency the filter is currently tuned to.
func (s *SOGI3) Omega() float64 {
	return s.omega
}

// SetOmega retunes the filter, typically to the frequency estimated by a PLL.
func (s *SOGI3) SetOmega(omega float64) {
	s.omega = omega
}

// Reset zeroes the delay lines and outputs.
func (s *SOGI3) Reset() {
	s.states = [2]block{}
}

// Run feeds one measurement and returns the in-phase component as Real and the
// quadrature component as Imaginary.
func (s *SOGI3) Run(measurement float64) transform.SpaceVector {
	in, quad := &s.states[0], &s.states[1]

	in.shift()
	in.z1 += s.constant * s.omega * (-quad.output + s.gain*(measurement-in.output))

	quad.shift()
	quad.z1 += s.constant * s.omega * in.output

	in.update()
	quad.update()

	return transform.SpaceVector{
		Real:      in.output,
		Imaginary: quad.output,
	}
}
