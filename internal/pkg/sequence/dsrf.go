// Package sequence separates the positive and negative sequence of an
// unbalanced three-phase quantity in a double synchronous reference frame.
package sequence

import (
	"errors"
	"fmt"
	"math"

	"github.com/ohowland/cgc_control/internal/pkg/transform"
)

// ErrConfig is returned for an invalid cutoff frequency or sample period.
var ErrConfig = errors.New("sequence: invalid configuration")

// DSRF decouples the two sequences by subtracting, from each raw rotation,
// the filtered opposite sequence rotated by twice the angle.
type DSRF struct {
	pos, neg       transform.SpaceVector
	posLPF, negLPF transform.SpaceVector
	k              float64
}

// New returns a decomposer whose decoupling filters cut off at fcut (Hz).
func New(fcut, ts float64) (*DSRF, error) {
	if !(ts > 0) || math.IsInf(ts, 0) {
		return nil, fmt.Errorf("%w: sample period %v", ErrConfig, ts)
	}
	if !(fcut > 0) || math.IsInf(fcut, 0) {
		return nil, fmt.Errorf("%w: cutoff frequency %v", ErrConfig, fcut)
	}
	return &DSRF{k: 1 - math.Exp(-2*math.Pi*fcut*ts)}, nil
}

// Run decomposes one sample using the positive-sequence angle theta.
// The results are read with Pos and Neg; their Offset is always zero.
func (s *DSRF) Run(abc transform.TimeDomain, theta float64) {
	fixed := transform.ABCToABG(abc)
	fixed.Offset = 0

	pos := transform.ABGToDQ0(fixed, theta)
	neg := transform.ABGToDQ0(fixed, -theta)

	// the positive frame sees the negative sequence at -2 theta and vice versa
	negFB := transform.DQ0ToABG(s.posLPF, 2*theta)
	posFB := transform.ABGToDQ0(s.negLPF, 2*theta)

	s.pos = transform.SpaceVector{Real: pos.Real - posFB.Real, Imaginary: pos.Imaginary - posFB.Imaginary}
	s.neg = transform.SpaceVector{Real: neg.Real - negFB.Real, Imaginary: neg.Imaginary - negFB.Imaginary}

	s.posLPF = s.lowPass(s.posLPF, s.pos)
	s.negLPF = s.lowPass(s.negLPF, s.neg)
}

func (s *DSRF) lowPass(state, in transform.SpaceVector) transform.SpaceVector {
	return transform.SpaceVector{
		Real:      (1-s.k)*state.Real + s.k*in.Real,
		Imaginary: (1-s.k)*state.Imaginary + s.k*in.Imaginary,
	}
}

// Pos returns the positive-sequence dq components of the last Run.
func (s *DSRF) Pos() transform.SpaceVector { return s.pos }

// Neg returns the negative-sequence dq components of the last Run.
func (s *DSRF) Neg() transform.SpaceVector { return s.neg }

// Reset zeroes the outputs and the decoupling filters.
func (s *DSRF) Reset() {
	k := s.k
	*s = DSRF{k: k}
}
