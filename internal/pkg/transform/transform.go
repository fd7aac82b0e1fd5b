/*
transform.go Coordinate transformations between the physical (abc), stationary (alpha-beta-gamma)
and rotating (dq0) reference frames of a three-phase quantity.
*/

package transform

import "math"

const (
	oneOverSqrt3 = 0.57735026918962576451
	sqrt3Over2   = 0.86602540378443864676
)

// SpaceVector is a three-phase quantity in complex form (ABG or DQ0 reference frame).
// Offset carries the zero-sequence term.
type SpaceVector struct {
	Real      float64
	Imaginary float64
	Offset    float64
}

// TimeDomain is a three-phase quantity in the time domain.
type TimeDomain struct {
	A float64
	B float64
	C float64
}

// ABCToABG maps a physical quantity onto the stationary reference frame.
func ABCToABG(p TimeDomain) SpaceVector {
	return SpaceVector{
		Real:      (2*p.A - p.B - p.C) / 3,
		Imaginary: oneOverSqrt3 * (p.B - p.C),
		Offset:    (p.A + p.B + p.C) / 3,
	}
}

// ABGToABC maps a stationary space vector back onto the three physical phases.
func ABGToABC(v SpaceVector) TimeDomain {
	return TimeDomain{
		A: v.Real + v.Offset,
		B: -0.5*v.Real + sqrt3Over2*v.Imaginary + v.Offset,
		C: -0.5*v.Real - sqrt3Over2*v.Imaginary + v.Offset,
	}
}

// ABGToDQ0 rotates a stationary space vector by theta.
func ABGToDQ0(v SpaceVector, theta float64) SpaceVector {
	sin, cos := math.Sincos(theta)
	return SpaceVector{
		Real:      cos*v.Real + sin*v.Imaginary,
		Imaginary: -sin*v.Real + cos*v.Imaginary,
		Offset:    v.Offset,
	}
}

// DQ0ToABG rotates a rotating-frame space vector back by theta.
func DQ0ToABG(v SpaceVector, theta float64) SpaceVector {
	sin, cos := math.Sincos(theta)
	return SpaceVector{
		Real:      cos*v.Real - sin*v.Imaginary,
		Imaginary: sin*v.Real + cos*v.Imaginary,
		Offset:    v.Offset,
	}
}

// ABCToDQ0 is ABCToABG followed by ABGToDQ0.
func ABCToDQ0(p TimeDomain, theta float64) SpaceVector {
	return ABGToDQ0(ABCToABG(p), theta)
}

// DQ0ToABC is DQ0ToABG followed by ABGToABC.
func DQ0ToABC(v SpaceVector, theta float64) TimeDomain {
	return ABGToABC(DQ0ToABG(v, theta))
}

// Q returns only the quadrature component of ABGToDQ0(v, theta).
func Q(v SpaceVector, theta float64) float64 {
	sin, cos := math.Sincos(theta)
	return -sin*v.Real + cos*v.Imaginary
}
