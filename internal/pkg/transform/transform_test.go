package transform

import (
	"math"
	"math/rand"
	"testing"

	"gotest.tools/v3/assert"
)

const tol = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < tol
}

func randTimeDomain(r *rand.Rand) TimeDomain {
	return TimeDomain{
		A: 800 * (r.Float64() - 0.5),
		B: 800 * (r.Float64() - 0.5),
		C: 800 * (r.Float64() - 0.5),
	}
}

func TestABCToABGUnitA(t *testing.T) {
	v := ABCToABG(TimeDomain{A: 1, B: -0.5, C: -0.5})

	assert.Assert(t, near(v.Real, 1), "real: %v", v.Real)
	assert.Assert(t, near(v.Imaginary, 0), "imaginary: %v", v.Imaginary)
	assert.Assert(t, near(v.Offset, 0), "offset: %v", v.Offset)
}

func TestABCToABGZeroSequence(t *testing.T) {
	v := ABCToABG(TimeDomain{A: 3, B: 3, C: 3})

	assert.Assert(t, near(v.Real, 0))
	assert.Assert(t, near(v.Imaginary, 0))
	assert.Assert(t, near(v.Offset, 3))
}

func TestABCRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(10))
	for i := 0; i < 1000; i++ {
		p := randTimeDomain(r)
		q := ABGToABC(ABCToABG(p))
		assert.Assert(t, math.Abs(p.A-q.A) < 1e-9*400, "A: %v != %v", p.A, q.A)
		assert.Assert(t, math.Abs(p.B-q.B) < 1e-9*400, "B: %v != %v", p.B, q.B)
		assert.Assert(t, math.Abs(p.C-q.C) < 1e-9*400, "C: %v != %v", p.C, q.C)
	}
}

func TestDQ0RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		v := ABCToABG(randTimeDomain(r))
		theta := 4 * math.Pi * (r.Float64() - 0.5)
		w := DQ0ToABG(ABGToDQ0(v, theta), theta)
		assert.Assert(t, math.Abs(v.Real-w.Real) < 1e-9*400)
		assert.Assert(t, math.Abs(v.Imaginary-w.Imaginary) < 1e-9*400)
		assert.Equal(t, v.Offset, w.Offset)
	}
}

func TestABCDQ0Composition(t *testing.T) {
	r := rand.New(rand.NewSource(12))
	p := randTimeDomain(r)
	theta := 0.7

	assert.Equal(t, ABCToDQ0(p, theta), ABGToDQ0(ABCToABG(p), theta))
	q := DQ0ToABC(ABCToDQ0(p, theta), theta)
	assert.Assert(t, math.Abs(p.A-q.A) < 1e-6)
	assert.Assert(t, math.Abs(p.B-q.B) < 1e-6)
	assert.Assert(t, math.Abs(p.C-q.C) < 1e-6)
}

func TestBalancedSetIsConstantInDQ(t *testing.T) {
	for _, wt := range []float64{0, 0.3, 1.9, -2.5, math.Pi} {
		p := TimeDomain{
			A: math.Cos(wt),
			B: math.Cos(wt - 2*math.Pi/3),
			C: math.Cos(wt + 2*math.Pi/3),
		}
		dq := ABCToDQ0(p, wt)
		assert.Assert(t, math.Abs(dq.Real-1) < 1e-12, "d at %v: %v", wt, dq.Real)
		assert.Assert(t, math.Abs(dq.Imaginary) < 1e-12, "q at %v: %v", wt, dq.Imaginary)
		assert.Assert(t, math.Abs(Q(ABCToABG(p), wt)-dq.Imaginary) < 1e-15)
	}
}
