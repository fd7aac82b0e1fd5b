package controller

import (
	"errors"
	"math"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

func newPID(t *testing.T, mode Mode) *PID {
	c, err := NewPID(PIDConfig{
		Mode:   mode,
		Kp:     2,
		Ki:     0.5,
		Td:     0.01,
		LimUp:  1,
		LimLow: -1,
		Ts:     1e-3,
		N:      10,
	})
	assert.NilError(t, err)
	return c
}

func TestNewPIDRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  PIDConfig
		want error
	}{
		{"limits", PIDConfig{Kp: 1, LimUp: -1, LimLow: 1, Ts: 1e-4}, ErrLimits},
		{"zero ts", PIDConfig{Kp: 1, LimUp: 1, LimLow: -1}, ErrSamplePeriod},
		{"negative ts", PIDConfig{Kp: 1, LimUp: 1, LimLow: -1, Ts: -1}, ErrSamplePeriod},
		{"infinite ts", PIDConfig{Kp: 1, LimUp: 1, LimLow: -1, Ts: math.Inf(1)}, ErrSamplePeriod},
		{"zero kp pi", PIDConfig{Mode: ModePI, LimUp: 1, LimLow: -1, Ts: 1e-4}, ErrGain},
		{"zero kp pid", PIDConfig{Mode: ModePID, LimUp: 1, LimLow: -1, Ts: 1e-4}, ErrGain},
		{"negative td", PIDConfig{Kp: 1, Td: -1, LimUp: 1, LimLow: -1, Ts: 1e-4}, ErrParameter},
		{"nan ki", PIDConfig{Kp: 1, Ki: math.NaN(), LimUp: 1, LimLow: -1, Ts: 1e-4}, ErrParameter},
		{"mode", PIDConfig{Mode: Mode(9), Kp: 1, LimUp: 1, LimLow: -1, Ts: 1e-4}, ErrParameter},
	}
	for _, c := range cases {
		_, err := NewPID(c.cfg)
		assert.Assert(t, errors.Is(err, c.want), "%s: got %v", c.name, err)
	}
}

func TestNewPIDAllowsZeroKpForI(t *testing.T) {
	c, err := NewPID(PIDConfig{Mode: ModeI, Ki: 0.1, LimUp: 1, LimLow: -1, Ts: 1e-4})
	assert.NilError(t, err)
	assert.Equal(t, c.Run(1, true), 0.1)
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModePID, ModePI, ModeI, ModeP} {
		got, err := ParseMode(m.String())
		assert.NilError(t, err)
		assert.Equal(t, got, m)
	}
	_, err := ParseMode("pd")
	assert.Assert(t, cmp.ErrorContains(err, "unknown controller mode"))
}

func TestPIDUnsaturated(t *testing.T) {
	c := newPID(t, ModePID)
	b := 0.01 / (0.01 + 10*1e-3)

	u := c.Run(0.01, true)
	ui := 0.5 * 0.01
	ud := b * 10 * 0.01
	assert.Assert(t, math.Abs(u-2*(0.01+ui+ud)) < 1e-12, "u = %v", u)
	assert.Assert(t, math.Abs(c.Integral()-ui) < 1e-12)

	u = c.Run(0.01, true)
	ui += 0.5 * 0.01
	ud = b * ud
	assert.Assert(t, math.Abs(u-2*(0.01+ui+ud)) < 1e-12, "u = %v", u)
}

// A step in the error kicks the derivative term, which can swing the PID
// output to the opposite limit for a few ticks before it settles.
func TestAntiWindupBounded(t *testing.T) {
	for _, mode := range []Mode{ModePID, ModePI, ModeI} {
		c := newPID(t, mode)
		for _, step := range []struct{ e, limit float64 }{{10, 1}, {-10, -1}, {10, 1}} {
			for i := 0; i < 2000; i++ {
				u := c.Run(step.e, true)
				if mode != ModePID || i >= 100 {
					assert.Equal(t, u, step.limit, "%v e=%v tick %d", mode, step.e, i)
				}
				assert.Assert(t, math.Abs(c.Integral()) < 200, "%v integral diverged: %v", mode, c.Integral())
			}
			last := c.Integral()
			c.Run(step.e, true)
			assert.Assert(t, math.Abs(c.Integral()-last) < 1e-9, "%v integral still moving", mode)
		}
	}
}

func TestAntiWindupBackSolve(t *testing.T) {
	c := newPID(t, ModePI)
	c.Run(10, true)
	// kp*(e + ui) would have been exactly the limit
	assert.Assert(t, math.Abs(2*(10+c.Integral())-1) < 1e-12)
}

func TestDisableResetsIntegral(t *testing.T) {
	for _, mode := range []Mode{ModePID, ModePI, ModeI} {
		c := newPID(t, mode)
		for i := 0; i < 50; i++ {
			c.Run(0.01, true)
		}
		assert.Assert(t, c.Integral() != 0, "%v", mode)

		c.Run(0.01, false)
		assert.Equal(t, c.Integral(), 0.0, "%v", mode)
	}
}

func TestDisableStillReturnsOutput(t *testing.T) {
	c := newPID(t, ModePI)
	u := c.Run(0.2, false)
	assert.Assert(t, math.Abs(u-2*(0.2+0.5/2*0.2)) < 1e-12)
	assert.Equal(t, c.Integral(), 0.0)
}

func TestPController(t *testing.T) {
	c := newPID(t, ModeP)
	assert.Equal(t, c.Run(0.25, true), 0.5)
	assert.Equal(t, c.Run(3, true), 1.0)
	assert.Equal(t, c.Run(-3, false), -1.0)
	assert.Equal(t, c.Integral(), 0.0)
}

func TestPIDReset(t *testing.T) {
	c := newPID(t, ModePID)
	first := c.Run(0.1, true)
	c.Run(0.3, true)
	c.Reset()
	assert.Equal(t, c.Run(0.1, true), first)
}
