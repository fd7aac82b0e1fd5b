package controller

import "fmt"

// PRConfig holds the parameters of a proportional-resonant controller with one
// resonant term Gr(s) = 2*ki*wdamp*s / (s^2 + 2*wdamp*s + wres^2).
// Wres and Wdamp are in rad/s.
type PRConfig struct {
	Kp    float64
	Ki    float64
	Wres  float64
	Wdamp float64
	Ts    float64
}

// PR is a proportional-resonant controller. The resonant term is the bilinear
// (Tustin) discretisation of Gr(s), see Teodorescu et al., IEE Proc. EPA 153(5), 2006.
type PR struct {
	kp                 float64
	a1, a2, b0, b1, b2 float64
	uiPrev, uiPrev2    float64
	ePrev, ePrev2      float64
}

// NewPR precomputes the biquad coefficients and returns a PR with zeroed state.
func NewPR(cfg PRConfig) (*PR, error) {
	if err := checkSamplePeriod(cfg.Ts); err != nil {
		return nil, err
	}
	for name, v := range map[string]float64{"kp": cfg.Kp, "ki": cfg.Ki, "wres": cfg.Wres, "wdamp": cfg.Wdamp} {
		if err := checkFinite(name, v); err != nil {
			return nil, err
		}
	}
	if cfg.Wres < 0 || cfg.Wdamp < 0 {
		return nil, fmt.Errorf("%w: wres = %v, wdamp = %v must not be negative", ErrParameter, cfg.Wres, cfg.Wdamp)
	}

	kt := 2 / cfg.Ts
	a1 := 2 * cfg.Ki * kt * cfg.Wdamp
	wr2 := cfg.Wres * cfg.Wres

	return &PR{
		kp: cfg.Kp,
		a1: a1,
		a2: a1,
		b0: kt*kt + 2*kt*cfg.Wdamp + wr2,
		b1: 2*kt*kt - 2*wr2,
		b2: kt*kt - 2*kt*cfg.Wdamp + wr2,
	}, nil
}

// Integrals returns the k-1 and k-2 samples of the resonant term.
func (c *PR) Integrals() (float64, float64) {
	return c.uiPrev, c.uiPrev2
}

// Reset zeroes the state quantities.
func (c *PR) Reset() {
	c.uiPrev, c.uiPrev2 = 0, 0
	c.ePrev, c.ePrev2 = 0, 0
}

// Run evaluates kp*e plus the resonant term. The output is not saturated.
// When enabled is false both resonant history samples are cleared.
func (c *PR) Run(e float64, enabled bool) float64 {
	ua := c.a1*e - c.a2*c.ePrev2
	ui := (ua + c.b1*c.uiPrev - c.b2*c.uiPrev2) / c.b0

	c.uiPrev2 = c.uiPrev
	c.uiPrev = ui

	c.ePrev2 = c.ePrev
	c.ePrev = e

	if !enabled {
		c.uiPrev = 0
		c.uiPrev2 = 0
	}

	return c.kp*e + ui
}
