package pll

import (
	"fmt"

	"github.com/ohowland/cgc_control/internal/pkg/sogi"
	"github.com/ohowland/cgc_control/internal/pkg/transform"
)

// DSOGI3 is a three-phase PLL with one SOGI per stationary axis. The cross sum
// of the filter outputs cancels the negative sequence before the loop sees it.
type DSOGI3 struct {
	loop
	alpha *sogi.SOGI3
	beta  *sogi.SOGI3
	pos   transform.SpaceVector
}

// NewDSOGI3 returns a three-phase PLL starting at theta = 0, omega = omega0.
func NewDSOGI3(cfg Config) (*DSOGI3, error) {
	l, err := newLoop(cfg)
	if err != nil {
		return nil, err
	}
	a, err := sogi.New(cfg.SOGIGain, cfg.Omega0, cfg.Ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	b, err := sogi.New(cfg.SOGIGain, cfg.Omega0, cfg.Ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &DSOGI3{loop: l, alpha: a, beta: b}, nil
}

// Run feeds the stationary-frame voltage and returns the new phase angle.
func (p *DSOGI3) Run(vabg transform.SpaceVector) float64 {
	a := p.alpha.Run(vabg.Real)
	b := p.beta.Run(vabg.Imaginary)

	p.pos = transform.SpaceVector{
		Real:      a.Real - b.Imaginary,
		Imaginary: a.Imaginary + b.Real,
	}

	theta := p.update(transform.Q(p.pos, p.theta))
	p.alpha.SetOmega(p.omega)
	p.beta.SetOmega(p.omega)
	return theta
}

// PositiveSequence returns the cross-summed filter output of the last Run.
// Its magnitude is twice the positive-sequence amplitude.
func (p *DSOGI3) PositiveSequence() transform.SpaceVector {
	return p.pos
}

// Reset restores the initial angle, frequency, controller and filter states.
func (p *DSOGI3) Reset() {
	p.reset()
	p.pos = transform.SpaceVector{}
	for _, s := range []*sogi.SOGI3{p.alpha, p.beta} {
		s.Reset()
		s.SetOmega(p.omega0)
	}
}
