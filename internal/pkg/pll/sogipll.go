package pll

import (
	"fmt"

	"github.com/ohowland/cgc_control/internal/pkg/sogi"
	"github.com/ohowland/cgc_control/internal/pkg/transform"
)

// SOGI1 is a single-phase PLL. A SOGI synthesizes the missing orthogonal axis
// of the measured voltage and is retuned to the estimated frequency every tick.
type SOGI1 struct {
	loop
	sogi *sogi.SOGI3
}

// NewSOGI1 returns a single-phase PLL starting at theta = 0, omega = omega0.
func NewSOGI1(cfg Config) (*SOGI1, error) {
	l, err := newLoop(cfg)
	if err != nil {
		return nil, err
	}
	s, err := sogi.New(cfg.SOGIGain, cfg.Omega0, cfg.Ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &SOGI1{loop: l, sogi: s}, nil
}

// Run feeds the unfiltered voltage v and returns the new phase angle together
// with the filtered stationary-frame voltage (Real in phase with v, Imaginary lagging).
func (p *SOGI1) Run(v float64) (float64, transform.SpaceVector) {
	vabg := p.sogi.Run(v)
	theta := p.update(transform.Q(vabg, p.theta))
	p.sogi.SetOmega(p.omega)
	return theta, vabg
}

// Reset restores the initial angle, frequency, controller and filter state.
func (p *SOGI1) Reset() {
	p.reset()
	p.sogi.Reset()
	p.sogi.SetOmega(p.omega0)
}
