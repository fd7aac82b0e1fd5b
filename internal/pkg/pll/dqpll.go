package pll

import "github.com/ohowland/cgc_control/internal/pkg/transform"

// DQ is a PLL acting directly on a rotating-frame voltage computed upstream
// with the angle returned by the previous Run.
type DQ struct {
	loop
}

// NewDQ returns a DQ PLL starting at theta = 0, omega = omega0.
func NewDQ(cfg Config) (*DQ, error) {
	l, err := newLoop(cfg)
	if err != nil {
		return nil, err
	}
	return &DQ{loop: l}, nil
}

// Run drives vdq.Imaginary to zero and returns the new phase angle.
func (p *DQ) Run(vdq transform.SpaceVector) float64 {
	return p.update(vdq.Imaginary)
}

// Reset restores the initial angle, frequency and controller state.
func (p *DQ) Reset() {
	p.reset()
}
