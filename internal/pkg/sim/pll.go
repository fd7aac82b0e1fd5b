package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ohowland/cgc_control/internal/lib/asset/grid/virtualgrid"
	"github.com/ohowland/cgc_control/internal/pkg/analysis"
	"github.com/ohowland/cgc_control/internal/pkg/config"
	"github.com/ohowland/cgc_control/internal/pkg/pll"
	"github.com/ohowland/cgc_control/internal/pkg/sequence"
	"github.com/ohowland/cgc_control/internal/pkg/transform"
)

// angleEstimator adapts the PLL variants to per-unit three-phase input.
type angleEstimator interface {
	estimate(v transform.TimeDomain) float64
	Theta() float64
	Frequency() float64
}

type dqEstimator struct{ *pll.DQ }

func (e dqEstimator) estimate(v transform.TimeDomain) float64 {
	return e.Run(transform.ABCToDQ0(v, e.Theta()))
}

// sogiEstimator only sees phase A.
type sogiEstimator struct{ *pll.SOGI1 }

func (e sogiEstimator) estimate(v transform.TimeDomain) float64 {
	theta, _ := e.Run(v.A)
	return theta
}

type dsogiEstimator struct{ *pll.DSOGI3 }

func (e dsogiEstimator) estimate(v transform.TimeDomain) float64 {
	return e.Run(transform.ABCToABG(v))
}

func newAngleEstimator(cfg config.PLL, ts float64) (angleEstimator, error) {
	core := cfg.Core(ts)
	switch cfg.Kind {
	case config.PLLDQ:
		p, err := pll.NewDQ(core)
		return dqEstimator{p}, err
	case config.PLLSOGI:
		p, err := pll.NewSOGI1(core)
		return sogiEstimator{p}, err
	case config.PLLDSOGI:
		p, err := pll.NewDSOGI3(core)
		return dsogiEstimator{p}, err
	}
	return nil, fmt.Errorf("sim: unknown PLL kind %q", cfg.Kind)
}

var pllColumns = []string{"time", "theta", "truth", "phase_error", "frequency", "pos_d", "pos_q", "neg_d", "neg_q"}

// pllScenario tracks the virtual grid with one PLL and decomposes the
// measured voltage into sequences on the estimated angle.
type pllScenario struct {
	kind string
	grid *virtualgrid.VirtualGrid
	vm   meter
	est  angleEstimator
	dsrf *sequence.DSRF
}

func newPLLScenario(cfg config.Config, vm meter, log *zap.Logger) (*pllScenario, error) {
	grid, err := virtualgrid.New(cfg.Grid, log)
	if err != nil {
		return nil, err
	}
	est, err := newAngleEstimator(cfg.PLL, cfg.Ts)
	if err != nil {
		return nil, err
	}
	dsrf, err := sequence.New(cfg.DSRF.Cutoff, cfg.Ts)
	if err != nil {
		return nil, err
	}
	return &pllScenario{
		kind: cfg.PLL.Kind,
		grid: grid,
		vm:   vm,
		est:  est,
		dsrf: dsrf,
	}, nil
}

func (s *pllScenario) Name() string {
	return "pll/" + s.kind
}

func (s *pllScenario) Columns() []string {
	return pllColumns
}

func (s *pllScenario) Step(c Clock) Sample {
	v := s.grid.Step(c.Ts)
	truth := s.grid.Angle()

	m := s.vm.readABC(v)
	vpu := 1 / s.grid.Voltage()
	m = transform.TimeDomain{A: m.A * vpu, B: m.B * vpu, C: m.C * vpu}

	// decompose with the angle estimated for this sample
	s.dsrf.Run(m, s.est.Theta())
	theta := s.est.estimate(m)
	pos, neg := s.dsrf.Pos(), s.dsrf.Neg()

	return Sample{
		c.Time(),
		theta,
		truth,
		analysis.PhaseError(theta, truth+s.grid.Omega()*c.Ts),
		s.est.Frequency(),
		pos.Real, pos.Imaginary,
		neg.Real, neg.Imaginary,
	}
}
