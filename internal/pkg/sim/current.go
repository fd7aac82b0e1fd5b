package sim

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ohowland/cgc_control/internal/lib/asset/grid/virtualgrid"
	"github.com/ohowland/cgc_control/internal/lib/asset/line/virtualline"
	"github.com/ohowland/cgc_control/internal/pkg/config"
	"github.com/ohowland/cgc_control/internal/pkg/controller"
	"github.com/ohowland/cgc_control/internal/pkg/fae"
	"github.com/ohowland/cgc_control/internal/pkg/pll"
	"github.com/ohowland/cgc_control/internal/pkg/supervisor"
	"github.com/ohowland/cgc_control/internal/pkg/transform"
)

// readyBand is the frequency error (Hz) below which the PLL counts as locked.
const readyBand = 0.5

var currentColumns = []string{"time", "state", "enabled", "i_ref", "i", "error", "v_conv", "frequency"}

var stateCodes = map[string]float64{
	"STANDBY":   0,
	"STARTUP":   1,
	"NORMAL":    2,
	"SHUTDOWN":  3,
	"EMERGENCY": 4,
}

// currentScenario injects a sinusoidal current in phase with phase A of the
// grid through an R-L line. The PR variant regulates the current directly,
// the dq variant in the synchronous frame with the beta current supplied by
// a fictive-axis estimator of the same line.
type currentScenario struct {
	mode   string
	grid   *virtualgrid.VirtualGrid
	line   *virtualline.VirtualLine
	pll    *pll.SOGI1
	sup    *supervisor.Supervisor
	vm, im meter

	ref, start, f0 float64

	pr   *controller.PR
	d, q *controller.PID
	fae  *fae.Estimator
}

func newCurrentScenario(cfg config.Config, vm, im meter, log *zap.Logger) (*currentScenario, error) {
	grid, err := virtualgrid.New(cfg.Grid, log)
	if err != nil {
		return nil, err
	}
	line, err := virtualline.New(cfg.Current.Line, cfg.Ts, log)
	if err != nil {
		return nil, err
	}
	p, err := pll.NewSOGI1(cfg.PLL.Core(cfg.Ts))
	if err != nil {
		return nil, err
	}
	sup, err := supervisor.New(log)
	if err != nil {
		return nil, err
	}

	s := &currentScenario{
		mode:  cfg.Current.Mode,
		grid:  grid,
		line:  line,
		pll:   p,
		sup:   sup,
		vm:    vm,
		im:    im,
		ref:   cfg.Current.Reference,
		start: cfg.Current.StartTime,
		f0:    cfg.PLL.Frequency,
	}

	switch s.mode {
	case config.CurrentPR:
		if s.pr, err = controller.NewPR(cfg.Current.PR.Core(cfg.PLL.Frequency, cfg.Ts)); err != nil {
			return nil, err
		}
	case config.CurrentDQ:
		pi := cfg.Current.PI.Core(cfg.Ts)
		if s.d, err = controller.NewPID(pi); err != nil {
			return nil, err
		}
		if s.q, err = controller.NewPID(pi); err != nil {
			return nil, err
		}
		if s.fae, err = fae.New(cfg.Current.Line.R, cfg.Current.Line.L, cfg.Ts); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("sim: unknown current mode %q", s.mode)
	}
	return s, nil
}

func (s *currentScenario) Name() string {
	return "current/" + s.mode
}

func (s *currentScenario) Columns() []string {
	return currentColumns
}

func (s *currentScenario) Step(c Clock) Sample {
	vg := s.grid.Step(c.Ts).A
	vm := s.vm.read(vg)
	theta, _ := s.pll.Run(vm / s.grid.Voltage())

	out := s.sup.Run(supervisor.Input{
		RunRequest: c.Time() >= s.start,
		Fault:      s.line.Tripped(),
		Ready:      math.Abs(s.pll.Frequency()-s.f0) < readyBand,
	})

	i := s.im.read(s.line.Current())
	iref := s.ref * math.Cos(theta)
	e := iref - i

	var u float64
	switch s.mode {
	case config.CurrentPR:
		u = s.pr.Run(e, out.Enabled)
	case config.CurrentDQ:
		idq := transform.ABGToDQ0(transform.SpaceVector{Real: i, Imaginary: s.fae.State()}, theta)
		udq := transform.SpaceVector{
			Real:      s.d.Run(s.ref-idq.Real, out.Enabled),
			Imaginary: s.q.Run(-idq.Imaginary, out.Enabled),
		}
		uab := transform.DQ0ToABG(udq, theta)
		u = uab.Real
		// the beta drop across the fictive line is the controller output alone
		if out.Enabled {
			s.fae.Run(uab.Imaginary)
		} else {
			s.fae.Run(0)
		}
	}

	vconv := vm
	var enabled float64
	if out.Enabled {
		vconv += u
		enabled = 1
	}
	s.line.Step(vconv, vg)

	return Sample{c.Time(), stateCodes[out.State], enabled, iref, i, e, vconv, s.pll.Frequency()}
}
