package sim

import (
	"go.uber.org/zap"

	"github.com/ohowland/cgc_control/internal/lib/asset/pv/virtualpv"
	"github.com/ohowland/cgc_control/internal/pkg/config"
	"github.com/ohowland/cgc_control/internal/pkg/controller"
)

var mpptColumns = []string{"time", "current", "voltage", "power", "mpp_power", "efficiency"}

// mpptScenario sets the PV current to the tracker reference, assuming an
// ideal inner current loop, and feeds back the measured current and power.
type mpptScenario struct {
	log        *zap.Logger
	pv         *virtualpv.VirtualPV
	tracker    *controller.MPPT
	vm, im     meter
	decimation int
	step       *config.IrradianceStep
	mpp        float64
}

func newMPPTScenario(cfg config.Config, vm, im meter, log *zap.Logger) (*mpptScenario, error) {
	pv, err := virtualpv.New(cfg.PV)
	if err != nil {
		return nil, err
	}
	tracker, err := controller.NewMPPT(cfg.MPPT.Core())
	if err != nil {
		return nil, err
	}
	s := &mpptScenario{
		log:        log.Named("mppt").With(zap.Stringer("pv", pv.PID())),
		pv:         pv,
		tracker:    tracker,
		vm:         vm,
		im:         im,
		decimation: cfg.MPPT.Decimation,
		step:       cfg.MPPT.IrradianceStep,
	}
	_, _, s.mpp = pv.MaxPowerPoint()
	return s, nil
}

func (s *mpptScenario) Name() string {
	return "mppt"
}

func (s *mpptScenario) Columns() []string {
	return mpptColumns
}

func (s *mpptScenario) Step(c Clock) Sample {
	if s.step != nil && c.Time() >= s.step.Time {
		if err := s.pv.SetIrradiance(s.step.Irradiance); err != nil {
			s.log.Error("irradiance step", zap.Error(err))
		}
		_, _, s.mpp = s.pv.MaxPowerPoint()
		s.log.Info("irradiance step",
			zap.Float64("time", c.Time()),
			zap.Float64("irradiance", s.step.Irradiance),
			zap.Float64("mpp", s.mpp))
		s.step = nil
	}

	i := s.tracker.Reference()
	v, p := s.pv.Power(i)
	if c.Tick%s.decimation == 0 {
		im := s.im.read(i)
		s.tracker.Run(im, im*s.vm.read(v))
	}

	var eff float64
	if s.mpp > 0 {
		eff = p / s.mpp
	}
	return Sample{c.Time(), i, v, p, s.mpp, eff}
}
