package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ohowland/cgc_control/internal/pkg/config"
)

// Build returns the scenario selected by cfg.Scenario.
func Build(cfg config.Config, log *zap.Logger) (Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vg, ig, err := cfg.Sensor.Gains()
	if err != nil {
		return nil, err
	}
	vm, im := meter{gain: vg}, meter{gain: ig}

	var s Scenario
	switch cfg.Scenario {
	case config.ScenarioPLL:
		s, err = newPLLScenario(cfg, vm, log)
	case config.ScenarioMPPT:
		s, err = newMPPTScenario(cfg, vm, im, log)
	case config.ScenarioCurrent:
		s, err = newCurrentScenario(cfg, vm, im, log)
	default:
		return nil, fmt.Errorf("sim: unknown scenario %q", cfg.Scenario)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
