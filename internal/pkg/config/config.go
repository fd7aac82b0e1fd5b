// Package config loads the simulator configuration from a YAML (or JSON) file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ohowland/cgc_control/internal/lib/asset/grid/virtualgrid"
	"github.com/ohowland/cgc_control/internal/lib/asset/line/virtualline"
	"github.com/ohowland/cgc_control/internal/lib/asset/pv/virtualpv"
	"github.com/ohowland/cgc_control/internal/pkg/controller"
	"github.com/ohowland/cgc_control/internal/pkg/pll"
	"github.com/ohowland/cgc_control/internal/pkg/sensor"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Scenario names.
const (
	ScenarioPLL     = "pll"
	ScenarioMPPT    = "mppt"
	ScenarioCurrent = "current"
)

// PLL kinds.
const (
	PLLDQ    = "dq"
	PLLSOGI  = "sogi"
	PLLDSOGI = "dsogi"
)

// Current loop modes.
const (
	CurrentPR = "pr"
	CurrentDQ = "dq"
)

// Config is the root of the configuration document.
type Config struct {
	Ts       float64            `yaml:"Ts"`
	Scenario string             `yaml:"Scenario"`
	PLL      PLL                `yaml:"PLL"`
	DSRF     DSRF               `yaml:"DSRF"`
	Grid     virtualgrid.Config `yaml:"Grid"`
	PV       virtualpv.Config   `yaml:"PV"`
	MPPT     MPPT               `yaml:"MPPT"`
	Current  Current            `yaml:"Current"`
	Sensor   Sensor             `yaml:"Sensor"`
}

// PLL selects and tunes the phase-locked loop. Frequency is the nominal grid frequency in Hz.
type PLL struct {
	Kind      string  `yaml:"Kind"`
	Kp        float64 `yaml:"Kp"`
	Ki        float64 `yaml:"Ki"`
	SOGIGain  float64 `yaml:"SOGIGain"`
	Frequency float64 `yaml:"Frequency"`
}

// Core returns the PLL parameters for sample period ts.
func (p PLL) Core(ts float64) pll.Config {
	return pll.Config{
		Kp:       p.Kp,
		Ki:       p.Ki,
		SOGIGain: p.SOGIGain,
		Omega0:   2 * math.Pi * p.Frequency,
		Ts:       ts,
	}
}

// DSRF cutoff of the decoupling filters in Hz.
type DSRF struct {
	Cutoff float64 `yaml:"Cutoff"`
}

// MPPT tunes the tracker. It runs once every Decimation ticks.
type MPPT struct {
	Step           float64         `yaml:"Step"`
	RefInit        float64         `yaml:"RefInit"`
	LimUp          float64         `yaml:"LimUp"`
	LimLow         float64         `yaml:"LimLow"`
	IIR            float64         `yaml:"IIR"`
	Decimation     int             `yaml:"Decimation"`
	IrradianceStep *IrradianceStep `yaml:"IrradianceStep,omitempty"`
}

// IrradianceStep changes the PV irradiance (W/m^2) at Time (s).
type IrradianceStep struct {
	Time       float64 `yaml:"Time"`
	Irradiance float64 `yaml:"Irradiance"`
}

// Core returns the tracker parameters.
func (m MPPT) Core() controller.MPPTConfig {
	return controller.MPPTConfig{
		Step:    m.Step,
		RefInit: m.RefInit,
		LimUp:   m.LimUp,
		LimLow:  m.LimLow,
		IIR:     m.IIR,
	}
}

// Current configures the grid current loop. Reference is the peak current in
// phase with the grid voltage, requested from StartTime on.
type Current struct {
	Mode      string             `yaml:"Mode"`
	Reference float64            `yaml:"Reference"`
	StartTime float64            `yaml:"StartTime"`
	PR        PR                 `yaml:"PR"`
	PI        PI                 `yaml:"PI"`
	Line      virtualline.Config `yaml:"Line"`
}

// PR gains of the stationary-frame loop. Damping is the resonance bandwidth in Hz.
type PR struct {
	Kp      float64 `yaml:"Kp"`
	Ki      float64 `yaml:"Ki"`
	Damping float64 `yaml:"Damping"`
}

// Core returns the PR parameters resonating at the nominal frequency f0.
func (p PR) Core(f0, ts float64) controller.PRConfig {
	return controller.PRConfig{
		Kp:    p.Kp,
		Ki:    p.Ki,
		Wres:  2 * math.Pi * f0,
		Wdamp: 2 * math.Pi * p.Damping,
		Ts:    ts,
	}
}

// PI gains of the synchronous-frame loop, Limit bounds each axis voltage.
type PI struct {
	Kp    float64 `yaml:"Kp"`
	Ki    float64 `yaml:"Ki"`
	Limit float64 `yaml:"Limit"`
}

// Core returns the parameters of one axis controller.
func (p PI) Core(ts float64) controller.PIDConfig {
	return controller.PIDConfig{
		Mode:   controller.ModePI,
		Kp:     p.Kp,
		Ki:     p.Ki,
		LimUp:  p.Limit,
		LimLow: -p.Limit,
		Ts:     ts,
		N:      10,
	}
}

// Sensor names the voltage and current front ends. Empty names measure ideally.
type Sensor struct {
	Voltage string `yaml:"Voltage"`
	Current string `yaml:"Current"`
}

// Gains returns the voltage and current gains, zero for an ideal measurement.
func (s Sensor) Gains() (float64, float64, error) {
	gain := func(name string) (float64, error) {
		if name == "" {
			return 0, nil
		}
		return sensor.Lookup(name)
	}
	v, err := gain(s.Voltage)
	if err != nil {
		return 0, 0, err
	}
	i, err := gain(s.Current)
	if err != nil {
		return 0, 0, err
	}
	return v, i, nil
}

// Default returns a configuration that runs every scenario.
func Default() Config {
	return Config{
		Ts:       1e-4,
		Scenario: ScenarioPLL,
		PLL:      PLL{Kind: PLLDSOGI, Kp: 100, Ki: 0.5, SOGIGain: 1, Frequency: 50},
		DSRF:     DSRF{Cutoff: 20},
		Grid:     virtualgrid.Config{Voltage: 325, Frequency: 50},
		PV: virtualpv.Config{
			Isc:         9,
			Voc:         45,
			Cells:       72,
			Ideality:    1.3,
			Temperature: 25,
			Irradiance:  1000,
		},
		MPPT: MPPT{Step: 0.02, RefInit: 1, LimUp: 9, LimLow: 0, IIR: 1, Decimation: 10},
		Current: Current{
			Mode:      CurrentPR,
			Reference: 10,
			StartTime: 0.02,
			PR:        PR{Kp: 10, Ki: 200, Damping: 2},
			PI:        PI{Kp: 10, Ki: 0.05, Limit: 200},
			Line:      virtualline.Config{R: 0.1, L: 5e-3, Trip: 50},
		},
		Sensor: Sensor{Voltage: "LV100-500", Current: "LA55"},
	}
}

// Load reads the file at path over the defaults and validates the result.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes a document over the defaults and validates the result.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting. Gains and limits are
// checked again when the components are built.
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	if !(c.Ts > 0) || math.IsInf(c.Ts, 0) {
		return invalid("Ts must be > 0")
	}
	switch c.Scenario {
	case ScenarioPLL, ScenarioMPPT, ScenarioCurrent:
	default:
		return invalid("unknown Scenario %q", c.Scenario)
	}
	switch c.PLL.Kind {
	case PLLDQ, PLLSOGI, PLLDSOGI:
	default:
		return invalid("unknown PLL.Kind %q", c.PLL.Kind)
	}
	if !(c.PLL.Frequency > 0) {
		return invalid("PLL.Frequency must be > 0")
	}
	if !(c.DSRF.Cutoff > 0) {
		return invalid("DSRF.Cutoff must be > 0")
	}
	if c.MPPT.Decimation < 1 {
		return invalid("MPPT.Decimation must be >= 1")
	}
	if s := c.MPPT.IrradianceStep; s != nil && (s.Time < 0 || s.Irradiance < 0) {
		return invalid("MPPT.IrradianceStep must not be negative")
	}
	switch c.Current.Mode {
	case CurrentPR, CurrentDQ:
	default:
		return invalid("unknown Current.Mode %q", c.Current.Mode)
	}
	if c.Current.Reference < 0 || c.Current.StartTime < 0 {
		return invalid("Current.Reference and Current.StartTime must not be negative")
	}
	if _, _, err := c.Sensor.Gains(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
