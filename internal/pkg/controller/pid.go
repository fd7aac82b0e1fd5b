package controller

import (
	"fmt"
	"strings"
)

// Mode selects which terms of the PID law are evaluated.
type Mode int

// Controller laws sharing the PID state.
const (
	ModePID Mode = iota
	ModePI
	ModeI
	ModeP
)

func (m Mode) String() string {
	switch m {
	case ModePID:
		return "pid"
	case ModePI:
		return "pi"
	case ModeI:
		return "i"
	case ModeP:
		return "p"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "pid":
		return ModePID, nil
	case "pi":
		return ModePI, nil
	case "i":
		return ModeI, nil
	case "p":
		return ModeP, nil
	}
	return 0, fmt.Errorf("%w: unknown controller mode %q", ErrParameter, s)
}

// PIDConfig holds the parameters of a PID controller.
// N is the filtering factor of the derivative term, 10 is a typical value.
type PIDConfig struct {
	Mode   Mode
	Kp     float64
	Ki     float64
	Td     float64
	LimUp  float64
	LimLow float64
	Ts     float64
	N      float64
}

// PID is a discrete controller in mixed structure: u = kp*(e + ui + ud).
// The same state serves the PI, I and P laws selected by Mode.
type PID struct {
	mode          Mode
	kp, ki        float64
	limUp, limLow float64
	n             float64
	b             float64 // td/(td + N*Ts)
	uiPrev        float64
	udPrev        float64
	ePrev         float64
}

// NewPID validates the configuration and returns a PID with zeroed state.
func NewPID(cfg PIDConfig) (*PID, error) {
	if err := checkSamplePeriod(cfg.Ts); err != nil {
		return nil, err
	}
	if err := checkLimits(cfg.LimUp, cfg.LimLow); err != nil {
		return nil, err
	}
	for name, v := range map[string]float64{"kp": cfg.Kp, "ki": cfg.Ki, "td": cfg.Td, "N": cfg.N} {
		if err := checkFinite(name, v); err != nil {
			return nil, err
		}
	}
	if cfg.Td < 0 || cfg.N < 0 {
		return nil, fmt.Errorf("%w: td = %v, N = %v must not be negative", ErrParameter, cfg.Td, cfg.N)
	}

	switch cfg.Mode {
	case ModePID, ModePI:
		// anti-windup back-solves through 1/kp
		if cfg.Kp == 0 {
			return nil, fmt.Errorf("%w: kp must be nonzero for %v", ErrGain, cfg.Mode)
		}
	case ModeI, ModeP:
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrParameter, int(cfg.Mode))
	}

	var b float64
	if cfg.Td > 0 {
		b = cfg.Td / (cfg.Td + cfg.N*cfg.Ts)
	}

	return &PID{
		mode:   cfg.Mode,
		kp:     cfg.Kp,
		ki:     cfg.Ki,
		limUp:  cfg.LimUp,
		limLow: cfg.LimLow,
		n:      cfg.N,
		b:      b,
	}, nil
}

// Mode returns the law evaluated by Run.
func (c *PID) Mode() Mode {
	return c.mode
}

// Integral returns the stored integral state.
func (c *PID) Integral() float64 {
	return c.uiPrev
}

// Reset zeroes the state quantities.
func (c *PID) Reset() {
	c.uiPrev = 0
	c.udPrev = 0
	c.ePrev = 0
}

// Run evaluates the controller for error = setpoint - measurement.
// When enabled is false the integral is cleared after the output is computed.
func (c *PID) Run(e float64, enabled bool) float64 {
	switch c.mode {
	case ModePI:
		return c.runPI(e, enabled)
	case ModeI:
		return c.runI(e, enabled)
	case ModeP:
		return c.runP(e)
	}
	return c.runPID(e, enabled)
}

func (c *PID) runPID(e float64, enabled bool) float64 {
	ui := c.uiPrev + c.ki*e
	ud := c.b * (c.udPrev + c.n*(e-c.ePrev))

	u := c.kp * (e + ui + ud)

	// anti-reset windup
	if u > c.limUp {
		c.uiPrev = c.limUp/c.kp - e - ud
		u = c.limUp
	} else if u < c.limLow {
		c.uiPrev = c.limLow/c.kp - e - ud
		u = c.limLow
	} else {
		c.uiPrev = ui
	}

	c.udPrev = ud
	c.ePrev = e

	if !enabled {
		c.uiPrev = 0
	}
	return u
}

func (c *PID) runPI(e float64, enabled bool) float64 {
	ui := c.uiPrev + c.ki/c.kp*e

	u := c.kp * (e + ui)

	if u > c.limUp {
		c.uiPrev = c.limUp/c.kp - e
		u = c.limUp
	} else if u < c.limLow {
		c.uiPrev = c.limLow/c.kp - e
		u = c.limLow
	} else {
		c.uiPrev = ui
	}

	if !enabled {
		c.uiPrev = 0
	}
	return u
}

func (c *PID) runI(e float64, enabled bool) float64 {
	ui := c.uiPrev + c.ki*e

	if ui > c.limUp {
		ui = c.limUp
	} else if ui < c.limLow {
		ui = c.limLow
	}
	c.uiPrev = ui

	if !enabled {
		c.uiPrev = 0
	}
	return ui
}

func (c *PID) runP(e float64) float64 {
	u := c.kp * e
	if u > c.limUp {
		return c.limUp
	} else if u < c.limLow {
		return c.limLow
	}
	return u
}
