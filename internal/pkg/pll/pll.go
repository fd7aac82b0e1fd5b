// Package pll implements phase-locked loops estimating the phase angle and
// angular frequency of a grid voltage. All variants drive the quadrature-axis
// voltage to zero with the same PI law and integrate the frequency into an
// angle wrapped to (-pi, pi].
package pll

import (
	"errors"
	"fmt"
	"math"

	"github.com/ohowland/cgc_control/internal/pkg/controller"
)

// ErrWrap is returned when the frequency range allowed by the PI limits could
// advance the angle by pi or more in one tick, which the single wrap cannot handle.
var ErrWrap = errors.New("pll: angle step per sample too large to wrap")

// ErrConfig is returned for invalid PLL parameters.
var ErrConfig = errors.New("pll: invalid configuration")

const (
	twoPi = 2 * math.Pi

	// the PI output is limited to +/- omegaSpan*omega0
	omegaSpan = 0.1

	derivativeFilter = 10
)

// Config holds the parameters shared by all PLL variants.
// Ki is the per-sample integral gain of the PI (the continuous gain times Ts).
// SOGIGain is ignored by the DQ variant.
type Config struct {
	Kp       float64
	Ki       float64
	SOGIGain float64
	Omega0   float64
	Ts       float64
}

// loop is the controller/integrator/wrap update common to every variant.
type loop struct {
	theta  float64
	omega  float64
	omega0 float64
	ts     float64
	reg    *controller.PID
}

func newLoop(cfg Config) (loop, error) {
	if !(cfg.Omega0 > 0) || math.IsInf(cfg.Omega0, 0) {
		return loop{}, fmt.Errorf("%w: nominal angular frequency %v", ErrConfig, cfg.Omega0)
	}
	reg, err := controller.NewPID(controller.PIDConfig{
		Mode:   controller.ModePI,
		Kp:     cfg.Kp,
		Ki:     cfg.Ki,
		LimUp:  omegaSpan * cfg.Omega0,
		LimLow: -omegaSpan * cfg.Omega0,
		Ts:     cfg.Ts,
		N:      derivativeFilter,
	})
	if err != nil {
		return loop{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if maxStep := (1 + omegaSpan) * cfg.Omega0 * cfg.Ts; maxStep >= math.Pi {
		return loop{}, fmt.Errorf("%w: %.3f rad", ErrWrap, maxStep)
	}
	return loop{
		omega:  cfg.Omega0,
		omega0: cfg.Omega0,
		ts:     cfg.Ts,
		reg:    reg,
	}, nil
}

// update closes the loop on the quadrature error q and returns the new angle.
// The integral is never reset: the PLL keeps tracking while outputs are inhibited.
func (l *loop) update(q float64) float64 {
	l.omega = l.omega0 + l.reg.Run(q, true)
	l.theta = wrap(l.theta + l.omega*l.ts)
	return l.theta
}

func (l *loop) reset() {
	l.theta = 0
	l.omega = l.omega0
	l.reg.Reset()
}

// wrap brings an angle that left (-pi, pi] by less than 2*pi back into range.
func wrap(theta float64) float64 {
	if theta > math.Pi {
		return theta - twoPi
	} else if theta <= -math.Pi {
		return theta + twoPi
	}
	return theta
}

// Theta returns the estimated phase angle in (-pi, pi].
func (l *loop) Theta() float64 {
	return l.theta
}

// Omega returns the estimated angular frequency in rad/s.
func (l *loop) Omega() float64 {
	return l.omega
}

// Frequency returns the estimated frequency in Hz.
func (l *loop) Frequency() float64 {
	return l.omega / twoPi
}
