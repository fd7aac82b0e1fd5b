// Package virtualgrid is a three-phase voltage source with configurable
// unbalance, harmonics and a frequency or phase step event.
package virtualgrid

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ohowland/cgc_control/internal/pkg/transform"
)

const twoThirdsPi = 2 * math.Pi / 3

// Config data structure for the VirtualGrid. Voltage is the peak phase
// voltage, Negative and Zero are per unit of Voltage.
type Config struct {
	Voltage   float64    `yaml:"Voltage"`
	Frequency float64    `yaml:"Frequency"`
	Phase     float64    `yaml:"Phase"`
	Negative  float64    `yaml:"Negative"`
	Zero      float64    `yaml:"Zero"`
	Harmonics []Harmonic `yaml:"Harmonics"`
	Event     *Event     `yaml:"Event,omitempty"`
}

// Harmonic of the positive-sequence angle, Magnitude per unit of Voltage.
// The sequence follows from the order (5th negative, 7th positive ...).
type Harmonic struct {
	Order     int     `yaml:"Order"`
	Magnitude float64 `yaml:"Magnitude"`
}

// Event changes the source at Time (s). A zero Frequency keeps the frequency.
type Event struct {
	Time      float64 `yaml:"Time"`
	Frequency float64 `yaml:"Frequency"`
	PhaseStep float64 `yaml:"PhaseStep"`
}

// VirtualGrid target
type VirtualGrid struct {
	pid   uuid.UUID
	log   *zap.Logger
	cfg   Config
	theta float64
	angle float64
	omega float64
	time  float64
	fired bool
}

// New returns a VirtualGrid at angle cfg.Phase and time zero.
func New(cfg Config, log *zap.Logger) (*VirtualGrid, error) {
	if !(cfg.Voltage > 0) || !(cfg.Frequency > 0) {
		return nil, errors.New("virtualgrid: Voltage and Frequency must be positive")
	}
	for _, h := range cfg.Harmonics {
		if h.Order < 2 {
			return nil, fmt.Errorf("virtualgrid: harmonic order %d", h.Order)
		}
	}
	if cfg.Event != nil && (cfg.Event.Time < 0 || cfg.Event.Frequency < 0) {
		return nil, fmt.Errorf("virtualgrid: event %+v", *cfg.Event)
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	g := &VirtualGrid{
		pid: pid,
		log: log.Named("virtualgrid").With(zap.Stringer("pid", pid)),
		cfg: cfg,
	}
	g.Reset()
	return g, nil
}

// PID is an accessor for the process id
func (g *VirtualGrid) PID() uuid.UUID {
	return g.pid
}

// Reset returns the source to time zero.
func (g *VirtualGrid) Reset() {
	g.theta = wrap(g.cfg.Phase)
	g.angle = g.theta
	g.omega = 2 * math.Pi * g.cfg.Frequency
	g.time = 0
	g.fired = false
}

// Angle is the positive-sequence angle of the last sample, in [-pi, pi].
func (g *VirtualGrid) Angle() float64 {
	return g.angle
}

// Omega is the present angular frequency in rad/s.
func (g *VirtualGrid) Omega() float64 {
	return g.omega
}

// Frequency is the present frequency in Hz.
func (g *VirtualGrid) Frequency() float64 {
	return g.omega / (2 * math.Pi)
}

// Voltage is the nominal peak phase voltage.
func (g *VirtualGrid) Voltage() float64 {
	return g.cfg.Voltage
}

// Step returns the phase voltages at the present time, then advances by ts.
func (g *VirtualGrid) Step(ts float64) transform.TimeDomain {
	if e := g.cfg.Event; e != nil && !g.fired && g.time >= e.Time {
		g.fired = true
		if e.Frequency > 0 {
			g.omega = 2 * math.Pi * e.Frequency
		}
		g.theta = wrap(g.theta + e.PhaseStep)
		g.log.Info("grid event",
			zap.Float64("time", g.time),
			zap.Float64("frequency", g.Frequency()),
			zap.Float64("phaseStep", e.PhaseStep))
	}

	v := g.sample(g.theta)
	g.angle = g.theta
	g.theta = wrap(g.theta + g.omega*ts)
	g.time += ts
	return v
}

func (g *VirtualGrid) sample(theta float64) transform.TimeDomain {
	c := g.cfg
	var out [3]float64
	for k := range out {
		shift := float64(k) * twoThirdsPi
		v := math.Cos(theta-shift) +
			c.Negative*math.Cos(-theta-shift) +
			c.Zero*math.Cos(theta)
		for _, h := range c.Harmonics {
			v += h.Magnitude * math.Cos(float64(h.Order)*(theta-shift))
		}
		out[k] = c.Voltage * v
	}
	return transform.TimeDomain{A: out[0], B: out[1], C: out[2]}
}

func wrap(theta float64) float64 {
	return math.Remainder(theta, 2*math.Pi)
}
