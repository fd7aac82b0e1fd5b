// Package virtualpv models a PV array with the single-diode equation. It is the
// plant the maximum power point tracker is exercised against.
package virtualpv

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	boltzmann = 1.380649e-23    // J/K
	charge    = 1.602176634e-19 // C
	kelvin    = 273.15

	stcIrradiance = 1000 // W/m^2
)

// Config data structure for the VirtualPV. Isc and Voc are given at standard
// test conditions. When Site is set the irradiance comes from the clear-sky
// insolation model instead of Irradiance.
type Config struct {
	Isc         float64 `yaml:"Isc"`
	Voc         float64 `yaml:"Voc"`
	Cells       int     `yaml:"Cells"`
	Ideality    float64 `yaml:"Ideality"`
	Temperature float64 `yaml:"Temperature"` // cell temperature, C
	Irradiance  float64 `yaml:"Irradiance"`
	Site        *Site   `yaml:"Site,omitempty"`
}

// Site places the array for the insolation model. Angles in degrees.
type Site struct {
	Latitude    float64   `yaml:"Latitude"`
	ElevationFt float64   `yaml:"ElevationFt"`
	Tilt        float64   `yaml:"Tilt"`
	Azimuth     float64   `yaml:"Azimuth"`
	Time        time.Time `yaml:"Time"`
}

// Irradiance returns the irradiance on the array at the site's time.
func (s Site) Irradiance() float64 {
	return TotalIrradiance(NewArray(s.Tilt, s.Azimuth), NewLocation(s.Latitude, s.ElevationFt), s.Time)
}

// VirtualPV target
type VirtualPV struct {
	pid        uuid.UUID
	isc        float64
	vt         float64 // thermal voltage of the cell string
	i0         float64 // diode saturation current
	irradiance float64
}

// New returns a VirtualPV from its configuration.
func New(cfg Config) (*VirtualPV, error) {
	if !(cfg.Isc > 0) || !(cfg.Voc > 0) || cfg.Cells <= 0 {
		return nil, errors.New("virtualpv: Isc, Voc and Cells must be positive")
	}
	if !(cfg.Ideality > 0) {
		return nil, fmt.Errorf("virtualpv: ideality factor %v", cfg.Ideality)
	}
	if cfg.Temperature <= -kelvin {
		return nil, fmt.Errorf("virtualpv: temperature %v below absolute zero", cfg.Temperature)
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}

	vt := float64(cfg.Cells) * cfg.Ideality * boltzmann * (cfg.Temperature + kelvin) / charge
	pv := &VirtualPV{
		pid: pid,
		isc: cfg.Isc,
		vt:  vt,
		i0:  cfg.Isc / math.Expm1(cfg.Voc/vt),
	}

	g := cfg.Irradiance
	if cfg.Site != nil {
		g = cfg.Site.Irradiance()
	}
	if err := pv.SetIrradiance(g); err != nil {
		return nil, err
	}
	return pv, nil
}

// PID is an accessor for the process id
func (a *VirtualPV) PID() uuid.UUID {
	return a.pid
}

// Irradiance is an accessor for the irradiance in W/m^2
func (a *VirtualPV) Irradiance() float64 {
	return a.irradiance
}

// SetIrradiance changes the irradiance in W/m^2.
func (a *VirtualPV) SetIrradiance(g float64) error {
	if g < 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return fmt.Errorf("virtualpv: irradiance %v", g)
	}
	a.irradiance = g
	return nil
}

func (a *VirtualPV) photocurrent() float64 {
	return a.isc * a.irradiance / stcIrradiance
}

// Power returns the terminal voltage and power when the array delivers current.
// Currents outside [0, photocurrent] are limited to that range.
func (a *VirtualPV) Power(current float64) (float64, float64) {
	iph := a.photocurrent()
	i := math.Max(0, current)
	if i >= iph {
		return 0, 0
	}
	v := a.vt * math.Log1p((iph-i)/a.i0)
	return v, v * i
}

// MaxPowerPoint returns current, voltage and power at the maximum power point,
// found by golden-section search over the current.
func (a *VirtualPV) MaxPowerPoint() (float64, float64, float64) {
	power := func(i float64) float64 {
		_, p := a.Power(i)
		return p
	}
	lo, hi := 0.0, a.photocurrent()
	gr := (math.Sqrt(5) - 1) / 2
	for k := 0; k < 100 && hi-lo > 1e-9; k++ {
		c := hi - gr*(hi-lo)
		d := lo + gr*(hi-lo)
		if power(c) > power(d) {
			hi = d
		} else {
			lo = c
		}
	}
	i := (lo + hi) / 2
	v, p := a.Power(i)
	return i, v, p
}
