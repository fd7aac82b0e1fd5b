// Package virtualline is a single-phase series R-L line between a converter
// and the grid, discretized exactly for a voltage held over each sample.
package virtualline

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config data structure for the VirtualLine. A Trip of zero disables the
// over-current protection.
type Config struct {
	R    float64 `yaml:"R"`
	L    float64 `yaml:"L"`
	Trip float64 `yaml:"Trip"`
}

// VirtualLine target
type VirtualLine struct {
	pid     uuid.UUID
	log     *zap.Logger
	ad, bd  float64
	trip    float64
	current float64
	tripped bool
}

// New returns a closed line carrying no current.
func New(cfg Config, ts float64, log *zap.Logger) (*VirtualLine, error) {
	if !(cfg.R > 0) || !(cfg.L > 0) || !(ts > 0) {
		return nil, errors.New("virtualline: R, L and the sample period must be positive")
	}
	if cfg.Trip < 0 {
		return nil, errors.New("virtualline: Trip must not be negative")
	}
	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	ad := math.Exp(-cfg.R * ts / cfg.L)
	return &VirtualLine{
		pid:  pid,
		log:  log.Named("virtualline").With(zap.Stringer("pid", pid)),
		ad:   ad,
		bd:   (1 - ad) / cfg.R,
		trip: cfg.Trip,
	}, nil
}

// PID is an accessor for the process id
func (l *VirtualLine) PID() uuid.UUID {
	return l.pid
}

// Current is an accessor for the line current, positive toward the grid.
func (l *VirtualLine) Current() float64 {
	return l.current
}

// Tripped reports whether the over-current protection has opened the line.
func (l *VirtualLine) Tripped() bool {
	return l.tripped
}

// Step applies the converter and grid voltages for one sample and returns
// the current at the end of it. A tripped line carries no current.
func (l *VirtualLine) Step(vConverter, vGrid float64) float64 {
	if l.tripped {
		return 0
	}
	l.current = l.ad*l.current + l.bd*(vConverter-vGrid)
	if l.trip > 0 && math.Abs(l.current) > l.trip {
		l.log.Warn("over-current trip", zap.Float64("current", l.current), zap.Float64("trip", l.trip))
		l.tripped = true
		l.current = 0
	}
	return l.current
}

// Reset closes the line and zeroes the current.
func (l *VirtualLine) Reset() {
	l.current = 0
	l.tripped = false
}
