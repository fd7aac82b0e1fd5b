package controller

import (
	"fmt"
	"math"
)

// MPPTConfig holds the parameters of a perturb-and-observe tracker.
// Step is the increment applied to the reference every run, IIR the
// low-pass coefficient applied to measurement and power (1 disables filtering).
type MPPTConfig struct {
	Step    float64
	RefInit float64
	LimUp   float64
	LimLow  float64
	IIR     float64
}

// MPPT is a perturb-and-observe maximum power point tracker. The reference is
// the acting quantity, typically a current setpoint.
type MPPT struct {
	powerPrev     float64
	measPrev      float64
	step          float64
	reference     float64
	limUp, limLow float64
	iir           float64
}

// NewMPPT returns a tracker starting at cfg.RefInit.
func NewMPPT(cfg MPPTConfig) (*MPPT, error) {
	if err := checkLimits(cfg.LimUp, cfg.LimLow); err != nil {
		return nil, err
	}
	if err := checkFinite("ref_init", cfg.RefInit); err != nil {
		return nil, err
	}
	if !(cfg.Step > 0) || math.IsInf(cfg.Step, 0) {
		return nil, fmt.Errorf("%w: step = %v", ErrParameter, cfg.Step)
	}
	if !(cfg.IIR > 0 && cfg.IIR <= 1) {
		return nil, fmt.Errorf("%w: iir coefficient %v not in (0, 1]", ErrParameter, cfg.IIR)
	}
	return &MPPT{
		step:      cfg.Step,
		reference: cfg.RefInit,
		limUp:     cfg.LimUp,
		limLow:    cfg.LimLow,
		iir:       cfg.IIR,
	}, nil
}

// Reference returns the current setpoint.
func (m *MPPT) Reference() float64 {
	return m.reference
}

// Reset restores the reference to ref and clears the filtered history.
func (m *MPPT) Reset(ref float64) {
	m.reference = ref
	m.powerPrev = 0
	m.measPrev = 0
}

// Run advances the tracker by one step and returns the new reference.
//
// The reference is not clamped. When it has drifted outside the limits and the
// power is degrading it is stepped back towards the valid range one step per run.
func (m *MPPT) Run(measurement, power float64) float64 {
	if power < 0 {
		power = 0
	}
	if measurement < 0 {
		measurement = 0
	}

	powerLPF := m.iir*power + (1-m.iir)*m.powerPrev
	measLPF := m.iir*measurement + (1-m.iir)*m.measPrev

	dPower := powerLPF - m.powerPrev
	dMeas := measLPF - m.measPrev

	if dPower >= 0 {
		if dMeas >= 0 {
			m.reference += m.step
		} else {
			m.reference -= m.step
		}
	} else {
		switch {
		case m.reference > m.limUp:
			m.reference -= m.step
		case m.reference < m.limLow:
			m.reference += m.step
		case dMeas >= 0:
			m.reference -= m.step
		default:
			m.reference += m.step
		}
	}

	m.powerPrev = powerLPF
	m.measPrev = measLPF

	return m.reference
}
