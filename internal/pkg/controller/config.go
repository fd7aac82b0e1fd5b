package controller

import (
	"errors"
	"fmt"
	"math"
)

// Configuration errors. Each New* wraps one of these with the offending value.
var (
	ErrSamplePeriod = errors.New("sample period must be positive and finite")
	ErrLimits       = errors.New("upper limit must not be below lower limit")
	ErrGain         = errors.New("invalid gain")
	ErrParameter    = errors.New("invalid parameter")
)

func checkSamplePeriod(ts float64) error {
	if !(ts > 0) || math.IsInf(ts, 0) {
		return fmt.Errorf("%w: %v", ErrSamplePeriod, ts)
	}
	return nil
}

func checkLimits(up, low float64) error {
	if math.IsNaN(up) || math.IsNaN(low) || up < low {
		return fmt.Errorf("%w: [%v, %v]", ErrLimits, low, up)
	}
	return nil
}

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %v", ErrParameter, name, v)
	}
	return nil
}
