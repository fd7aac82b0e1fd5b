package virtualpv

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

var (
	summer = time.Date(2020, time.June, 21, 12, 0, 0, 0, time.UTC)
	winter = time.Date(2020, time.December, 21, 12, 0, 0, 0, time.UTC)
)

func TestDaylight(t *testing.T) {
	l := NewLocation(42, 5000)
	for _, noon := range []time.Time{summer, winter} {
		rise, set := daylight(l, noon)
		assert.Assert(t, rise.Before(noon))
		assert.Assert(t, set.After(noon))
	}

	// days are longer in summer
	sr, ss := daylight(l, summer)
	wr, ws := daylight(l, winter)
	assert.Assert(t, ss.Sub(sr) > ws.Sub(wr))
}

func TestTotalIrradiance(t *testing.T) {
	a := NewArray(32, 0)
	l := NewLocation(42, 5000)

	noon := TotalIrradiance(a, l, summer)
	assert.Assert(t, noon > 500 && noon < 1400, "irradiance: %v", noon)

	morning := TotalIrradiance(a, l, summer.Add(-4*time.Hour))
	assert.Assert(t, morning > 0 && morning < noon, "irradiance: %v", morning)

	assert.Equal(t, TotalIrradiance(a, l, summer.Add(-11*time.Hour)), 0.0)
}
