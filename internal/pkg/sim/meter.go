package sim

import (
	"github.com/ohowland/cgc_control/internal/pkg/sensor"
	"github.com/ohowland/cgc_control/internal/pkg/transform"
)

// meter passes a physical value through the ADC of a front end with the
// given gain. A zero gain measures ideally.
type meter struct {
	gain float64
}

func (m meter) read(x float64) float64 {
	if m.gain == 0 {
		return x
	}
	return sensor.Scale(sensor.Quantize(x, m.gain), m.gain)
}

func (m meter) readABC(v transform.TimeDomain) transform.TimeDomain {
	return transform.TimeDomain{A: m.read(v.A), B: m.read(v.B), C: m.read(v.C)}
}
