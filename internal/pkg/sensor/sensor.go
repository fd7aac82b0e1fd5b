// Package sensor converts raw ADC codes of the analog front end into physical units.
package sensor

import (
	"fmt"
	"sort"
	"strings"
)

// ADConv is the input voltage represented by one ADC code (16 bit, +/-10 V).
const ADConv = 10.0 / 32768.0

// sensitivity in volts at the ADC input per ampere or per volt measured. A
// negative value marks an inverting front end.
var sensitivity = map[string]float64{
	// standard sensors
	"DIN50A":   0.100,
	"DIN800V":  2.46e-3,
	"DESK25A":  4.93e-3,
	"DESK400V": 70.7e-3,

	// power module on-board sensors
	"PEB4046-I": 50.0e-3,
	"PEB4046-V": 5.32e-3,
	"PEB8032-I": 50.0e-3,
	"PEB8032-V": 2.5e-3,
	"TRENCH-I":  50.0e-3,
	"TRENCH-V":  5.32e-3,
	"PEH2015-I": -74e-3,
	"PEH2015-V": -8.9e-3,
	"PEH4010-I": -74e-3,
	"PEH4010-V": -8.9e-3,

	// voltage transducers
	"LV100-400":  12.5e-3,
	"LV100-500":  10.0e-3,
	"LV100-600":  8.33e-3,
	"LV100-800":  6.67e-3,
	"LV100-1000": 5.00e-3,
	"LV100-2000": 1.00e-3,
	"LV200-200":  40.0e-3,
	"LV200-400":  20.0e-3,
	"LV200-800":  10.0e-3,
	"CV3-200":    41.7e-3,
	"CV3-1000":   10.0e-3,
	"CV3-1200":   8.33e-3,
	"CV3-1500":   6.67e-3,

	// current transducers
	"LAH25":   0.100,
	"LAH50":   0.050,
	"LAX100":  0.050,
	"LA25":    0.100,
	"LA55":    0.050,
	"LA100":   0.050,
	"LA125":   0.050,
	"HTB50":   33.3e-3,
	"HTB100":  16.7e-3,
	"HTB200":  8.33e-3,
	"HTB300":  5.55e-3,
	"HTB400":  4.17e-3,
	"HAL100":  40.0e-3,
	"HAL200":  20.0e-3,
	"HAL300":  13.3e-3,
	"HAL400":  10.0e-3,
	"HAL500":  8.00e-3,
	"HAL600":  6.66e-3,
	"HTA100":  40.0e-3,
	"HTA200":  20.0e-3,
	"HTA300":  13.3e-3,
	"HTA400":  10.0e-3,
	"HTA500":  8.00e-3,
	"HTA600":  6.66e-3,
	"HTA1000": 4.00e-3,
	"HAX500":  8.00e-3,
	"HAX850":  4.71e-3,
	"HAX1000": 4.00e-3,
	"HAX2000": 2.00e-3,
}

// Gain returns the physical units per ADC code for a front end producing volts per unit.
func Gain(volts float64) float64 {
	return ADConv / volts
}

// Lookup returns the gain of a named sensor. Names are case insensitive.
func Lookup(name string) (float64, error) {
	s, ok := sensitivity[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("sensor: unknown sensor %q", name)
	}
	return Gain(s), nil
}

// Names lists the known sensors in sorted order.
func Names() []string {
	names := make([]string, 0, len(sensitivity))
	for n := range sensitivity {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Scale converts a raw code into physical units.
func Scale(raw int16, gain float64) float64 {
	return float64(raw) * gain
}

// Quantize converts a physical value back into the code the ADC would report,
// saturating at the converter range.
func Quantize(value, gain float64) int16 {
	code := value / gain
	switch {
	case code >= 32767:
		return 32767
	case code <= -32768:
		return -32768
	case code >= 0:
		return int16(code + 0.5)
	default:
		return int16(code - 0.5)
	}
}
