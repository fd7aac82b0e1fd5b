package virtualpv

import (
	"math"
	"time"
)

const (
	degToRad = math.Pi / 180
	ftToKm   = 0.0003048

	solarConstant = 1353 // W/m^2
)

// Array orientation, angles in radians.
type Array struct {
	Tilt    float64
	Azimuth float64
}

// NewArray returns an Array from angles in degrees.
func NewArray(tiltDeg, azimuthDeg float64) Array {
	return Array{Tilt: tiltDeg * degToRad, Azimuth: azimuthDeg * degToRad}
}

// Location latitude in radians, elevation in km.
type Location struct {
	Latitude  float64
	Elevation float64
}

// NewLocation returns a Location from a latitude in degrees and an elevation in feet.
func NewLocation(latDeg, elevationFt float64) Location {
	return Location{Latitude: latDeg * degToRad, Elevation: elevationFt * ftToKm}
}

// Radiation in W/m^2
type Radiation struct {
	Direct  float64
	Diffuse float64
}

// TotalIrradiance is the clear-sky irradiance on the array plane at time t.
func TotalIrradiance(a Array, l Location, t time.Time) float64 {
	rad := intensity(l, t)
	angle := incidentAngle(l, a, t)
	if angle > math.Pi/2 {
		return rad.Diffuse
	}
	return rad.Direct*math.Cos(angle) + rad.Diffuse
}

func intensity(l Location, t time.Time) Radiation {
	rise, set := daylight(l, t)
	if !t.After(rise) || !t.Before(set) {
		return Radiation{}
	}
	x := math.Pow(0.7, math.Pow(airMass(l, t), 0.678))
	h := l.Elevation * 0.14
	direct := (x*(1-h) + h) * solarConstant
	return Radiation{Direct: direct, Diffuse: direct * 0.1}
}

func incidentAngle(l Location, a Array, t time.Time) float64 {
	d := declinationAngle(t)
	tilted := l.Latitude - a.Tilt
	return math.Acos(math.Cos(hourAngle(t))*math.Cos(d)*math.Cos(tilted) + math.Sin(d)*math.Sin(tilted))
}

func airMass(l Location, t time.Time) float64 {
	return 1 / math.Cos(math.Pi/2-elevationAngle(l, t))
}

func elevationAngle(l Location, t time.Time) float64 {
	d := declinationAngle(t)
	elev := math.Asin(math.Sin(d)*math.Sin(l.Latitude) + math.Cos(d)*math.Cos(l.Latitude)*math.Cos(hourAngle(t)))
	if elev < 0 {
		return 0
	}
	return elev
}

// hourAngle of the sun, zero at local solar noon.
func hourAngle(t time.Time) float64 {
	hour := float64(t.Hour()*3600+t.Minute()*60+t.Second()) / 3600
	return (hour - 12) * 15 * degToRad
}

// daylight returns sunrise and sunset on the day of t.
func daylight(l Location, t time.Time) (time.Time, time.Time) {
	d := declinationAngle(t)
	cosH := -math.Tan(d) * math.Tan(l.Latitude)
	cosH = math.Max(-1, math.Min(1, cosH))
	halfDay := math.Acos(cosH) / degToRad / 15 // hours

	return clock(t, 12-halfDay), clock(t, 12+halfDay)
}

func clock(t time.Time, hours float64) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.Add(time.Duration(hours * float64(time.Hour)))
}

func declinationAngle(t time.Time) float64 {
	return math.Asin(math.Sin((float64(t.YearDay())-81)*2*math.Pi/365.25) * math.Sin(0.40928))
}
