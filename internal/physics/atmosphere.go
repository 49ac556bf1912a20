package physics

import "math"

// SeaLevelDensity is the air density at zero altitude in kg/m³.
const SeaLevelDensity = 1.225

// AirDensity returns the air density in kg/m³ at the given altitude in
// meters.
func AirDensity(altitude float64) float64 {
	var temperature, pressure float64
	switch {
	case altitude < 11000:
		temperature = 15.04 - 0.00649*altitude
		pressure = 101.29 * math.Pow((temperature+273.1)/288.08, 5.256)
	case altitude < 25000:
		temperature = -56.46
		pressure = 22.65 * math.Exp(1.73-0.000157*altitude)
	default:
		temperature = -131.21 + 0.00299*altitude
		pressure = 2.488 * math.Pow((temperature+273.1)/216.6, -11.388)
	}
	return pressure / (0.2869 * (temperature + 273.1))
}
