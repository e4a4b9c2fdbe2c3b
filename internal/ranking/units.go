package ranking

import "strings"

const (
	metersPerKilometer = 1000.0
	metersPerMile      = 1609.34
)

// mileCountries are the ISO 3166-1 alpha-2 codes that present distances in miles.
var mileCountries = map[string]struct{}{
	"US": {},
	"LR": {},
	"MM": {},
}

// MetersToUnit converts a distance in meters to the given unit.
// Anything other than miles is treated as kilometers.
func MetersToUnit(meters float64, unit DistanceUnit) float64 {
	if unit == UnitMiles {
		return meters / metersPerMile
	}
	return meters / metersPerKilometer
}

// UnitForCountry returns the distance unit for a country code; unknown codes get kilometers.
func UnitForCountry(countryCode string) DistanceUnit {
	if _, ok := mileCountries[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		return UnitMiles
	}
	return UnitKilometers
}

// KmToMi converts kilometers to miles.
func KmToMi(km float64) float64 {
	return km * metersPerKilometer / metersPerMile
}

// MiToKm converts miles to kilometers.
func MiToKm(mi float64) float64 {
	return mi * metersPerMile / metersPerKilometer
}
