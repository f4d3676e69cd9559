// Package units provides distance unit handling for geospatial queries.
// The eBird API accepts only kilometers, user preferences may be in miles.
package units

import "strings"

// Unit is a distance measurement unit.
type Unit string

const (
	Kilometers Unit = "kilometers"
	Miles      Unit = "miles"
)

// milesToKm is the conversion factor between statute miles and kilometers.
const milesToKm = 1.60934

// ParseUnit resolves the loose unit strings found in stored user settings
// ("Kilometers", "km", "Miles", "mi") to a Unit. Unknown values resolve to
// Kilometers, the application default.
func ParseUnit(s string) Unit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "miles", "mile", "mi":
		return Miles
	default:
		return Kilometers
	}
}

// String returns the canonical lowercase name of the unit.
func (u Unit) String() string {
	return string(u)
}

// Convert converts distance from one unit to another, truncating toward zero.
// Identity when both units are equal.
func Convert(distance int, from, to Unit) int {
	if from == to {
		return distance
	}
	if from == Miles {
		return int(float64(distance) * milesToKm)
	}
	return int(float64(distance) / milesToKm)
}
