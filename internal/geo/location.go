package geo

import (
	"strconv"
	"strings"

	"github.com/featherquest/featherquest-go/internal/errors"
	"github.com/featherquest/featherquest-go/internal/logging"
)

// Location is a geographic point.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the location is within coordinate bounds.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// ParseCoordinates parses a user-entered "latitude, longitude" string into a
// Location. Malformed or out-of-range input is a validation error, raised
// before any remote call sees the value.
func ParseCoordinates(input string) (Location, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return Location{}, errors.Newf("expected \"latitude, longitude\", got %q", input).
			Component("geo").
			Category(errors.CategoryValidation).
			Build()
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return Location{}, errors.Newf("coordinates must be numeric, got %q", input).
			Component("geo").
			Category(errors.CategoryValidation).
			Build()
	}

	loc := Location{Latitude: lat, Longitude: lng}
	if !loc.Valid() {
		return Location{}, errors.Newf("coordinates out of range: %.4f, %.4f", lat, lng).
			Component("geo").
			Category(errors.CategoryValidation).
			Context("latitude", lat).
			Context("longitude", lng).
			Build()
	}

	return loc, nil
}

// ResolveLocation returns the parsed custom location when it is valid, and the
// fallback (typically the device's current location) when it is not. The
// substitution is never silent: an invalid custom location is logged as a
// warning so the caller has an observable signal.
func ResolveLocation(custom string, fallback Location) Location {
	if strings.TrimSpace(custom) == "" {
		return fallback
	}

	loc, err := ParseCoordinates(custom)
	if err != nil {
		logging.Warn("invalid custom location, using current location",
			"input", custom,
			"error", err,
			"fallback_latitude", fallback.Latitude,
			"fallback_longitude", fallback.Longitude)
		return fallback
	}
	return loc
}
