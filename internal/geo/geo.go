// Package geo converts user-facing distances into the spherical quantities used by tour location queries.
package geo

import (
	"strconv"
	"strings"

	"tourapi/internal/apperror"
)

// Unit is a distance unit accepted on the geo routes.
type Unit string

const (
	Miles      Unit = "mi"
	Kilometers Unit = "km"
)

// Earth radius expressed in each unit.
const (
	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

// EarthRadiusMeters is used to turn a central angle into meters.
const EarthRadiusMeters = earthRadiusKm * 1000

// ParseUnit validates a unit path segment.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case Miles, Kilometers:
		return Unit(s), nil
	}
	return "", apperror.BadRequest("Please provide a unit of either mi or km.")
}

// RadiusRadians converts a distance into the central angle of a spherical cap.
func RadiusRadians(distance float64, unit Unit) float64 {
	if unit == Miles {
		return distance / earthRadiusMiles
	}
	return distance / earthRadiusKm
}

// DistanceMultiplier converts meters into unit.
func DistanceMultiplier(unit Unit) float64 {
	if unit == Miles {
		return 0.000621371
	}
	return 0.001
}

// ParseLatLng parses "lat,lng".
func ParseLatLng(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, errLatLng()
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, errLatLng()
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, errLatLng()
	}
	return lat, lng, nil
}

func errLatLng() error {
	return apperror.BadRequest("Please provide latitude and longitude in the format lat,lng.")
}
