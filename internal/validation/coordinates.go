package validation

import (
	"fmt"
	"math"
)

// CoordinateError describes a rejected latitude or longitude.
type CoordinateError struct {
	Field   string
	Value   float64
	Message string
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s: %s (value: %.6f)", e.Field, e.Message, e.Value)
}

// ValidateLatitude checks that lat is a finite value in [-90, 90].
func ValidateLatitude(lat float64, fieldName string) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return &CoordinateError{Field: fieldName, Value: lat, Message: "must be a finite number"}
	}
	if lat < -90 || lat > 90 {
		return &CoordinateError{Field: fieldName, Value: lat, Message: "must be between -90 and 90"}
	}
	return nil
}

// ValidateLongitude checks that lon is a finite value in [-180, 180].
func ValidateLongitude(lon float64, fieldName string) error {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return &CoordinateError{Field: fieldName, Value: lon, Message: "must be a finite number"}
	}
	if lon < -180 || lon > 180 {
		return &CoordinateError{Field: fieldName, Value: lon, Message: "must be between -180 and 180"}
	}
	return nil
}

// ValidateCoordinatePair validates prefix+"Lat" and prefix+"Lon".
func ValidateCoordinatePair(lat, lon float64, prefix string) error {
	if err := ValidateLatitude(lat, prefix+"Lat"); err != nil {
		return err
	}
	return ValidateLongitude(lon, prefix+"Lon")
}

// IsZeroCoordinate reports whether (lat, lon) is the null island (0, 0),
// which clients send when location is unavailable.
func IsZeroCoordinate(lat, lon float64) bool {
	return lat == 0 && lon == 0
}
