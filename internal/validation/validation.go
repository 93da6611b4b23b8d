package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID      = fmt.Errorf("invalid UUID format")
	ErrInvalidDateRange = fmt.Errorf("invalid date range")
	ErrEmptySlice       = fmt.Errorf("slice cannot be empty")
	ErrInvalidLatitude  = fmt.Errorf("latitude must be between -90 and 90")
	ErrInvalidLongitude = fmt.Errorf("longitude must be between -180 and 180")
	ErrInvalidCountry   = fmt.Errorf("country code must be two letters")
)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// ValidateCoordinates checks an optional coordinate pair. Both values must be
// present together and inside their valid ranges.
func ValidateCoordinates(lat, lon *float64) error {
	if lat == nil && lon == nil {
		return nil
	}
	if lat == nil || lon == nil {
		return fmt.Errorf("latitude and longitude must be provided together")
	}
	if *lat < -90 || *lat > 90 {
		return fmt.Errorf("%w: %f", ErrInvalidLatitude, *lat)
	}
	if *lon < -180 || *lon > 180 {
		return fmt.Errorf("%w: %f", ErrInvalidLongitude, *lon)
	}
	return nil
}

// ValidateCountryCode checks an optional ISO 3166-1 alpha-2 country code.
func ValidateCountryCode(code *string) error {
	if code == nil || *code == "" {
		return nil
	}
	if len(*code) != 2 {
		return fmt.Errorf("%w: %s", ErrInvalidCountry, *code)
	}
	for _, c := range *code {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return fmt.Errorf("%w: %s", ErrInvalidCountry, *code)
		}
	}
	return nil
}
