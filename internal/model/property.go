package model

import "time"

// Property represents one listing whose pricing rows get enriched. Latitude,
// longitude and country code are optional; the enrichment pipeline skips the
// stages that depend on them when they are unset.
type Property struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	CountryCode *string    `json:"country_code,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// HasCountry reports whether a holiday calendar can be resolved for the property.
func (p *Property) HasCountry() bool {
	return p.CountryCode != nil && *p.CountryCode != ""
}
