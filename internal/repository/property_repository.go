package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/model"
)

// PropertyRepository provides data access methods for the property table.
type PropertyRepository struct {
	db *sql.DB
}

// NewPropertyRepository creates a new PropertyRepository with the provided database connection.
func NewPropertyRepository(db *sql.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create inserts a new property record.
func (r *PropertyRepository) Create(p *model.Property) error {
	query := `
		INSERT INTO property (id, name, latitude, longitude, country_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, p.ID, p.Name, p.Latitude, p.Longitude, p.CountryCode,
		p.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}

	return nil
}

// Get retrieves a single property by ID.
// Returns apperrors.ErrPropertyNotFound if no record exists.
func (r *PropertyRepository) Get(propertyID string) (*model.Property, error) {
	query := `
		SELECT id, name, latitude, longitude, country_code, created_at, updated_at
		FROM property
		WHERE id = ?
	`

	var (
		p            model.Property
		createdAtStr string
		updatedAtStr sql.NullString
	)
	err := r.db.QueryRow(query, propertyID).Scan(
		&p.ID,
		&p.Name,
		&p.Latitude,
		&p.Longitude,
		&p.CountryCode,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query property table: %w", err)
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse property created_at: %w", err)
	}
	if updatedAtStr.Valid {
		updatedAt, err := ParseTime(updatedAtStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse property updated_at: %w", err)
		}
		p.UpdatedAt = &updatedAt
	}

	return &p, nil
}

// UpdateLocation sets the coordinate pair and country code for a property.
// Enrichment applicability of the weather and holiday stages follows from these fields.
func (r *PropertyRepository) UpdateLocation(propertyID string, lat, lon *float64, countryCode *string) error {
	query := `
		UPDATE property
		SET latitude = ?, longitude = ?, country_code = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, lat, lon, countryCode,
		time.Now().UTC().Format(time.RFC3339), propertyID)
	if err != nil {
		return fmt.Errorf("failed to update property location: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPropertyNotFound
	}

	return nil
}
