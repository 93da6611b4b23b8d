package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eddiguesti/jengu-backend/internal/model"
	"github.com/eddiguesti/jengu-backend/internal/repository"
)

// MakeID returns a fresh UUID string for test entities.
func MakeID() string {
	return uuid.NewString()
}

// PropertyBuilder provides a fluent interface for creating test properties.
//
// Example usage:
//
//	// Simple creation with defaults (coordinates + country set)
//	property := testutil.NewProperty().Build(t, db)
//
//	// A property the weather/holiday stages must skip
//	property := testutil.NewProperty().WithoutLocation().Build(t, db)
type PropertyBuilder struct {
	ID          string
	Name        string
	Latitude    *float64
	Longitude   *float64
	CountryCode *string
}

// NewProperty creates a PropertyBuilder with sensible defaults: coordinates
// near Toulon (FR) and a French holiday calendar.
func NewProperty() *PropertyBuilder {
	lat, lon := 43.1353, 5.7547
	country := "FR"
	return &PropertyBuilder{
		ID:          MakeID(),
		Name:        "Test Property",
		Latitude:    &lat,
		Longitude:   &lon,
		CountryCode: &country,
	}
}

// WithID sets a custom ID.
func (b *PropertyBuilder) WithID(id string) *PropertyBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PropertyBuilder) WithName(name string) *PropertyBuilder {
	b.Name = name
	return b
}

// WithCoordinates sets a custom coordinate pair.
func (b *PropertyBuilder) WithCoordinates(lat, lon float64) *PropertyBuilder {
	b.Latitude = &lat
	b.Longitude = &lon
	return b
}

// WithCountry sets a custom country code.
func (b *PropertyBuilder) WithCountry(code string) *PropertyBuilder {
	b.CountryCode = &code
	return b
}

// WithoutCoordinates clears the coordinate pair so the weather stage skips.
func (b *PropertyBuilder) WithoutCoordinates() *PropertyBuilder {
	b.Latitude = nil
	b.Longitude = nil
	return b
}

// WithoutCountry clears the country code so the holiday stage skips.
func (b *PropertyBuilder) WithoutCountry() *PropertyBuilder {
	b.CountryCode = nil
	return b
}

// WithoutLocation clears coordinates and country code.
func (b *PropertyBuilder) WithoutLocation() *PropertyBuilder {
	return b.WithoutCoordinates().WithoutCountry()
}

// Build persists the property and returns it.
func (b *PropertyBuilder) Build(t *testing.T, db *sql.DB) *model.Property {
	t.Helper()

	property := &model.Property{
		ID:          b.ID,
		Name:        b.Name,
		Latitude:    b.Latitude,
		Longitude:   b.Longitude,
		CountryCode: b.CountryCode,
		CreatedAt:   time.Now().UTC(),
	}

	if err := repository.NewPropertyRepository(db).Create(property); err != nil {
		t.Fatalf("Failed to create test property: %v", err)
	}

	return property
}

// SeedPricingRows inserts one row per day starting at startDate, priced
// 100 + index, and returns the stored rows ordered by date.
func SeedPricingRows(t *testing.T, db *sql.DB, propertyID string, startDate string, days int) []model.PricingRow {
	t.Helper()

	start, err := repository.ParseTime(startDate)
	if err != nil {
		t.Fatalf("Failed to parse seed start date: %v", err)
	}

	rows := make([]model.PricingRow, 0, days)
	for i := 0; i < days; i++ {
		rows = append(rows, model.PricingRow{
			PropertyID: propertyID,
			Date:       start.AddDate(0, 0, i),
			Price:      100 + float64(i),
		})
	}

	rowRepo := repository.NewPricingRowRepository(db)
	if err := rowRepo.InsertBatch(propertyID, rows); err != nil {
		t.Fatalf("Failed to seed pricing rows: %v", err)
	}

	stored, err := rowRepo.ListByProperty(propertyID)
	if err != nil {
		t.Fatalf("Failed to load seeded rows: %v", err)
	}
	return stored
}

// JobBuilder provides a fluent interface for creating test enrichment jobs.
type JobBuilder struct {
	PropertyID string
	Status     model.JobStatus
	CreatedAt  time.Time
}

// NewJob creates a JobBuilder in the queued state.
func NewJob(propertyID string) *JobBuilder {
	return &JobBuilder{
		PropertyID: propertyID,
		Status:     model.JobQueued,
		CreatedAt:  time.Now().UTC(),
	}
}

// WithStatus sets a custom lifecycle status.
func (b *JobBuilder) WithStatus(status model.JobStatus) *JobBuilder {
	b.Status = status
	return b
}

// WithCreatedAt sets a custom creation time (and therefore job ID).
func (b *JobBuilder) WithCreatedAt(createdAt time.Time) *JobBuilder {
	b.CreatedAt = createdAt
	return b
}

// Build persists the job and returns it.
func (b *JobBuilder) Build(t *testing.T, db *sql.DB) *model.EnrichmentJob {
	t.Helper()

	job := &model.EnrichmentJob{
		ID:         model.NewEnrichmentJobID(b.PropertyID, b.CreatedAt),
		PropertyID: b.PropertyID,
		Status:     model.JobQueued,
		Temporal:   model.StageProgress{Status: model.StagePending},
		Weather:    model.StageProgress{Status: model.StagePending},
		Holiday:    model.StageProgress{Status: model.StagePending},
		CreatedAt:  b.CreatedAt,
	}

	jobRepo := repository.NewJobRepository(db)
	if err := jobRepo.Create(job); err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}
	if b.Status != model.JobQueued {
		if err := jobRepo.SetStatus(job.ID, b.Status, nil); err != nil {
			t.Fatalf("Failed to set test job status: %v", err)
		}
		job.Status = b.Status
	}

	return job
}
