package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eddiguesti/jengu-backend/internal/model"
)

// PricingRowRepository provides data access methods for the pricing_row table.
// It is both the ingestion target for uploaded rows and the storage interface
// the enrichment runner commits feature batches through. Each batch update runs
// in a single transaction so a storage failure never leaves a batch half
// written, while rows committed by earlier batches keep their enrichment.
type PricingRowRepository struct {
	db *sql.DB
}

// NewPricingRowRepository creates a new PricingRowRepository with the provided database connection.
func NewPricingRowRepository(db *sql.DB) *PricingRowRepository {
	return &PricingRowRepository{db: db}
}

// InsertBatch inserts uploaded rows for a property. Rows that collide on
// (property_id, date) overwrite the price/occupancy/bookings payload and reset
// nothing else; enrichment fields are written only by the stage updates.
func (r *PricingRowRepository) InsertBatch(propertyID string, rows []model.PricingRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	//nolint:errcheck // Rollback after commit is a no-op
	defer tx.Rollback()

	query := `
		INSERT INTO pricing_row (id, property_id, date, price, occupancy, bookings, extra, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id, date) DO UPDATE SET
			price = excluded.price,
			occupancy = excluded.occupancy,
			bookings = excluded.bookings,
			extra = excluded.extra
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare pricing row insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		id := row.ID
		if id == "" {
			id = uuid.NewString()
		}

		var extra any
		if len(row.Extra) > 0 {
			extra = string(row.Extra)
		}

		if _, err := stmt.Exec(id, propertyID, FormatDate(row.Date), row.Price,
			row.Occupancy, row.Bookings, extra, now); err != nil {
			return fmt.Errorf("failed to insert pricing row for %s: %w", FormatDate(row.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pricing row batch: %w", err)
	}

	return nil
}

// ListByProperty retrieves all pricing rows for a property ordered by date.
// Returns an empty slice if the property has no rows.
func (r *PricingRowRepository) ListByProperty(propertyID string) ([]model.PricingRow, error) {
	query := `
		SELECT id, property_id, date, price, occupancy, bookings, extra,
		       day_of_week, month, season, is_weekend,
		       temperature_mean, precipitation_mm, weather_condition, sunshine_hours,
		       is_holiday, holiday_name, created_at
		FROM pricing_row
		WHERE property_id = ?
		ORDER BY date
	`

	rows, err := r.db.Query(query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing_row table: %w", err)
	}
	defer rows.Close()

	results := []model.PricingRow{}

	for rows.Next() {
		var (
			row          model.PricingRow
			dateStr      string
			createdAtStr string
			extra        sql.NullString
		)

		err := rows.Scan(
			&row.ID,
			&row.PropertyID,
			&dateStr,
			&row.Price,
			&row.Occupancy,
			&row.Bookings,
			&extra,
			&row.Temporal.DayOfWeek,
			&row.Temporal.Month,
			&row.Temporal.Season,
			&row.Temporal.IsWeekend,
			&row.Weather.TemperatureMean,
			&row.Weather.PrecipitationMM,
			&row.Weather.Condition,
			&row.Weather.SunshineHours,
			&row.Holiday.IsHoliday,
			&row.Holiday.HolidayName,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing_row table results: %w", err)
		}

		row.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pricing row date: %w", err)
		}
		row.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pricing row created_at: %w", err)
		}
		if extra.Valid {
			row.Extra = []byte(extra.String)
		}

		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pricing_row table: %w", err)
	}

	return results, nil
}

// CountByProperty returns the number of pricing rows stored for a property.
func (r *PricingRowRepository) CountByProperty(propertyID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM pricing_row WHERE property_id = ?`, propertyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pricing rows: %w", err)
	}
	return count, nil
}

// UpdateTemporalBatch overwrites the temporal feature fields for a batch of
// rows in one transaction.
func (r *PricingRowRepository) UpdateTemporalBatch(rows []model.PricingRow) error {
	return r.updateBatch(rows, `
		UPDATE pricing_row
		SET day_of_week = ?, month = ?, season = ?, is_weekend = ?
		WHERE id = ?
	`, func(row model.PricingRow) []any {
		return []any{row.Temporal.DayOfWeek, row.Temporal.Month, row.Temporal.Season, row.Temporal.IsWeekend, row.ID}
	})
}

// UpdateWeatherBatch overwrites the weather feature fields for a batch of rows
// in one transaction.
func (r *PricingRowRepository) UpdateWeatherBatch(rows []model.PricingRow) error {
	return r.updateBatch(rows, `
		UPDATE pricing_row
		SET temperature_mean = ?, precipitation_mm = ?, weather_condition = ?, sunshine_hours = ?
		WHERE id = ?
	`, func(row model.PricingRow) []any {
		return []any{row.Weather.TemperatureMean, row.Weather.PrecipitationMM, row.Weather.Condition, row.Weather.SunshineHours, row.ID}
	})
}

// UpdateHolidayBatch overwrites the holiday feature fields for a batch of rows
// in one transaction.
func (r *PricingRowRepository) UpdateHolidayBatch(rows []model.PricingRow) error {
	return r.updateBatch(rows, `
		UPDATE pricing_row
		SET is_holiday = ?, holiday_name = ?
		WHERE id = ?
	`, func(row model.PricingRow) []any {
		return []any{row.Holiday.IsHoliday, row.Holiday.HolidayName, row.ID}
	})
}

func (r *PricingRowRepository) updateBatch(rows []model.PricingRow, query string, args func(model.PricingRow) []any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	//nolint:errcheck // Rollback after commit is a no-op
	defer tx.Rollback()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare batch update: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(args(row)...); err != nil {
			return fmt.Errorf("failed to update pricing row %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch update: %w", err)
	}

	return nil
}
