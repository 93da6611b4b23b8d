package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Property table
		CREATE TABLE property (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			latitude FLOAT,
			longitude FLOAT,
			country_code VARCHAR(2),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			updated_at DATETIME
		);

		-- Pricing row table
		CREATE TABLE pricing_row (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			property_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			price FLOAT NOT NULL,
			occupancy FLOAT,
			bookings INTEGER,
			extra TEXT,
			day_of_week INTEGER,
			month INTEGER,
			season VARCHAR(6),
			is_weekend BOOLEAN,
			temperature_mean FLOAT,
			precipitation_mm FLOAT,
			weather_condition VARCHAR(20),
			sunshine_hours FLOAT,
			is_holiday BOOLEAN,
			holiday_name VARCHAR(100),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			FOREIGN KEY(property_id) REFERENCES property(id) ON DELETE CASCADE,
			CONSTRAINT unique_property_date UNIQUE (property_id, date)
		);

		-- Enrichment job table
		CREATE TABLE enrichment_job (
			id VARCHAR(100) NOT NULL PRIMARY KEY,
			property_id VARCHAR(36) NOT NULL,
			status VARCHAR(10) NOT NULL,
			temporal_status VARCHAR(10) NOT NULL,
			temporal_enriched INTEGER NOT NULL DEFAULT 0,
			temporal_total INTEGER NOT NULL DEFAULT 0,
			weather_status VARCHAR(10) NOT NULL,
			weather_enriched INTEGER NOT NULL DEFAULT 0,
			weather_total INTEGER NOT NULL DEFAULT 0,
			holiday_status VARCHAR(10) NOT NULL,
			holiday_enriched INTEGER NOT NULL DEFAULT 0,
			holiday_total INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			FOREIGN KEY(property_id) REFERENCES property(id) ON DELETE CASCADE
		);

		-- Analytics job table
		CREATE TABLE analytics_job (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			property_id VARCHAR(36) NOT NULL,
			triggered_by VARCHAR(100) NOT NULL UNIQUE,
			status VARCHAR(10) NOT NULL,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			FOREIGN KEY(property_id) REFERENCES property(id) ON DELETE CASCADE
		);

		-- Analytics summary table
		CREATE TABLE analytics_summary (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			property_id VARCHAR(36) NOT NULL UNIQUE,
			row_count INTEGER NOT NULL,
			average_price FLOAT NOT NULL,
			weekend_average_price FLOAT,
			weekday_average_price FLOAT,
			holiday_uplift_pct FLOAT,
			season_averages TEXT,
			rainy_average_price FLOAT,
			clear_average_price FLOAT,
			calculated_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			FOREIGN KEY(property_id) REFERENCES property(id) ON DELETE CASCADE
		);

		-- Provider credential table
		CREATE TABLE provider_credential (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			provider VARCHAR(20) NOT NULL UNIQUE,
			api_key VARCHAR(500) NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL
		);

		-- Indexes for performance
		CREATE INDEX ix_pricing_row_property_id ON pricing_row(property_id);
		CREATE INDEX ix_pricing_row_property_id_date ON pricing_row(property_id, date);
		CREATE INDEX ix_enrichment_job_property_id ON enrichment_job(property_id);
		CREATE INDEX ix_enrichment_job_status ON enrichment_job(status);
		CREATE INDEX ix_enrichment_job_updated_at ON enrichment_job(updated_at);
		CREATE INDEX ix_analytics_job_property_id ON analytics_job(property_id);
		CREATE INDEX ix_analytics_job_status ON analytics_job(status);
	`

	_, err := db.Exec(schema)
	return err
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
