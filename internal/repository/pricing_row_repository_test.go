package repository_test

import (
	"testing"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/model"
	"github.com/eddiguesti/jengu-backend/internal/repository"
	"github.com/eddiguesti/jengu-backend/internal/testutil"
)

func TestPricingRowRepository(t *testing.T) {
	t.Run("InsertBatchAndList", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		property := testutil.NewProperty().Build(t, db)

		rows := testutil.SeedPricingRows(t, db, property.ID, "2024-01-01", 3)

		if len(rows) != 3 {
			t.Fatalf("Expected 3 rows, got %d", len(rows))
		}
		// Ordered by date.
		if rows[0].DateKey() != "2024-01-01" || rows[2].DateKey() != "2024-01-03" {
			t.Errorf("Expected rows ordered by date, got %s .. %s", rows[0].DateKey(), rows[2].DateKey())
		}
		// Feature fields start out unwritten.
		if rows[0].Temporal.DayOfWeek != nil || rows[0].Weather.TemperatureMean != nil || rows[0].Holiday.IsHoliday != nil {
			t.Error("Expected freshly inserted rows to carry no features")
		}
	})

	t.Run("InsertBatchUpsertsOnDateCollision", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		property := testutil.NewProperty().Build(t, db)
		repo := repository.NewPricingRowRepository(db)

		testutil.SeedPricingRows(t, db, property.ID, "2024-01-01", 2)

		// Re-upload the first date with a new price.
		update := []model.PricingRow{{
			Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Price: 999,
		}}
		if err := repo.InsertBatch(property.ID, update); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		rows, err := repo.ListByProperty(property.ID)
		if err != nil {
			t.Fatalf("ListByProperty failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("Expected collision to update in place, got %d rows", len(rows))
		}
		if rows[0].Price != 999 {
			t.Errorf("Expected updated price 999, got %f", rows[0].Price)
		}
	})

	t.Run("UpsertPreservesEnrichment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		property := testutil.NewProperty().Build(t, db)
		repo := repository.NewPricingRowRepository(db)

		rows := testutil.SeedPricingRows(t, db, property.ID, "2024-01-01", 1)

		season := "Winter"
		rows[0].Temporal.Season = &season
		if err := repo.UpdateTemporalBatch(rows); err != nil {
			t.Fatalf("UpdateTemporalBatch failed: %v", err)
		}

		// Re-uploading the same date must not wipe the enriched fields.
		update := []model.PricingRow{{
			Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Price: 150,
		}}
		if err := repo.InsertBatch(property.ID, update); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		stored, _ := repo.ListByProperty(property.ID)
		if stored[0].Price != 150 {
			t.Errorf("Expected price updated to 150, got %f", stored[0].Price)
		}
		if stored[0].Temporal.Season == nil || *stored[0].Temporal.Season != "Winter" {
			t.Errorf("Expected enrichment preserved across upsert, got %v", stored[0].Temporal.Season)
		}
	})

	t.Run("CountByProperty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		property := testutil.NewProperty().Build(t, db)
		repo := repository.NewPricingRowRepository(db)

		count, err := repo.CountByProperty(property.ID)
		if err != nil {
			t.Fatalf("CountByProperty failed: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected 0 rows, got %d", count)
		}

		testutil.SeedPricingRows(t, db, property.ID, "2024-01-01", 5)

		count, err = repo.CountByProperty(property.ID)
		if err != nil {
			t.Fatalf("CountByProperty failed: %v", err)
		}
		if count != 5 {
			t.Errorf("Expected 5 rows, got %d", count)
		}
	})

	t.Run("UpdateWeatherBatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		property := testutil.NewProperty().Build(t, db)
		repo := repository.NewPricingRowRepository(db)

		rows := testutil.SeedPricingRows(t, db, property.ID, "2024-01-01", 2)

		temp := 14.2
		condition := "clear"
		rows[0].Weather.TemperatureMean = &temp
		rows[0].Weather.Condition = &condition
		if err := repo.UpdateWeatherBatch(rows[:1]); err != nil {
			t.Fatalf("UpdateWeatherBatch failed: %v", err)
		}

		stored, _ := repo.ListByProperty(property.ID)
		if stored[0].Weather.TemperatureMean == nil || *stored[0].Weather.TemperatureMean != 14.2 {
			t.Errorf("Expected temperature 14.2, got %v", stored[0].Weather.TemperatureMean)
		}
		if stored[1].Weather.TemperatureMean != nil {
			t.Error("Expected row outside the batch to stay unenriched")
		}
	})

	t.Run("UpdateHolidayBatchClearsName", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		property := testutil.NewProperty().Build(t, db)
		repo := repository.NewPricingRowRepository(db)

		rows := testutil.SeedPricingRows(t, db, property.ID, "2024-01-01", 1)

		isHoliday := true
		name := "New Year's Day"
		rows[0].Holiday.IsHoliday = &isHoliday
		rows[0].Holiday.HolidayName = &name
		if err := repo.UpdateHolidayBatch(rows); err != nil {
			t.Fatalf("UpdateHolidayBatch failed: %v", err)
		}

		// A re-run against a changed calendar overwrites the previous verdict.
		isHoliday = false
		rows[0].Holiday.IsHoliday = &isHoliday
		rows[0].Holiday.HolidayName = nil
		if err := repo.UpdateHolidayBatch(rows); err != nil {
			t.Fatalf("Second UpdateHolidayBatch failed: %v", err)
		}

		stored, _ := repo.ListByProperty(property.ID)
		if stored[0].Holiday.IsHoliday == nil || *stored[0].Holiday.IsHoliday {
			t.Errorf("Expected is_holiday false, got %v", stored[0].Holiday.IsHoliday)
		}
		if stored[0].Holiday.HolidayName != nil {
			t.Errorf("Expected holiday name cleared, got %v", *stored[0].Holiday.HolidayName)
		}
	})

	t.Run("EmptyBatchIsNoOp", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPricingRowRepository(db)

		if err := repo.InsertBatch("whatever", nil); err != nil {
			t.Errorf("Expected empty insert to succeed, got %v", err)
		}
		if err := repo.UpdateTemporalBatch(nil); err != nil {
			t.Errorf("Expected empty update to succeed, got %v", err)
		}
	})
}
