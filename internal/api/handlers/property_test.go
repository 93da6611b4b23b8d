package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eddiguesti/jengu-backend/internal/model"
	"github.com/eddiguesti/jengu-backend/internal/repository"
	"github.com/eddiguesti/jengu-backend/internal/testutil"
)

func setupPropertyHandler(t *testing.T) (*PropertyHandler, *sql.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	return NewPropertyHandler(
		repository.NewPropertyRepository(db),
		repository.NewPricingRowRepository(db),
	), db
}

func TestPropertyHandler_Create(t *testing.T) {
	t.Run("creates a property with full location", func(t *testing.T) {
		handler, _ := setupPropertyHandler(t)

		body := `{
			"name": "Hotel du Port",
			"latitude": 43.1353,
			"longitude": 5.7547,
			"country_code": "FR"
		}`
		req := testutil.NewRequestWithBody(http.MethodPost, "/api/property", body)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var property model.Property
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&property)

		if property.ID == "" {
			t.Error("Expected generated property ID")
		}
		if !property.HasCoordinates() || !property.HasCountry() {
			t.Error("Expected location fields to round-trip")
		}
	})

	t.Run("creates a property with no location", func(t *testing.T) {
		handler, _ := setupPropertyHandler(t)

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/property", `{"name": "City Hostel"}`)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		handler, _ := setupPropertyHandler(t)

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/property",
			`{"latitude": 43.1, "longitude": 5.7}`)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("rejects a lone latitude", func(t *testing.T) {
		handler, _ := setupPropertyHandler(t)

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/property",
			`{"name": "Broken", "latitude": 43.1}`)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for half a coordinate pair, got %d", w.Code)
		}
	})

	t.Run("rejects an out-of-range coordinate", func(t *testing.T) {
		handler, _ := setupPropertyHandler(t)

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/property",
			`{"name": "Broken", "latitude": 91.0, "longitude": 0.0}`)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for latitude 91, got %d", w.Code)
		}
	})

	t.Run("rejects a malformed country code", func(t *testing.T) {
		handler, _ := setupPropertyHandler(t)

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/property",
			`{"name": "Broken", "country_code": "FRA"}`)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for 3-letter country code, got %d", w.Code)
		}
	})
}

func TestPropertyHandler_UpdateLocation(t *testing.T) {
	t.Run("sets coordinates and country", func(t *testing.T) {
		handler, db := setupPropertyHandler(t)
		property := testutil.NewProperty().WithoutLocation().Build(t, db)

		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPut,
			"/api/property/"+property.ID+"/location",
			`{"latitude": 48.8566, "longitude": 2.3522, "country_code": "FR"}`,
			map[string]string{"uuid": property.ID},
		)
		w := httptest.NewRecorder()

		handler.UpdateLocation(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}

		stored, err := repository.NewPropertyRepository(db).Get(property.ID)
		if err != nil {
			t.Fatalf("Failed to load property: %v", err)
		}
		if !stored.HasCoordinates() || !stored.HasCountry() {
			t.Error("Expected location persisted")
		}
	})

	t.Run("returns 404 for an unknown property", func(t *testing.T) {
		handler, _ := setupPropertyHandler(t)

		missing := testutil.MakeID()
		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPut,
			"/api/property/"+missing+"/location",
			`{}`,
			map[string]string{"uuid": missing},
		)
		w := httptest.NewRecorder()

		handler.UpdateLocation(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestPropertyHandler_UploadRows(t *testing.T) {
	t.Run("inserts rows and reports the count", func(t *testing.T) {
		handler, db := setupPropertyHandler(t)
		property := testutil.NewProperty().Build(t, db)

		body := `[
			{"date": "2024-01-01", "price": 120.0, "occupancy": 0.8},
			{"date": "2024-01-02", "price": 95.5, "bookings": 3},
			{"date": "2024-01-03", "price": 110.0, "extra": {"channel": "direct"}}
		]`
		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPost,
			"/api/property/"+property.ID+"/rows",
			body,
			map[string]string{"uuid": property.ID},
		)
		w := httptest.NewRecorder()

		handler.UploadRows(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var resp UploadRowsResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)

		if resp.Inserted != 3 {
			t.Errorf("Expected 3 inserted, got %d", resp.Inserted)
		}
		testutil.AssertRowCount(t, db, "pricing_row", 3)
	})

	t.Run("rejects an empty payload", func(t *testing.T) {
		handler, db := setupPropertyHandler(t)
		property := testutil.NewProperty().Build(t, db)

		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPost,
			"/api/property/"+property.ID+"/rows",
			`[]`,
			map[string]string{"uuid": property.ID},
		)
		w := httptest.NewRecorder()

		handler.UploadRows(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for empty upload, got %d", w.Code)
		}
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		handler, db := setupPropertyHandler(t)
		property := testutil.NewProperty().Build(t, db)

		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPost,
			"/api/property/"+property.ID+"/rows",
			`[{"date": "01/01/2024", "price": 100}]`,
			map[string]string{"uuid": property.ID},
		)
		w := httptest.NewRecorder()

		handler.UploadRows(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for malformed date, got %d", w.Code)
		}
		testutil.AssertRowCount(t, db, "pricing_row", 0)
	})

	t.Run("returns 404 for an unknown property", func(t *testing.T) {
		handler, _ := setupPropertyHandler(t)

		missing := testutil.MakeID()
		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPost,
			"/api/property/"+missing+"/rows",
			`[{"date": "2024-01-01", "price": 100}]`,
			map[string]string{"uuid": missing},
		)
		w := httptest.NewRecorder()

		handler.UploadRows(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestPropertyHandler_ListRows(t *testing.T) {
	t.Run("returns rows with whatever enrichment exists", func(t *testing.T) {
		handler, db := setupPropertyHandler(t)
		property := testutil.NewProperty().Build(t, db)
		testutil.SeedPricingRows(t, db, property.ID, "2024-01-01", 2)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/property/"+property.ID+"/rows",
			map[string]string{"uuid": property.ID},
		)
		w := httptest.NewRecorder()

		handler.ListRows(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var rows []model.PricingRow
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&rows)

		if len(rows) != 2 {
			t.Errorf("Expected 2 rows, got %d", len(rows))
		}
	})
}
