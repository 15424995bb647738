package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakehouse/internal/database"
	"bakehouse/internal/inventory"
	"bakehouse/internal/models"
	"bakehouse/internal/production"
	"bakehouse/internal/units"
)

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	service := inventory.NewService(db, inventory.NewEngine(units.NewConverter(), nil), nil, nil, nil)
	assembler := production.NewAssembler(db, service, nil)
	return NewServer(db, service, assembler, nil, nil), db
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConsumeEndpoint(t *testing.T) {
	s, db := newTestServer(t)

	flour := models.Ingredient{Name: "Flour", CanonicalUnit: units.UnitGram}
	require.NoError(t, db.Create(&flour).Error)
	lot := models.InventoryLot{
		IngredientID: flour.ID, LotNumber: uuid.New().String(),
		Quantity: decimal.RequireFromString("10"), Unit: units.UnitGram,
		AcquiredAt: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&lot).Error)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/inventory/consume", map[string]interface{}{
		"ingredient_id": flour.ID,
		"quantity":      "15",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result inventory.ConsumptionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Satisfied)
	assert.Equal(t, "10", result.ConsumedTotal.String())
	assert.Equal(t, "5", result.Shortfall.String())
	require.Len(t, result.Breakdown, 1)
}

func TestConsumeEndpointErrorMapping(t *testing.T) {
	s, db := newTestServer(t)

	flour := models.Ingredient{Name: "Flour", CanonicalUnit: units.UnitGram}
	require.NoError(t, db.Create(&flour).Error)

	// zero quantity -> 400
	rec := doJSON(t, s, http.MethodPost, "/api/v1/inventory/consume", map[string]interface{}{
		"ingredient_id": flour.ID,
		"quantity":      "0",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown ingredient -> 404
	rec = doJSON(t, s, http.MethodPost, "/api/v1/inventory/consume", map[string]interface{}{
		"ingredient_id": 999,
		"quantity":      "1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPurchaseCreatesLotEndpoint(t *testing.T) {
	s, db := newTestServer(t)

	butter := models.Ingredient{Name: "Butter", CanonicalUnit: units.UnitGram}
	require.NoError(t, db.Create(&butter).Error)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/purchases", map[string]interface{}{
		"ingredient_id": butter.ID,
		"quantity":      "500",
		"unit":          "g",
		"unit_price":    "0.012",
		"currency":      "EUR",
		"supplier":      "Dairy Co",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	lots := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/v1/ingredients/%d/lots", butter.ID), nil)
	require.Equal(t, http.StatusOK, lots.Code)
	var listed []models.InventoryLot
	require.NoError(t, json.Unmarshal(lots.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "500", listed[0].Quantity.String())
}

func TestCreateIngredientValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/ingredients", map[string]interface{}{
		"name":           "Honey",
		"canonical_unit": "bushel",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/ingredients", map[string]interface{}{
		"name":           "Honey",
		"canonical_unit": "g",
		"category":       "sweetener",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}
