package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kendall-kelly/hantverk-dashboard/config"
	"github.com/kendall-kelly/hantverk-dashboard/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Customer{}, &models.Installer{}, &models.Material{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)
	return db
}

func setupTestRouter() *gin.Engine {
	ctl := New(nil, nil)
	router := gin.New()
	router.GET("/health", ctl.HealthCheck)
	router.GET("/database/status", ctl.DatabaseStatus)
	router.GET("/customers", ctl.ListCustomers)
	router.POST("/customers", ctl.CreateCustomer)
	router.GET("/installers", ctl.ListInstallers)
	router.POST("/installers", ctl.CreateInstaller)
	router.GET("/materials", ctl.ListMaterials)
	router.POST("/materials", ctl.CreateMaterial)
	router.GET("/orders", ctl.ListOrders)
	router.POST("/orders", ctl.CreateOrder)
	router.GET("/dashboard/summary", ctl.DashboardSummary)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter()

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestDatabaseStatus(t *testing.T) {
	setupTestDB(t)
	router := setupTestRouter()

	w := doJSON(t, router, http.MethodGet, "/database/status", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Driver string   `json:"driver"`
		Tables []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sqlite", resp.Driver)
	assert.Contains(t, resp.Tables, "orders")
	assert.Contains(t, resp.Tables, "order_items")
}

func TestCreateAndListCustomers(t *testing.T) {
	setupTestDB(t)
	router := setupTestRouter()

	w := doJSON(t, router, http.MethodPost, "/customers", map[string]any{
		"name":  "  Bo Berg ",
		"email": "bo@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Bo Berg", created.Name)

	doJSON(t, router, http.MethodPost, "/customers", map[string]any{"name": "Anna Andersson"})

	w = doJSON(t, router, http.MethodGet, "/customers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var customers []models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customers))
	require.Len(t, customers, 2)
	assert.Equal(t, "Anna Andersson", customers[0].Name, "listed by name")
	assert.NotContains(t, w.Body.String(), `"phone"`, "blank optional fields are omitted")
}

func TestCreateCustomerValidation(t *testing.T) {
	setupTestDB(t)
	router := setupTestRouter()

	tests := []struct {
		name       string
		body       map[string]any
		wantDetail string
	}{
		{"missing name", map[string]any{"email": "a@b.se"}, "name is required"},
		{"blank name", map[string]any{"name": "   "}, "name is required"},
		{"bad email", map[string]any{"name": "Anna", "email": "nope"}, "email must be a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/customers", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, CodeValidation, resp.Code)
			assert.Equal(t, tt.wantDetail, resp.Detail)
		})
	}
}

func TestListEmptyCollectionsAreArrays(t *testing.T) {
	setupTestDB(t)
	router := setupTestRouter()

	for _, path := range []string{"/customers", "/installers", "/materials", "/orders"} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String(), path)
	}
}

func TestCreateInstaller(t *testing.T) {
	setupTestDB(t)
	router := setupTestRouter()

	w := doJSON(t, router, http.MethodPost, "/installers", map[string]any{
		"name":   "Erik",
		"skills": []string{"golv", " ", "kakel "},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var active models.Installer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	assert.True(t, active.Active, "active defaults to true")
	assert.Equal(t, []string{"golv", "kakel"}, active.Skills)

	w = doJSON(t, router, http.MethodPost, "/installers", map[string]any{"name": "Frida", "active": false})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/installers", nil)
	var installers []models.Installer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &installers))
	require.Len(t, installers, 2)
	assert.True(t, installers[0].Active)
	assert.False(t, installers[1].Active, "an explicit false is persisted")
	assert.Equal(t, []string{}, installers[1].Skills)
}

func TestCreateMaterial(t *testing.T) {
	setupTestDB(t)
	router := setupTestRouter()

	w := doJSON(t, router, http.MethodPost, "/materials", map[string]any{
		"sku": "MAT-001", "name": "Golvpaket", "price": 199, "stock": 12,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var material models.Material
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &material))
	assert.Equal(t, "st", material.Unit, "unit defaults to st")
	assert.Equal(t, 199.0, material.Price)

	w = doJSON(t, router, http.MethodPost, "/materials", map[string]any{"sku": "MAT-001", "name": "Annat"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decodeError(t, w).Detail, "MAT-001")

	w = doJSON(t, router, http.MethodPost, "/materials", map[string]any{"sku": "MAT-002", "name": "Fog", "price": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "price must be at least 0", decodeError(t, w).Detail)

	w = doJSON(t, router, http.MethodPost, "/materials", map[string]any{"name": "Fog"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
