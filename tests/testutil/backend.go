package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kendall-kelly/hantverk-dashboard/config"
	"github.com/kendall-kelly/hantverk-dashboard/metrics"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/routes"
	"github.com/kendall-kelly/hantverk-dashboard/services"
)

// Backend is a complete API server on an in-memory database
type Backend struct {
	Server   *httptest.Server
	DB       *gorm.DB
	Registry *prometheus.Registry
	Store    *services.MemoryStore
}

// URL is the base URL clients should use
func (b *Backend) URL() string {
	return b.Server.URL
}

// NewBackend starts a backend for the duration of the test.
// The database lives in memory and replaces the package level config.DB.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	UseTestEnvironment(t)
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Customer{}, &models.Installer{}, &models.Material{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)

	registry := prometheus.NewRegistry()
	store := services.NewMemoryStore()
	router := routes.Setup(routes.Deps{
		Metrics:        metrics.New(registry),
		Gatherer:       registry,
		Idempotency:    store,
		IdempotencyTTL: time.Hour,
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		_ = sqlDB.Close()
	})

	return &Backend{Server: server, DB: db, Registry: registry, Store: store}
}

// SeedMaterial stores a material directly and returns it with its id
func (b *Backend) SeedMaterial(t *testing.T, sku, name string, price float64) models.Material {
	t.Helper()
	material := models.Material{SKU: sku, Name: name, Price: price, Unit: models.DefaultUnit, Stock: 10}
	if err := b.DB.Create(&material).Error; err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}
	return material
}

// SeedCustomer stores a customer directly and returns it with its id
func (b *Backend) SeedCustomer(t *testing.T, name string) models.Customer {
	t.Helper()
	customer := models.Customer{Name: name}
	if err := b.DB.Create(&customer).Error; err != nil {
		t.Fatalf("Failed to seed customer: %v", err)
	}
	return customer
}
