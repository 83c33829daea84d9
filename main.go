package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kendall-kelly/hantverk-dashboard/config"
	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/metrics"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/routes"
	"github.com/kendall-kelly/hantverk-dashboard/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "hantverk-api",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, "config.invalid", err)
		os.Exit(1)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info(log.WithField(ctx, "env", cfg.GoEnv), "server.starting")

	if err := config.ConnectDatabase(cfg); err != nil {
		log.Error(ctx, "database.connect_failed", err)
		os.Exit(1)
	}
	if err := migrate(); err != nil {
		log.Error(ctx, "database.migrate_failed", err)
		os.Exit(1)
	}
	log.Info(ctx, "database.migrated")

	store, closeStore, err := idempotencyStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "idempotency.store_failed", err)
		os.Exit(1)
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := routes.Setup(routes.Deps{
		Log:            log,
		Metrics:        metrics.New(registry),
		Gatherer:       registry,
		Idempotency:    store,
		IdempotencyTTL: cfg.IdempotencyTTL,
		CORSOrigins:    cfg.CORSOrigins,
	})

	addr := ":" + cfg.Port
	log.Info(log.WithField(ctx, "addr", addr), "server.listening")
	if err := router.Run(addr); err != nil {
		log.Error(ctx, "server.failed", err)
		os.Exit(1)
	}
}

// migrate creates or updates the tables for every stored model
func migrate() error {
	return config.GetDB().AutoMigrate(
		&models.Customer{},
		&models.Installer{},
		&models.Material{},
		&models.Order{},
		&models.OrderItem{},
	)
}

// idempotencyStore uses Redis when REDIS_URL is set and an in-process store otherwise
func idempotencyStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (services.IdempotencyStore, func(), error) {
	if cfg.RedisURL == "" {
		log.Warn(ctx, "idempotency.memory_store", fmt.Errorf("REDIS_URL not set, replays are kept in process"))
		return services.NewMemoryStore(), func() {}, nil
	}

	store, err := services.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn(ctx, "idempotency.close_failed", err)
		}
	}, nil
}
