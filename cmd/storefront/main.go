// cmd/storefront/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/config"
	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/domain/workspace"
	"github.com/agri-oasis/storefront/internal/infrastructure/database/postgres"
	redisdb "github.com/agri-oasis/storefront/internal/infrastructure/database/redis"
	"github.com/agri-oasis/storefront/internal/infrastructure/marketapi"
	"github.com/agri-oasis/storefront/internal/infrastructure/storage"
	"github.com/agri-oasis/storefront/internal/interfaces/http"
	"github.com/agri-oasis/storefront/internal/interfaces/http/routes"
	"github.com/agri-oasis/storefront/internal/pkg/logger"
	"github.com/agri-oasis/storefront/internal/pkg/pdf"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("Starting %s", cfg.App.Name)

	checks := map[string]http.HealthChecker{}
	var (
		backend     storage.Backend
		redisClient *redis.Client
		janitor     *cron.Cron
	)

	// Redis backs the rate limiter whenever it is reachable, and the
	// session slots when selected
	if cfg.Storage.Driver == "redis" || cfg.Redis.Enabled {
		conn, err := redisdb.NewConnection(cfg, logger.Component(log, "redis"))
		switch {
		case err == nil:
			defer conn.Close()
			redisClient = conn.GetClient()
			checks["redis"] = conn
		case cfg.Storage.Driver == "redis":
			log.WithError(err).Fatal("Failed to connect to Redis")
		default:
			log.WithError(err).Warn("Redis unavailable, rate limiting per process")
		}
	}

	switch cfg.Storage.Driver {
	case "redis":
		backend = storage.NewRedis(redisClient, cfg.Session.SlotTTL)
	case "postgres":
		db, err := postgres.NewConnection(cfg, logger.Component(log, "database"))
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if err := db.Health(context.Background()); err != nil {
			log.WithError(err).Fatal("Database health check failed")
		}

		migration := postgres.NewMigration(db.GetDB(), logger.Component(log, "migration"))
		if err := migration.RunAutoMigrations(); err != nil {
			log.WithError(err).Fatal("Database migration failed")
		}
		if err := migration.CreateIndexes(); err != nil {
			log.WithError(err).Warn("Index creation failed")
		}

		pg := storage.NewPostgres(db.GetDB())
		backend = pg
		checks["database"] = db
		janitor = startSlotJanitor(pg, cfg.Session.SlotTTL, logger.Component(log, "janitor"))
	default:
		backend = storage.NewMemory()
	}

	api := marketapi.New(cfg.API.BaseURL,
		marketapi.WithTimeout(cfg.API.Timeout),
		marketapi.WithLogger(logger.Component(log, "marketapi")),
	)

	validator, err := session.NewIdentityValidator()
	if err != nil {
		log.WithError(err).Fatal("Failed to compile identity schema")
	}

	registry := workspace.NewRegistry(workspace.Options{
		Storage:         backend,
		API:             api,
		Validator:       validator,
		CheckoutTimeout: cfg.Checkout.SubmitTimeout,
		IdleTTL:         cfg.Workspace.IdleTTL,
		SweepSchedule:   cfg.Workspace.SweepSchedule,
		KeepAlive:       cfg.Session.KeepAlive,
		Logger:          log,
	})
	if err := registry.Start(); err != nil {
		log.WithError(err).Fatal("Failed to schedule workspace sweep")
	}

	server := http.NewServer(cfg, routes.Dependencies{
		Config:     cfg,
		Workspaces: registry,
		Catalog:    catalog.NewService(api, cfg.Catalog.CacheTTL, logger.Component(log, "catalog")),
		Receipts:   pdf.NewService(cfg.Company),
		Logger:     log,
	}, redisClient, checks)

	log.WithField("storage", backend.Name()).Info("All systems operational")

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
	registry.Stop()
	if janitor != nil {
		<-janitor.Stop().Done()
	}

	log.Info("Server shutdown completed")
}

// startSlotJanitor deletes persisted slots not written for longer than ttl
func startSlotJanitor(pg *storage.Postgres, ttl time.Duration, log *logrus.Entry) *cron.Cron {
	if ttl <= 0 {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := pg.DeleteOlderThan(ctx, time.Now().Add(-ttl))
		if err != nil {
			log.WithError(err).Warn("Failed to delete expired session slots")
			return
		}
		if n > 0 {
			log.WithField("deleted", n).Info("Expired session slots deleted")
		}
	})
	if err != nil {
		log.WithError(err).Warn("Session slot cleanup not scheduled")
		return nil
	}
	c.Start()
	return c
}
