// cmd/devapi/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/config"
	"github.com/agri-oasis/storefront/internal/devapi"
	"github.com/agri-oasis/storefront/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	if cfg.IsProduction() {
		log.Fatal("The development marketplace API must not run in production")
	}
	gin.SetMode(gin.ReleaseMode)

	api, err := devapi.NewSeeded(devapi.Options{
		JWTSecret:   cfg.DevAPI.JWTSecret,
		TokenExpiry: cfg.DevAPI.TokenExpiry,
		BcryptCost:  cfg.DevAPI.BcryptCost,
		Seed:        cfg.DevAPI.Seed,
	}, logger.Component(log, "devapi"))
	if err != nil {
		log.WithError(err).Fatal("Failed to build development API")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.DevAPI.Port,
		Handler:      api.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":   cfg.DevAPI.Port,
			"seeded": cfg.DevAPI.Seed,
		}).Info("Development marketplace API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Development API stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown development API")
	}
}
