// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/config"
	"github.com/agri-oasis/storefront/internal/interfaces/http/middleware"
	"github.com/agri-oasis/storefront/internal/interfaces/http/routes"
	"github.com/agri-oasis/storefront/internal/pkg/logger"
)

// HealthChecker is a dependency probed by /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	deps        routes.Dependencies
	logger      *logrus.Logger
	redisClient *redis.Client
	checks      map[string]HealthChecker
	gin         *gin.Engine
	httpServer  *http.Server
	startedAt   time.Time
}

// NewServer creates a new HTTP server instance. redisClient may be nil, in
// which case rate limiting is per process.
func NewServer(cfg *config.Config, deps routes.Dependencies, redisClient *redis.Client, checks map[string]HealthChecker) *Server {
	if deps.Config == nil {
		deps.Config = cfg
	}
	return &Server{
		config:      cfg,
		deps:        deps,
		logger:      deps.Logger,
		redisClient: redisClient,
		checks:      checks,
		startedAt:   time.Now(),
	}
}

// Handler builds the gin engine on first use
func (s *Server) Handler() http.Handler {
	if s.gin == nil {
		s.gin = gin.New()
		if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
			s.logger.WithError(err).Warn("Invalid trusted proxies, trusting none")
			_ = s.gin.SetTrustedProxies(nil)
		}
		s.setupMiddleware()
		s.setupRoutes()
	}
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.WithFields(logrus.Fields{
		"port":    s.config.Server.Port,
		"api":     s.config.API.BaseURL,
		"storage": s.config.Storage.Driver,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures the middleware shared by every route
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(
		s.config.Security.RateLimitPerMinute,
		s.config.Security.RateLimitBurst,
		s.redisClient,
		logger.Component(s.logger, "rate_limit"),
	))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	app := s.gin.Group("")
	routes.SetupRoutes(app, s.deps)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"login":       "/login",
			})
		})
	}
}

// healthCheck probes every registered dependency
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	for name, check := range s.checks {
		if err := check.Health(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " check failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
		"storage":     s.config.Storage.Driver,
	})
}

// readinessCheck reports uptime and the number of live workspaces
func (s *Server) readinessCheck(c *gin.Context) {
	body := gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}
	if counter, ok := s.deps.Workspaces.(interface{ Len() int }); ok {
		body["workspaces"] = counter.Len()
	}
	c.JSON(http.StatusOK, body)
}
