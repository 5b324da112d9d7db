// Package http provides the API server, route registration and middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/allisson/busguard/internal/audit/http"
	authzHTTP "github.com/allisson/busguard/internal/authz/http"
	"github.com/allisson/busguard/internal/metrics"
	peerHTTP "github.com/allisson/busguard/internal/peer/http"
	policyHTTP "github.com/allisson/busguard/internal/policy/http"
	securityHTTP "github.com/allisson/busguard/internal/security/http"
)

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Call SetupRouter before Start to
// register the routes.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig carries the handlers and policy knobs for route registration.
type RouterConfig struct {
	SecurityHandler *securityHTTP.SecurityHandler
	PolicyHandler   *policyHTTP.PolicyHandler
	PeerHandler     *peerHTTP.PeerHandler
	AuthzHandler    *authzHTTP.AuthzHandler
	AuditLogHandler *auditHTTP.AuditLogHandler

	// AdminToken protects the management endpoints. Empty disables them.
	AdminToken string

	// Rate limiting for the decision endpoints, keyed by client address.
	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	CORSEnabled      bool
	CORSAllowOrigins string

	// MeterProvider enables HTTP metrics when set.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// SetupRouter builds the gin router and registers all routes. The decision
// endpoints stay open to the local bus daemon (rate limited); the management
// endpoints require the admin bearer token.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if cfg.AuthzHandler != nil {
		decisions := router.Group("/v1/authz")
		if cfg.RateLimitEnabled {
			decisions.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
		}
		decisions.POST("/check", cfg.AuthzHandler.CheckHandler)
		decisions.POST("/check-property", cfg.AuthzHandler.CheckPropertyHandler)
	}

	if cfg.AdminToken == "" {
		s.logger.Warn("no admin token configured, management endpoints disabled")
		s.router = router
		s.server.Handler = router
		return
	}

	admin := router.Group("/v1", AdminAuthMiddleware(cfg.AdminToken, s.logger))

	if cfg.SecurityHandler != nil {
		admin.POST("/security/claim", cfg.SecurityHandler.ClaimHandler)
		admin.POST("/security/reset", cfg.SecurityHandler.ResetHandler)
		admin.GET("/security/application", cfg.SecurityHandler.GetApplicationHandler)
		admin.PUT("/security/passcode", cfg.SecurityHandler.SetPasscodeHandler)
	}

	if cfg.PolicyHandler != nil {
		admin.POST("/policies", cfg.PolicyHandler.InstallHandler)
		admin.GET("/policies", cfg.PolicyHandler.ListHandler)
		admin.GET("/policies/active", cfg.PolicyHandler.GetActiveHandler)
		admin.DELETE("/policies", cfg.PolicyHandler.DeleteAllHandler)
	}

	if cfg.PeerHandler != nil {
		admin.POST("/peers", cfg.PeerHandler.RegisterHandler)
		admin.GET("/peers", cfg.PeerHandler.ListHandler)
		admin.GET("/peers/:id", cfg.PeerHandler.GetHandler)
		admin.DELETE("/peers/:id", cfg.PeerHandler.DeleteHandler)
		admin.POST("/peers/:id/manifests", cfg.PeerHandler.InstallManifestsHandler)
		admin.POST("/peers/:id/memberships", cfg.PeerHandler.InstallMembershipsHandler)
	}

	if cfg.AuditLogHandler != nil {
		admin.GET("/audit-logs", cfg.AuditLogHandler.ListHandler)
	}

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, checking
// the database connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start starts the HTTP server. SetupRouter must have been called.
func (s *Server) Start(ctx context.Context) error {
	if s.server.Handler == nil {
		s.server.Handler = s.router
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
