// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/fraudlens/fraudlens/internal/audit"
	"github.com/fraudlens/fraudlens/internal/config"
	"github.com/fraudlens/fraudlens/internal/evaluation"
	"github.com/fraudlens/fraudlens/internal/health"
	"github.com/fraudlens/fraudlens/internal/logging"
	"github.com/fraudlens/fraudlens/internal/metrics"
	"github.com/fraudlens/fraudlens/internal/model"
	"github.com/fraudlens/fraudlens/internal/ratelimit"
	"github.com/fraudlens/fraudlens/internal/realtime"
	"github.com/fraudlens/fraudlens/internal/scoring"
	"github.com/fraudlens/fraudlens/internal/security"
	"github.com/fraudlens/fraudlens/internal/traces"
)

// MaxRequestSize caps request bodies; verification payloads are tiny, but
// /accuracy/custom accepts row batches.
const MaxRequestSize = 1 << 20 // 1MB

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg          *config.Config
	clf          model.Classifier
	verifier     *scoring.Service
	evaluator    *evaluation.Evaluator
	auditStore   audit.Store
	feedHub      *realtime.Hub
	rateLimiter  *ratelimit.Limiter
	healthReg    *health.Registry
	db           *sql.DB // nil if using in-memory
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	traceStop    func(context.Context) error
	cancelRunCtx context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClassifier injects a classifier, bypassing the artifact on disk (for testing)
func WithClassifier(clf model.Classifier) Option {
	return func(s *Server) {
		s.clf = clf
	}
}

// WithAuditStore injects an audit store (for testing)
func WithAuditStore(store audit.Store) Option {
	return func(s *Server) {
		s.auditStore = store
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	// Apply options first (may set classifier/store/logger)
	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()

	// Load the classifier unless one was injected. A missing artifact is
	// not fatal: the server starts, reports unready, and refuses /verify.
	if s.clf == nil {
		m, err := model.Load(cfg.ModelPath)
		switch {
		case err == nil:
			s.clf = m
			s.logger.Info("model loaded", "path", cfg.ModelPath, "type", m.Type())
		case errors.Is(err, model.ErrNotFound):
			s.logger.Error("model artifact not found, verifications disabled", "path", cfg.ModelPath)
		default:
			return nil, fmt.Errorf("failed to load model: %w", err)
		}
	}

	// Initialize storage (Postgres if DATABASE_URL set, otherwise in-memory)
	if s.auditStore == nil {
		if cfg.DatabaseURL != "" {
			db, err := sql.Open("postgres", cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("failed to open database: %w", err)
			}

			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)

			if err := db.Ping(); err != nil {
				return nil, fmt.Errorf("failed to connect to database: %w", err)
			}

			s.db = db
			store := audit.NewPostgresStore(db)
			if err := store.Migrate(ctx); err != nil {
				s.logger.Warn("failed to migrate audit store", "error", err)
			}
			s.auditStore = store
			s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))
		} else {
			s.auditStore = audit.NewMemoryStore()
			s.logger.Info("using in-memory storage (data will not persist)")
		}
	}

	// Tracing (no-op when endpoint unset)
	stop, err := traces.Init(ctx, cfg.OTLPEndpoint, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize tracing", "error", err)
	} else {
		s.traceStop = stop
	}

	// Realtime decision feed
	s.feedHub = realtime.NewHub(s.logger)

	// Verification service
	s.verifier = scoring.NewService(s.clf, s.auditStore,
		scoring.WithAuditTimeout(cfg.AuditWriteTimeout),
		scoring.WithEvents(s.feedHub),
	)

	// Evaluator over the configured dataset
	s.evaluator = evaluation.New(cfg.DatasetPath)

	// Health checks
	s.healthReg = health.NewRegistry()
	s.healthReg.Register("model", health.ModelChecker(s.verifier.ModelLoaded))
	s.healthReg.Register("database", health.DatabaseChecker(s.db))
	s.healthReg.Register("dataset", health.DatasetChecker(cfg.DatasetPath, func(path string) error {
		_, err := os.Stat(path)
		return err
	}))

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Empty TRUSTED_PROXIES trusts no proxy: ClientIP is the peer address
	// and forwarded headers are ignored, which keeps the per-IP rate
	// limiter honest when the service is exposed directly.
	var proxies []string
	if cfg.TrustedProxies != "" {
		for _, p := range strings.Split(cfg.TrustedProxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				proxies = append(proxies, p)
			}
		}
	}
	if err := s.router.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (allow all origins - screening runs behind the shop's gateway)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit
	s.router.Use(security.BodySizeLimit(MaxRequestSize))

	// Rate limiting
	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	s.rateLimiter = ratelimit.New(limiterCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a time-derived ID; requests still get correlated.
		return big.NewInt(time.Now().UnixNano()).Text(16)
	}
	return hex.EncodeToString(b)
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

// availableEndpoints is returned by the JSON 404 handler so integrators can
// discover the API without docs.
var availableEndpoints = []string{
	"/verify",
	"/health",
	"/model-info",
	"/fraud-attempts",
	"/accuracy",
	"/accuracy/detailed",
	"/accuracy/custom",
	"/performance-summary",
}

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// Verification
	s.router.POST("/verify", s.verifyHandler)

	// Audit trail of blocked attempts
	s.router.GET("/fraud-attempts", s.fraudAttemptsHandler)

	// Model metadata and accuracy evaluation
	s.router.GET("/model-info", s.modelInfoHandler)
	s.router.GET("/accuracy", s.accuracyHandler)
	s.router.GET("/accuracy/detailed", s.detailedAccuracyHandler)
	s.router.POST("/accuracy/custom", s.customAccuracyHandler)
	s.router.GET("/performance-summary", s.performanceSummaryHandler)

	// WebSocket decision feed
	s.router.GET("/ws", func(c *gin.Context) {
		s.feedHub.HandleWebSocket(c.Writer, c.Request)
	})
	s.router.GET("/feed/stats", s.feedStatsHandler)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":               "Endpoint not found",
			"available_endpoints": availableEndpoints,
		})
	})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the server and blocks until shutdown
func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"model_loaded", s.verifier.ModelLoaded(),
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start decision feed
	go s.feedHub.Run(runCtx)

	// Export connection pool stats when backed by Postgres
	if s.db != nil {
		metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for background goroutines (feed hub, stats collector)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	if s.traceStop != nil {
		if err := s.traceStop(ctx); err != nil {
			s.logger.Error("trace exporter shutdown error", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}
