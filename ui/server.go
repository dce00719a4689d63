package ui

import (
	"context"
	"net/http"
	"sync"

	"edascope/adapters/excel"
	"edascope/domain/dataset"
	"edascope/internal"
	"edascope/internal/config"
	"edascope/internal/session"
	"edascope/ports"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

// Server is the HTTP API over the session manager
type Server struct {
	router   *gin.Engine
	sessions *session.Manager
	catalog  ports.DatasetRepository // optional
	config   *config.Config
	logger   *internal.Logger
	metrics  *Metrics

	// default dataset loaded from config.Data.File
	defaultMu    sync.Mutex
	defaultTable *dataset.Table
}

// Option configures a Server
type Option func(*Server)

// WithCatalog records every loaded dataset in the catalog
func WithCatalog(repo ports.DatasetRepository) Option {
	return func(s *Server) { s.catalog = repo }
}

// WithLogger replaces the default logger
func WithLogger(logger *internal.Logger) Option {
	return func(s *Server) { s.logger = logger.Component("API") }
}

// NewServer creates the API server
func NewServer(cfg *config.Config, sessions *session.Manager, opts ...Option) *Server {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	s := &Server{
		router:   gin.New(),
		sessions: sessions,
		config:   cfg,
		logger:   internal.DefaultLogger.Component("API"),
		metrics:  NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.router.Group("/api/v1")
	api.GET("/datasets", s.handleListDatasets)

	api.POST("/sessions", s.handleCreateSession)
	api.PUT("/sessions/:id/target", s.handleSelectTarget)
	api.DELETE("/sessions/:id", s.handleCloseSession)

	sess := api.Group("/sessions/:id")
	sess.GET("/overview", s.handleOverview)
	sess.GET("/profile/:column", s.handleProfile)
	sess.GET("/relationships/:feature", s.handleRelationship)
	sess.GET("/correlations", s.handleCorrelations)
	sess.GET("/correlation-matrix", s.handleCorrelationMatrix)
	sess.GET("/redundancy", s.handleRedundancy)
	sess.GET("/pairs", s.handlePair)
	sess.GET("/impact/:feature", s.handleImpact)
	sess.GET("/crosstab/:feature", s.handleCrosstab)
	sess.GET("/classes", s.handleClasses)
	sess.GET("/report", s.handleReport)
}

// Handler exposes the router, for tests and custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting edascope API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}

// readerConfig returns the loader settings for uploads and the default file
func (s *Server) readerConfig(sheet string) excel.ExcelConfig {
	cfg := excel.DefaultExcelConfig()
	cfg.Sheet = sheet
	cfg.MaxRows = s.config.Data.MaxRows
	cfg.CoercionConfig.ParseTimestamps = s.config.Data.ParseTimestamps
	if s.config.Data.NumericRatio > 0 {
		cfg.CoercionConfig.NumericThreshold = s.config.Data.NumericRatio
	}
	return cfg
}
