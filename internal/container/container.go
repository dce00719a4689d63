package container

import (
	"context"

	"edascope/adapters/postgres"
	"edascope/adapters/stats/engine"
	"edascope/internal"
	"edascope/internal/config"
	"edascope/internal/errors"
	"edascope/internal/session"
	"edascope/ports"
	"edascope/ui"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer), nil without a database
	Catalog ports.DatasetRepository

	// Analysis components
	Engine   *engine.StatsEngine
	Sessions *session.Manager
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ValidationError("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	eng := engine.NewStatsEngine(engine.Config{
		HistogramBins:       cfg.Engine.HistogramBins,
		RedundancyThreshold: cfg.Engine.RedundancyThreshold,
	})

	return &Container{
		Config:   cfg,
		Logger:   logger.Component("Container"),
		Engine:   eng,
		Sessions: session.NewManager(eng, logger),
	}, nil
}

// InitWithDatabase wires the dataset catalog and creates its schema
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return errors.ValidationError("database connection cannot be nil")
	}

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "database connection test failed")
	}

	repo := postgres.NewDatasetRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	c.Catalog = repo
	c.Logger.Info("Dataset catalog initialized")
	return nil
}

// Server builds the HTTP server over the container's components
func (c *Container) Server() *ui.Server {
	opts := []ui.Option{ui.WithLogger(c.Logger)}
	if c.Catalog != nil {
		opts = append(opts, ui.WithCatalog(c.Catalog))
	}
	return ui.NewServer(c.Config, c.Sessions, opts...)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.Info("Shutting down with %d open sessions", c.Sessions.Len())

	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
