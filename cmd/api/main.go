package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"edascope/internal"
	"edascope/internal/config"
	"edascope/internal/container"
	"edascope/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase opens the dataset catalog connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Info("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		internal.DefaultLogger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(appConfig, logger)
	if err != nil {
		logger.Error("Failed to build container: %v", err)
		os.Exit(1)
	}

	if appConfig.HasDatabase() {
		db, err := initDatabase(appConfig)
		if err != nil {
			logger.Error("Failed to initialize dataset catalog: %v", err)
			os.Exit(1)
		}
		if err := c.InitWithDatabase(ctx, db); err != nil {
			db.Close()
			logger.Error("Failed to initialize dataset catalog: %v", err)
			os.Exit(1)
		}
	} else {
		logger.Info("No DATABASE_URL configured, dataset catalog disabled")
	}

	if appConfig.Data.File != "" {
		logger.Info("Default dataset: %s", appConfig.Data.File)
	}

	err = c.Server().Start(ctx)
	if shutdownErr := c.Shutdown(context.Background()); shutdownErr != nil {
		logger.Warn("Shutdown: %v", shutdownErr)
	}
	if err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
