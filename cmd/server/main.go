// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	_ "panel-link/docs"
	"panel-link/internal/config"
	"panel-link/internal/database"
	"panel-link/internal/handler"
	"panel-link/internal/repository"
	"panel-link/internal/routes"
	"panel-link/internal/service"
	"panel-link/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	history       repository.CommandRepository
	deviceService *service.DeviceService
}

// @title panel-link API
// @version 0.1.0
// @description Detection, probing and command delivery for the USB-serial FPV panel

// @contact.name panel-link maintainers

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8085
// @BasePath /api/v1
func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	migrateDown := pflag.Bool("migrate-down", false, "roll back all history migrations and exit")
	pflag.Parse()

	if *migrateDown {
		if err := rollbackMigrations(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to roll back migrations: %v\n", err)
			os.Exit(1)
		}
		return
	}

	app, err := NewApplication(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// rollbackMigrations reverts the history schema of the configured database
func rollbackMigrations(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cfg.Database.Enabled {
		return errors.New("database is disabled")
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = utils.CloseLogger(logger) }()

	return database.NewMigrator(cfg.GetDatabaseDSN(), logger).Down()
}

// NewApplication creates a new application instance
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "panel-link")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg.Device)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeHistory(); err != nil {
		return nil, fmt.Errorf("failed to initialize command history: %w", err)
	}

	app.deviceService = service.BuildDeviceService(&cfg.Device, app.history, logger)

	app.initializeServer()

	return app, nil
}

// initializeHistory connects the history database, or falls back to memory
func (app *Application) initializeHistory() error {
	if !app.config.Database.Enabled {
		app.history = repository.NewMemoryCommandRepository(app.config.History.Capacity)
		app.logger.Info("Command history kept in memory",
			zap.Int("capacity", app.config.History.Capacity),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, app.config.GetDatabaseDSN(), &app.config.Database, app.logger)
	if err != nil {
		return err
	}
	app.database = db

	migrator := database.NewMigrator(app.config.GetDatabaseDSN(), app.logger)
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	app.logger.Info("Command history schema ready",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)

	app.history = repository.NewCommandRepository(db, app.logger)
	return nil
}

// initializeServer sets up the HTTP server
func (app *Application) initializeServer() {
	// A nil *database.DB must stay a nil interface for the health checks
	var db handler.DatabaseChecker
	if app.database != nil {
		db = app.database
	}

	router := routes.NewRouter(app.config, app.logger, db, app.deviceService)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go app.startCleanupService(ctx)

	app.waitForShutdown()
	cancel()

	return nil
}

// startCleanupService prunes old history records until ctx is done
func (app *Application) startCleanupService(ctx context.Context) {
	interval := app.config.History.CleanupInterval
	retention := app.config.History.Retention
	if interval <= 0 || retention <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	app.logger.Info("History cleanup started",
		zap.Duration("interval", interval),
		zap.Duration("retention", retention),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneCtx, cancel := context.WithTimeout(ctx, time.Minute)
			if _, err := app.deviceService.PruneHistory(pruneCtx, retention); err != nil {
				utils.LogError(app.logger, "History cleanup failed", err,
					zap.Duration("retention", retention),
				)
			}
			cancel()
		}
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "panel-link")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		utils.LogError(app.logger, "HTTP server shutdown error", err)
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			utils.LogError(app.logger, "Database close error", err)
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	app.logger.Info("Application shutdown completed")
	_ = utils.CloseLogger(app.logger)
}
