package app

import (
	"context"
	"time"

	"apptrack/internal/config"
	"apptrack/internal/database"
	"apptrack/internal/infrastructure/errors"
	"apptrack/internal/infrastructure/logging"
	"apptrack/internal/metrics"
	"apptrack/internal/platform"
	"apptrack/internal/repository"
	"apptrack/internal/services"
	"apptrack/internal/types"

	"github.com/coder/quartz"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App wires the database, repository and services for one command
type App struct {
	config     *config.Config
	clock      quartz.Clock
	dbService  database.Service
	repository repository.IntervalRepository
	aggregator *services.Aggregator
	stats      *services.StatsService
	logger     logging.Logger
}

// Option customises App construction
type Option func(*App)

// WithClock replaces the wall clock, for tests
func WithClock(clock quartz.Clock) Option {
	return func(a *App) { a.clock = clock }
}

// New opens the database and runs migrations. Any failure here is fatal for
// the calling command. Storage retries are reported through logger.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	errors.SetRetryLogger(errors.NewLoggerBridge(logger))

	a := &App{
		config: cfg,
		clock:  quartz.NewReal(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	dbService := database.NewSQLiteService(logger)
	if err := dbService.Connect(startCtx, &cfg.Database); err != nil {
		return nil, err
	}

	if err := dbService.Migrate(startCtx); err != nil {
		dbService.Close()
		return nil, err
	}

	a.dbService = dbService
	a.wireServices()

	logger.Debug("Application initialized", "db_path", cfg.Database.Path, "environment", cfg.Environment)
	return a, nil
}

// wireServices builds the repository and services on the current connection
func (a *App) wireServices() {
	a.repository = repository.NewSQLiteRepository(a.dbService, a.logger)
	a.aggregator = services.NewAggregator(a.repository, a.clock, a.logger, a.config.Aggregation.SummaryRetentionDays)
	a.stats = services.NewStatsService(a.repository, a.clock, a.logger)
}

// Repository exposes the interval store
func (a *App) Repository() repository.IntervalRepository {
	return a.repository
}

// Track recovers dangling intervals, aggregates, installs the shutdown
// handler on stop and runs the polling loop until stop is set or ctx ends.
func (a *App) Track(ctx context.Context, detector platform.ActivityDetector, stop *services.ShutdownFlag) error {
	tracker := services.NewTracker(a.repository, detector, a.aggregator, a.clock, a.logger, services.TrackerConfig{
		PollInterval:      a.config.Tracking.PollInterval,
		DanglingThreshold: a.config.Tracking.DanglingThreshold,
		AggregateInterval: a.config.Tracking.AggregateInterval,
	})

	if _, err := tracker.Recover(ctx); err != nil {
		return err
	}

	if _, err := a.aggregator.Run(ctx); err != nil {
		a.logger.Warn("Startup aggregation failed, continuing", "error", err)
	}

	if err := stop.Install(); err != nil {
		return err
	}
	defer stop.Stop()

	if addr := a.config.Metrics.Listen; addr != "" {
		server := metrics.NewServer(addr, a.logger)
		if err := server.Start(); err != nil {
			return &errors.ConfigError{Key: "metrics.listen", Err: err}
		}
		defer server.Stop(shutdownTimeout)
	}

	return tracker.Run(ctx, stop)
}

// Stats returns usage for every reporting period
func (a *App) Stats(ctx context.Context, level types.AggregationLevel) ([]*types.UsageData, error) {
	return a.stats.AllUsage(ctx, level)
}

// Aggregate forces one aggregation cycle, optionally followed by ANALYZE and VACUUM
func (a *App) Aggregate(ctx context.Context, optimize bool) (*types.AggregationReport, error) {
	report, err := a.aggregator.Run(ctx)
	if err != nil {
		return nil, err
	}
	if optimize {
		if err := a.dbService.Optimize(ctx); err != nil {
			return report, err
		}
	}
	return report, nil
}

// InitDB checks the migrated schema and returns its version
func (a *App) InitDB(ctx context.Context) (int64, error) {
	if err := a.checkDatabase(ctx); err != nil {
		return 0, err
	}
	return a.dbService.GetMigrationVersion(ctx)
}

// checkDatabase runs a health check, reconnecting once on a retryable failure
func (a *App) checkDatabase(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := a.dbService.Health(healthCtx)
	if err == nil {
		return nil
	}
	if !errors.IsRetryable(err) {
		return errors.NewRepositoryErrorWithContext("startup", err, errors.ClassifyError(err), map[string]string{
			"operation": "health_check",
		})
	}
	return a.reconnectDatabase(ctx)
}

// reconnectDatabase handles database reconnection and migration
func (a *App) reconnectDatabase(ctx context.Context) error {
	a.logger.Warn("Database connection lost, attempting to reconnect")

	reconnectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.dbService.Connect(reconnectCtx, &a.config.Database); err != nil {
		return errors.NewRepositoryErrorWithContext("startup", err, errors.ErrCodeConnection, map[string]string{
			"operation": "reconnect",
			"db_path":   a.config.Database.Path,
		})
	}
	if err := a.dbService.Migrate(reconnectCtx); err != nil {
		return errors.NewRepositoryErrorWithContext("startup", err, errors.ErrCodeSchema, map[string]string{
			"operation": "migrate",
			"db_path":   a.config.Database.Path,
		})
	}

	a.wireServices()
	a.logger.Info("Database reconnected")
	return nil
}

// Close closes the database, giving up after shutdownTimeout
func (a *App) Close() error {
	if a.dbService == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- a.dbService.Close() }()

	select {
	case err := <-done:
		if err != nil {
			return errors.NewRepositoryErrorWithContext("shutdown", err, errors.ClassifyError(err), map[string]string{
				"operation": "close_connection",
			})
		}
		a.logger.Debug("Database connection closed")
		return nil
	case <-time.After(shutdownTimeout):
		a.logger.Error("Database close operation timed out")
		return errors.NewRepositoryError("shutdown", context.DeadlineExceeded, errors.ErrCodeTimeout)
	}
}
