package repository

import (
	"context"
	"database/sql"
	"time"

	"apptrack/internal/database"
	"apptrack/internal/database/queries"
	repoerrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/infrastructure/logging"
	"apptrack/internal/types"
)

// SQLiteRepository implements IntervalRepository on the app_intervals schema
type SQLiteRepository struct {
	db          *sql.DB
	queries     *queries.Queries
	dbService   database.Service
	retryConfig *repoerrors.RetryConfig
	logger      logging.Logger
	inTx        bool
}

var _ IntervalRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a repository over a connected database service
func NewSQLiteRepository(dbService database.Service, logger logging.Logger) *SQLiteRepository {
	return NewSQLiteRepositoryWithConfig(dbService, nil, logger)
}

// NewSQLiteRepositoryWithConfig creates a repository with a custom retry policy
func NewSQLiteRepositoryWithConfig(dbService database.Service, retryConfig *repoerrors.RetryConfig, logger logging.Logger) *SQLiteRepository {
	if retryConfig == nil {
		retryConfig = repoerrors.DefaultRetryConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &SQLiteRepository{
		db:          dbService.DB(),
		queries:     dbService.GetQueries(),
		dbService:   dbService,
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// SetRetryConfig updates the retry configuration for the repository
func (r *SQLiteRepository) SetRetryConfig(config *repoerrors.RetryConfig) {
	if config != nil {
		r.retryConfig = config
	}
}

// GetRetryConfig returns the current retry configuration
func (r *SQLiteRepository) GetRetryConfig() *repoerrors.RetryConfig {
	return r.retryConfig
}

// run executes op with the repository retry policy. Inside a transaction the
// whole transaction is retried instead, so single statements run once.
func (r *SQLiteRepository) run(ctx context.Context, op string, fn func() error) error {
	if r.inTx {
		return fn()
	}
	return repoerrors.WithRetryContext(ctx, r.retryConfig, fn, op)
}

// storageError classifies err and logs it: retryable failures at debug,
// everything else through LogError.
func (r *SQLiteRepository) storageError(op string, err error, fields map[string]string) *repoerrors.RepositoryError {
	repoErr := repoerrors.NewRepositoryErrorWithContext(op, err, r.classifyError(err), fields)
	if repoErr.IsRetryable() {
		r.logger.Debug("Retryable error in "+op, "error", err)
	} else {
		logging.LogError(r.logger, repoErr, op, nil)
	}
	return repoErr
}

func (r *SQLiteRepository) logSuccess(op string, start time.Time, fields map[string]interface{}) {
	logging.LogOperation(r.logger, op, time.Since(start), fields)
}

func (r *SQLiteRepository) classifyError(err error) repoerrors.ErrorCode {
	return repoerrors.ClassifyError(err)
}

func convertIntervalFromDB(row queries.AppInterval) types.Interval {
	interval := types.Interval{
		ID:            row.ID,
		AppName:       row.AppName,
		MainTitle:     row.MainWindowTitle,
		DetailedTitle: row.DetailedWindowTitle,
		StartTime:     row.StartTime,
	}
	if row.EndTime.Valid {
		end := row.EndTime.Int64
		interval.EndTime = &end
	}
	return interval
}
