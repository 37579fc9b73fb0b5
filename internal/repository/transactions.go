package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	repoerrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/infrastructure/logging"
)

// WithTransaction runs fn inside a transaction, retrying the whole
// transaction on retryable failures. Nested calls reuse the outer transaction.
func (r *SQLiteRepository) WithTransaction(ctx context.Context, fn func(repo IntervalRepository) error) error {
	return r.inTransaction(ctx, func(txRepo *SQLiteRepository) error {
		return fn(txRepo)
	})
}

func (r *SQLiteRepository) inTransaction(ctx context.Context, fn func(txRepo *SQLiteRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	start := time.Now()

	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			repoErr := repoerrors.NewRepositoryError("WithTransaction.Begin", err, r.classifyError(err))
			if repoErr.IsRetryable() {
				r.logger.Debug("Retryable error beginning transaction", "error", err)
			} else {
				logging.LogError(r.logger, repoErr, "WithTransaction.Begin", nil)
			}
			return repoErr
		}

		var originalErr error
		var committed bool
		defer func() {
			if !committed {
				if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
					r.logger.Debug("Failed to rollback transaction",
						"rollback_error", rollbackErr,
						"original_error", originalErr)
				}
			}
		}()

		txRepo := &SQLiteRepository{
			db:          r.db,
			queries:     r.queries.WithTx(tx),
			dbService:   r.dbService,
			retryConfig: r.retryConfig,
			logger:      r.logger,
			inTx:        true,
		}

		if err := fn(txRepo); err != nil {
			originalErr = err
			r.logger.Debug("Transaction function failed", "error", err)
			return err
		}

		if err := tx.Commit(); err != nil {
			originalErr = err
			repoErr := repoerrors.NewRepositoryError("WithTransaction.Commit", err, r.classifyError(err))
			if repoErr.IsRetryable() {
				r.logger.Debug("Retryable error committing transaction", "error", err)
			} else {
				logging.LogError(r.logger, repoErr, "WithTransaction.Commit", nil)
			}
			return repoErr
		}
		committed = true
		return nil
	}, "WithTransaction")

	if err == nil {
		logging.LogOperation(r.logger, "WithTransaction", time.Since(start), nil)
	}
	return err
}
