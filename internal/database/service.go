package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"apptrack/internal/database/queries"
	dberrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/infrastructure/logging"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteService implements Service on top of mattn/go-sqlite3.
//
// Lifecycle: NewSQLiteService, Connect, optionally Migrate, then hand DB()
// and GetQueries() to repositories. Close releases the pool.
type SQLiteService struct {
	db              *sql.DB
	config          *Config
	migrationRunner MigrationManager
	queries         *queries.Queries
	logger          logging.Logger
}

var _ Service = (*SQLiteService)(nil)

// NewSQLiteService creates a new SQLite database service
func NewSQLiteService(logger logging.Logger) *SQLiteService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SQLiteService{logger: logger}
}

func notConnected(op string) error {
	return dberrors.NewRepositoryErrorWithContext(op, errors.New("database not connected"), dberrors.ErrCodeConnection, nil)
}

// Connect opens the database file (creating it and its directory if needed)
func (s *SQLiteService) Connect(ctx context.Context, config *Config) error {
	if config == nil {
		return dberrors.HandleValidationError("Connect", "config", "nil", "config is required")
	}
	if err := config.Validate(); err != nil {
		return dberrors.NewRepositoryErrorWithContext("Connect", err, dberrors.ErrCodeValidation, map[string]string{
			"path": config.Path,
		})
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close existing database connection", "error", err)
		}
		s.db = nil
		s.queries = nil
		s.migrationRunner = nil
	}

	db, err := sql.Open("sqlite3", config.GetConnectionString())
	if err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Connect", err, map[string]string{"phase": "open", "path": config.Path})
	}

	s.configureConnectionPool(db, config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return dberrors.NewRepositoryErrorWithContext("Connect", err, dberrors.ErrCodeConnection, map[string]string{
			"phase": "ping",
			"path":  config.Path,
		})
	}

	s.config = config
	s.db = db
	s.queries = queries.New(db)
	s.migrationRunner = NewMigrationRunner(db, s.logger)

	s.logger.Debug("Connected to SQLite database", "path", config.Path)
	return nil
}

// Close closes the database connection
func (s *SQLiteService) Close() error {
	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Close", err, map[string]string{"phase": "close"})
	}

	path := s.config.Path
	s.db = nil
	s.queries = nil
	s.migrationRunner = nil
	s.config = nil

	s.logger.Debug("Closed SQLite database connection", "path", path)
	return nil
}

// Migrate validates the embedded migrations and applies pending ones
func (s *SQLiteService) Migrate(ctx context.Context) error {
	if s.db == nil {
		return notConnected("Migrate")
	}
	if s.migrationRunner == nil {
		return dberrors.HandleValidationError("Migrate", "migrationRunner", "nil", "migration runner not initialized")
	}

	if err := s.migrationRunner.ValidateMigrations(); err != nil {
		return dberrors.NewRepositoryErrorWithContext("Migrate", err, dberrors.ErrCodeSchema, map[string]string{
			"phase": "validation",
		})
	}

	if err := s.migrationRunner.RunMigrations(ctx); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Migrate", err, map[string]string{
			"phase": "execution",
		})
	}

	return nil
}

// Health pings the database and runs a trivial query
func (s *SQLiteService) Health(ctx context.Context) error {
	if s.db == nil {
		return notConnected("Health")
	}

	if err := s.db.PingContext(ctx); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Health", err, map[string]string{"phase": "ping"})
	}

	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Health", err, map[string]string{"phase": "query"})
	}
	if result != 1 {
		return dberrors.HandleValidationError("Health", "query_result", fmt.Sprintf("%d", result), "expected result 1")
	}

	return nil
}

// DB returns the underlying database connection for use by repositories
func (s *SQLiteService) DB() *sql.DB {
	return s.db
}

// GetQueries returns the queries instance for repository use
func (s *SQLiteService) GetQueries() *queries.Queries {
	return s.queries
}

func (s *SQLiteService) GetMigrationVersion(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, notConnected("GetMigrationVersion")
	}
	if s.migrationRunner == nil {
		return 0, dberrors.HandleValidationError("GetMigrationVersion", "migrationRunner", "nil", "migration runner not initialized")
	}

	version, err := s.migrationRunner.GetCurrentVersion(ctx)
	if err != nil {
		return 0, dberrors.WrapDatabaseError("GetMigrationVersion", err)
	}
	return version, nil
}

// GetStats returns connection pool statistics
func (s *SQLiteService) GetStats() sql.DBStats {
	if s.db == nil {
		return sql.DBStats{}
	}
	return s.db.Stats()
}

// Optimize runs ANALYZE and VACUUM; checkpoint and PRAGMA optimize are best effort
func (s *SQLiteService) Optimize(ctx context.Context) error {
	if s.db == nil {
		return notConnected("Optimize")
	}

	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Optimize", err, map[string]string{"phase": "analyze"})
	}

	if !s.config.IsInMemory() {
		if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			s.logger.Warn("wal_checkpoint failed", "error", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Optimize", err, map[string]string{"phase": "vacuum"})
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		s.logger.Warn("PRAGMA optimize failed", "error", err)
	}

	s.logger.Info("Database optimization completed")
	return nil
}

// configureConnectionPool pins non-WAL databases to one connection and
// caps WAL pools at four
func (s *SQLiteService) configureConnectionPool(db *sql.DB, config *Config) {
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if config.ForceSingleConnection || !strings.EqualFold(config.JournalMode, "WAL") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		s.logger.Debug("Configured SQLite for single connection mode", "journalMode", config.JournalMode)
		return
	}

	maxConns := min(max(config.MaxConnections, 1), 4)
	idleConns := max(min(config.MaxIdleConns, maxConns), 1)

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(idleConns)
	s.logger.Debug("Configured SQLite for limited connection pool (WAL mode)",
		"maxOpenConns", maxConns, "maxIdleConns", idleConns)
}
