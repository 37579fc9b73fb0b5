package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dberrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/infrastructure/logging"
)

func connectTestService(t *testing.T, config *Config) *SQLiteService {
	t.Helper()

	service := NewSQLiteService(logging.NopLogger{})
	if err := service.Connect(context.Background(), config); err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { service.Close() })
	return service
}

func TestSQLiteService_ConnectCreatesFile(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "data", "app_usage.sqlite")

	config := DefaultConfig()
	config.Path = dbPath
	service := connectTestService(t, config)

	if err := service.Health(context.Background()); err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("Database file was not created: %v", err)
	}
	if service.config != config {
		t.Errorf("Expected Config() to return the connect config")
	}
}

func TestSQLiteService_MigrateCreatesSchema(t *testing.T) {
	t.Parallel()
	service := connectTestService(t, TestConfig())
	ctx := context.Background()

	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	// second run is a no-op
	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("Failed to re-run migrations: %v", err)
	}

	for _, table := range []string{"app_intervals", "hourly_summary", "daily_summary", "days_summary_by_app"} {
		var n int
		if err := service.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}

	version, err := service.GetMigrationVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected migration version 1, got %d", version)
	}
}

func TestSQLiteService_ConnectionPool(t *testing.T) {
	t.Parallel()

	walConfig := DefaultConfig()
	walConfig.Path = filepath.Join(t.TempDir(), "wal.sqlite")
	walConfig.MaxConnections = 10
	walConfig.MaxIdleConns = 5
	if got := connectTestService(t, walConfig).GetStats().MaxOpenConnections; got != 4 {
		t.Errorf("Expected WAL pool capped at 4, got %d", got)
	}

	memService := connectTestService(t, TestConfig())
	if got := memService.GetStats().MaxOpenConnections; got != 1 {
		t.Errorf("Expected single connection for in-memory database, got %d", got)
	}
}

func TestSQLiteService_NotConnected(t *testing.T) {
	t.Parallel()
	service := NewSQLiteService(nil)
	ctx := context.Background()

	if err := service.Health(ctx); !dberrors.IsConnection(err) {
		t.Errorf("Expected connection error from Health, got %v", err)
	}
	if err := service.Migrate(ctx); !dberrors.IsConnection(err) {
		t.Errorf("Expected connection error from Migrate, got %v", err)
	}
	if _, err := service.GetMigrationVersion(ctx); !dberrors.IsConnection(err) {
		t.Errorf("Expected connection error from GetMigrationVersion, got %v", err)
	}
	if err := service.Optimize(ctx); !dberrors.IsConnection(err) {
		t.Errorf("Expected connection error from Optimize, got %v", err)
	}
	if err := service.Close(); err != nil {
		t.Errorf("Close on unconnected service should be a no-op, got %v", err)
	}
	if service.DB() != nil || service.GetQueries() != nil {
		t.Error("Expected nil DB and queries before Connect")
	}
}

func TestSQLiteService_ConnectInvalidConfig(t *testing.T) {
	t.Parallel()
	service := NewSQLiteService(logging.NopLogger{})

	config := DefaultConfig()
	config.Path = ""
	if err := service.Connect(context.Background(), config); !dberrors.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if err := service.Connect(context.Background(), nil); !dberrors.IsValidation(err) {
		t.Errorf("Expected validation error for nil config, got %v", err)
	}
}

func TestSQLiteService_CloseNullsReferences(t *testing.T) {
	t.Parallel()
	service := NewSQLiteService(logging.NopLogger{})
	if err := service.Connect(context.Background(), TestConfig()); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	if err := service.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if service.DB() != nil || service.GetQueries() != nil {
		t.Error("Expected references to be cleared after Close")
	}
}

func TestSQLiteService_Optimize(t *testing.T) {
	t.Parallel()
	config := DefaultConfig()
	config.Path = filepath.Join(t.TempDir(), "optimize.sqlite")
	service := connectTestService(t, config)
	ctx := context.Background()

	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := service.Optimize(ctx); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
}
