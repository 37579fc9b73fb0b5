package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "apptrack/internal/infrastructure/errors"

	"github.com/adrg/xdg"
)

// isolateXDG points the XDG base directories at temp dirs for one test
func isolateXDG(t *testing.T) string {
	t.Helper()
	t.Cleanup(xdg.Reload)

	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	return dataHome
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apptrack.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func configKey(err error) string {
	var cfgErr *apperrors.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Key
	}
	return ""
}

func TestLoad_Defaults(t *testing.T) {
	dataHome := isolateXDG(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	wantPath := filepath.Join(dataHome, "apptrack", "app_usage.sqlite")
	if cfg.Database.Path != wantPath {
		t.Errorf("Expected database path %s, got %s", wantPath, cfg.Database.Path)
	}
	if cfg.Database.JournalMode != "WAL" || cfg.Database.SynchronousMode != "NORMAL" {
		t.Errorf("Expected WAL/NORMAL, got %s/%s", cfg.Database.JournalMode, cfg.Database.SynchronousMode)
	}
	if cfg.Database.BusyTimeout != 5000 || cfg.Database.CacheSize != 2000 {
		t.Errorf("Expected busy timeout 5000 and cache 2000, got %d and %d", cfg.Database.BusyTimeout, cfg.Database.CacheSize)
	}
	if cfg.Tracking.PollInterval != time.Second {
		t.Errorf("Expected poll interval 1s, got %v", cfg.Tracking.PollInterval)
	}
	if cfg.Tracking.DanglingThreshold != 24*time.Hour {
		t.Errorf("Expected dangling threshold 24h, got %v", cfg.Tracking.DanglingThreshold)
	}
	if cfg.Tracking.AggregateInterval != 0 {
		t.Errorf("Expected in-loop aggregation disabled, got %v", cfg.Tracking.AggregateInterval)
	}
	if cfg.Aggregation.SummaryRetentionDays != 1 {
		t.Errorf("Expected retention 1 day, got %d", cfg.Aggregation.SummaryRetentionDays)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" {
		t.Errorf("Expected warn/text logging, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Metrics.Listen != "" {
		t.Errorf("Expected metrics disabled, got %q", cfg.Metrics.Listen)
	}
}

func TestLoad_FileEnvAndOverrides(t *testing.T) {
	isolateXDG(t)

	path := writeConfig(t, `
tracking:
  poll_interval: 2s
  aggregate_interval: 15m
aggregation:
  summary_retention_days: 7
logging:
  level: debug
  format: json
metrics:
  listen: 127.0.0.1:9464
`)
	t.Setenv("APPTRACK_TRACKING_DANGLING_THRESHOLD", "1h")

	dbPath := filepath.Join(t.TempDir(), "custom.sqlite")
	cfg, err := Load(path, map[string]interface{}{"database.path": dbPath})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Tracking.PollInterval != 2*time.Second {
		t.Errorf("Expected poll interval from file, got %v", cfg.Tracking.PollInterval)
	}
	if cfg.Tracking.AggregateInterval != 15*time.Minute {
		t.Errorf("Expected aggregate interval from file, got %v", cfg.Tracking.AggregateInterval)
	}
	if cfg.Tracking.DanglingThreshold != time.Hour {
		t.Errorf("Expected dangling threshold from env, got %v", cfg.Tracking.DanglingThreshold)
	}
	if cfg.Aggregation.SummaryRetentionDays != 7 {
		t.Errorf("Expected retention 7, got %d", cfg.Aggregation.SummaryRetentionDays)
	}
	if cfg.Database.Path != dbPath {
		t.Errorf("Expected override path %s, got %s", dbPath, cfg.Database.Path)
	}
	if cfg.Metrics.Listen != "127.0.0.1:9464" {
		t.Errorf("Expected metrics listen address, got %q", cfg.Metrics.Listen)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolateXDG(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if !apperrors.IsConfig(err) {
		t.Errorf("Expected ConfigError for a missing explicit file, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		key  string
	}{
		{"zero poll interval", "tracking:\n  poll_interval: 0s\n", "tracking.poll_interval"},
		{"negative threshold", "tracking:\n  dangling_threshold: -1h\n", "tracking.dangling_threshold"},
		{"negative retention", "aggregation:\n  summary_retention_days: -2\n", "aggregation.summary_retention_days"},
		{"zero retention", "aggregation:\n  summary_retention_days: 0\n", "aggregation.summary_retention_days"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad journal mode", "database:\n  journal_mode: SIDEWAYS\n", "database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateXDG(t)

			_, err := Load(writeConfig(t, tt.body), nil)
			if !apperrors.IsConfig(err) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if got := configKey(err); got != tt.key {
				t.Errorf("Expected key %s, got %s", tt.key, got)
			}
		})
	}
}

func TestDefaultDatabasePath_Development(t *testing.T) {
	dataHome := isolateXDG(t)

	path, err := DefaultDatabasePath("development")
	if err != nil {
		t.Fatalf("Failed to resolve path: %v", err)
	}
	if want := filepath.Join(dataHome, "apptrack-dev", "app_usage.sqlite"); path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}
}

func TestDefaultDatabasePath_Unresolvable(t *testing.T) {
	original := dataFile
	t.Cleanup(func() { dataFile = original })
	dataFile = func(string) (string, error) { return "", errors.New("permission denied") }

	_, err := DefaultDatabasePath("production")
	if !apperrors.IsConfig(err) || configKey(err) != "database.path" {
		t.Errorf("Expected database.path ConfigError, got %v", err)
	}
}
