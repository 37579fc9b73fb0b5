package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"apptrack/internal/database"
	apperrors "apptrack/internal/infrastructure/errors"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	appName      = "apptrack"
	databaseFile = "app_usage.sqlite"
)

// Config holds the complete application configuration
type Config struct {
	Environment string            `mapstructure:"environment"`
	Database    database.Config   `mapstructure:"database"`
	Tracking    TrackingConfig    `mapstructure:"tracking"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// TrackingConfig defines the polling loop
type TrackingConfig struct {
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	DanglingThreshold time.Duration `mapstructure:"dangling_threshold"`
	AggregateInterval time.Duration `mapstructure:"aggregate_interval"` // 0 disables
}

// AggregationConfig defines summary retention
type AggregationConfig struct {
	SummaryRetentionDays int `mapstructure:"summary_retention_days"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig defines the optional prometheus endpoint
type MetricsConfig struct {
	Listen string `mapstructure:"listen"` // empty disables
}

// dataFile resolves a path under the XDG data directory, creating parents
var dataFile = xdg.DataFile

// Load reads configuration from the given file (or config.yaml in the XDG
// config directory when empty), APPTRACK_* environment variables and
// overrides, in increasing precedence.
func Load(configPath string, overrides map[string]interface{}) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetEnvPrefix("APPTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, &apperrors.ConfigError{Key: "file", Err: fmt.Errorf("failed to read config file: %w", err)}
		}
		// No config file, use defaults and environment variables
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &apperrors.ConfigError{Err: fmt.Errorf("failed to unmarshal config: %w", err)}
	}

	if config.Database.Path == "" {
		path, err := DefaultDatabasePath(config.Environment)
		if err != nil {
			return nil, err
		}
		config.Database.Path = path
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultDatabasePath returns the database location in the XDG data
// directory. Development builds use a separate directory.
func DefaultDatabasePath(environment string) (string, error) {
	dir := appName
	if environment == "development" {
		dir += "-dev"
	}
	path, err := dataFile(filepath.Join(dir, databaseFile))
	if err != nil {
		return "", &apperrors.ConfigError{Key: "database.path", Err: fmt.Errorf("cannot resolve data directory: %w", err)}
	}
	return path, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	db := database.DefaultConfig()

	v.SetDefault("environment", "production")

	// Database defaults; path is resolved after unmarshalling
	v.SetDefault("database.path", "")
	v.SetDefault("database.max_connections", db.MaxConnections)
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", db.ConnMaxIdleTime)
	v.SetDefault("database.force_single_connection", db.ForceSingleConnection)
	v.SetDefault("database.auto_migrate", db.AutoMigrate)
	v.SetDefault("database.journal_mode", db.JournalMode)
	v.SetDefault("database.synchronous", db.SynchronousMode)
	v.SetDefault("database.cache_size", db.CacheSize)
	v.SetDefault("database.busy_timeout", db.BusyTimeout)
	v.SetDefault("database.foreign_keys", db.ForeignKeys)

	// Tracking defaults
	v.SetDefault("tracking.poll_interval", "1s")
	v.SetDefault("tracking.dangling_threshold", "24h")
	v.SetDefault("tracking.aggregate_interval", "0s")

	// Aggregation defaults
	v.SetDefault("aggregation.summary_retention_days", 1)

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	// Metrics defaults
	v.SetDefault("metrics.listen", "")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Tracking.PollInterval <= 0 {
		return &apperrors.ConfigError{Key: "tracking.poll_interval", Err: fmt.Errorf("must be positive, got %s", cfg.Tracking.PollInterval)}
	}
	if cfg.Tracking.DanglingThreshold < 0 {
		return &apperrors.ConfigError{Key: "tracking.dangling_threshold", Err: fmt.Errorf("cannot be negative, got %s", cfg.Tracking.DanglingThreshold)}
	}
	if cfg.Tracking.AggregateInterval < 0 {
		return &apperrors.ConfigError{Key: "tracking.aggregate_interval", Err: fmt.Errorf("cannot be negative, got %s", cfg.Tracking.AggregateInterval)}
	}
	if cfg.Aggregation.SummaryRetentionDays < 1 {
		return &apperrors.ConfigError{Key: "aggregation.summary_retention_days", Err: fmt.Errorf("must be at least 1, got %d", cfg.Aggregation.SummaryRetentionDays)}
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		return &apperrors.ConfigError{Key: "logging.format", Err: fmt.Errorf("unknown format %q (want json or text)", cfg.Logging.Format)}
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &apperrors.ConfigError{Key: "logging.level", Err: fmt.Errorf("unknown level %q", cfg.Logging.Level)}
	}

	if err := cfg.Database.Validate(); err != nil {
		return &apperrors.ConfigError{Key: "database", Err: err}
	}
	return nil
}
