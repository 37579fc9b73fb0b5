package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"apptrack/internal/app"
	"apptrack/internal/config"
	apperrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/infrastructure/logging"

	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions is the state shared by all subcommands
type rootOptions struct {
	configPath string
	dbPath     string
	verbosity  int

	config *config.Config
	logger logging.Logger
	logOut io.Writer
}

// NewRootCommand builds the apptrack command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{logOut: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "apptrack",
		Short: "apptrack - record which application and window you use, and for how long",
		Long: `apptrack polls the active window once a second, stores usage intervals in a
local SQLite database and rolls them up into hourly, daily and per-app summaries.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (default: $XDG_CONFIG_HOME/apptrack/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the SQLite database (overrides database.path)")
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")

	rootCmd.AddCommand(
		newTrackCommand(opts),
		newStatsCommand(opts),
		newAggregateCommand(opts),
		newInitDBCommand(opts),
		newVersionCommand(),
	)
	return rootCmd
}

// load resolves configuration and builds the logger
func (o *rootOptions) load(cmd *cobra.Command) error {
	overrides := map[string]interface{}{}
	if o.dbPath != "" {
		overrides["database.path"] = o.dbPath
	}
	if f := cmd.Flags().Lookup("metrics-addr"); f != nil && f.Changed {
		overrides["metrics.listen"] = f.Value.String()
	}

	cfg, err := config.Load(o.configPath, overrides)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if cmd.Flags().Changed("verbose") {
		level = logging.VerbosityLevel(o.verbosity)
	}

	o.config = cfg
	o.logger = logging.NewLogger(logging.Options{Level: level, Format: cfg.Logging.Format, Output: o.logOut})
	return nil
}

// openApp connects to the database for a one-shot command
func (o *rootOptions) openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, o.config, o.logger)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", o.config.Database.Path, err)
	}
	return a, nil
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}

func errorHint(err error) string {
	switch {
	case apperrors.IsConfig(err):
		return "check the configuration file and APPTRACK_* environment variables"
	case apperrors.IsValidation(err):
		return "check the database settings (path, journal_mode, synchronous)"
	case apperrors.IsConnection(err):
		return "check that the database file exists and is writable, or pass --db"
	case apperrors.IsDetection(err):
		return "active window detection needs xdotool on Linux and osascript on macOS"
	default:
		return ""
	}
}
