package cli

import (
	"fmt"

	"apptrack/internal/platform"
	"apptrack/internal/services"

	"github.com/spf13/cobra"
)

// newDetector is replaced in tests
var newDetector = platform.NewDetector

func newTrackCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "track",
		Aliases: []string{"run"},
		Short:   "Start the tracking loop in the foreground",
		Long: `Start tracking the active window. Intervals left open by a previous run are
closed, completed hours are aggregated, then the loop runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			detector, err := newDetector()
			if err != nil {
				return err
			}

			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tracking to %s. Press Ctrl+C to stop.\n", opts.config.Database.Path)

			if err := a.Track(cmd.Context(), detector, services.NewShutdownFlag()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Tracker stopped.")
			return nil
		},
	}

	cmd.Flags().String("metrics-addr", "", "Serve prometheus metrics on this address (overrides metrics.listen)")
	return cmd
}
