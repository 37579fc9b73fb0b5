package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAggregateCommand(opts *rootOptions) *cobra.Command {
	var optimize bool

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Run one aggregation and cleanup cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Aggregate(cmd.Context(), optimize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.Skipped {
				fmt.Fprintln(out, "No completed intervals to aggregate.")
			} else {
				fmt.Fprintf(out, "Aggregated intervals ending up to %s\n", time.Unix(report.AggregateUntil, 0).UTC().Format(time.RFC3339))
				fmt.Fprintf(out, "  hourly rows:   %d\n", report.HourlyRows)
				fmt.Fprintf(out, "  daily rows:    %d\n", report.DailyRows)
				fmt.Fprintf(out, "  raw deleted:   %d\n", report.RawDeleted)
			}
			fmt.Fprintf(out, "  history rows:  %d\n", report.HistoricalRows)
			fmt.Fprintf(out, "  daily pruned:  %d\n", report.DailyDeleted)
			fmt.Fprintf(out, "  hourly pruned: %d\n", report.HourlyDeleted)
			if optimize {
				fmt.Fprintln(out, "Database optimized.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&optimize, "optimize", false, "Run ANALYZE and VACUUM afterwards")
	return cmd
}
