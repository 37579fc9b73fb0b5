package cli

import (
	"fmt"
	"io"

	"apptrack/internal/bucket"
	"apptrack/internal/types"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var levelName string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage for today, the last completed hour and the current hour",
		Example: `  apptrack stats
  apptrack stats --level detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := types.ParseAggregationLevel(levelName)
			if err != nil {
				return err
			}

			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			usage, err := a.Stats(cmd.Context(), level)
			if err != nil {
				return err
			}
			printUsage(cmd.OutOrStdout(), level, usage)
			return nil
		},
	}

	cmd.Flags().StringVar(&levelName, "level", "app", "Aggregation level: app or detailed")
	return cmd
}

var emptyMessages = map[types.TimePeriod]string{
	types.PeriodToday:             "No usage recorded today yet.",
	types.PeriodLastCompletedHour: "No usage recorded in the last completed hour.",
	types.PeriodCurrentHour:       "No activity recorded yet for the current hour.",
}

func printUsage(w io.Writer, level types.AggregationLevel, usage []*types.UsageData) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	fmt.Fprintf(w, "Aggregation: %s\n", level)
	for _, data := range usage {
		fmt.Fprintln(w)
		cyan.Fprintf(w, "--- %s ---\n", data.Period)

		if data.IsEmpty() {
			yellow.Fprintln(w, emptyMessages[data.Period])
			continue
		}
		for _, record := range data.Records {
			fmt.Fprintf(w, "%-40s: ", recordLabel(record))
			green.Fprintln(w, bucket.FormatDuration(record.Duration))
		}
		fmt.Fprintf(w, "%-40s: %s\n", "Total", bucket.FormatDuration(data.TotalTime))
	}
}

func recordLabel(record types.UsageRecord) string {
	if record.DetailedTitle == "" {
		return record.AppName
	}
	return record.AppName + " | " + record.DetailedTitle
}
