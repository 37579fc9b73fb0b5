package repository

import (
	"context"
	"fmt"

	"apptrack/internal/bucket"
	"apptrack/internal/database/queries"
	repoerrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/types"
)

// SummaryUsage sums a rollup table over buckets starting inside bounds.
// days_summary_by_app has no title column, so detailed reads return its
// rows with an empty DetailedTitle.
func (r *SQLiteRepository) SummaryUsage(ctx context.Context, table SummaryTable, level types.AggregationLevel, bounds bucket.Bounds) ([]types.UsageRecord, error) {
	const op = "SummaryUsage"
	arg := queries.RangeParams{Start: bounds.Start, End: bounds.End}
	detailed := level == types.LevelDetailed

	var records []types.UsageRecord
	err := r.run(ctx, op, func() error {
		var (
			apps    []queries.AppTotal
			details []queries.DetailedTotal
			err     error
		)
		switch {
		case table == SummaryHourly && detailed:
			details, err = r.queries.HourlyUsageDetailed(ctx, arg)
		case table == SummaryHourly:
			apps, err = r.queries.HourlyUsageByApp(ctx, arg)
		case table == SummaryDaily && detailed:
			details, err = r.queries.DailyUsageDetailed(ctx, arg)
		case table == SummaryDaily:
			apps, err = r.queries.DailyUsageByApp(ctx, arg)
		case table == SummaryHistorical:
			apps, err = r.queries.HistoricalUsageByApp(ctx, arg)
		default:
			return repoerrors.HandleValidationError(op, "table", fmt.Sprint(int(table)), "unknown summary table")
		}
		if err != nil {
			return r.storageError(op, err, map[string]string{"table": table.String()})
		}
		records = toUsageRecords(apps, details)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RawUsage sums the part of each unaggregated interval that overlaps bounds.
// Open intervals count up to now; the upper clamp is min(now, bounds.End).
func (r *SQLiteRepository) RawUsage(ctx context.Context, level types.AggregationLevel, bounds bucket.Bounds, now int64) ([]types.UsageRecord, error) {
	const op = "RawUsage"
	arg := queries.RawUsageParams{Start: bounds.Start, End: min(now, bounds.End), Now: now}

	var records []types.UsageRecord
	err := r.run(ctx, op, func() error {
		var (
			apps    []queries.AppTotal
			details []queries.DetailedTotal
			err     error
		)
		if level == types.LevelDetailed {
			details, err = r.queries.RawUsageDetailed(ctx, arg)
		} else {
			apps, err = r.queries.RawUsageByApp(ctx, arg)
		}
		if err != nil {
			return r.storageError(op, err, map[string]string{"level": level.String()})
		}
		records = toUsageRecords(apps, details)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func toUsageRecords(apps []queries.AppTotal, details []queries.DetailedTotal) []types.UsageRecord {
	records := make([]types.UsageRecord, 0, len(apps)+len(details))
	for _, a := range apps {
		records = append(records, types.UsageRecord{AppName: a.AppName, Duration: a.TotalDurationSecs})
	}
	for _, d := range details {
		records = append(records, types.UsageRecord{
			AppName:       d.AppName,
			DetailedTitle: d.DetailedWindowTitle,
			Duration:      d.TotalDurationSecs,
		})
	}
	return records
}
