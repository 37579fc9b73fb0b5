package repository

import (
	"context"

	"apptrack/internal/bucket"
	"apptrack/internal/types"
)

// SummaryTable selects which rollup table a usage read is served from
type SummaryTable int

const (
	SummaryHourly SummaryTable = iota
	SummaryDaily
	SummaryHistorical
)

func (s SummaryTable) String() string {
	switch s {
	case SummaryHourly:
		return "hourly_summary"
	case SummaryDaily:
		return "daily_summary"
	case SummaryHistorical:
		return "days_summary_by_app"
	default:
		return "unknown"
	}
}

// IntervalRepository persists raw usage intervals and their rollups
type IntervalRepository interface {
	// Interval lifecycle
	OpenInterval(ctx context.Context, activity types.ActivityInfo, startTime int64) (int64, error)
	CloseInterval(ctx context.Context, id, endTime int64) (int64, error)
	FinalizeDangling(ctx context.Context, now, thresholdSecs int64) (int64, error)

	// Raw reads
	GetInterval(ctx context.Context, id int64) (*types.Interval, error)
	ListIntervals(ctx context.Context) ([]types.Interval, error)
	CountIntervals(ctx context.Context) (total, open int64, err error)

	// Rollup of closed intervals into hourly, daily and historical summaries
	AggregateAndCleanup(ctx context.Context, now int64, retentionDays int) (*types.AggregationReport, error)

	// Stats reads. Summary rows are keyed by bucket start; raw rows are
	// clamped to the bounds with open intervals ending at now.
	SummaryUsage(ctx context.Context, table SummaryTable, level types.AggregationLevel, bounds bucket.Bounds) ([]types.UsageRecord, error)
	RawUsage(ctx context.Context, level types.AggregationLevel, bounds bucket.Bounds, now int64) ([]types.UsageRecord, error)

	// Transaction support
	WithTransaction(ctx context.Context, fn func(repo IntervalRepository) error) error
}
