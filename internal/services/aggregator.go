package services

import (
	"context"
	"time"

	"apptrack/internal/infrastructure/logging"
	"apptrack/internal/metrics"
	"apptrack/internal/repository"
	"apptrack/internal/types"

	"github.com/coder/quartz"
)

// DefaultRetentionDays keeps one day of hourly and daily summaries
const DefaultRetentionDays = 1

// Aggregator runs aggregation cycles against the clock's current time
type Aggregator struct {
	repo          repository.IntervalRepository
	clock         quartz.Clock
	logger        logging.Logger
	retentionDays int
}

// NewAggregator creates an aggregator. A retention under one day falls back to the default.
func NewAggregator(repo repository.IntervalRepository, clock quartz.Clock, logger logging.Logger, retentionDays int) *Aggregator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if retentionDays < 1 {
		retentionDays = DefaultRetentionDays
	}
	return &Aggregator{
		repo:          repo,
		clock:         clock,
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Run executes one aggregation and cleanup cycle. A failed cycle leaves all
// raw data in place and is safe to retry.
func (a *Aggregator) Run(ctx context.Context) (*types.AggregationReport, error) {
	start := a.clock.Now()

	report, err := a.repo.AggregateAndCleanup(ctx, start.Unix(), a.retentionDays)
	if err != nil {
		metrics.AggregationRuns.WithLabelValues("error").Inc()
		a.logger.Error("Aggregation failed", "error", err)
		return nil, err
	}

	if report.Skipped {
		metrics.AggregationRuns.WithLabelValues("skipped").Inc()
		a.logger.Debug("No closed intervals to aggregate")
		return report, nil
	}

	metrics.AggregationRuns.WithLabelValues("ok").Inc()
	metrics.RawRowsAggregated.Add(float64(report.RawDeleted))
	a.logger.Info("Aggregation complete",
		"aggregate_until", time.Unix(report.AggregateUntil, 0).UTC().Format(time.RFC3339),
		"hourly_rows", report.HourlyRows,
		"daily_rows", report.DailyRows,
		"raw_deleted", report.RawDeleted,
		"historical_rows", report.HistoricalRows,
		"duration_ms", a.clock.Since(start).Milliseconds())
	return report, nil
}
