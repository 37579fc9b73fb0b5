package repository

import (
	"context"
	"strconv"
	"time"

	"apptrack/internal/bucket"
	repoerrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/types"
)

// AggregateAndCleanup folds closed raw intervals into the hourly and daily
// summaries, deletes the folded rows, then moves daily summaries older than
// the retention cutoff into days_summary_by_app. It runs as one transaction.
//
// Each interval is attributed to the buckets containing its start time, even
// when it crosses a bucket boundary.
func (r *SQLiteRepository) AggregateAndCleanup(ctx context.Context, now int64, retentionDays int) (*types.AggregationReport, error) {
	const op = "AggregateAndCleanup"
	// summaries younger than a day back the Today and Last Completed Hour reads
	if retentionDays < 1 {
		return nil, repoerrors.HandleValidationError(op, "retention_days", strconv.Itoa(retentionDays), "must be at least 1")
	}

	start := time.Now()
	currentHourStart := bucket.HourStart(now)
	cutoff := bucket.DayStart(now) - int64(retentionDays)*bucket.DaySeconds

	var report types.AggregationReport
	err := r.inTransaction(ctx, func(txRepo *SQLiteRepository) error {
		q := txRepo.queries
		report = types.AggregationReport{}

		// an interval ending exactly on the hour boundary lies wholly in completed hours
		maxEnd, err := q.MaxClosedEndUntil(ctx, currentHourStart)
		if err != nil {
			return r.storageError(op, err, map[string]string{"phase": "max_end"})
		}

		if !maxEnd.Valid || maxEnd.Int64 > currentHourStart {
			report.Skipped = true
			r.logger.Debug("No completed raw intervals to aggregate", "current_hour_start", currentHourStart)
		} else {
			until := maxEnd.Int64
			report.AggregateUntil = until

			if report.HourlyRows, err = q.AggregateHourly(ctx, until); err != nil {
				return r.storageError(op, err, map[string]string{"phase": "hourly"})
			}
			if report.DailyRows, err = q.AggregateDaily(ctx, until); err != nil {
				return r.storageError(op, err, map[string]string{"phase": "daily"})
			}
			if report.RawDeleted, err = q.DeleteAggregated(ctx, until); err != nil {
				return r.storageError(op, err, map[string]string{"phase": "delete_raw"})
			}
		}

		if report.HistoricalRows, err = q.AggregateDaysSummary(ctx, cutoff); err != nil {
			return r.storageError(op, err, map[string]string{"phase": "historical"})
		}
		if report.DailyDeleted, err = q.DeleteDailyBefore(ctx, cutoff); err != nil {
			return r.storageError(op, err, map[string]string{"phase": "delete_daily"})
		}
		if report.HourlyDeleted, err = q.DeleteHourlyBefore(ctx, cutoff); err != nil {
			return r.storageError(op, err, map[string]string{"phase": "delete_hourly"})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logSuccess(op, start, map[string]interface{}{
		"skipped":         report.Skipped,
		"aggregate_until": report.AggregateUntil,
		"raw_deleted":     report.RawDeleted,
		"historical_rows": report.HistoricalRows,
		"cutoff":          cutoff,
	})
	return &report, nil
}
