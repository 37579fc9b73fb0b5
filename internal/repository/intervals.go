package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"apptrack/internal/database/queries"
	repoerrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/types"
)

// OpenInterval inserts a new open interval and returns its id
func (r *SQLiteRepository) OpenInterval(ctx context.Context, activity types.ActivityInfo, startTime int64) (int64, error) {
	const op = "OpenInterval"
	start := time.Now()

	var id int64
	err := r.run(ctx, op, func() error {
		var err error
		id, err = r.queries.InsertInterval(ctx, queries.InsertIntervalParams{
			AppName:             activity.AppName,
			MainWindowTitle:     activity.MainTitle,
			DetailedWindowTitle: activity.DetailedTitle,
			StartTime:           startTime,
		})
		if err != nil {
			return r.storageError(op, err, map[string]string{"app_name": activity.AppName})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logSuccess(op, start, map[string]interface{}{"id": id, "app_name": activity.AppName})
	return id, nil
}

// CloseInterval sets end_time on an open interval. Closing an already closed
// or unknown id affects zero rows and is not an error.
func (r *SQLiteRepository) CloseInterval(ctx context.Context, id, endTime int64) (int64, error) {
	const op = "CloseInterval"
	start := time.Now()

	var affected int64
	err := r.run(ctx, op, func() error {
		var err error
		affected, err = r.queries.FinalizeInterval(ctx, queries.FinalizeIntervalParams{EndTime: endTime, ID: id})
		if err != nil {
			return r.storageError(op, err, map[string]string{"id": strconv.FormatInt(id, 10)})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logSuccess(op, start, map[string]interface{}{"id": id, "rows_affected": affected})
	return affected, nil
}

// FinalizeDangling closes intervals left open by a previous process. Rows
// that started before now-threshold get a zero duration, newer rows end at now.
func (r *SQLiteRepository) FinalizeDangling(ctx context.Context, now, thresholdSecs int64) (int64, error) {
	const op = "FinalizeDangling"
	if thresholdSecs < 0 {
		return 0, repoerrors.HandleValidationError(op, "threshold_secs", strconv.FormatInt(thresholdSecs, 10), "must not be negative")
	}

	start := time.Now()
	cutoff := now - thresholdSecs

	var oldRows, recentRows int64
	err := r.inTransaction(ctx, func(txRepo *SQLiteRepository) error {
		q := txRepo.queries

		var err error
		if oldRows, err = q.FinalizeDanglingOld(ctx, cutoff); err != nil {
			return r.storageError(op, err, map[string]string{"phase": "old"})
		}
		recentRows, err = q.FinalizeDanglingRecent(ctx, queries.FinalizeDanglingRecentParams{Now: now, Cutoff: cutoff})
		if err != nil {
			return r.storageError(op, err, map[string]string{"phase": "recent"})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	total := oldRows + recentRows
	if total > 0 {
		r.logger.Info("Finalized dangling intervals", "old", oldRows, "recent", recentRows, "cutoff", cutoff)
	}
	r.logSuccess(op, start, map[string]interface{}{"finalized": total})
	return total, nil
}

// GetInterval loads a single interval by id
func (r *SQLiteRepository) GetInterval(ctx context.Context, id int64) (*types.Interval, error) {
	const op = "GetInterval"

	var row queries.AppInterval
	err := r.run(ctx, op, func() error {
		var err error
		row, err = r.queries.GetInterval(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return repoerrors.HandleNotFound(op, "interval", strconv.FormatInt(id, 10))
		}
		if err != nil {
			return r.storageError(op, err, map[string]string{"id": strconv.FormatInt(id, 10)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	interval := convertIntervalFromDB(row)
	return &interval, nil
}

// ListIntervals returns every raw interval ordered by id
func (r *SQLiteRepository) ListIntervals(ctx context.Context) ([]types.Interval, error) {
	const op = "ListIntervals"

	var rows []queries.AppInterval
	err := r.run(ctx, op, func() error {
		var err error
		rows, err = r.queries.ListIntervals(ctx)
		if err != nil {
			return r.storageError(op, err, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	intervals := make([]types.Interval, 0, len(rows))
	for _, row := range rows {
		intervals = append(intervals, convertIntervalFromDB(row))
	}
	return intervals, nil
}

// CountIntervals returns the number of raw rows and how many are open
func (r *SQLiteRepository) CountIntervals(ctx context.Context) (int64, int64, error) {
	const op = "CountIntervals"

	var counts queries.CountIntervalsRow
	err := r.run(ctx, op, func() error {
		var err error
		counts, err = r.queries.CountIntervals(ctx)
		if err != nil {
			return r.storageError(op, err, nil)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return counts.Total, counts.Open, nil
}
