package queries

import (
	"context"
	"database/sql"
)

const maxClosedEndUntil = `-- name: MaxClosedEndUntil :one
SELECT MAX(end_time) FROM app_intervals WHERE end_time IS NOT NULL AND end_time <= ?
`

// MaxClosedEndUntil is NULL when no closed interval ends at or before the bound
func (q *Queries) MaxClosedEndUntil(ctx context.Context, bound int64) (sql.NullInt64, error) {
	row := q.db.QueryRowContext(ctx, maxClosedEndUntil, bound)
	var maxEnd sql.NullInt64
	err := row.Scan(&maxEnd)
	return maxEnd, err
}

// The upserts below carry a WHERE clause so SQLite does not read ON CONFLICT as a join constraint.

const aggregateHourly = `-- name: AggregateHourly :execrows
INSERT INTO hourly_summary (app_name, detailed_window_title, hour_timestamp, total_duration_secs)
SELECT app_name, detailed_window_title, (start_time / 3600) * 3600 AS bucket, SUM(end_time - start_time)
FROM app_intervals
WHERE end_time IS NOT NULL AND end_time <= ?
GROUP BY app_name, detailed_window_title, bucket
ON CONFLICT (app_name, detailed_window_title, hour_timestamp)
DO UPDATE SET total_duration_secs = total_duration_secs + excluded.total_duration_secs
`

func (q *Queries) AggregateHourly(ctx context.Context, until int64) (int64, error) {
	return q.execRows(ctx, aggregateHourly, until)
}

const aggregateDaily = `-- name: AggregateDaily :execrows
INSERT INTO daily_summary (app_name, detailed_window_title, day_timestamp, total_duration_secs)
SELECT app_name, detailed_window_title, (start_time / 86400) * 86400 AS bucket, SUM(end_time - start_time)
FROM app_intervals
WHERE end_time IS NOT NULL AND end_time <= ?
GROUP BY app_name, detailed_window_title, bucket
ON CONFLICT (app_name, detailed_window_title, day_timestamp)
DO UPDATE SET total_duration_secs = total_duration_secs + excluded.total_duration_secs
`

func (q *Queries) AggregateDaily(ctx context.Context, until int64) (int64, error) {
	return q.execRows(ctx, aggregateDaily, until)
}

const deleteAggregated = `-- name: DeleteAggregated :execrows
DELETE FROM app_intervals WHERE end_time IS NOT NULL AND end_time <= ?
`

func (q *Queries) DeleteAggregated(ctx context.Context, until int64) (int64, error) {
	return q.execRows(ctx, deleteAggregated, until)
}

const aggregateDaysSummary = `-- name: AggregateDaysSummary :execrows
INSERT INTO days_summary_by_app (app_name, day_timestamp, total_duration_secs)
SELECT app_name, day_timestamp, SUM(total_duration_secs)
FROM daily_summary
WHERE day_timestamp < ?
GROUP BY app_name, day_timestamp
ON CONFLICT (app_name, day_timestamp)
DO UPDATE SET total_duration_secs = total_duration_secs + excluded.total_duration_secs
`

func (q *Queries) AggregateDaysSummary(ctx context.Context, cutoff int64) (int64, error) {
	return q.execRows(ctx, aggregateDaysSummary, cutoff)
}

const deleteDailyBefore = `-- name: DeleteDailyBefore :execrows
DELETE FROM daily_summary WHERE day_timestamp < ?
`

func (q *Queries) DeleteDailyBefore(ctx context.Context, cutoff int64) (int64, error) {
	return q.execRows(ctx, deleteDailyBefore, cutoff)
}

const deleteHourlyBefore = `-- name: DeleteHourlyBefore :execrows
DELETE FROM hourly_summary WHERE hour_timestamp < ?
`

func (q *Queries) DeleteHourlyBefore(ctx context.Context, cutoff int64) (int64, error) {
	return q.execRows(ctx, deleteHourlyBefore, cutoff)
}

func (q *Queries) execRows(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listHourlySummary = `-- name: ListHourlySummary :many
SELECT app_name, detailed_window_title, hour_timestamp, total_duration_secs
FROM hourly_summary ORDER BY hour_timestamp, app_name, detailed_window_title
`

func (q *Queries) ListHourlySummary(ctx context.Context) ([]SummaryRow, error) {
	return q.scanSummary(ctx, listHourlySummary)
}

const listDailySummary = `-- name: ListDailySummary :many
SELECT app_name, detailed_window_title, day_timestamp, total_duration_secs
FROM daily_summary ORDER BY day_timestamp, app_name, detailed_window_title
`

func (q *Queries) ListDailySummary(ctx context.Context) ([]SummaryRow, error) {
	return q.scanSummary(ctx, listDailySummary)
}

func (q *Queries) scanSummary(ctx context.Context, query string) ([]SummaryRow, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SummaryRow
	for rows.Next() {
		var i SummaryRow
		if err := rows.Scan(&i.AppName, &i.DetailedWindowTitle, &i.BucketTimestamp, &i.TotalDurationSecs); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listDaysSummaryByApp = `-- name: ListDaysSummaryByApp :many
SELECT app_name, day_timestamp, total_duration_secs
FROM days_summary_by_app ORDER BY day_timestamp, app_name
`

func (q *Queries) ListDaysSummaryByApp(ctx context.Context) ([]DaysSummaryByApp, error) {
	rows, err := q.db.QueryContext(ctx, listDaysSummaryByApp)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DaysSummaryByApp
	for rows.Next() {
		var i DaysSummaryByApp
		if err := rows.Scan(&i.AppName, &i.DayTimestamp, &i.TotalDurationSecs); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
