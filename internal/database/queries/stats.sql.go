package queries

import (
	"context"
)

// RangeParams is a half-open [Start, End) window over bucket timestamps
type RangeParams struct {
	Start int64
	End   int64
}

// RawUsageParams clamps raw intervals to [Start, End); open rows end at Now
type RawUsageParams struct {
	Start int64
	End   int64
	Now   int64
}

const hourlyUsageByApp = `-- name: HourlyUsageByApp :many
SELECT app_name, SUM(total_duration_secs)
FROM hourly_summary WHERE hour_timestamp >= ? AND hour_timestamp < ?
GROUP BY app_name ORDER BY app_name
`

func (q *Queries) HourlyUsageByApp(ctx context.Context, arg RangeParams) ([]AppTotal, error) {
	return q.scanAppTotals(ctx, hourlyUsageByApp, arg.Start, arg.End)
}

const hourlyUsageDetailed = `-- name: HourlyUsageDetailed :many
SELECT app_name, detailed_window_title, SUM(total_duration_secs)
FROM hourly_summary WHERE hour_timestamp >= ? AND hour_timestamp < ?
GROUP BY app_name, detailed_window_title ORDER BY app_name, detailed_window_title
`

func (q *Queries) HourlyUsageDetailed(ctx context.Context, arg RangeParams) ([]DetailedTotal, error) {
	return q.scanDetailedTotals(ctx, hourlyUsageDetailed, arg.Start, arg.End)
}

const dailyUsageByApp = `-- name: DailyUsageByApp :many
SELECT app_name, SUM(total_duration_secs)
FROM daily_summary WHERE day_timestamp >= ? AND day_timestamp < ?
GROUP BY app_name ORDER BY app_name
`

func (q *Queries) DailyUsageByApp(ctx context.Context, arg RangeParams) ([]AppTotal, error) {
	return q.scanAppTotals(ctx, dailyUsageByApp, arg.Start, arg.End)
}

const dailyUsageDetailed = `-- name: DailyUsageDetailed :many
SELECT app_name, detailed_window_title, SUM(total_duration_secs)
FROM daily_summary WHERE day_timestamp >= ? AND day_timestamp < ?
GROUP BY app_name, detailed_window_title ORDER BY app_name, detailed_window_title
`

func (q *Queries) DailyUsageDetailed(ctx context.Context, arg RangeParams) ([]DetailedTotal, error) {
	return q.scanDetailedTotals(ctx, dailyUsageDetailed, arg.Start, arg.End)
}

const historicalUsageByApp = `-- name: HistoricalUsageByApp :many
SELECT app_name, SUM(total_duration_secs)
FROM days_summary_by_app WHERE day_timestamp >= ? AND day_timestamp < ?
GROUP BY app_name ORDER BY app_name
`

func (q *Queries) HistoricalUsageByApp(ctx context.Context, arg RangeParams) ([]AppTotal, error) {
	return q.scanAppTotals(ctx, historicalUsageByApp, arg.Start, arg.End)
}

const rawUsageByApp = `-- name: RawUsageByApp :many
SELECT app_name,
       SUM(MIN(COALESCE(end_time, ?3), ?2) - MAX(start_time, ?1))
FROM app_intervals
WHERE start_time < ?2
  AND COALESCE(end_time, ?3) > ?1
  AND COALESCE(end_time, ?3) > start_time
GROUP BY app_name ORDER BY app_name
`

func (q *Queries) RawUsageByApp(ctx context.Context, arg RawUsageParams) ([]AppTotal, error) {
	return q.scanAppTotals(ctx, rawUsageByApp, arg.Start, arg.End, arg.Now)
}

const rawUsageDetailed = `-- name: RawUsageDetailed :many
SELECT app_name, detailed_window_title,
       SUM(MIN(COALESCE(end_time, ?3), ?2) - MAX(start_time, ?1))
FROM app_intervals
WHERE start_time < ?2
  AND COALESCE(end_time, ?3) > ?1
  AND COALESCE(end_time, ?3) > start_time
GROUP BY app_name, detailed_window_title ORDER BY app_name, detailed_window_title
`

func (q *Queries) RawUsageDetailed(ctx context.Context, arg RawUsageParams) ([]DetailedTotal, error) {
	return q.scanDetailedTotals(ctx, rawUsageDetailed, arg.Start, arg.End, arg.Now)
}

func (q *Queries) scanAppTotals(ctx context.Context, query string, args ...interface{}) ([]AppTotal, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AppTotal
	for rows.Next() {
		var i AppTotal
		if err := rows.Scan(&i.AppName, &i.TotalDurationSecs); err != nil {
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

func (q *Queries) scanDetailedTotals(ctx context.Context, query string, args ...interface{}) ([]DetailedTotal, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DetailedTotal
	for rows.Next() {
		var i DetailedTotal
		if err := rows.Scan(&i.AppName, &i.DetailedWindowTitle, &i.TotalDurationSecs); err != nil {
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
