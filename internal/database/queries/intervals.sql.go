package queries

import (
	"context"
)

const insertInterval = `-- name: InsertInterval :execlastid
INSERT INTO app_intervals (app_name, main_window_title, detailed_window_title, start_time, end_time)
VALUES (?, ?, ?, ?, NULL)
`

type InsertIntervalParams struct {
	AppName             string
	MainWindowTitle     string
	DetailedWindowTitle string
	StartTime           int64
}

func (q *Queries) InsertInterval(ctx context.Context, arg InsertIntervalParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertInterval,
		arg.AppName,
		arg.MainWindowTitle,
		arg.DetailedWindowTitle,
		arg.StartTime,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const finalizeInterval = `-- name: FinalizeInterval :execrows
UPDATE app_intervals SET end_time = ? WHERE id = ? AND end_time IS NULL
`

type FinalizeIntervalParams struct {
	EndTime int64
	ID      int64
}

func (q *Queries) FinalizeInterval(ctx context.Context, arg FinalizeIntervalParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, finalizeInterval, arg.EndTime, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const finalizeDanglingOld = `-- name: FinalizeDanglingOld :execrows
UPDATE app_intervals SET end_time = start_time WHERE end_time IS NULL AND start_time < ?
`

// FinalizeDanglingOld closes open rows that started before cutoff with zero duration
func (q *Queries) FinalizeDanglingOld(ctx context.Context, cutoff int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, finalizeDanglingOld, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const finalizeDanglingRecent = `-- name: FinalizeDanglingRecent :execrows
UPDATE app_intervals SET end_time = ? WHERE end_time IS NULL AND start_time >= ?
`

type FinalizeDanglingRecentParams struct {
	Now    int64
	Cutoff int64
}

func (q *Queries) FinalizeDanglingRecent(ctx context.Context, arg FinalizeDanglingRecentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, finalizeDanglingRecent, arg.Now, arg.Cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getInterval = `-- name: GetInterval :one
SELECT id, app_name, main_window_title, detailed_window_title, start_time, end_time
FROM app_intervals WHERE id = ?
`

func (q *Queries) GetInterval(ctx context.Context, id int64) (AppInterval, error) {
	row := q.db.QueryRowContext(ctx, getInterval, id)
	var i AppInterval
	err := row.Scan(
		&i.ID,
		&i.AppName,
		&i.MainWindowTitle,
		&i.DetailedWindowTitle,
		&i.StartTime,
		&i.EndTime,
	)
	return i, err
}

const listIntervals = `-- name: ListIntervals :many
SELECT id, app_name, main_window_title, detailed_window_title, start_time, end_time
FROM app_intervals ORDER BY id
`

func (q *Queries) ListIntervals(ctx context.Context) ([]AppInterval, error) {
	return q.scanIntervals(ctx, listIntervals)
}

const listOpenIntervals = `-- name: ListOpenIntervals :many
SELECT id, app_name, main_window_title, detailed_window_title, start_time, end_time
FROM app_intervals WHERE end_time IS NULL ORDER BY id
`

func (q *Queries) ListOpenIntervals(ctx context.Context) ([]AppInterval, error) {
	return q.scanIntervals(ctx, listOpenIntervals)
}

func (q *Queries) scanIntervals(ctx context.Context, query string, args ...interface{}) ([]AppInterval, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AppInterval
	for rows.Next() {
		var i AppInterval
		if err := rows.Scan(
			&i.ID,
			&i.AppName,
			&i.MainWindowTitle,
			&i.DetailedWindowTitle,
			&i.StartTime,
			&i.EndTime,
		); err != nil {
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

const countIntervals = `-- name: CountIntervals :one
SELECT COUNT(*) AS total, COUNT(*) - COUNT(end_time) AS open FROM app_intervals
`

type CountIntervalsRow struct {
	Total int64
	Open  int64
}

func (q *Queries) CountIntervals(ctx context.Context) (CountIntervalsRow, error) {
	row := q.db.QueryRowContext(ctx, countIntervals)
	var i CountIntervalsRow
	err := row.Scan(&i.Total, &i.Open)
	return i, err
}
