package queries

import "database/sql"

type AppInterval struct {
	ID                  int64
	AppName             string
	MainWindowTitle     string
	DetailedWindowTitle string
	StartTime           int64
	EndTime             sql.NullInt64
}

// SummaryRow is one row of hourly_summary or daily_summary
type SummaryRow struct {
	AppName             string
	DetailedWindowTitle string
	BucketTimestamp     int64
	TotalDurationSecs   int64
}

type DaysSummaryByApp struct {
	AppName           string
	DayTimestamp      int64
	TotalDurationSecs int64
}

type AppTotal struct {
	AppName           string
	TotalDurationSecs int64
}

type DetailedTotal struct {
	AppName             string
	DetailedWindowTitle string
	TotalDurationSecs   int64
}
