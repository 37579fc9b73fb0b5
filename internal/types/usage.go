package types

import "fmt"

// ActivityInfo is a snapshot of what the user is interacting with, as reported
// by a platform detector on each poll.
type ActivityInfo struct {
	AppName       string `json:"appName"`
	MainTitle     string `json:"mainTitle"`
	DetailedTitle string `json:"detailedTitle"`
}

// Equal reports whether two snapshots identify the same target. A nil
// snapshot only equals another nil snapshot.
func (a *ActivityInfo) Equal(other *ActivityInfo) bool {
	if a == nil || other == nil {
		return a == other
	}
	return *a == *other
}

func (a *ActivityInfo) String() string {
	if a == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s | %s | %s", a.AppName, a.MainTitle, a.DetailedTitle)
}

// Interval is a raw usage row. EndTime is nil while the interval is open.
type Interval struct {
	ID            int64  `json:"id"`
	AppName       string `json:"appName"`
	MainTitle     string `json:"mainTitle"`
	DetailedTitle string `json:"detailedTitle"`
	StartTime     int64  `json:"startTime"` // unix seconds
	EndTime       *int64 `json:"endTime"`   // unix seconds, nil when open
}

// IsOpen reports whether the interval has not been closed yet.
func (i Interval) IsOpen() bool {
	return i.EndTime == nil
}

// UsageRecord is one line of a stats result. DetailedTitle is empty when the
// result is aggregated by application.
type UsageRecord struct {
	AppName       string `json:"appName"`
	DetailedTitle string `json:"detailedTitle,omitempty"`
	Duration      int64  `json:"duration"` // in seconds
}

// UsageData represents the usage totals for one time period
type UsageData struct {
	Period    TimePeriod       `json:"period"`
	Level     AggregationLevel `json:"level"`
	Start     int64            `json:"start"`
	End       int64            `json:"end"`
	TotalTime int64            `json:"totalTime"` // in seconds
	Records   []UsageRecord    `json:"records"`
}

// IsEmpty reports whether the period has no recorded usage
func (u *UsageData) IsEmpty() bool {
	return u == nil || len(u.Records) == 0
}
