package types

import "fmt"

// TimePeriod names a reporting window relative to "now"
type TimePeriod int

const (
	PeriodToday TimePeriod = iota
	PeriodLastCompletedHour
	PeriodCurrentHour
)

// AllPeriods lists the periods shown by the stats command, in display order
var AllPeriods = []TimePeriod{PeriodToday, PeriodLastCompletedHour, PeriodCurrentHour}

func (p TimePeriod) String() string {
	switch p {
	case PeriodToday:
		return "Today"
	case PeriodLastCompletedHour:
		return "Last Completed Hour"
	case PeriodCurrentHour:
		return "Current Hour (Approx)"
	default:
		return fmt.Sprintf("TimePeriod(%d)", int(p))
	}
}

// AggregationLevel selects how stats are keyed
type AggregationLevel int

const (
	LevelByApplication AggregationLevel = iota
	LevelDetailed
)

func (l AggregationLevel) String() string {
	switch l {
	case LevelByApplication:
		return "By Application"
	case LevelDetailed:
		return "Detailed (App + Title)"
	default:
		return fmt.Sprintf("AggregationLevel(%d)", int(l))
	}
}

// ParseAggregationLevel maps the CLI names "app" and "detailed" to a level
func ParseAggregationLevel(s string) (AggregationLevel, error) {
	switch s {
	case "app", "application", "":
		return LevelByApplication, nil
	case "detailed":
		return LevelDetailed, nil
	default:
		return LevelByApplication, fmt.Errorf("unknown aggregation level %q (want app or detailed)", s)
	}
}

// AggregationReport summarises one aggregation and cleanup cycle
type AggregationReport struct {
	Skipped        bool  `json:"skipped"`        // no closed intervals before the current hour
	AggregateUntil int64 `json:"aggregateUntil"` // max end_time folded into summaries
	HourlyRows     int64 `json:"hourlyRows"`
	DailyRows      int64 `json:"dailyRows"`
	RawDeleted     int64 `json:"rawDeleted"`
	HistoricalRows int64 `json:"historicalRows"`
	DailyDeleted   int64 `json:"dailyDeleted"`
	HourlyDeleted  int64 `json:"hourlyDeleted"`
}
