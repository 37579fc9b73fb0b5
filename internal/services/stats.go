package services

import (
	"context"
	"sort"

	"apptrack/internal/bucket"
	"apptrack/internal/infrastructure/logging"
	"apptrack/internal/repository"
	"apptrack/internal/types"

	"github.com/coder/quartz"
)

// StatsService combines summary rows with live raw intervals into per-period totals
type StatsService struct {
	repo   repository.IntervalRepository
	clock  quartz.Clock
	logger logging.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(repo repository.IntervalRepository, clock quartz.Clock, logger logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &StatsService{repo: repo, clock: clock, logger: logger}
}

// Usage returns the totals for one period, sorted by duration descending
func (s *StatsService) Usage(ctx context.Context, period types.TimePeriod, level types.AggregationLevel) (*types.UsageData, error) {
	now := s.clock.Now().Unix()
	bounds, err := bucket.PeriodBounds(period, now)
	if err != nil {
		return nil, err
	}

	tables := []repository.SummaryTable{repository.SummaryDaily, repository.SummaryHistorical}
	if bucket.IsHourly(period) {
		tables = []repository.SummaryTable{repository.SummaryHourly}
	}

	var merged usageMerger
	for _, table := range tables {
		records, err := s.repo.SummaryUsage(ctx, table, level, bounds)
		if err != nil {
			return nil, err
		}
		merged.add(records)
	}

	raw, err := s.repo.RawUsage(ctx, level, bounds, now)
	if err != nil {
		return nil, err
	}
	merged.add(raw)

	records := merged.sorted()
	var total int64
	for _, r := range records {
		total += r.Duration
	}

	s.logger.Debug("Computed usage", "period", period.String(), "level", level.String(), "records", len(records), "total", total)
	return &types.UsageData{
		Period:    period,
		Level:     level,
		Start:     bounds.Start,
		End:       bounds.End,
		TotalTime: total,
		Records:   records,
	}, nil
}

// AllUsage returns Usage for every reporting period in display order
func (s *StatsService) AllUsage(ctx context.Context, level types.AggregationLevel) ([]*types.UsageData, error) {
	result := make([]*types.UsageData, 0, len(types.AllPeriods))
	for _, period := range types.AllPeriods {
		usage, err := s.Usage(ctx, period, level)
		if err != nil {
			return nil, err
		}
		result = append(result, usage)
	}
	return result, nil
}

type usageKey struct {
	app, title string
}

// usageMerger sums records by (app, title) keeping first-seen order
type usageMerger struct {
	index   map[usageKey]int
	records []types.UsageRecord
}

func (m *usageMerger) add(records []types.UsageRecord) {
	if m.index == nil {
		m.index = make(map[usageKey]int)
	}
	for _, r := range records {
		key := usageKey{r.AppName, r.DetailedTitle}
		if i, ok := m.index[key]; ok {
			m.records[i].Duration += r.Duration
			continue
		}
		m.index[key] = len(m.records)
		m.records = append(m.records, r)
	}
}

func (m *usageMerger) sorted() []types.UsageRecord {
	out := make([]types.UsageRecord, 0, len(m.records))
	for _, r := range m.records {
		if r.Duration > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Duration > out[j].Duration
	})
	return out
}
