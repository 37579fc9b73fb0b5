package services

import (
	"context"
	"fmt"
	"sync"

	"apptrack/internal/bucket"
	"apptrack/internal/infrastructure/errors"
	"apptrack/internal/repository"
	"apptrack/internal/types"
)

// MockRepository implements the IntervalRepository interface for testing
type MockRepository struct {
	mu        sync.RWMutex
	intervals []types.Interval
	nextID    int64
	summaries map[repository.SummaryTable][]types.UsageRecord
	report    types.AggregationReport

	openCallCount      int
	closeCallCount     int
	finalizeCallCount  int
	aggregateCallCount int
	statsCallCount     int

	shouldFailOpen      bool
	shouldFailClose     bool
	shouldFailAggregate bool
	shouldFailStats     bool
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		nextID:    1,
		summaries: make(map[repository.SummaryTable][]types.UsageRecord),
	}
}

// SetFailureModes configures the mock to simulate failures
func (m *MockRepository) SetFailureModes(open, close, aggregate, stats bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOpen = open
	m.shouldFailClose = close
	m.shouldFailAggregate = aggregate
	m.shouldFailStats = stats
}

// GetCallCounts returns the number of times each method was called
func (m *MockRepository) GetCallCounts() (open, close, finalize, aggregate, stats int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.openCallCount, m.closeCallCount, m.finalizeCallCount, m.aggregateCallCount, m.statsCallCount
}

// SetSummary seeds the rows SummaryUsage returns for a table
func (m *MockRepository) SetSummary(table repository.SummaryTable, records []types.UsageRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[table] = append([]types.UsageRecord(nil), records...)
}

// SetAggregationReport sets the report AggregateAndCleanup returns
func (m *MockRepository) SetAggregationReport(report types.AggregationReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.report = report
}

// OpenInterval implements IntervalRepository interface
func (m *MockRepository) OpenInterval(ctx context.Context, activity types.ActivityInfo, startTime int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.openCallCount++
	if m.shouldFailOpen {
		return 0, errors.NewRepositoryError("OpenInterval", fmt.Errorf("mock open failure"), errors.ErrCodeConnection)
	}

	id := m.nextID
	m.nextID++
	m.intervals = append(m.intervals, types.Interval{
		ID:            id,
		AppName:       activity.AppName,
		MainTitle:     activity.MainTitle,
		DetailedTitle: activity.DetailedTitle,
		StartTime:     startTime,
	})
	return id, nil
}

// CloseInterval implements IntervalRepository interface
func (m *MockRepository) CloseInterval(ctx context.Context, id, endTime int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeCallCount++
	if m.shouldFailClose {
		return 0, errors.NewRepositoryError("CloseInterval", fmt.Errorf("mock close failure"), errors.ErrCodeBusy)
	}

	for i := range m.intervals {
		if m.intervals[i].ID == id && m.intervals[i].EndTime == nil {
			end := endTime
			m.intervals[i].EndTime = &end
			return 1, nil
		}
	}
	return 0, nil
}

// FinalizeDangling implements IntervalRepository interface
func (m *MockRepository) FinalizeDangling(ctx context.Context, now, thresholdSecs int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finalizeCallCount++
	var closed int64
	for i := range m.intervals {
		if m.intervals[i].EndTime != nil {
			continue
		}
		end := now
		if m.intervals[i].StartTime < now-thresholdSecs {
			end = m.intervals[i].StartTime
		}
		m.intervals[i].EndTime = &end
		closed++
	}
	return closed, nil
}

// GetInterval implements IntervalRepository interface
func (m *MockRepository) GetInterval(ctx context.Context, id int64) (*types.Interval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, interval := range m.intervals {
		if interval.ID == id {
			copied := interval
			return &copied, nil
		}
	}
	return nil, errors.HandleNotFound("GetInterval", "interval", fmt.Sprint(id))
}

// ListIntervals implements IntervalRepository interface
func (m *MockRepository) ListIntervals(ctx context.Context) ([]types.Interval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Interval(nil), m.intervals...), nil
}

// CountIntervals implements IntervalRepository interface
func (m *MockRepository) CountIntervals(ctx context.Context) (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var open int64
	for _, interval := range m.intervals {
		if interval.IsOpen() {
			open++
		}
	}
	return int64(len(m.intervals)), open, nil
}

// AggregateAndCleanup implements IntervalRepository interface
func (m *MockRepository) AggregateAndCleanup(ctx context.Context, now int64, retentionDays int) (*types.AggregationReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.aggregateCallCount++
	if m.shouldFailAggregate {
		return nil, errors.NewRepositoryError("AggregateAndCleanup", fmt.Errorf("mock aggregate failure"), errors.ErrCodeTransaction)
	}
	report := m.report
	return &report, nil
}

// SummaryUsage implements IntervalRepository interface
func (m *MockRepository) SummaryUsage(ctx context.Context, table repository.SummaryTable, level types.AggregationLevel, bounds bucket.Bounds) ([]types.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statsCallCount++
	if m.shouldFailStats {
		return nil, errors.NewRepositoryError("SummaryUsage", fmt.Errorf("mock stats failure"), errors.ErrCodeConnection)
	}
	return append([]types.UsageRecord(nil), m.summaries[table]...), nil
}

// RawUsage implements IntervalRepository interface
func (m *MockRepository) RawUsage(ctx context.Context, level types.AggregationLevel, bounds bucket.Bounds, now int64) ([]types.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statsCallCount++
	if m.shouldFailStats {
		return nil, errors.NewRepositoryError("RawUsage", fmt.Errorf("mock stats failure"), errors.ErrCodeConnection)
	}

	var records []types.UsageRecord
	index := make(map[[2]string]int)
	for _, interval := range m.intervals {
		end := now
		if interval.EndTime != nil {
			end = min(*interval.EndTime, now)
		}
		duration := bounds.Overlap(interval.StartTime, end)
		if duration == 0 {
			continue
		}

		title := ""
		if level == types.LevelDetailed {
			title = interval.DetailedTitle
		}
		key := [2]string{interval.AppName, title}
		if i, ok := index[key]; ok {
			records[i].Duration += duration
			continue
		}
		index[key] = len(records)
		records = append(records, types.UsageRecord{AppName: interval.AppName, DetailedTitle: title, Duration: duration})
	}
	return records, nil
}

// WithTransaction implements IntervalRepository interface
func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repo repository.IntervalRepository) error) error {
	return fn(m)
}
