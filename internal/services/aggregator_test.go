package services

import (
	"testing"
	"time"

	"apptrack/internal/bucket"
	apperrors "apptrack/internal/infrastructure/errors"
	"apptrack/internal/infrastructure/logging"
	"apptrack/internal/metrics"
	"apptrack/internal/repository"
	"apptrack/internal/testutils"
	"apptrack/internal/types"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAggregator_ReportsAndCounts(t *testing.T) {
	ctx := testContext(t)
	repo := NewMockRepository()
	repo.SetAggregationReport(types.AggregationReport{AggregateUntil: baseTime, HourlyRows: 2, DailyRows: 1, RawDeleted: 3})
	logger := &testutils.RecordingLogger{}
	aggregator := NewAggregator(repo, newMockClock(t, baseTime+7200), logger, 1)

	before := testutil.ToFloat64(metrics.AggregationRuns.WithLabelValues("ok"))
	report, err := aggregator.Run(ctx)
	if err != nil {
		t.Fatalf("Failed to aggregate: %v", err)
	}
	if report.RawDeleted != 3 {
		t.Errorf("Expected 3 raw rows deleted, got %d", report.RawDeleted)
	}
	if got := testutil.ToFloat64(metrics.AggregationRuns.WithLabelValues("ok")); got != before+1 {
		t.Errorf("Expected ok run counter to increase, got %v -> %v", before, got)
	}
	if !logger.Contains("info", "Aggregation complete") {
		t.Errorf("Expected completion log, got %v", logger.Calls(""))
	}
}

func TestAggregator_FailureIsReturned(t *testing.T) {
	ctx := testContext(t)
	repo := NewMockRepository()
	repo.SetFailureModes(false, false, true, false)
	logger := &testutils.RecordingLogger{}
	aggregator := NewAggregator(repo, newMockClock(t, baseTime), logger, 1)

	if _, err := aggregator.Run(ctx); !apperrors.IsRetryable(err) {
		t.Errorf("Expected retryable transaction error, got %v", err)
	}
	if !logger.Contains("error", "Aggregation failed") {
		t.Errorf("Expected failure log, got %v", logger.Calls(""))
	}
}

func TestAggregator_ShortRetentionUsesDefault(t *testing.T) {
	for _, days := range []int{-5, 0} {
		aggregator := NewAggregator(NewMockRepository(), nil, nil, days)
		if aggregator.retentionDays != DefaultRetentionDays {
			t.Errorf("Retention %d: expected %d, got %d", days, DefaultRetentionDays, aggregator.retentionDays)
		}
	}
}

func TestAggregator_TwoCompletedHours(t *testing.T) {
	ctx := testContext(t)
	repo := setupRepository(t)

	for _, start := range []int64{baseTime, baseTime + 3600} {
		id, err := repo.OpenInterval(ctx, *window("AppA", "doc"), start)
		if err != nil {
			t.Fatalf("Failed to open interval: %v", err)
		}
		if _, err := repo.CloseInterval(ctx, id, start+3600); err != nil {
			t.Fatalf("Failed to close interval: %v", err)
		}
	}

	mClock := newMockClock(t, baseTime+7200)
	aggregator := NewAggregator(repo, mClock, logging.NopLogger{}, 1)

	report, err := aggregator.Run(ctx)
	if err != nil {
		t.Fatalf("Failed to aggregate: %v", err)
	}
	if report.Skipped || report.RawDeleted != 2 {
		t.Errorf("Expected both raw rows folded, got %+v", report)
	}
	if total, _, _ := repo.CountIntervals(ctx); total != 0 {
		t.Errorf("Expected raw table to be empty, got %d rows", total)
	}

	hourly, err := repo.SummaryUsage(ctx, repository.SummaryHourly, types.LevelByApplication, bucket.Bounds{Start: baseTime, End: baseTime + 3600})
	if err != nil {
		t.Fatalf("Failed to read hourly summary: %v", err)
	}
	if diff := cmp.Diff([]types.UsageRecord{{AppName: "AppA", Duration: 3600}}, hourly); diff != "" {
		t.Errorf("First hour mismatch (-want +got):\n%s", diff)
	}

	mClock.Advance(time.Minute)
	again, err := aggregator.Run(ctx)
	if err != nil {
		t.Fatalf("Failed to re-run aggregation: %v", err)
	}
	if !again.Skipped || again.HourlyRows != 0 {
		t.Errorf("Expected second run to be a no-op, got %+v", again)
	}

	daily, _ := repo.SummaryUsage(ctx, repository.SummaryDaily, types.LevelByApplication, bucket.Bounds{Start: baseTime, End: baseTime + bucket.DaySeconds})
	if diff := cmp.Diff([]types.UsageRecord{{AppName: "AppA", Duration: 7200}}, daily); diff != "" {
		t.Errorf("Daily total changed after re-run (-want +got):\n%s", diff)
	}
}
