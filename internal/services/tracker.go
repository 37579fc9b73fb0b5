package services

import (
	"context"
	"time"

	"apptrack/internal/infrastructure/logging"
	"apptrack/internal/metrics"
	"apptrack/internal/platform"
	"apptrack/internal/repository"
	"apptrack/internal/types"

	"github.com/coder/quartz"
)

// TrackerConfig controls the polling loop
type TrackerConfig struct {
	PollInterval      time.Duration
	DanglingThreshold time.Duration
	AggregateInterval time.Duration // 0 disables aggregation inside the loop
}

// DefaultTrackerConfig polls once a second and treats intervals left open
// for more than a day as crashed
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		PollInterval:      time.Second,
		DanglingThreshold: 24 * time.Hour,
	}
}

// Tracker turns a stream of activity snapshots into usage intervals. It is
// either idle or tracking exactly one target with one open interval.
type Tracker struct {
	repo       repository.IntervalRepository
	detector   platform.ActivityDetector
	aggregator *Aggregator
	clock      quartz.Clock
	logger     logging.Logger
	config     TrackerConfig

	current    *types.ActivityInfo
	intervalID int64

	lastAggregation time.Time
}

// NewTracker creates a tracker. aggregator may be nil when periodic
// aggregation is not wanted.
func NewTracker(repo repository.IntervalRepository, detector platform.ActivityDetector, aggregator *Aggregator, clock quartz.Clock, logger logging.Logger, config TrackerConfig) *Tracker {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultTrackerConfig().PollInterval
	}
	if config.DanglingThreshold < 0 {
		config.DanglingThreshold = DefaultTrackerConfig().DanglingThreshold
	}

	return &Tracker{
		repo:       repo,
		detector:   detector,
		aggregator: aggregator,
		clock:      clock,
		logger:     logger,
		config:     config,
	}
}

// State returns the tracked target and its interval id. ok is false when idle.
func (t *Tracker) State() (target types.ActivityInfo, intervalID int64, ok bool) {
	if t.current == nil {
		return types.ActivityInfo{}, 0, false
	}
	return *t.current, t.intervalID, true
}

// Recover closes intervals a previous process left open
func (t *Tracker) Recover(ctx context.Context) (int64, error) {
	now := t.clock.Now().Unix()
	closed, err := t.repo.FinalizeDangling(ctx, now, int64(t.config.DanglingThreshold/time.Second))
	if err != nil {
		return 0, err
	}
	if closed > 0 {
		metrics.DanglingFinalized.Add(float64(closed))
		t.logger.Info("Finalized dangling intervals", "count", closed)
	}
	return closed, nil
}

// Observe applies one activity snapshot. nil means nothing is active.
// Storage failures are logged and never returned.
func (t *Tracker) Observe(ctx context.Context, activity *types.ActivityInfo) {
	if t.current.Equal(activity) {
		return
	}

	now := t.clock.Now().Unix()
	metrics.TargetChanges.Inc()
	t.logger.Info("Target changed", "from", t.current.String(), "to", activity.String())

	if t.current != nil {
		t.closeCurrent(ctx, now)
	}
	if activity == nil {
		return
	}

	target := *activity
	id, err := t.repo.OpenInterval(ctx, target, now)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("open").Inc()
		t.logger.Error("Failed to open interval, staying idle", "app", target.AppName, "error", err)
		return
	}

	t.current = &target
	t.intervalID = id
	metrics.IntervalsOpened.Inc()
	metrics.TrackingState.Set(1)
}

// closeCurrent closes the open interval and leaves the tracker idle even when
// the write fails; a row left open is finalized on the next startup.
func (t *Tracker) closeCurrent(ctx context.Context, now int64) {
	id, app := t.intervalID, t.current.AppName
	t.current = nil
	t.intervalID = 0
	metrics.TrackingState.Set(0)

	affected, err := t.repo.CloseInterval(ctx, id, now)
	switch {
	case err != nil:
		metrics.StorageErrors.WithLabelValues("close").Inc()
		t.logger.Warn("Failed to close interval", "id", id, "app", app, "error", err)
	case affected == 0:
		metrics.IntervalsClosed.WithLabelValues("noop").Inc()
		t.logger.Warn("Interval was already closed", "id", id, "app", app)
	default:
		metrics.IntervalsClosed.WithLabelValues("closed").Inc()
	}
}

// Tick detects the current activity and applies it. Detection errors count
// as no activity.
func (t *Tracker) Tick(ctx context.Context) {
	activity, err := t.detector.GetCurrentActivity()
	if err != nil {
		metrics.DetectionErrors.Inc()
		t.logger.Warn("Activity detection failed", "error", err)
		activity = nil
	}
	if activity != nil && activity.AppName == "" {
		activity = nil
	}
	t.Observe(ctx, activity)
}

// Run polls until stop is set or ctx is done, then closes the open interval.
func (t *Tracker) Run(ctx context.Context, stop *ShutdownFlag) error {
	t.logger.Info("Starting tracking loop", "poll_interval", t.config.PollInterval.String())
	t.lastAggregation = t.clock.Now()

	for !stop.IsSet() {
		start := t.clock.Now()
		t.Tick(ctx)
		t.maybeAggregate(ctx)

		elapsed := t.clock.Since(start)
		metrics.TickDuration.Observe(elapsed.Seconds())
		if !t.sleep(ctx, sleepDuration(t.config.PollInterval, elapsed)) {
			break
		}
	}

	t.logger.Info("Stopping tracking loop")
	t.Shutdown(context.WithoutCancel(ctx))
	return nil
}

// Shutdown closes the open interval at the current time, if any
func (t *Tracker) Shutdown(ctx context.Context) {
	if t.current == nil {
		return
	}
	id, app := t.intervalID, t.current.AppName
	t.closeCurrent(ctx, t.clock.Now().Unix())
	t.logger.Info("Finalized last active interval", "id", id, "app", app)
}

func (t *Tracker) maybeAggregate(ctx context.Context) {
	if t.aggregator == nil || t.config.AggregateInterval <= 0 {
		return
	}
	if t.clock.Since(t.lastAggregation) < t.config.AggregateInterval {
		return
	}
	t.lastAggregation = t.clock.Now()
	// errors are logged by the aggregator; raw data stays for the next cycle
	_, _ = t.aggregator.Run(ctx)
}

func (t *Tracker) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := t.clock.NewTimer(d, "tracker", "poll")
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// sleepDuration compensates the poll interval for time spent in the tick
func sleepDuration(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}
