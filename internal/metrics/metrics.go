package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"apptrack/internal/infrastructure/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tracking metrics
	IntervalsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apptrack_intervals_opened_total",
			Help: "Total usage intervals opened",
		},
	)

	IntervalsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apptrack_intervals_closed_total",
			Help: "Total close attempts by result",
		},
		[]string{"result"}, // closed, noop
	)

	DanglingFinalized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apptrack_dangling_intervals_finalized_total",
			Help: "Intervals left open by a previous process and closed on startup",
		},
	)

	TargetChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apptrack_target_changes_total",
			Help: "Observed changes of the tracked window",
		},
	)

	TrackingState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "apptrack_tracking_active",
			Help: "1 while an interval is open, 0 when idle",
		},
	)

	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "apptrack_tick_duration_seconds",
			Help:    "Time spent in one poll tick",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// Error metrics
	DetectionErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apptrack_detection_errors_total",
			Help: "Detector failures treated as no activity",
		},
	)

	StorageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apptrack_storage_errors_total",
			Help: "Storage failures during tracking by operation",
		},
		[]string{"operation"},
	)

	// Aggregation metrics
	AggregationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apptrack_aggregation_runs_total",
			Help: "Aggregation cycles by result",
		},
		[]string{"result"}, // ok, skipped, error
	)

	RawRowsAggregated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apptrack_raw_rows_aggregated_total",
			Help: "Raw intervals folded into summaries and deleted",
		},
	)
)

func init() {
	prometheus.MustRegister(
		IntervalsOpened,
		IntervalsClosed,
		DanglingFinalized,
		TargetChanges,
		TrackingState,
		TickDuration,
		DetectionErrors,
		StorageErrors,
		AggregationRuns,
		RawRowsAggregated,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   logging.Logger
	listener net.Listener
}

// NewServer creates a metrics server exposing /metrics and /health
func NewServer(addr string, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start binds the listen address and serves in the background. Bind errors
// are returned; serve errors are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.logger.Info("Starting metrics server", "component", "metrics", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error", "component", "metrics", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Stop shuts the server down, waiting up to timeout for in-flight scrapes
func (s *Server) Stop(timeout time.Duration) error {
	s.logger.Info("Stopping metrics server", "component", "metrics")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
