// Package guard wraps a board store with a per-call timeout, a circuit breaker
// and Prometheus metrics.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msgboard/msgboard/backend/internal/storage"
	"github.com/msgboard/msgboard/shared/domain"
	internal_errors "github.com/msgboard/msgboard/shared/errors"
	"github.com/msgboard/msgboard/shared/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned without calling the store while the breaker is open.
var ErrUnavailable = errors.New("store temporarily unavailable")

type Settings struct {
	Name         string
	Timeout      time.Duration // per call, 0 disables
	FailureRatio float64       // share of failed calls that opens the breaker
	MinRequests  uint32        // calls needed before the ratio is considered
	OpenTimeout  time.Duration // how long the breaker stays open before probing
}

func DefaultSettings(name string) Settings {
	return Settings{
		Name:         name,
		Timeout:      5 * time.Second,
		FailureRatio: 0.8,
		MinRequests:  5,
		OpenTimeout:  30 * time.Second,
	}
}

type metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	state    prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer, driver string) *metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"driver": driver}
	return &metrics{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "store_calls_total",
				Help:        "Board store calls by operation and outcome",
				ConstLabels: labels,
			},
			[]string{"op", "result"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "store_call_duration_seconds",
				Help:        "Board store call duration in seconds",
				ConstLabels: labels,
				Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"op"},
		),
		state: factory.NewGauge(
			prometheus.GaugeOpts{
				Name:        "store_breaker_state",
				Help:        "Circuit breaker state: 0 closed, 1 half-open, 2 open",
				ConstLabels: labels,
			},
		),
	}
}

type Store struct {
	inner   storage.Backend
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	metrics *metrics
}

var _ storage.Backend = (*Store)(nil)

// New wraps inner. Metrics are registered on reg.
func New(inner storage.Backend, settings Settings, reg prometheus.Registerer) *Store {
	m := newMetrics(reg, settings.Name)
	log := logger.Component("store")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    settings.Name,
		Timeout: settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "driver", name, "from", from.String(), "to", to.String())
			m.state.Set(float64(to))
		},
		IsSuccessful: isSuccessful,
	})

	return &Store{inner: inner, cb: cb, timeout: settings.Timeout, metrics: m}
}

// isSuccessful keeps answers about the data (missing board, taken name, failed
// checks, write contention) and callers giving up from counting as outages.
func isSuccessful(err error) bool {
	return err == nil ||
		internal_errors.IsTyped(err) ||
		errors.Is(err, storage.ErrStaleBoard) ||
		errors.Is(err, context.Canceled)
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnavailable):
		return "rejected"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case isSuccessful(err):
		return "domain"
	default:
		return "error"
	}
}

// call runs fn through the breaker under the per-call timeout.
func call[T any](ctx context.Context, s *Store, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.metrics.calls.WithLabelValues(op, result(err)).Inc()
	s.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	var zero T
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

func (s *Store) FindByName(ctx context.Context, name domain.BoardName) (*domain.Board, error) {
	return call(ctx, s, "find_by_name", func(ctx context.Context) (*domain.Board, error) {
		return s.inner.FindByName(ctx, name)
	})
}

func (s *Store) FindAll(ctx context.Context, excluding []domain.BoardName) ([]domain.BoardMetadata, error) {
	return call(ctx, s, "find_all", func(ctx context.Context) ([]domain.BoardMetadata, error) {
		return s.inner.FindAll(ctx, excluding)
	})
}

func (s *Store) CreateBoard(ctx context.Context, name domain.BoardName) (*domain.Board, error) {
	return call(ctx, s, "create_board", func(ctx context.Context) (*domain.Board, error) {
		return s.inner.CreateBoard(ctx, name)
	})
}

func (s *Store) UpsertPushThread(ctx context.Context, name domain.BoardName, thread domain.Thread) (*domain.Board, error) {
	return call(ctx, s, "upsert_push_thread", func(ctx context.Context) (*domain.Board, error) {
		return s.inner.UpsertPushThread(ctx, name, thread)
	})
}

func (s *Store) Save(ctx context.Context, board *domain.Board) error {
	_, err := call(ctx, s, "save", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.inner.Save(ctx, board)
	})
	return err
}

// UpdateBoard bounds the whole read-mutate-save loop by one timeout.
func (s *Store) UpdateBoard(ctx context.Context, name domain.BoardName, fn func(*domain.Board) error) (*domain.Board, error) {
	return call(ctx, s, "update_board", func(ctx context.Context) (*domain.Board, error) {
		return s.inner.UpdateBoard(ctx, name, fn)
	})
}

// Ping bypasses the breaker so readiness reflects the store itself.
func (s *Store) Ping(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.inner.Ping(ctx)
}

func (s *Store) Close() error {
	return s.inner.Close()
}
