// Package wagering implements bets, wagers, settlement and the debt ledger
// for a group. Every mutating operation checks the membership gate first,
// runs under the group and bet locks described in locks.go, and commits in
// a single store transaction before returning.
package wagering

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/events"
	"github.com/mmynk/sidepot/internal/metrics"
	"github.com/mmynk/sidepot/internal/storage"
)

// Store is the persistence the engine needs.
type Store interface {
	storage.BetStore
	storage.DebtStore
	storage.ActivityStore
}

// Engine runs wagering operations on behalf of an actor.
type Engine struct {
	store     Store
	gate      Gate
	locks     *lockTable
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPublisher sets where domain events go after each commit.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithMetrics sets the instruments the engine records to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine.
func New(store Store, gate Gate, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		gate:      gate,
		locks:     newLockTable(),
		publisher: events.Nop{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.Discard()
	}
	return e
}

// publish sends an event after a commit. Failures are logged only.
func (e *Engine) publish(ctx context.Context, eventType, key string, data any) {
	env := events.Envelope{
		Type:     eventType,
		TsUnixMs: e.now().UnixMilli(),
		Key:      key,
		Data:     data,
	}
	if err := e.publisher.Publish(ctx, env); err != nil {
		e.logger.Warn("Failed to publish event", "type", eventType, "key", key, "error", err)
	}
}

// notFound maps storage.ErrNotFound to apperr.ErrNotFound and passes other
// errors through.
func notFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.ErrNotFound
	}
	return err
}
