// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-vote/event"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/ports"
)

// Engine runs the session workflow. Every mutating call is one store
// transaction executed while holding that session's lock.
type Engine struct {
	store   ports.Store
	bus     *event.EventBus
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	registryMu sync.Mutex
	locksMu    sync.Mutex
	locks      map[uint64]*sync.Mutex
}

// Option configures an Engine
type Option func(*Engine)

// WithEventBus publishes committed notifications on bus
func WithEventBus(bus *event.EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithMetrics records operation outcomes and latency
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger replaces slog.Default
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock sets the time source for stored timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an engine over store. Without WithEventBus
// notifications are only written to the event log.
func NewEngine(store ports.Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		locks: make(map[uint64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "voting")
	return e
}

// sessionLock returns the mutex for id. Sessions are never deleted, so
// entries are never removed.
func (e *Engine) sessionLock(id uint64) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[id] = mu
	}
	return mu
}

// txn collects the notifications an operation produces
type txn struct {
	ports.Tx
	now    time.Time
	events []event.Event
}

func (t *txn) emit(eventType event.EventType, sessionID uint64, data any) {
	evt := event.NewEvent(eventType, sessionID, data)
	evt.Timestamp = t.now
	t.events = append(t.events, evt)
}

// run executes fn atomically under mu. Notifications are appended to the
// event log inside the transaction and published only after commit.
func (e *Engine) run(ctx context.Context, op string, mu *sync.Mutex, fn func(t *txn) error) error {
	start := time.Now()
	mu.Lock()
	defer mu.Unlock()

	var committed []event.Event
	err := e.store.Update(ctx, func(tx ports.Tx) error {
		t := &txn{Tx: tx, now: e.now()}
		if err := fn(t); err != nil {
			return err
		}
		for i, evt := range t.events {
			payload, err := json.Marshal(evt.Data)
			if err != nil {
				return fmt.Errorf("encode %s payload: %w", evt.Type, err)
			}
			stored, err := tx.AppendEvent(ctx, models.Event{
				ID:         evt.ID,
				SessionID:  evt.SessionID,
				Type:       string(evt.Type),
				Payload:    payload,
				OccurredAt: evt.Timestamp,
			})
			if err != nil {
				return err
			}
			t.events[i].Sequence = stored.Sequence
		}
		committed = t.events
		return nil
	})
	e.observe(op, start, err)
	if err != nil {
		return err
	}

	if e.bus != nil {
		for _, evt := range committed {
			e.bus.Publish(evt)
		}
	}
	return nil
}

func (e *Engine) observe(op string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case IsRejection(err):
		outcome = metrics.OutcomeRejected
		e.logger.Debug("operation rejected", "operation", op, "error", err)
	default:
		outcome = metrics.OutcomeError
		e.logger.Error("operation failed", "operation", op, "error", err)
	}
	e.metrics.ObserveOperation(op, outcome, time.Since(start))
}

func loadSession(ctx context.Context, r ports.Reader, id uint64) (models.Session, error) {
	s, err := r.GetSession(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return s, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}
	return s, err
}

// lookupVoter reports found=false instead of an error when the voter
// has no record in the session
func lookupVoter(ctx context.Context, r ports.Reader, sessionID uint64, voter string) (models.Voter, bool, error) {
	v, err := r.GetVoter(ctx, sessionID, voter)
	if errors.Is(err, ports.ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

func requirePhase(s models.Session, want models.Phase) error {
	if s.Phase != want {
		return fmt.Errorf("%w: session %d is %s, requires %s", ErrInvalidPhase, s.ID, s.Phase, want)
	}
	return nil
}

func requireAdmin(s models.Session, caller string) error {
	if caller != s.Admin {
		return fmt.Errorf("%w: session %d", ErrUnauthorized, s.ID)
	}
	return nil
}
