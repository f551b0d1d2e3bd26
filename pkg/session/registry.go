// Package session tracks in-flight interaction sessions. The registry is the
// only mutable state shared between the dispatcher, the reaper and the flow
// goroutines; everything else moves through each session's channel.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event scopes, mirrored in the rendered correlation ids.
const (
	ScopeResult = "result"
	ScopeDetail = "detail"
	ScopeSubmit = "submit"
)

// ContinuationEvent is one unit of user input continuing a paused session.
type ContinuationEvent struct {
	// Scope is one of ScopeResult, ScopeDetail, ScopeSubmit.
	Scope string
	// FieldTitle addresses a detail field; empty for other scopes.
	FieldTitle string
	// Value is the selected option index as sent by the chat platform.
	Value string
	// OriginID and OriginToken identify the inbound platform event so the
	// renderer can respond to it directly.
	OriginID    string
	OriginToken string
}

// Session is the receiving half handed to a flow goroutine.
type Session struct {
	ID string
	// Events has capacity exactly one: a session holds one conversation
	// turn in flight at a time.
	Events <-chan ContinuationEvent
}

var (
	// ErrNoSession means the id is unknown, typically evicted or finished.
	ErrNoSession = errors.New("no such session")
	// ErrNotReady means the session was not waiting for input; the pending
	// slot is occupied.
	ErrNotReady = errors.New("session not ready for input")
)

type entry struct {
	tx      chan ContinuationEvent
	created time.Time
}

// Registry maps session ids to their inbound channels. All methods are safe
// for concurrent use; no method blocks while holding the lock.
type Registry struct {
	mu      sync.Mutex
	entries map[string]entry
	log     *zap.Logger

	sweepEvery time.Duration
	maxAge     time.Duration
}

// NewRegistry creates an empty registry with the default reaper policy
// (60s sweep, 300s abandonment threshold).
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		entries:    make(map[string]entry),
		log:        log,
		sweepEvery: 60 * time.Second,
		maxAge:     300 * time.Second,
	}
}

// Create allocates a fresh session and records its sending half.
func (r *Registry) Create() *Session {
	ch := make(chan ContinuationEvent, 1)
	id := uuid.NewString()

	r.mu.Lock()
	r.entries[id] = entry{tx: ch, created: time.Now()}
	r.mu.Unlock()

	return &Session{ID: id, Events: ch}
}

// Push attempts a non-blocking delivery of one continuation event. It never
// queues: if the session is not waiting, ErrNotReady comes back immediately
// and the caller decides what the user sees.
func (r *Registry) Push(id string, ev ContinuationEvent) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return ErrNoSession
	}

	select {
	case e.tx <- ev:
		return nil
	default:
		return ErrNotReady
	}
}

// Remove drops a session from the registry. Idempotent; safe to call from
// the flow's cleanup, the dispatcher and the reaper.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps abandoned sessions until the context is cancelled. Eviction is
// silent: the flow's own send side already surfaces failures to the user.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.sweep(time.Now()); removed > 0 {
				r.log.Info("evicted abandoned sessions", zap.Int("count", removed))
			}
		}
	}
}

func (r *Registry) sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if now.Sub(e.created) > r.maxAge {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}
