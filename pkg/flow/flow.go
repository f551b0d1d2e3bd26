// Package flow drives one interaction session from initial query to a
// terminal outcome. Each session runs on its own goroutine, consumes exactly
// one backend through the capability contract, and publishes every UI change
// through a Renderer. All user input arrives as continuation events on the
// session's capacity-one channel.
package flow

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fetcharr/fetcharr/pkg/details"
	"github.com/fetcharr/fetcharr/pkg/media"
	"github.com/fetcharr/fetcharr/pkg/session"
)

// MaxSelectOptions is the UI's maximum selectable page size. Larger result
// sets keep a stable prefix in provider order.
const MaxSelectOptions = 25

// DefaultTimeout bounds every wait for user input.
const DefaultTimeout = 300 * time.Second

// User-facing texts for the non-error terminal states.
const (
	TimeoutMessage   = "Interaction timed out, please try again"
	EarlyStopMessage = "Already requested - nothing more to add"
	NoResultsMessage = "No results"
)

// Outcome is the terminal state of a session. Exactly one is reached per
// session, and reaching it removes the session from the registry.
type Outcome int

const (
	OutcomeCompleted Outcome = iota + 1
	OutcomeEarlyStopped
	OutcomeNoResults
	OutcomeTimedOut
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeEarlyStopped:
		return "early_stopped"
	case OutcomeNoResults:
		return "no_results"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Renderer is the session-scoped rendering collaborator. One renderer is
// bound to one originating conversation; the flow never talks to the chat
// platform directly. Renderer errors on terminal messages are logged and
// swallowed — by then the outcome is already decided.
type Renderer interface {
	// Acknowledge defers the initial response so later steps can edit it.
	Acknowledge(ctx context.Context) error
	// ShowResults renders the single result chooser (up to MaxSelectOptions).
	ShowResults(ctx context.Context, options []media.DropdownOption) error
	// ShowDetails renders the current detail-collection state in response
	// to the continuation event that triggered it.
	ShowDetails(ctx context.Context, info media.DisplayInfo, view details.View, ev session.ContinuationEvent) error
	// ShowText replaces the conversation with a terminal text message.
	ShowText(ctx context.Context, text string) error
	// ShowCompletion renders the ephemeral completion summary.
	ShowCompletion(ctx context.Context, msg media.SuccessMessage) error
	// BroadcastSuccess publishes the public success summary.
	BroadcastSuccess(ctx context.Context, msg media.SuccessMessage) error
}

// StartFunc runs one session to its terminal outcome. The dispatcher holds
// one per configured backend kind, erasing the item type parameter.
type StartFunc func(ctx context.Context, sess *session.Session, query string, ui Renderer) Outcome

// Runner executes the interaction state machine for one backend kind.
// A single runner serves many concurrent sessions.
type Runner[T any] struct {
	backend        media.Backend[T]
	registry       *session.Registry
	log            *zap.Logger
	timeout        time.Duration
	publicFollowup bool
}

// NewRunner wires a runner to its backend and the shared registry.
func NewRunner[T any](backend media.Backend[T], registry *session.Registry, log *zap.Logger, publicFollowup bool) *Runner[T] {
	return &Runner[T]{
		backend:        backend,
		registry:       registry,
		log:            log,
		timeout:        DefaultTimeout,
		publicFollowup: publicFollowup,
	}
}

// Run drives a session to completion. Every path removes the session from
// the registry and produces exactly one terminal message for the user.
func (r *Runner[T]) Run(ctx context.Context, sess *session.Session, query string, ui Renderer) Outcome {
	log := r.log.With(
		zap.String("session", sess.ID),
		zap.String("kind", r.backend.Kind()),
	)
	defer r.registry.Remove(sess.ID)

	log.Info("starting interaction flow", zap.String("query", query))

	if err := ui.Acknowledge(ctx); err != nil {
		log.Error("failed to acknowledge interaction", zap.Error(err))
		return OutcomeFailed
	}

	// Searching
	items, err := r.backend.Search(ctx, query)
	if err != nil {
		return r.fail(ctx, log, ui, "search failed", err)
	}
	log.Info("search completed", zap.Int("count", len(items)))

	if len(items) == 0 {
		r.finishText(ctx, log, ui, NoResultsMessage)
		return OutcomeNoResults
	}
	if len(items) > MaxSelectOptions {
		log.Debug("truncating results", zap.Int("from", len(items)), zap.Int("to", MaxSelectOptions))
		items = items[:MaxSelectOptions]
	}

	options := make([]media.DropdownOption, len(items))
	for i, item := range items {
		options[i] = r.backend.ResultOption(item)
	}
	if err := ui.ShowResults(ctx, options); err != nil {
		log.Error("failed to render search results", zap.Error(err))
		return OutcomeFailed
	}

	// AwaitingResultSelection
	var item T
	var ev session.ContinuationEvent
	for {
		var outcome Outcome
		ev, outcome = r.wait(ctx, log, ui, sess)
		if outcome != 0 {
			return outcome
		}
		if ev.Scope != session.ScopeResult {
			log.Debug("ignoring continuation outside result scope", zap.String("scope", ev.Scope))
			continue
		}
		idx, err := strconv.Atoi(ev.Value)
		if err != nil || idx < 0 || idx >= len(items) {
			// Stale or malformed index: user-input noise, keep waiting.
			log.Warn("discarding invalid result selection", zap.String("value", ev.Value))
			continue
		}
		item = items[idx]
		log.Info("user selected result", zap.Int("index", idx))
		break
	}

	if r.backend.EarlyStop(item) {
		r.finishText(ctx, log, ui, EarlyStopMessage)
		return OutcomeEarlyStopped
	}

	fields, err := r.backend.AdditionalDetails(ctx, item)
	if err != nil {
		return r.fail(ctx, log, ui, "enumerating details failed", err)
	}
	coll, err := details.New(fields)
	if err != nil {
		return r.fail(ctx, log, ui, "backend produced invalid details", err)
	}

	info := r.backend.DisplayInfo(item)
	if err := ui.ShowDetails(ctx, info, coll.View(), ev); err != nil {
		log.Error("failed to render detail view", zap.Error(err))
		return OutcomeFailed
	}

	// CollectingDetails
	for submitted := false; !submitted; {
		var outcome Outcome
		ev, outcome = r.wait(ctx, log, ui, sess)
		if outcome != 0 {
			return outcome
		}

		switch ev.Scope {
		case session.ScopeSubmit:
			if !coll.Resolved() {
				// The button renders disabled until everything is
				// resolved; an early click is noise.
				log.Warn("discarding premature submit")
				continue
			}
			// Acknowledge the click before the platform deadline.
			if err := ui.ShowDetails(ctx, info, coll.View(), ev); err != nil {
				log.Error("failed to acknowledge submit", zap.Error(err))
				return OutcomeFailed
			}
			submitted = true

		case session.ScopeDetail:
			idx, err := strconv.Atoi(ev.Value)
			if err != nil {
				log.Warn("discarding malformed detail selection", zap.String("value", ev.Value))
				continue
			}
			if err := coll.Select(ev.FieldTitle, idx); err != nil {
				log.Warn("discarding invalid detail selection",
					zap.String("field", ev.FieldTitle), zap.Int("index", idx), zap.Error(err))
				continue
			}
			log.Debug("detail selected", zap.String("field", ev.FieldTitle), zap.Int("index", idx))
			if err := ui.ShowDetails(ctx, info, coll.View(), ev); err != nil {
				log.Error("failed to render detail view", zap.Error(err))
				return OutcomeFailed
			}

		default:
			log.Debug("ignoring continuation outside detail scope", zap.String("scope", ev.Scope))
		}
	}

	// Submitting. The success block is built first: it reads the resolved
	// details, and the backend consumes them during the request.
	msg := r.backend.SuccessMessage(coll.Fields(), item)
	if err := r.backend.Request(ctx, coll.Fields(), item); err != nil {
		return r.fail(ctx, log, ui, "request failed", err)
	}
	log.Info("request submitted")

	if err := ui.ShowCompletion(ctx, msg); err != nil {
		log.Warn("failed to render completion message", zap.Error(err))
	}
	if r.publicFollowup {
		if err := ui.BroadcastSuccess(ctx, msg); err != nil {
			log.Warn("failed to broadcast success", zap.Error(err))
		}
	}

	log.Info("interaction flow completed")
	return OutcomeCompleted
}

// wait blocks for the next continuation event, bounded by the interaction
// timeout. A closed channel is an invariant violation: the sending half must
// outlive the session.
func (r *Runner[T]) wait(ctx context.Context, log *zap.Logger, ui Renderer, sess *session.Session) (session.ContinuationEvent, Outcome) {
	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-sess.Events:
		if !ok {
			log.Error("session channel closed while waiting for input")
			r.finishText(ctx, log, ui, genericErrorMessage)
			return session.ContinuationEvent{}, OutcomeFailed
		}
		return ev, 0
	case <-timer.C:
		log.Info("user input timed out")
		r.finishText(ctx, log, ui, TimeoutMessage)
		return session.ContinuationEvent{}, OutcomeTimedOut
	case <-ctx.Done():
		log.Info("context cancelled while waiting for input")
		r.finishText(ctx, log, ui, TimeoutMessage)
		return session.ContinuationEvent{}, OutcomeTimedOut
	}
}

func (r *Runner[T]) fail(ctx context.Context, log *zap.Logger, ui Renderer, msg string, err error) Outcome {
	// Full detail stays in the logs; the user sees a sanitized category.
	log.Error(msg, zap.Error(err))
	r.finishText(ctx, log, ui, UserMessage(err))
	return OutcomeFailed
}

func (r *Runner[T]) finishText(ctx context.Context, log *zap.Logger, ui Renderer, text string) {
	if err := ui.ShowText(ctx, text); err != nil {
		log.Warn("failed to render terminal message", zap.Error(err))
	}
}
