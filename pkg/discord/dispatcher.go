// Package discord is the chat-platform glue: it registers the slash command
// tree, turns inbound interaction events into new sessions or continuation
// pushes, and renders the flow's UI through discordgo.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/fetcharr/fetcharr/pkg/flow"
	"github.com/fetcharr/fetcharr/pkg/session"
)

// Dispatcher routes InteractionCreate events. New commands allocate a
// session and spawn the matching flow; component interactions are pushed
// into the session identified by their correlation id.
type Dispatcher struct {
	ctx      context.Context
	registry *session.Registry
	// starters maps a backend kind to its flow entry point.
	starters map[string]flow.StartFunc
	log      *zap.Logger
}

// NewDispatcher wires the dispatcher to the registry and the per-kind flow
// starters. ctx scopes the lifetime of every spawned session.
func NewDispatcher(ctx context.Context, registry *session.Registry, starters map[string]flow.StartFunc, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		ctx:      ctx,
		registry: registry,
		starters: starters,
		log:      log,
	}
}

// HandleInteraction is registered as a discordgo event handler.
func (d *Dispatcher) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		d.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		d.handleContinuation(s, i)
	}
}

func (d *Dispatcher) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	kind, query, ok := parseCommand(i.ApplicationCommandData())
	if !ok {
		d.log.Warn("command interaction did not match the registered shape")
		return
	}
	start, ok := d.starters[kind]
	if !ok {
		d.log.Warn("no backend for requested kind", zap.String("kind", kind))
		return
	}

	sess := d.registry.Create()
	ui := newRenderer(s, i, sess.ID, d.log)
	d.log.Info("starting session",
		zap.String("session", sess.ID),
		zap.String("kind", kind),
		zap.String("query", query),
	)

	go func() {
		outcome := start(d.ctx, sess, query, ui)
		d.log.Info("session finished",
			zap.String("session", sess.ID),
			zap.Stringer("outcome", outcome),
		)
	}()
}

func (d *Dispatcher) handleContinuation(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	ref, err := parseCustomID(data.CustomID)
	if err != nil {
		// Component from another bot or a stale message shape.
		d.log.Debug("ignoring unroutable component", zap.Error(err))
		return
	}

	ev := session.ContinuationEvent{
		Scope:       ref.Scope,
		FieldTitle:  ref.Field,
		OriginID:    i.ID,
		OriginToken: i.Token,
	}
	if len(data.Values) > 0 {
		ev.Value = data.Values[0]
	}

	if d.pushContinuation(ref, ev) {
		d.respondTimeout(s, i)
	}
}

// pushContinuation delivers one continuation event and reports whether the
// interaction should be answered with the standalone timeout notice instead.
func (d *Dispatcher) pushContinuation(ref Ref, ev session.ContinuationEvent) (notifyTimeout bool) {
	switch err := d.registry.Push(ref.Session, ev); err {
	case session.ErrNotReady:
		// One conversation turn in flight at a time: a second click
		// before the flow re-enters its wait is dropped, the clicker
		// told to retry, and the session torn down.
		d.log.Warn("session not ready for continuation", zap.String("session", ref.Session))
		d.registry.Remove(ref.Session)
		return true

	case session.ErrNoSession:
		// Evicted, finished, or from a previous run of the process.
		d.log.Warn("no session for continuation", zap.String("session", ref.Session))
		return true
	}
	return false
}

// respondTimeout renders a standalone timeout notice with no flow involved.
func (d *Dispatcher) respondTimeout(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    flow.TimeoutMessage,
			Flags:      discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{},
			Embeds:     []*discordgo.MessageEmbed{},
		},
	})
	if err != nil {
		d.log.Warn("failed to render timeout notice", zap.Error(err))
	}
}
