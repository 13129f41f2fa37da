// Package gatekeeper rejects chat events from identities without a live session,
// except for the events the exemption policy lets through.
package gatekeeper

import (
	"context"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/log"
	policyengine "copperx-bot/internal/policy/engine"
)

// LoginPrompt is sent when an event is blocked. Never-logged-in and expired look the same.
const LoginPrompt = "You need to login first. Use /start to begin."

// SessionChecker answers the liveness question.
type SessionChecker interface {
	IsLive(ctx context.Context, identity int64) bool
}

// FlowChecker reports whether the identity is in a flow that runs without a session.
type FlowChecker interface {
	InPublicFlow(ctx context.Context, identity int64) bool
}

// Gatekeeper guards a chat.Handler.
type Gatekeeper struct {
	sessions SessionChecker
	flows    FlowChecker
	policy   policyengine.Evaluator
}

// New returns a Gatekeeper. A nil policy uses the static exemption table; a nil flows never reports a public flow.
func New(sessions SessionChecker, flows FlowChecker, policy policyengine.Evaluator) *Gatekeeper {
	if policy == nil {
		policy = policyengine.StaticEvaluator{}
	}
	return &Gatekeeper{sessions: sessions, flows: flows, policy: policy}
}

// Allow reports whether ev may reach the downstream handler.
func (g *Gatekeeper) Allow(ctx context.Context, ev chat.Event) bool {
	if g.policy.Exempt(ctx, g.input(ctx, ev)) {
		return true
	}
	return g.sessions.IsLive(ctx, ev.Identity)
}

func (g *Gatekeeper) input(ctx context.Context, ev chat.Event) policyengine.GateInput {
	in := policyengine.GateInput{Kind: "unknown"}
	if ev.Payload != nil {
		in.Kind = ev.Payload.Kind()
	}
	switch p := ev.Payload.(type) {
	case chat.Command:
		in.Name = p.Name
	case chat.ButtonPress:
		in.Name = p.Data
	case chat.TextInput:
	}
	if g.flows != nil {
		in.InPublicFlow = g.flows.InPublicFlow(ctx, ev.Identity)
	}
	return in
}

// Wrap returns a Handler that answers blocked events with LoginPrompt and never calls next for them.
func (g *Gatekeeper) Wrap(next chat.Handler) chat.Handler {
	return chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
		if !g.Allow(ctx, ev) {
			log.Debug(ctx).Str("event", ev.Describe()).Msg("gatekeeper: blocked, no live session")
			return []chat.Reply{chat.Text(LoginPrompt)}
		}
		return next.Handle(ctx, ev)
	})
}
