package middleware

import (
	"context"
	"encoding/json"
	"time"

	chat "copperx-bot/internal/chat/domain"
	flowdomain "copperx-bot/internal/flow/domain"
	"copperx-bot/internal/gatekeeper"
	"copperx-bot/internal/telemetry"
	"copperx-bot/internal/telemetry/domain"
)

// FlowReader reports the identity's active flow.
type FlowReader interface {
	Active(ctx context.Context, identity int64) (flowdomain.FlowID, bool)
}

// eventMetadata is the JSON shape stored in BotEvent.Metadata.
type eventMetadata struct {
	Replies   int    `json:"replies"`
	RequestID string `json:"request_id,omitempty"`
}

// Telemetry returns a middleware that emits a BotEvent after each event. Free text is never recorded,
// only its kind. Best-effort: emit runs asynchronously and failures are logged. A nil emitter no-ops.
func Telemetry(emitter telemetry.EventEmitter, flows FlowReader) chat.Middleware {
	return func(next chat.Handler) chat.Handler {
		return chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
			if emitter == nil {
				return next.Handle(ctx, ev)
			}
			start := time.Now()
			var flow flowdomain.FlowID
			if flows != nil {
				flow, _ = flows.Active(ctx, ev.Identity)
			}
			replies := next.Handle(ctx, ev)

			event := &domain.BotEvent{
				Identity:  ev.Identity,
				EventType: "unknown",
				Flow:      string(flow),
				Outcome:   outcome(replies),
				Source:    "telegram",
				LatencyMS: time.Since(start).Milliseconds(),
				CreatedAt: time.Now().UTC(),
			}
			if ev.Payload != nil {
				event.EventType = ev.Payload.Kind()
			}
			switch p := ev.Payload.(type) {
			case chat.Command:
				event.Name = p.Name
			case chat.ButtonPress:
				event.Name = p.Data
			}
			event.OrgID, _ = GetOrgID(ctx)
			event.UserID, _ = GetUserID(ctx)
			reqID, _ := GetRequestID(ctx)
			event.Metadata, _ = json.Marshal(eventMetadata{Replies: len(replies), RequestID: reqID})

			telemetry.EmitAsync(emitter, ctx, event)
			return replies
		})
	}
}

func outcome(replies []chat.Reply) string {
	switch {
	case len(replies) == 0:
		return domain.OutcomeIgnored
	case len(replies) == 1 && replies[0].Text == gatekeeper.LoginPrompt:
		return domain.OutcomeBlocked
	default:
		return domain.OutcomeOK
	}
}
