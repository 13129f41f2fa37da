package middleware

import (
	"context"

	"copperx-bot/internal/audit"
	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/telemetry/domain"
)

// Audit returns a middleware that records an audit log entry after each auditable event
// (see audit.ParseEvent). Org and user come from the session as it stands after the handler ran,
// falling back to the values captured on entry so logout is still attributed.
// Events the gatekeeper blocked are not audited. LogEvent is best-effort and never changes the replies.
func Audit(logger audit.AuditLogger, sessions SessionReader) chat.Middleware {
	return func(next chat.Handler) chat.Handler {
		return chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
			replies := next.Handle(ctx, ev)
			if logger == nil || outcome(replies) == domain.OutcomeBlocked {
				return replies
			}
			ar, ok := audit.ParseEvent(ev)
			if !ok {
				return replies
			}
			orgID, userID := attribution(ctx, sessions, ev.Identity)
			logger.LogEvent(ctx, ev.Identity, orgID, userID, ar.Action, ar.Resource, "")
			return replies
		})
	}
}

func attribution(ctx context.Context, sessions SessionReader, identity int64) (orgID, userID string) {
	if sessions != nil {
		if s, ok := sessions.Get(ctx, identity); ok {
			return s.OrganizationID, s.UserID
		}
	}
	orgID, _ = GetOrgID(ctx)
	userID, _ = GetUserID(ctx)
	return orgID, userID
}
