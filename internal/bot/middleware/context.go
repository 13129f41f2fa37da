// Package middleware holds the chat.Handler wrappers applied to every inbound event:
// identity context, panic recovery, per-identity serialization, telemetry and audit.
package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/log"
	sessiondomain "copperx-bot/internal/session/domain"
)

type contextKey struct{ name string }

var (
	identityKey  = contextKey{"identity"}
	userIDKey    = contextKey{"user_id"}
	orgIDKey     = contextKey{"org_id"}
	requestIDKey = contextKey{"request_id"}
)

// SessionReader looks up the identity's stored session.
type SessionReader interface {
	Get(ctx context.Context, identity int64) (*sessiondomain.Session, bool)
}

// WithIdentity returns a context with identity, user_id and org_id set.
// Handlers read these via GetIdentity, GetUserID, GetOrgID.
func WithIdentity(ctx context.Context, identity int64, userID, orgID string) context.Context {
	ctx = context.WithValue(ctx, identityKey, identity)
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, orgIDKey, orgID)
	return ctx
}

// GetIdentity returns the chat identity from context and true if set; otherwise 0, false.
func GetIdentity(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(identityKey).(int64)
	return v, ok
}

// GetUserID returns the Copperx user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetOrgID returns the org_id from context and true if set; otherwise "", false.
func GetOrgID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(orgIDKey).(string)
	return v, ok
}

// GetRequestID returns the per-event request id.
func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	return v, ok
}

// Identity attaches the event's identity, the session's user and org (when one is stored) and a fresh
// request id to the context, plus a child logger carrying the same fields.
func Identity(sessions SessionReader) chat.Middleware {
	return func(next chat.Handler) chat.Handler {
		return chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
			var userID, orgID string
			if sessions != nil {
				if s, ok := sessions.Get(ctx, ev.Identity); ok {
					userID, orgID = s.UserID, s.OrganizationID
				}
			}
			reqID := uuid.New().String()
			ctx = WithIdentity(ctx, ev.Identity, userID, orgID)
			ctx = context.WithValue(ctx, requestIDKey, reqID)
			ctx = log.WithContext(ctx, func(c zerolog.Context) zerolog.Context {
				c = c.Int64("identity", ev.Identity).Str("event", ev.Describe()).Str("request_id", reqID)
				if userID != "" {
					c = c.Str("user_id", userID)
				}
				return c
			})
			return next.Handle(ctx, ev)
		})
	}
}
