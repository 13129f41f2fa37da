package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/log"
)

// InternalErrorText is sent when a handler panics.
const InternalErrorText = "An error occurred. Please try again later."

// Recover turns a handler panic into InternalErrorText so one bad event cannot stop the update loop.
func Recover() chat.Middleware {
	return func(next chat.Handler) chat.Handler {
		return chat.HandlerFunc(func(ctx context.Context, ev chat.Event) (replies []chat.Reply) {
			defer func() {
				if r := recover(); r != nil {
					log.Error(ctx).Str("panic", fmt.Sprint(r)).Bytes("stack", debug.Stack()).Msg("bot: handler panic")
					replies = []chat.Reply{chat.Text(InternalErrorText)}
				}
			}()
			return next.Handle(ctx, ev)
		})
	}
}
