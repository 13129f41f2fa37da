package middleware

import (
	"context"
	"testing"

	chat "copperx-bot/internal/chat/domain"
)

func TestRecover_PanicBecomesErrorReply(t *testing.T) {
	h := Recover()(chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
		panic("boom")
	}))
	replies := h.Handle(context.Background(), chat.Event{Identity: 1, Payload: chat.Command{Name: "balance"}})
	if len(replies) != 1 || replies[0].Text != InternalErrorText {
		t.Errorf("replies = %+v, want %q", replies, InternalErrorText)
	}
}

func TestRecover_PassThrough(t *testing.T) {
	replies := Recover()(okHandler()).Handle(context.Background(), chat.Event{Identity: 1, Payload: chat.Command{Name: "help"}})
	if len(replies) != 1 || replies[0].Text != "ok" {
		t.Errorf("replies = %+v", replies)
	}
}
