package middleware

import (
	"context"
	"testing"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/gatekeeper"
	sessiondomain "copperx-bot/internal/session/domain"
)

type loggedEvent struct {
	identity int64
	orgID, userID, action, resource, metadata string
}

// mockAuditLogger implements audit.AuditLogger for tests.
type mockAuditLogger struct {
	events []loggedEvent
}

func (m *mockAuditLogger) LogEvent(ctx context.Context, identity int64, orgID, userID, action, resource, metadata string) {
	m.events = append(m.events, loggedEvent{identity, orgID, userID, action, resource, metadata})
}

func okHandler() chat.Handler {
	return chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
		return []chat.Reply{chat.Text("ok")}
	})
}

func TestAudit_AuditableEventUsesSession(t *testing.T) {
	logger := &mockAuditLogger{}
	sessions := &mockSessions{byIdentity: map[int64]*sessiondomain.Session{
		5: {UserID: "user-5", OrganizationID: "org-5"},
	}}
	h := Audit(logger, sessions)(okHandler())

	replies := h.Handle(context.Background(), chat.Event{Identity: 5, Payload: chat.ButtonPress{Data: "confirm_email_transfer"}})
	if len(replies) != 1 || replies[0].Text != "ok" {
		t.Errorf("replies = %+v, want handler output", replies)
	}
	if len(logger.events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(logger.events))
	}
	e := logger.events[0]
	if e.orgID != "org-5" || e.userID != "user-5" || e.action != "confirm" || e.resource != "transfer_email" {
		t.Errorf("audit event = %+v", e)
	}
}

func TestAudit_LogoutFallsBackToContext(t *testing.T) {
	logger := &mockAuditLogger{}
	h := Audit(logger, &mockSessions{})(okHandler())

	ctx := WithIdentity(context.Background(), 5, "user-5", "org-5")
	h.Handle(ctx, chat.Event{Identity: 5, Payload: chat.Command{Name: "logout"}})
	if len(logger.events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(logger.events))
	}
	if logger.events[0].orgID != "org-5" || logger.events[0].action != "logout" {
		t.Errorf("audit event = %+v", logger.events[0])
	}
}

func TestAudit_SkipsNonAuditable(t *testing.T) {
	logger := &mockAuditLogger{}
	h := Audit(logger, &mockSessions{})(okHandler())

	h.Handle(context.Background(), chat.Event{Identity: 1, Payload: chat.TextInput{Text: "secret otp"}})
	h.Handle(context.Background(), chat.Event{Identity: 1, Payload: chat.Command{Name: "balance"}})
	if len(logger.events) != 0 {
		t.Errorf("audit events = %d, want 0", len(logger.events))
	}
}

func TestAudit_SkipsBlocked(t *testing.T) {
	logger := &mockAuditLogger{}
	blocked := chat.HandlerFunc(func(ctx context.Context, ev chat.Event) []chat.Reply {
		return []chat.Reply{chat.Text(gatekeeper.LoginPrompt)}
	})
	h := Audit(logger, &mockSessions{})(blocked)

	h.Handle(context.Background(), chat.Event{Identity: 1, Payload: chat.Command{Name: "logout"}})
	if len(logger.events) != 0 {
		t.Errorf("audit events = %d, want 0", len(logger.events))
	}
}

func TestAudit_NilLogger(t *testing.T) {
	h := Audit(nil, nil)(okHandler())
	if replies := h.Handle(context.Background(), chat.Event{Identity: 1, Payload: chat.Command{Name: "logout"}}); len(replies) != 1 {
		t.Errorf("replies = %d, want 1", len(replies))
	}
}
