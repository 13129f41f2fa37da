package otel

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"copperx-bot/internal/telemetry/domain"
)

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	if em == nil {
		t.Fatal("NewEventEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("noop Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), &domain.BotEvent{OrgID: "org1"}); err != nil {
		t.Errorf("noop Emit(ctx, event): %v", err)
	}
}

func TestEmit_NilEvent_ReturnsNil(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
}

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
}

func attrsOf(rec otellog.Record) map[string]string {
	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		if kv.Value.Kind() == otellog.KindString {
			attrs[kv.Key] = kv.Value.AsString()
		}
		return true
	})
	return attrs
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	cap := &recordCapture{}
	em := NewEventEmitterWithLogger(cap)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := &domain.BotEvent{
		Identity:  42,
		OrgID:     "org1",
		UserID:    "user1",
		EventType: "button",
		Name:      "confirm_email_transfer",
		Flow:      "send_email",
		Outcome:   domain.OutcomeOK,
		Source:    "telegram",
		Metadata:  json.RawMessage(`{"key":"value"}`),
		CreatedAt: now,
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := cap.rec

	if got := rec.Body().AsBytes(); string(got) != `{"key":"value"}` {
		t.Errorf("body = %q, want %q", got, event.Metadata)
	}
	if !rec.Timestamp().Equal(now) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), now)
	}
	want := map[string]string{
		"identity": "42", "org_id": "org1", "user_id": "user1", "event_type": "button",
		"name": "confirm_email_transfer", "flow": "send_email", "outcome": "ok", "source": "telegram",
	}
	attrs := attrsOf(rec)
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attr %q = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestEmit_EmptyFieldsOmitted(t *testing.T) {
	cap := &recordCapture{}
	em := NewEventEmitterWithLogger(cap)
	before := time.Now().UTC()
	if err := em.Emit(context.Background(), &domain.BotEvent{EventType: "text"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := cap.rec
	if !rec.Body().Empty() {
		t.Error("body should be empty when metadata is nil")
	}
	if rec.Timestamp().Before(before) {
		t.Errorf("timestamp = %v, want >= %v", rec.Timestamp(), before)
	}
	attrs := attrsOf(rec)
	if attrs["event_type"] != "text" {
		t.Errorf("event_type = %q, want %q", attrs["event_type"], "text")
	}
	for _, k := range []string{"identity", "org_id", "user_id", "name", "flow"} {
		if _, ok := attrs[k]; ok {
			t.Errorf("attr %q should not be set", k)
		}
	}
}
