package loki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func captureServer(t *testing.T, status int, got *PushRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %q, want /loki/api/v1/push", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("decode push body: %v", err)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPushEventJSON_LabelsAndTimestamp(t *testing.T) {
	var got PushRequest
	srv := captureServer(t, http.StatusNoContent, &got)
	c := NewClient(srv.URL + "/")

	raw := []byte(`{"identity":42,"eventType":"button","flow":"send_email","outcome":"ok","source":"telegram","createdAt":"2026-03-01T12:00:00Z"}`)
	if err := c.PushEventJSON(context.Background(), raw); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	if len(got.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(got.Streams))
	}
	s := got.Streams[0]
	want := map[string]string{"job": "copperx-bot", "event_type": "button", "flow": "send_email", "outcome": "ok", "source": "telegram"}
	for k, v := range want {
		if s.Stream[k] != v {
			t.Errorf("label %q = %q, want %q", k, s.Stream[k], v)
		}
	}
	if _, ok := s.Stream["identity"]; ok {
		t.Error("identity must not be a label")
	}
	wantTS := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixNano()
	if s.Values[0][0] != jsonInt(wantTS) {
		t.Errorf("timestamp = %s, want %d", s.Values[0][0], wantTS)
	}
	if s.Values[0][1] != string(raw) {
		t.Errorf("line = %q, want raw event", s.Values[0][1])
	}
}

func TestPushEventJSON_InvalidJSONPushedRaw(t *testing.T) {
	var got PushRequest
	srv := captureServer(t, http.StatusNoContent, &got)
	if err := NewClient(srv.URL).PushEventJSON(context.Background(), []byte("not json")); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	if got.Streams[0].Values[0][1] != "not json" {
		t.Errorf("line = %q", got.Streams[0].Values[0][1])
	}
	if len(got.Streams[0].Stream) != 1 {
		t.Errorf("labels = %v, want only job", got.Streams[0].Stream)
	}
}

func TestPushEvent_SanitizesLabels(t *testing.T) {
	var got PushRequest
	srv := captureServer(t, http.StatusNoContent, &got)
	err := NewClient(srv.URL).PushEvent(context.Background(), time.Now(), "x", map[string]string{"name": "set default/w 1", "empty": "  "})
	if err != nil {
		t.Fatalf("PushEvent: %v", err)
	}
	if got.Streams[0].Stream["name"] != "set_default_w_1" {
		t.Errorf("name label = %q", got.Streams[0].Stream["name"])
	}
	if _, ok := got.Streams[0].Stream["empty"]; ok {
		t.Error("empty label should be dropped")
	}
}

func TestPushEvent_Non2xx(t *testing.T) {
	var got PushRequest
	srv := captureServer(t, http.StatusBadRequest, &got)
	if err := NewClient(srv.URL).PushEvent(context.Background(), time.Now(), "x", nil); err == nil {
		t.Error("expected error on 400")
	}
}

func TestPushEvent_EmptyBaseURL(t *testing.T) {
	if err := NewClient("").PushEvent(context.Background(), time.Now(), "x", nil); err == nil {
		t.Error("expected error for empty base URL")
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
