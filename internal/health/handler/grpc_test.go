package handler

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// mockPinger implements Pinger for tests.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) PingContext(context.Context) error {
	return m.pingErr
}

// mockPolicyChecker implements PolicyChecker for tests.
type mockPolicyChecker struct {
	healthErr error
}

func (m *mockPolicyChecker) HealthCheck(context.Context) error {
	return m.healthErr
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		pinger Pinger
		policy PolicyChecker
		want   healthpb.HealthCheckResponse_ServingStatus
	}{
		{"no dependencies", nil, nil, healthpb.HealthCheckResponse_SERVING},
		{"pinger ok", &mockPinger{}, nil, healthpb.HealthCheckResponse_SERVING},
		{"pinger fails", &mockPinger{pingErr: errors.New("connection refused")}, nil, healthpb.HealthCheckResponse_NOT_SERVING},
		{"policy ok", nil, &mockPolicyChecker{}, healthpb.HealthCheckResponse_SERVING},
		{"policy fails", nil, &mockPolicyChecker{healthErr: errors.New("not compiled")}, healthpb.HealthCheckResponse_NOT_SERVING},
		{"both ok", &mockPinger{}, &mockPolicyChecker{}, healthpb.HealthCheckResponse_SERVING},
		{"policy fails after ping", &mockPinger{}, &mockPolicyChecker{healthErr: errors.New("x")}, healthpb.HealthCheckResponse_NOT_SERVING},
	}
	for _, tt := range tests {
		srv := NewServer(tt.pinger, tt.policy)
		resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{})
		if err != nil {
			t.Fatalf("%s: Check must not return an RPC error: %v", tt.name, err)
		}
		if resp.GetStatus() != tt.want {
			t.Errorf("%s: status = %v, want %v", tt.name, resp.GetStatus(), tt.want)
		}
	}
}

func TestCheck_NamedService(t *testing.T) {
	srv := NewServer(nil, nil)
	resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "copperx-bot"})
	if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Check(copperx-bot) = (%v, %v), want SERVING", resp.GetStatus(), err)
	}
}

func TestCheck_UnknownService(t *testing.T) {
	_, err := NewServer(nil, nil).Check(context.Background(), &healthpb.HealthCheckRequest{Service: "other"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("code = %v, want NotFound", status.Code(err))
	}
}

func TestReady_ReturnsFirstFailure(t *testing.T) {
	pingErr := errors.New("db down")
	err := NewServer(&mockPinger{pingErr: pingErr}, &mockPolicyChecker{healthErr: errors.New("policy down")}).Ready(context.Background())
	if !errors.Is(err, pingErr) {
		t.Errorf("Ready error = %v, want to wrap %v", err, pingErr)
	}
}
