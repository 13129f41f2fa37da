// Package handler serves readiness for the bot process over the standard gRPC health protocol and HTTP.
package handler

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"copperx-bot/internal/log"
)

// checkTimeout bounds each dependency check.
const checkTimeout = 2 * time.Second

// Pinger checks a backing store (e.g. *sql.DB for the audit log).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks the gate policy evaluator (e.g. *engine.OPAEvaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server implements grpc.health.v1.Health. Nil dependencies are skipped.
type Server struct {
	healthpb.UnimplementedHealthServer
	pinger Pinger
	policy PolicyChecker
}

// NewServer returns a health server over the given optional dependencies.
func NewServer(pinger Pinger, policy PolicyChecker) *Server {
	return &Server{pinger: pinger, policy: policy}
}

// Ready runs every configured check and returns the first failure.
func (s *Server) Ready(ctx context.Context) error {
	if s.pinger != nil {
		pctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.pinger.PingContext(pctx)
		cancel()
		if err != nil {
			return errors.Join(errors.New("health: database unreachable"), err)
		}
	}
	if s.policy != nil {
		pctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.policy.HealthCheck(pctx)
		cancel()
		if err != nil {
			return errors.Join(errors.New("health: gate policy unavailable"), err)
		}
	}
	return nil
}

// Check reports SERVING when all dependencies pass. Only the overall service ("") and "copperx-bot" are known.
// Dependency failures are reported as NOT_SERVING, never as an RPC error.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", "copperx-bot":
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	if err := s.Ready(ctx); err != nil {
		log.Warn(ctx).Err(err).Msg("health: not serving")
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
