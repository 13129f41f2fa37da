// Package server builds the gRPC server the bot process exposes for health checks.
package server

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"

	healthhandler "copperx-bot/internal/health/handler"
)

// Deps holds optional dependencies for gRPC handlers.
type Deps struct {
	// HealthPinger is used by the health service for readiness (e.g. *sql.DB). If nil, the DB ping is skipped.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by the health service for readiness (e.g. OPA evaluator). If nil, the policy check is skipped.
	HealthPolicyChecker healthhandler.PolicyChecker
}

// NewGRPCServer returns a gRPC server instrumented with OpenTelemetry and with all services registered.
func NewGRPCServer(deps Deps) (*grpc.Server, *healthhandler.Server) {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	health := RegisterServices(s, deps)
	return s, health
}

// RegisterServices registers the gRPC services with the given server and returns the health handler
// so the HTTP /healthz endpoint can share it.
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) *healthhandler.Server {
	health := healthhandler.NewServer(deps.HealthPinger, deps.HealthPolicyChecker)
	healthpb.RegisterHealthServer(s, health)
	return health
}
