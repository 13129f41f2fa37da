package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	flowdomain "copperx-bot/internal/flow/domain"
)

const meterName = "copperx-bot/flow"

type counters struct {
	started   metric.Int64Counter
	completed metric.Int64Counter
	failed    metric.Int64Counter
	rejected  metric.Int64Counter
	cancelled metric.Int64Counter
}

// newCounters builds the engine counters on the global MeterProvider (no-op until telemetry is set up).
func newCounters() *counters {
	m := otel.Meter(meterName)
	c := &counters{}
	c.started, _ = m.Int64Counter("flow.started", metric.WithDescription("Flows started"))
	c.completed, _ = m.Int64Counter("flow.completed", metric.WithDescription("Flows whose completion succeeded"))
	c.failed, _ = m.Int64Counter("flow.failed", metric.WithDescription("Flows ended by an error"))
	c.rejected, _ = m.Int64Counter("flow.input_rejected", metric.WithDescription("Step inputs that failed validation"))
	c.cancelled, _ = m.Int64Counter("flow.cancelled", metric.WithDescription("Flows cancelled by the user"))
	return c
}

func (c *counters) add(ctx context.Context, ctr metric.Int64Counter, id flowdomain.FlowID) {
	if c == nil || ctr == nil {
		return
	}
	ctr.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", string(id))))
}
