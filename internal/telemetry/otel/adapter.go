package otel

import (
	"context"
	"strconv"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"copperx-bot/internal/telemetry"
	"copperx-bot/internal/telemetry/domain"
)

// recordEmitter is the part of otellog.Logger the adapter uses.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("copperx-bot.telemetry")}
}

// NewEventEmitterWithLogger returns an EventEmitter that writes records to l.
func NewEventEmitterWithLogger(l recordEmitter) telemetry.EventEmitter {
	if l == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: l}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.BotEvent) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the bot event to an OTel log record and emits it. Empty fields are not added as attributes.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.BotEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	if len(event.Metadata) > 0 {
		rec.SetBody(otellog.BytesValue(event.Metadata))
	}
	if event.Identity != 0 {
		rec.AddAttributes(otellog.String("identity", strconv.FormatInt(event.Identity, 10)))
	}
	for _, kv := range []struct{ k, v string }{
		{"org_id", event.OrgID},
		{"user_id", event.UserID},
		{"event_type", event.EventType},
		{"name", event.Name},
		{"flow", event.Flow},
		{"outcome", event.Outcome},
		{"source", event.Source},
	} {
		if kv.v != "" {
			rec.AddAttributes(otellog.String(kv.k, kv.v))
		}
	}
	rec.AddAttributes(otellog.Int64("latency_ms", event.LatencyMS))
	e.logger.Emit(ctx, rec)
	return nil
}
