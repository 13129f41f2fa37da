// Package telemetry emits per-event usage records to Kafka and OpenTelemetry logs.
package telemetry

import (
	"context"
	"errors"

	"copperx-bot/internal/telemetry/domain"
)

// EventEmitter emits telemetry events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.BotEvent) error
}

// Multi returns an emitter that forwards each event to every non-nil emitter.
// All emitters are attempted; the returned error joins their failures.
func Multi(emitters ...EventEmitter) EventEmitter {
	out := make(multi, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

type multi []EventEmitter

func (m multi) Emit(ctx context.Context, event *domain.BotEvent) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
