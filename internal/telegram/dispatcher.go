package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/log"
)

const (
	defaultWorkers = 8
	defaultQueue   = 64
	// eventTimeout bounds the handling of one event, outbound API calls included.
	eventTimeout = 60 * time.Second
)

// EventHandler is implemented by *Bot.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev chat.Event)
}

// Dispatcher fans updates out to a fixed set of workers. Events of one identity always land on
// the same worker, so they are handled in arrival order.
type Dispatcher struct {
	handler EventHandler
	shards  []chan chat.Event
}

// NewDispatcher returns a Dispatcher with workers shards of queue buffered events each.
// Non-positive values use the defaults.
func NewDispatcher(handler EventHandler, workers, queue int) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queue <= 0 {
		queue = defaultQueue
	}
	d := &Dispatcher{handler: handler, shards: make([]chan chat.Event, workers)}
	for i := range d.shards {
		d.shards[i] = make(chan chat.Event, queue)
	}
	return d
}

// Submit converts upd and queues it. It blocks while the worker's queue is full and reports
// false when the update was dropped (unsupported kind or ctx done).
func (d *Dispatcher) Submit(ctx context.Context, upd tgbotapi.Update) bool {
	ev, ok := ToEvent(upd)
	if !ok {
		log.Debug(ctx).Int("update_id", upd.UpdateID).Msg("telegram: ignoring unsupported update")
		return false
	}
	select {
	case d.shard(ev.Identity) <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *Dispatcher) shard(identity int64) chan chat.Event {
	return d.shards[uint64(identity)%uint64(len(d.shards))]
}

// Run starts the workers and blocks until ctx is done. An event already being handled runs to
// completion on a context detached from ctx.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, ch := range d.shards {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev := <-ch:
					d.handle(ctx, ev)
				}
			}
		})
	}
	return g.Wait()
}

func (d *Dispatcher) handle(ctx context.Context, ev chat.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
	defer cancel()
	d.handler.HandleEvent(ctx, ev)
}
