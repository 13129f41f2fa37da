package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"copperx-bot/internal/log"
)

const pollTimeoutSeconds = 30

// maxUpdateBody bounds a webhook request body.
const maxUpdateBody = 1 << 20

// UpdateSource is the long-polling side of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poll long-polls Telegram and submits every update to d until ctx is done.
func Poll(ctx context.Context, src UpdateSource, d *Dispatcher) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := src.GetUpdatesChan(cfg)
	defer src.StopReceivingUpdates()

	log.Info(ctx).Msg("telegram: polling for updates")
	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			d.Submit(ctx, upd)
		}
	}
}

// WebhookPath is the path Telegram posts updates to. The secret keeps the endpoint unguessable.
func WebhookPath(secret string) string {
	secret = strings.Trim(secret, "/")
	if secret == "" {
		return "/webhook"
	}
	return "/webhook/" + secret
}

// RegisterWebhook points Telegram at baseURL + WebhookPath(secret).
func RegisterWebhook(api API, baseURL, secret string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + WebhookPath(secret))
	if err != nil {
		return fmt.Errorf("telegram: webhook url: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("telegram: set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes any registered webhook so long polling can receive updates.
func DeleteWebhook(api API) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("telegram: delete webhook: %w", err)
	}
	return nil
}

// ReadinessFunc reports whether the process can serve traffic.
type ReadinessFunc func(ctx context.Context) error

// NewRouter returns the HTTP handler for webhook mode and health probes.
// d may be nil in polling mode, in which case only /healthz is served.
func NewRouter(d *Dispatcher, secret string, ready ReadinessFunc) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				log.Warn(r.Context()).Err(err).Msg("telegram: readiness check failed")
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d != nil {
		r.Post(WebhookPath(secret), webhookHandler(d))
	}
	return otelhttp.NewHandler(r, "copperx-bot.http")
}

func webhookHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd tgbotapi.Update
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBody))
		if err := dec.Decode(&upd); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				http.Error(w, "update too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}
		d.Submit(r.Context(), upd)
		w.WriteHeader(http.StatusOK)
	}
}
