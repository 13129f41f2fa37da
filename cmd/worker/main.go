// Worker consumes bot telemetry events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID, and LOKI_URL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"copperx-bot/internal/config"
	"copperx-bot/internal/log"
	"copperx-bot/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log.SetLevel(log.ParseLevel(cfg.LogLevel))

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal().Msg("worker: KAFKA_BROKERS is required")
	}
	if cfg.LokiURL == "" {
		log.Fatal().Msg("worker: LOKI_URL is required")
	}

	topic := cfg.TelemetryKafkaTopic
	if topic == "" {
		topic = "copperx-bot-telemetry"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "copperx-bot-telemetry-worker"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lokiClient := loki.NewClient(cfg.LokiURL)
	log.Info(ctx).Str("topic", topic).Str("group", groupID).Str("loki", cfg.LokiURL).Msg("worker: consuming")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info(context.Background()).Msg("worker: stopped")
				return
			}
			log.Warn(ctx).Err(err).Msg("worker: kafka read error")
			continue
		}

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := lokiClient.PushEventJSON(pushCtx, msg.Value); err != nil {
			log.Warn(ctx).Err(err).Int64("offset", msg.Offset).Msg("worker: loki push failed")
		}
		pushCancel()
	}
}
