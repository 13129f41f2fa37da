// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Bot delivery modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// TelegramBotToken is the Bot API token issued by BotFather. Required by cmd/bot.
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	// BotMode selects how updates are received: "polling" (default) or "webhook".
	BotMode string `mapstructure:"BOT_MODE"`
	// WebhookURL is the public base URL Telegram posts updates to (webhook mode only).
	WebhookURL string `mapstructure:"WEBHOOK_URL"`
	// WebhookSecret is appended to the webhook path so random callers cannot inject updates.
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`
	// HTTPAddr is the listen address of the webhook/healthz HTTP server.
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the listen address of the gRPC health server. Empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`

	// CopperxAPIURL is the base URL of the Copperx payments API.
	CopperxAPIURL string `mapstructure:"COPPERX_API_URL"`
	// APITimeout bounds every outbound Copperx call (e.g. "15s").
	APITimeout string `mapstructure:"API_TIMEOUT"`
	// SessionTTLRaw is the session lifetime (e.g. "1h"); capped by the access token's exp claim.
	SessionTTLRaw string `mapstructure:"SESSION_TTL"`

	// PusherKey is the Pusher app key for deposit notifications. Empty disables notifications.
	PusherKey string `mapstructure:"PUSHER_KEY"`
	// PusherCluster is the Pusher cluster (e.g. "ap1").
	PusherCluster string `mapstructure:"PUSHER_CLUSTER"`

	// GatePolicyFile optionally points to a Rego file overriding the built-in gate exemption policy.
	GatePolicyFile string `mapstructure:"GATE_POLICY_FILE"`

	// DatabaseURL is the Postgres DSN for the audit log; empty disables auditing.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is where the telemetry worker pushes logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty uses no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext gRPC to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// LogLevel is the minimum zerolog level ("debug", "info", "warn", "error").
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
// Load does not require TELEGRAM_BOT_TOKEN so that cmd/migrate and cmd/worker can share it; see ValidateBot.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("BOT_MODE", ModePolling)
	v.SetDefault("WEBHOOK_URL", "")
	v.SetDefault("WEBHOOK_SECRET", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("COPPERX_API_URL", "https://income-api.copperx.io")
	v.SetDefault("API_TIMEOUT", "15s")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("PUSHER_KEY", "")
	v.SetDefault("PUSHER_CLUSTER", "ap1")
	v.SetDefault("GATE_POLICY_FILE", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "copperx-bot-telemetry")
	v.SetDefault("KAFKA_GROUP_ID", "copperx-bot-telemetry-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.BotMode = strings.ToLower(strings.TrimSpace(cfg.BotMode))
	if cfg.BotMode != ModePolling && cfg.BotMode != ModeWebhook {
		return nil, errors.New("config: BOT_MODE must be polling or webhook")
	}
	if cfg.BotMode == ModeWebhook && cfg.WebhookURL == "" {
		return nil, errors.New("config: WEBHOOK_URL must be set when BOT_MODE=webhook")
	}
	if strings.TrimSpace(cfg.CopperxAPIURL) == "" {
		return nil, errors.New("config: COPPERX_API_URL must be set")
	}

	return &cfg, nil
}

// ValidateBot checks the fields only the bot binary needs.
func (c *Config) ValidateBot() error {
	if c.TelegramBotToken == "" {
		return errors.New("config: TELEGRAM_BOT_TOKEN must be set")
	}
	return nil
}

// SessionTTL parses SessionTTLRaw as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTLRaw)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// APITimeoutDuration parses APITimeout as a time.Duration. Returns 15s if unset or invalid.
func (c *Config) APITimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.APITimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// NotificationsEnabled reports whether a Pusher key is configured.
func (c *Config) NotificationsEnabled() bool {
	return c != nil && strings.TrimSpace(c.PusherKey) != ""
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if Kafka telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
