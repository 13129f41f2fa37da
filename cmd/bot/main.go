// Bot runs the Copperx Telegram bot: Telegram updates (polling or webhook), the HTTP health
// endpoint and the gRPC health service. Configure with TELEGRAM_BOT_TOKEN and the keys in internal/config.
package main

import (
	"context"
	"errors"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"copperx-bot/internal/audit"
	auditrepo "copperx-bot/internal/audit/repository"
	"copperx-bot/internal/bot/flows"
	"copperx-bot/internal/bot/handler"
	"copperx-bot/internal/bot/middleware"
	chat "copperx-bot/internal/chat/domain"
	"copperx-bot/internal/config"
	"copperx-bot/internal/copperx"
	"copperx-bot/internal/db"
	"copperx-bot/internal/flow/engine"
	flowrepo "copperx-bot/internal/flow/repository"
	"copperx-bot/internal/gatekeeper"
	"copperx-bot/internal/log"
	"copperx-bot/internal/notify"
	policyengine "copperx-bot/internal/policy/engine"
	"copperx-bot/internal/server"
	sessionrepo "copperx-bot/internal/session/repository"
	"copperx-bot/internal/telegram"
	"copperx-bot/internal/telemetry"
	oteltelemetry "copperx-bot/internal/telemetry/otel"
	"copperx-bot/internal/telemetry/producer"
)

const (
	serviceName     = "copperx-bot"
	shutdownTimeout = 10 * time.Second
	// telegramTimeout must exceed the long-poll timeout.
	telegramTimeout = 60 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log.SetLevel(log.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("bot: exiting")
	}
	log.Info(context.Background()).Msg("bot: stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	providers, err := oteltelemetry.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()

	emitters := []telemetry.EventEmitter{oteltelemetry.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Info(ctx).Str("topic", cfg.TelemetryKafkaTopic).Msg("telemetry: kafka producer enabled")
	}
	emitter := telemetry.Multi(emitters...)

	var auditLogger audit.AuditLogger = audit.Nop{}
	deps := server.Deps{}
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		auditLogger = audit.NewLogger(auditrepo.NewPostgresRepository(sqlDB))
		deps.HealthPinger = sqlDB
		log.Info(ctx).Msg("audit: postgres audit log enabled")
	}

	policy := policyengine.NewOPAEvaluator(ctx, cfg.GatePolicyFile)
	deps.HealthPolicyChecker = policy

	api := copperx.NewClient(cfg.CopperxAPIURL, cfg.APITimeoutDuration())

	_ = tgbotapi.SetLogger(&log.StdLogWrapper{Logger: log.Logger()})
	tg, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramBotToken, tgbotapi.APIEndpoint, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   telegramTimeout,
	})
	if err != nil {
		return err
	}
	log.Info(ctx).Str("username", tg.Self.UserName).Msg("telegram: authorized")

	notifier := notify.NewManager(notify.Options{Key: cfg.PusherKey, Cluster: cfg.PusherCluster}, api, telegram.NewMessenger(tg))
	defer notifier.Close()
	if !notifier.Enabled() {
		log.Info(ctx).Msg("notify: PUSHER_KEY not set, deposit notifications disabled")
	}

	sessions := sessionrepo.NewMemoryRepository()
	eng := engine.New(flowrepo.NewMemoryRepository(), sessions, flows.Definitions(flows.Deps{
		API:        api,
		Sessions:   sessions,
		Notifier:   notifier,
		Audit:      auditLogger,
		SessionTTL: cfg.SessionTTL(),
	})...)
	gate := gatekeeper.New(sessions, eng, policy)

	chain := chat.Chain(handler.New(api, sessions, eng, notifier),
		middleware.Recover(),
		middleware.Serialize(),
		middleware.Identity(sessions),
		middleware.Telemetry(emitter, eng),
		middleware.Audit(auditLogger, sessions),
		gate.Wrap,
	)
	dispatcher := telegram.NewDispatcher(telegram.NewBot(tg, chain), 0, 0)

	grpcServer, health := server.NewGRPCServer(deps)

	webhook := cfg.BotMode == config.ModeWebhook
	var routed *telegram.Dispatcher
	if webhook {
		routed = dispatcher
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           telegram.NewRouter(routed, cfg.WebhookSecret, health.Ready),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          stdlog.New(&log.StdLogWrapper{Logger: log.Logger()}, "", 0),
	}

	if webhook {
		if err := telegram.RegisterWebhook(tg, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return err
		}
		log.Info(ctx).Str("path", telegram.WebhookPath(cfg.WebhookSecret)).Msg("telegram: webhook registered")
	} else if err := telegram.DeleteWebhook(tg); err != nil {
		log.Warn(ctx).Err(err).Msg("telegram: could not clear webhook before polling")
	}

	var grpcListener net.Listener
	if cfg.GRPCAddr != "" {
		if grpcListener, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx) })
	if !webhook {
		g.Go(func() error { return telegram.Poll(gctx, tg, dispatcher) })
	}

	g.Go(func() error {
		log.Info(ctx).Str("addr", cfg.HTTPAddr).Msg("http: listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if grpcListener != nil {
		g.Go(func() error {
			log.Info(ctx).Str("addr", cfg.GRPCAddr).Msg("grpc: health server listening")
			return grpcServer.Serve(grpcListener)
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcServer.GracefulStop()
			return nil
		})
	}

	err = g.Wait()
	log.Info(context.Background()).Msg("bot: shutting down")

	// Let in-flight async telemetry emits finish before the exporters go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if kafkaProducer != nil {
		if cerr := kafkaProducer.Close(); cerr != nil {
			log.Warn(shutdownCtx).Err(cerr).Msg("telemetry: kafka producer close failed")
		}
	}
	if serr := providers.Shutdown(shutdownCtx); serr != nil {
		log.Warn(shutdownCtx).Err(serr).Msg("telemetry: provider shutdown failed")
	}
	return err
}
