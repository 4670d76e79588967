package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dejobratic/tdsbot/internal/config"
	"github.com/dejobratic/tdsbot/internal/database"
	"github.com/dejobratic/tdsbot/internal/eventbus"
	"github.com/dejobratic/tdsbot/internal/keepalive"
	"github.com/dejobratic/tdsbot/internal/storefront/adapters"
	httpadapter "github.com/dejobratic/tdsbot/internal/storefront/adapters/http"
	"github.com/dejobratic/tdsbot/internal/storefront/adapters/llm"
	"github.com/dejobratic/tdsbot/internal/storefront/adapters/memory"
	"github.com/dejobratic/tdsbot/internal/storefront/adapters/postgres"
	redisadapter "github.com/dejobratic/tdsbot/internal/storefront/adapters/redis"
	"github.com/dejobratic/tdsbot/internal/storefront/adapters/telegram"
	"github.com/dejobratic/tdsbot/internal/storefront/app"
	"github.com/dejobratic/tdsbot/internal/storefront/catalog"
	"github.com/dejobratic/tdsbot/internal/storefront/intent"
	"github.com/dejobratic/tdsbot/internal/storefront/metrics"
	"github.com/dejobratic/tdsbot/internal/storefront/notify"
	"github.com/dejobratic/tdsbot/internal/storefront/ports"
	"github.com/dejobratic/tdsbot/internal/storefront/pricing"
	"github.com/dejobratic/tdsbot/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName        = "github.com/dejobratic/tdsbot"
	telemetryTimeout = 5 * time.Second
	dedupTTL         = 24 * time.Hour
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and its status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Telegram.Token == "" {
				return errors.New("TELEGRAM_BOT_TOKEN is required")
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

// backends holds the connections opened for the selected backends.
type backends struct {
	redis *goredis.Client
	pool  *pgxpool.Pool
}

func (b *backends) close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

func (b *backends) readinessChecks() []httpadapter.ReadinessCheck {
	var checks []httpadapter.ReadinessCheck
	if b.redis != nil {
		checks = append(checks, httpadapter.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return b.redis.Ping(ctx).Err() },
		})
	}
	if b.pool != nil {
		checks = append(checks, httpadapter.ReadinessCheck{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return database.CheckHealth(ctx, b.pool) },
		})
	}
	return checks
}

func serve(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var telOpts []telemetry.Option
	if cfg.Telemetry.OTelEndpoint == "" {
		telOpts = append(telOpts, telemetry.WithDiscardExporters())
	}
	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	}, telOpts...)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()
	meter := tel.Meter(meterName)

	storefrontMetrics, err := metrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create storefront metrics: %w", err)
	}
	busMetrics, err := eventbus.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create event bus metrics: %w", err)
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create http metrics: %w", err)
	}

	products, err := loadCatalog(cfg.Store.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	engine := pricing.Default()
	logger.Info("catalog loaded", "products", products.Len(), "path", cfg.Store.CatalogPath)

	b := &backends{}
	defer b.close()

	if cfg.UsesRedis() {
		b.redis, err = redisadapter.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		logger.Info("redis connected", "addr", cfg.Redis.Addr)
	}

	sessions, dedup := sessionBackends(cfg, b)
	events := eventBus(cfg, b, logger)

	flowOpts := []app.FlowOption{app.WithFlowMetrics(storefrontMetrics)}
	if cfg.Database.Ledger == config.LedgerPostgres {
		ledger, err := openLedger(ctx, cfg, b, meter, logger)
		if err != nil {
			return err
		}
		flowOpts = append(flowOpts, app.WithLedger(ledger))
	}

	dispatcher := notify.NewDispatcher(notify.Config{
		StoreName:     cfg.Store.Name,
		SupportNumber: cfg.Store.SupportNumber,
		Location:      engine.Location(),
	})
	paymentHandle := firstPaymentHandle(products)
	resolver := intent.NewResolver(products, engine, intent.Settings{
		StoreName:     cfg.Store.Name,
		SupportURL:    dispatcher.SupportLink(),
		PaymentHandle: paymentHandle,
	})

	flow := app.NewPurchaseFlow(
		products,
		engine,
		adapters.NewObservableSessionStore(sessions, storefrontMetrics),
		adapters.NewObservableEventBus(events, busMetrics),
		logger,
		flowOpts...,
	)

	convOpts := []app.ConversationOption{app.WithIntentMetrics(storefrontMetrics)}
	if cfg.AI.APIKey != "" {
		responder, err := llm.NewResponder(llm.Config{
			APIKey:  cfg.AI.APIKey,
			URL:     cfg.AI.URL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		}, products, cfg.Store.Name)
		if err != nil {
			return err
		}
		convOpts = append(convOpts, app.WithResponder(responder))
		logger.Info("fallback responder enabled", "model", cfg.AI.Model)
	}

	conversation := app.NewConversation(flow, resolver, dispatcher, app.Settings{
		StoreName:     cfg.Store.Name,
		SupportNumber: cfg.Store.SupportNumber,
		PaymentHandle: paymentHandle,
		AdminChatID:   cfg.Telegram.AdminChatID,
	}, logger, convOpts...)
	handler := app.NewObservableConversation(conversation, logger, storefrontMetrics)

	bot, err := telegram.NewBot(cfg.Telegram.Token)
	if err != nil {
		return err
	}
	logger.Info("telegram bot authorized", "username", bot.Self.UserName)
	runner := telegram.NewRunner(bot, handler, dedup, logger, cfg.Telegram.PollTimeout)

	mux := http.NewServeMux()
	httpadapter.NewHandler(cfg.Service.Name, products, engine, b.readinessChecks()...).Register(mux)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: otelhttp.NewHandler(
			httpadapter.WithRecovery(httpadapter.WithLogging(httpadapter.WithMetrics(mux, httpMetrics), logger), logger),
			"tdsbot.http",
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if cfg.KeepAlive.URL != "" {
		go keepalive.NewPinger(cfg.KeepAlive.URL, cfg.KeepAlive.Interval, logger).Run(ctx)
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- runner.Run(ctx)
		stop()
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}

	select {
	case err := <-runErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-shutdownCtx.Done():
		logger.Warn("telegram runner did not stop in time")
	}
	return nil
}

func sessionBackends(cfg *config.Config, b *backends) (ports.SessionStore, ports.UpdateDeduplicator) {
	if cfg.Sessions.Backend == config.BackendRedis {
		return redisadapter.NewSessionStore(b.redis, cfg.Sessions.TTL), redisadapter.NewDeduplicator(b.redis, dedupTTL)
	}
	return memory.NewSessionStore(cfg.Sessions.TTL), memory.NewDeduplicator(memory.DefaultDedupCapacity)
}

func eventBus(cfg *config.Config, b *backends, logger *slog.Logger) *eventbus.Bus {
	if cfg.Events.Sink == config.SinkRedis {
		return eventbus.New(eventbus.NewRedisStreamPublisher(b.redis, cfg.Events.Stream, cfg.Events.MaxLen))
	}
	return eventbus.New(eventbus.NewLogPublisher(logger))
}

func openLedger(ctx context.Context, cfg *config.Config, b *backends, meter metric.Meter, logger *slog.Logger) (ports.OrderLedger, error) {
	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	b.pool = pool

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return nil, err
		}
		logger.Info("migrations completed successfully")
	}

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create database metrics: %w", err)
	}
	return adapters.NewObservableLedger(postgres.NewLedger(pool), dbMetrics), nil
}

// firstPaymentHandle is the UPI handle quoted in generic replies.
func firstPaymentHandle(c *catalog.Catalog) string {
	for _, p := range c.List() {
		if p.PaymentHandle != "" {
			return p.PaymentHandle
		}
	}
	return ""
}
