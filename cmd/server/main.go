package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/notifyhub/ms-notification-kafka/internal/api"
	"github.com/notifyhub/ms-notification-kafka/internal/api/handler"
	"github.com/notifyhub/ms-notification-kafka/internal/config"
	"github.com/notifyhub/ms-notification-kafka/internal/db"
	"github.com/notifyhub/ms-notification-kafka/internal/metrics"
	"github.com/notifyhub/ms-notification-kafka/internal/producer"
	"github.com/notifyhub/ms-notification-kafka/internal/ratelimiter"
	"github.com/notifyhub/ms-notification-kafka/internal/repository"
	"github.com/notifyhub/ms-notification-kafka/internal/service"
	"github.com/notifyhub/ms-notification-kafka/internal/stream"
	"github.com/notifyhub/ms-notification-kafka/internal/telemetry"
)

func main() {
	logger, _ := zap.NewProduction()

	if err := run(logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
	logger.Sync() //nolint:errcheck
}

// run wires the service and blocks until a shutdown signal or a server
// failure. Every resource it opens is released before it returns.
func run(logger *zap.Logger) error {
	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger = logger.With(zap.String("service", cfg.ServiceName))
	ctx := context.Background()

	// ---- tracing ----
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	readyChecks := []handler.ReadyCheck{
		{Name: "kafka", Check: producer.ReadyCheck(cfg.KafkaBrokers)},
	}

	// ---- dispatch ledger ----
	var ledger repository.DispatchRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("database migrations applied")

		ledger = repository.NewPgDispatchRepository(pool)
		readyChecks = append(readyChecks, handler.ReadyCheck{Name: "database", Check: db.Ping(pool)})
	} else {
		logger.Warn("DATABASE_URL not set: dispatch ledger kept in memory",
			zap.Int("capacity", cfg.LedgerMemoryCap),
		)
		ledger = repository.NewMemoryDispatchRepository(cfg.LedgerMemoryCap)
	}

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	prod := producer.NewKafkaProducer(producer.KafkaConfig{
		Brokers:                cfg.KafkaBrokers,
		ClientID:               cfg.KafkaClientID,
		RequiredAcks:           cfg.KafkaRequiredAcks,
		WriteTimeout:           cfg.KafkaWriteTimeout,
		BatchTimeout:           cfg.KafkaBatchTimeout,
		AllowAutoTopicCreation: cfg.KafkaAutoCreateTopics,
	}, logger.Named("producer"))

	hub := stream.NewHub(cfg.StreamBuffer, m.StreamHooks())
	limiter := ratelimiter.New(cfg.RateLimit)
	svc := service.NewDispatchService(prod, ledger, hub, limiter, logger, m.GatewayHooks())

	// ---- HTTP server ----
	router := api.NewRouter(svc, hub, reg, logger, api.Options{
		CORSOrigins:     cfg.CORSOrigins,
		StreamHeartbeat: cfg.StreamHeartbeat,
		ReadyChecks:     readyChecks,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.Strings("brokers", cfg.KafkaBrokers),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	runErr := waitForShutdown(serverErr, quit)
	if runErr == nil {
		logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()

	// 1. Release stream listeners so their handlers return, then stop
	//    accepting new HTTP requests.
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Flush and close the Kafka writer.
	if err := prod.Close(); err != nil {
		logger.Error("kafka producer close error", zap.Error(err))
	}

	// 3. Flush pending spans.
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown error", zap.Error(err))
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("server stopped cleanly")
	return nil
}

// waitForShutdown blocks until either a signal arrives on quit (nil) or the
// server fails on serverErr (that error).
func waitForShutdown(serverErr <-chan error, quit <-chan os.Signal) error {
	select {
	case err := <-serverErr:
		return err
	case <-quit:
		return nil
	}
}
