package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/api"
	"github.com/artistbooking/notification-service/internal/broker"
	"github.com/artistbooking/notification-service/internal/config"
	"github.com/artistbooking/notification-service/internal/dispatch"
	"github.com/artistbooking/notification-service/internal/domain"
	"github.com/artistbooking/notification-service/internal/metrics"
	"github.com/artistbooking/notification-service/internal/ratelimiter"
	"github.com/artistbooking/notification-service/internal/registry"
	"github.com/artistbooking/notification-service/internal/sender"
	"github.com/artistbooking/notification-service/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	// ---- queue broker (degrade, don't die) ----
	b := broker.New(cfg.BrokerPollWait, logger)
	if err := b.Connect(ctx, cfg.RedisURL, cfg.BrokerTimeout); err != nil {
		logger.Warn("running without queue: notifications will be sent synchronously", zap.Error(err))
	} else {
		logger.Info("queue broker connected")
	}
	defer b.Close() //nolint:errcheck

	// ---- subscription registry (degrade, don't die) ----
	reg := registry.NewMongoRegistry(logger)
	if err := reg.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase, cfg.MongoTimeout); err != nil {
		logger.Warn("running without registry: push will deliver to zero endpoints", zap.Error(err))
	} else {
		logger.Info("subscription registry connected")
	}

	// ---- metrics ----
	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	// ---- channel senders ----
	pusher := sender.NewVAPIDPusher(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
	senders := map[domain.Channel]sender.Sender{
		domain.ChannelEmail: sender.NewEmailSender(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.EmailFrom, cfg.ProviderTimeout, logger),
		domain.ChannelSMS:   sender.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.ProviderTimeout, logger),
		domain.ChannelPush:  sender.NewPushSender(reg, pusher, cfg.ProviderTimeout, logger, m.ObserveFanout),
	}

	// ---- dispatch engine ----
	onQueued, onDirect := m.DispatchHooks()
	engine := dispatch.NewEngine(b, senders, logger, dispatch.Hooks{
		OnQueued: onQueued,
		OnDirect: onDirect,
	})

	// ---- worker pool ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	limiter := ratelimiter.New(cfg.RateLimit)
	onSent, onFailed := m.WorkerHooks()
	pool := worker.NewPool(cfg, b, senders, limiter, logger, worker.MetricHooks{
		OnSent:   onSent,
		OnFailed: onFailed,
	})
	pool.Start(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(engine, reg, reg, b, promReg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal all workers to stop pulling new jobs.
	cancelWorkers()

	// 3. Wait for in-flight workers to finish their current job.
	pool.Wait()

	logger.Info("server stopped cleanly")
}
