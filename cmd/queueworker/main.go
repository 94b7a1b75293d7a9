package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/platform"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New("queueworker")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := platform.NewResources(cfg, logger)
	defer res.Close()

	obs := platform.NewObservability("queueworker")
	w, err := platform.BuildWorker(ctx, res, obs)
	if err != nil {
		logger.Fatal("init queue worker", zap.Error(err))
	}

	// Metrics only; the worker has no other HTTP surface.
	metricsSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: metrics.Handler(obs.Registry), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	logger.Info("queue worker started", zap.String("queue_backend", cfg.QueueBackend), zap.String("metrics_addr", cfg.HTTPAddr))
	runErr := w.Run(ctx)
	if runErr != nil {
		logger.Error("queue worker failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	_ = metricsSrv.Shutdown(shutdownCtx)
	cancel()
	logger.Info("queue worker stopped")
	if runErr != nil {
		// A non-zero exit lets the supervisor restart the consumer at the last committed offset.
		res.Close()
		_ = logger.Sync()
		os.Exit(1)
	}
}
