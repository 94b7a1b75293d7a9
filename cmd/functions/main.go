package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/platform"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New("functions")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	res := platform.NewResources(cfg, logger)
	defer res.Close()

	router, err := platform.BuildFunctions(ctx, res, platform.NewObservability("functions"))
	if err != nil {
		logger.Fatal("init functions tier", zap.Error(err))
	}
	srv := httpserver.New(cfg.HTTPAddr, "functions", router)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr),
			zap.String("table_backend", cfg.TableBackend), zap.String("queue_backend", cfg.QueueBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
