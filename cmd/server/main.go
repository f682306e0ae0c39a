package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitglue/bike-miles/pkg/api"
	"github.com/fitglue/bike-miles/pkg/bootstrap"
	httputil "github.com/fitglue/bike-miles/pkg/infrastructure/http"
	"github.com/fitglue/bike-miles/pkg/infrastructure/sentry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $CONFIG_PATH or ./bike-miles.yaml)")
	flag.Parse()

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := bootstrap.NewLogger("bike-miles-server", cfg.LogLevel)
	slog.SetDefault(logger)

	svc, err := bootstrap.NewService(cfg, logger, nil)
	if err != nil {
		logger.Error("Failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer sentry.Flush(2 * time.Second)

	handler := api.NewHandler(svc, api.NewExchanger(cfg, nil))
	server := httputil.NewServer(httputil.ServerConfig{
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, handler.Routes())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
