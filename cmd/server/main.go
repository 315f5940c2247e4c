package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"lotcli/internal/config"
	"lotcli/internal/ensemble"
	"lotcli/internal/infrastructure"
	"lotcli/internal/services"
	transport "lotcli/internal/transport/http"
)

func main() {
	modelsDir := flag.String("models", "", "directory with model artifacts (defaults to configured models dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		infrastructure.GetLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := infrastructure.InitializeLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *modelsDir == "" {
		*modelsDir = cfg.Paths.ModelsDir
	}

	// Fail fast: without a complete artifact set the server is useless.
	predictor, err := ensemble.Load(*modelsDir)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load model artifacts", "dir", *modelsDir, "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "model artifacts loaded", "dir", *modelsDir)

	providers, err := infrastructure.InitializeOTel(ctx, logger)
	if err != nil {
		logger.ErrorContext(ctx, "failed to initialize observability", "error", err)
		os.Exit(1)
	}

	service := services.NewAnalysisService(predictor, providers.Metrics, logger)
	router := transport.NewRouter(cfg.Server, service, providers, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.InfoContext(groupCtx, "server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("observability shutdown failed", "error", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
