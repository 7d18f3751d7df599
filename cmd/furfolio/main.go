package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"furfolio/internal/cli"
	apphttp "furfolio/internal/http"
	"furfolio/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.OpenBackend(logger, cfg)

	scheduler := services.NewScheduler(store.Store, cfg.BufferMinutes)
	ledger := services.NewLedger(store.Store)
	revenue := services.NewRevenueService(store.Store)

	srv := apphttp.NewServer(":"+cfg.Port, store.Store, scheduler, ledger, revenue, cfg.MonthlyGoalCents)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting furfolio server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"buffer_minutes", cfg.BufferMinutes)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
