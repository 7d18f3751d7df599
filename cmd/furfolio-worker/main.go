package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"furfolio/internal/amqp"
	"furfolio/internal/cli"
	"furfolio/internal/export"
	gexport "furfolio/internal/export/google"
	mexport "furfolio/internal/export/memory"
	"furfolio/internal/services"
	"furfolio/internal/worker"
)

// exportCheckInterval is how often the export loop checks whether a new
// month has started.
const exportCheckInterval = 6 * time.Hour

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting furfolio-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.OpenBackend(logger, cfg)
	defer store.Cleanup()

	queue, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err, "url", cfg.AMQPURL)
		os.Exit(1)
	}
	defer queue.Close()

	var writer export.ReportWriter
	if cfg.ExportEnabled {
		gc, err := gexport.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize sheet export", "error", err)
			os.Exit(1)
		}
		writer = gc
		logger.Info("Revenue export enabled", "sheet", cfg.RevenueSheetName)
	} else {
		writer = mexport.New()
		logger.Info("Revenue export disabled, reports stay in memory")
	}

	notify := worker.NewNotifyWorker(store.Store, worker.LogNotifier{})
	exporter := worker.NewExportWorker(services.NewRevenueService(store.Store), writer)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := notify.Run(gctx, queue)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(exportCheckInterval)
		defer ticker.Stop()

		exported := ""
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				// Export once per month, shortly after it closes.
				marker := now.Format("2006-01")
				if now.Day() != 1 || marker == exported {
					continue
				}
				if _, err := exporter.ExportPreviousMonth(gctx, now); err != nil {
					logger.Error("Monthly export failed", "error", err)
					continue
				}
				exported = marker
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
