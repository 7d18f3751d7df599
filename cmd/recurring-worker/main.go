package main

import (
	"context"
	"log/slog"
	"time"

	"furfolio/internal/amqp"
	"furfolio/internal/backend"
	"furfolio/internal/cli"
	"furfolio/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	store := cli.OpenBackend(logger, cfg)
	defer store.Cleanup()

	scheduler := services.NewScheduler(store.Store, cfg.BufferMinutes)
	recurring := services.NewRecurringProcessor(scheduler, cfg.RecurringHorizonDays)

	// Reminders need the broker; without it the worker still expands
	// recurring templates.
	var reminders *services.ReminderProcessor
	queue, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, reminders disabled for this run", "error", err)
	} else {
		defer queue.Close()
		reminders = services.NewReminderProcessor(scheduler, queue, cfg.ReminderHorizonDays)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Recurring processor configured",
		"interval", cfg.ReminderInterval,
		"recurring_horizon_days", cfg.RecurringHorizonDays,
		"reminder_horizon_days", cfg.ReminderHorizonDays)

	runPass(ctx, store.Store, recurring, reminders)

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runPass(ctx, store.Store, recurring, reminders)
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring worker stopped gracefully")
}

// runPass expands due recurring templates, then queues reminders for
// the freshly materialized horizon.
func runPass(ctx context.Context, store backend.Store, recurring *services.RecurringProcessor, reminders *services.ReminderProcessor) {
	now := time.Now()

	clients, err := store.ListClients(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list clients", "error", err)
		return
	}

	created, err := recurring.ProcessTemplates(ctx, clients, now)
	if err != nil {
		slog.ErrorContext(ctx, "Recurring processing failed", "error", err, "created", created)
	} else if created > 0 {
		slog.InfoContext(ctx, "Recurring processing complete", "appointments_created", created)
	}

	if reminders == nil {
		return
	}
	handed, err := reminders.ProcessDueReminders(ctx, clients, now)
	if err != nil {
		slog.ErrorContext(ctx, "Reminder processing failed", "error", err)
	} else if handed > 0 {
		slog.InfoContext(ctx, "Reminders queued", "count", handed)
	}
}
