package services

import (
	"context"
	"log/slog"
	"time"

	"furfolio/internal/amqp"
	"furfolio/internal/core"
)

// Reminder lead times. Far-out appointments get a day-before heads up,
// near ones a half hour.
const (
	longLead      = 24 * time.Hour
	shortLead     = 30 * time.Minute
	leadThreshold = 24 * time.Hour
)

// ReminderPublisher hands a reminder to the notification transport.
// *amqp.Client satisfies it.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, msg *amqp.ReminderMessage) error
}

// ReminderProcessor scans upcoming appointments and hands the eligible
// ones to the transport, marking each occurrence notified so it is
// reminded at most once. Delivery itself happens in the worker.
type ReminderProcessor struct {
	scheduler   *Scheduler
	publisher   ReminderPublisher
	horizonDays int
}

func NewReminderProcessor(scheduler *Scheduler, publisher ReminderPublisher, horizonDays int) *ReminderProcessor {
	if horizonDays <= 0 {
		horizonDays = 7
	}
	return &ReminderProcessor{
		scheduler:   scheduler,
		publisher:   publisher,
		horizonDays: horizonDays,
	}
}

// leadFor picks the reminder lead time for an appointment.
func leadFor(ap *core.Appointment, now time.Time) time.Duration {
	if ap.Date.Sub(now) > leadThreshold {
		return longLead
	}
	return shortLead
}

// ProcessDueReminders walks every client's upcoming appointments and
// publishes one reminder per eligible occurrence. Per-item failures are
// logged and skipped; the flag is only set after a successful handoff.
// Returns the number of reminders handed off.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context, clients []*core.Client, now time.Time) (int, error) {
	upcoming := core.UpcomingWithinDays(clients, now, p.horizonDays)

	slog.InfoContext(ctx, "Scanning for due reminders",
		"upcoming", len(upcoming),
		"horizon_days", p.horizonDays)

	handed := 0
	for _, ap := range upcoming {
		if !ap.EligibleForReminder(now) {
			continue
		}

		msg := amqp.NewReminderMessage(ap.ID, ap.ClientID, ap.Date, leadFor(ap, now))
		if err := p.publisher.PublishReminder(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish reminder",
				"appointment_id", ap.ID,
				"error", err)
			continue
		}

		if err := p.scheduler.MarkNotified(ctx, ap); err != nil {
			slog.ErrorContext(ctx, "Failed to persist notification flag",
				"appointment_id", ap.ID,
				"error", err)
			continue
		}
		handed++
	}

	return handed, nil
}
