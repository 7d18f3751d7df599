// Package worker holds the background duties that run outside the API
// process: reminder delivery and revenue report export.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"furfolio/internal/amqp"
	"furfolio/internal/core"
)

// ClientLookup is the slice of the repository the notify worker needs.
type ClientLookup interface {
	GetClient(ctx context.Context, id uuid.UUID) (*core.Client, error)
}

// Notifier delivers one reminder to the client. Implementations decide
// the channel; LogNotifier is the default when none is configured.
type Notifier interface {
	Notify(ctx context.Context, client *core.Client, ap *core.Appointment, fireAt time.Time) error
}

// NotifyWorker turns queued reminder messages into delivered
// notifications. It re-checks the appointment against the repository
// before delivering: bookings canceled after the reminder was queued
// are dropped silently.
type NotifyWorker struct {
	store    ClientLookup
	notifier Notifier
}

func NewNotifyWorker(store ClientLookup, notifier Notifier) *NotifyWorker {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &NotifyWorker{store: store, notifier: notifier}
}

// HandleReminder processes one queued reminder. A nil return also
// covers stale messages (client deleted, appointment canceled): those
// are acked and dropped, not requeued.
func (w *NotifyWorker) HandleReminder(ctx context.Context, msg *amqp.ReminderMessage) error {
	client, err := w.store.GetClient(ctx, msg.ClientID)
	if err != nil {
		return fmt.Errorf("load client %s: %w", msg.ClientID, err)
	}
	if client == nil {
		slog.WarnContext(ctx, "Dropping reminder for deleted client",
			"client_id", msg.ClientID,
			"appointment_id", msg.AppointmentID)
		return nil
	}

	var ap *core.Appointment
	for _, candidate := range client.Appointments {
		if candidate.ID == msg.AppointmentID {
			ap = candidate
			break
		}
	}
	if ap == nil || ap.IsCanceled {
		slog.InfoContext(ctx, "Dropping stale reminder",
			"client_id", msg.ClientID,
			"appointment_id", msg.AppointmentID)
		return nil
	}

	if err := w.notifier.Notify(ctx, client, ap, msg.FireAt()); err != nil {
		return fmt.Errorf("deliver reminder for %s: %w", ap.ID, err)
	}
	return nil
}

// Run consumes the reminder queue until ctx is canceled.
func (w *NotifyWorker) Run(ctx context.Context, queue *amqp.Client) error {
	return queue.ConsumeReminders(ctx, func(msg *amqp.ReminderMessage) error {
		return w.HandleReminder(ctx, msg)
	})
}

// LogNotifier writes reminders to the structured log. Stands in for a
// real delivery channel (SMS, email) in development.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, client *core.Client, ap *core.Appointment, fireAt time.Time) error {
	slog.InfoContext(ctx, "Appointment reminder",
		"client", client.Name,
		"dog", client.DogName,
		"appointment_id", ap.ID,
		"date", ap.Date.Format(time.RFC3339),
		"service_type", ap.ServiceType,
		"fire_at", fireAt.Format(time.RFC3339))
	return nil
}
