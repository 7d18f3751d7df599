// Package services orchestrates the domain over storage and messaging:
// appointment scheduling, the charge ledger, revenue upkeep, and the
// reminder / recurrence processors run by the workers.
//
// All mutating operations expect a single logical writer per client
// aggregate; the package does no locking of its own. Every operation
// takes now explicitly so tests control time.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"furfolio/internal/core"
)

// AppointmentStore is the slice of the repository the scheduler needs.
// A nil store is allowed: the scheduler then mutates only the in-memory
// aggregate and leaves persistence to the caller.
type AppointmentStore interface {
	SaveAppointment(ctx context.Context, ap *core.Appointment) error
	SaveAppointments(ctx context.Context, aps []*core.Appointment) error
	UpdateAppointment(ctx context.Context, ap *core.Appointment) error
}

// Scheduler is the sole mutator of appointment state.
type Scheduler struct {
	store         AppointmentStore
	bufferMinutes int
}

func NewScheduler(store AppointmentStore, bufferMinutes int) *Scheduler {
	if bufferMinutes <= 0 {
		bufferMinutes = core.DefaultBufferMinutes
	}
	return &Scheduler{store: store, bufferMinutes: bufferMinutes}
}

// ScheduleOptions carries the optional fields of a new booking.
type ScheduleOptions struct {
	Notes     string
	Tags      []string
	Recurring bool
	Frequency core.RecurrenceFrequency
}

// Schedule books a new appointment for the client. It fails with
// ErrPastDate when the date is not in the future and with ConflictError
// (carrying the colliding booking) when another non-canceled
// appointment of the same client sits inside the buffer window.
//
// Recurrence is requested here but materialized separately via
// MaterializeRecurrence, so conflict-checking each generated occurrence
// stays the caller's explicit choice.
func (s *Scheduler) Schedule(
	ctx context.Context,
	client *core.Client,
	date time.Time,
	serviceType core.ServiceType,
	opts ScheduleOptions,
	now time.Time,
) (*core.Appointment, error) {
	if !date.After(now) {
		return nil, core.ErrPastDate
	}
	if err := serviceType.Validate(); err != nil {
		return nil, err
	}
	if opts.Recurring {
		if err := opts.Frequency.Validate(); err != nil {
			return nil, err
		}
	}

	ap := &core.Appointment{
		ID:          uuid.New(),
		ClientID:    client.ID,
		Date:        date,
		ServiceType: serviceType,
		Notes:       opts.Notes,
		IsRecurring: opts.Recurring,
		Tags:        append([]string(nil), opts.Tags...),
	}
	if opts.Recurring {
		ap.Frequency = opts.Frequency
	}

	if hit := core.FindConflict(*ap, client.Appointments, s.bufferMinutes); hit != nil {
		return nil, &core.ConflictError{Colliding: hit}
	}

	if s.store != nil {
		if err := s.store.SaveAppointment(ctx, ap); err != nil {
			return nil, err
		}
	}
	client.Appointments = append(client.Appointments, ap)

	slog.InfoContext(ctx, "Appointment scheduled",
		"appointment_id", ap.ID,
		"client_id", client.ID,
		"date", ap.Date.Format(time.RFC3339),
		"service_type", ap.ServiceType,
		"recurring", ap.IsRecurring)
	return ap, nil
}

// MaterializeRecurrence expands a recurring template up to until and
// commits the occurrences atomically: the whole batch is validated
// against a snapshot of the client's existing appointments, and against
// the earlier occurrences of the batch itself, before anything is
// appended. On the first collision nothing is committed and the
// ConflictError is returned.
func (s *Scheduler) MaterializeRecurrence(
	ctx context.Context,
	client *core.Client,
	template core.Appointment,
	until time.Time,
) ([]*core.Appointment, error) {
	// The template itself usually sits in the client's list already; it
	// is not a collision candidate for its own occurrences.
	snapshot := make([]*core.Appointment, 0, len(client.Appointments))
	for _, ap := range client.Appointments {
		if ap.ID != template.ID {
			snapshot = append(snapshot, ap)
		}
	}

	occurrences := core.ExpandRecurrence(template, until)
	accepted := make([]*core.Appointment, 0, len(occurrences))
	for i := range occurrences {
		occ := occurrences[i]
		occ.ClientID = client.ID
		if hit := core.FindConflict(occ, snapshot, s.bufferMinutes); hit != nil {
			return nil, &core.ConflictError{Colliding: hit}
		}
		if hit := core.FindConflict(occ, accepted, s.bufferMinutes); hit != nil {
			return nil, &core.ConflictError{Colliding: hit}
		}
		accepted = append(accepted, &occ)
	}

	if s.store != nil && len(accepted) > 0 {
		if err := s.store.SaveAppointments(ctx, accepted); err != nil {
			return nil, err
		}
	}
	client.Appointments = append(client.Appointments, accepted...)

	slog.InfoContext(ctx, "Recurrence materialized",
		"client_id", client.ID,
		"template_id", template.ID,
		"occurrences", len(accepted),
		"until", until.Format(time.RFC3339))
	return accepted, nil
}

// Cancel marks the appointment canceled. Canceling an already-canceled
// appointment is a no-op, not an error; the record is never deleted.
func (s *Scheduler) Cancel(ctx context.Context, ap *core.Appointment) error {
	if ap.IsCanceled {
		return nil
	}
	ap.Cancel()
	if s.store != nil {
		if err := s.store.UpdateAppointment(ctx, ap); err != nil {
			return err
		}
	}
	slog.InfoContext(ctx, "Appointment canceled", "appointment_id", ap.ID)
	return nil
}

// MarkNotified records the reminder handoff and persists the flag.
func (s *Scheduler) MarkNotified(ctx context.Context, ap *core.Appointment) error {
	ap.MarkNotified()
	if s.store != nil {
		return s.store.UpdateAppointment(ctx, ap)
	}
	return nil
}

// ResetNotification clears the reminder flag, e.g. after a date change,
// so the occurrence can be reminded again.
func (s *Scheduler) ResetNotification(ctx context.Context, ap *core.Appointment) error {
	ap.ResetNotification()
	if s.store != nil {
		return s.store.UpdateAppointment(ctx, ap)
	}
	return nil
}

// BufferMinutes exposes the configured conflict window.
func (s *Scheduler) BufferMinutes() int {
	return s.bufferMinutes
}
