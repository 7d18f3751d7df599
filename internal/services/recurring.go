package services

import (
	"context"
	"log/slog"
	"time"

	"furfolio/internal/core"
)

// RecurringProcessor materializes recurring appointment templates ahead
// of time, so the calendar always shows concrete occurrences up to the
// horizon. It runs periodically (cmd/recurring-worker); repeated runs
// are safe because an occurrence whose slot is already taken is simply
// skipped.
//
// This deliberately differs from Scheduler.MaterializeRecurrence: that
// call is the strict, all-or-nothing booking of a series, while this
// job tops up calendars incrementally.
type RecurringProcessor struct {
	scheduler   *Scheduler
	horizonDays int
}

func NewRecurringProcessor(scheduler *Scheduler, horizonDays int) *RecurringProcessor {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	return &RecurringProcessor{scheduler: scheduler, horizonDays: horizonDays}
}

// ProcessTemplates expands every client's recurring templates up to
// now+horizon and commits the occurrences that fit. Returns how many
// new occurrences were created.
func (p *RecurringProcessor) ProcessTemplates(ctx context.Context, clients []*core.Client, now time.Time) (int, error) {
	until := now.AddDate(0, 0, p.horizonDays)
	created := 0

	for _, client := range clients {
		// Snapshot the template list first: committing occurrences
		// appends to client.Appointments while we iterate.
		var templates []*core.Appointment
		for _, ap := range client.Appointments {
			if ap.IsRecurring && !ap.IsCanceled {
				templates = append(templates, ap)
			}
		}

		for _, tmpl := range templates {
			n, err := p.materialize(ctx, client, tmpl, until)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to materialize template",
					"client_id", client.ID,
					"template_id", tmpl.ID,
					"error", err)
				continue
			}
			created += n
		}
	}

	slog.InfoContext(ctx, "Recurring templates processed",
		"clients", len(clients),
		"created", created,
		"until", until.Format("2006-01-02"))
	return created, nil
}

// materialize commits the template's occurrences one by one, skipping
// slots that are already occupied (including occurrences created by a
// previous run, which land on the exact same dates and therefore
// conflict with themselves).
func (p *RecurringProcessor) materialize(ctx context.Context, client *core.Client, tmpl *core.Appointment, until time.Time) (int, error) {
	occurrences := core.ExpandRecurrence(*tmpl, until)
	created := 0
	for i := range occurrences {
		occ := occurrences[i]
		occ.ClientID = client.ID
		// Occurrences are concrete bookings; only the original template
		// keeps expanding on later runs.
		occ.IsRecurring = false

		if core.FindConflict(occ, client.Appointments, p.scheduler.BufferMinutes()) != nil {
			continue
		}

		committed := &occ
		if p.scheduler.store != nil {
			if err := p.scheduler.store.SaveAppointment(ctx, committed); err != nil {
				return created, err
			}
		}
		client.Appointments = append(client.Appointments, committed)
		created++
	}
	return created, nil
}
