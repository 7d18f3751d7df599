package services

import (
	"context"
	"errors"
	"time"

	"furfolio/internal/amqp"
	"furfolio/internal/core"
)

// fakeStore satisfies AppointmentStore, ChargeStore and RevenueStore
// for service tests.
type fakeStore struct {
	appointments []*core.Appointment
	charges      []*core.Charge
	sessions     []*core.GroomingSession
	daily        map[string]*core.DailyRevenue
	updates      int

	failSave bool
}

var errSaveFailed = errors.New("save failed")

func newFakeStore() *fakeStore {
	return &fakeStore{daily: make(map[string]*core.DailyRevenue)}
}

func (f *fakeStore) SaveAppointment(_ context.Context, ap *core.Appointment) error {
	if f.failSave {
		return errSaveFailed
	}
	f.appointments = append(f.appointments, ap)
	return nil
}

func (f *fakeStore) SaveAppointments(_ context.Context, aps []*core.Appointment) error {
	if f.failSave {
		return errSaveFailed
	}
	f.appointments = append(f.appointments, aps...)
	return nil
}

func (f *fakeStore) UpdateAppointment(_ context.Context, _ *core.Appointment) error {
	f.updates++
	return nil
}

func (f *fakeStore) SaveCharge(_ context.Context, ch *core.Charge) error {
	if f.failSave {
		return errSaveFailed
	}
	f.charges = append(f.charges, ch)
	return nil
}

func (f *fakeStore) UpdateCharge(_ context.Context, _ *core.Charge) error {
	f.updates++
	return nil
}

func (f *fakeStore) SaveGroomingSession(_ context.Context, gs *core.GroomingSession) error {
	f.sessions = append(f.sessions, gs)
	return nil
}

func (f *fakeStore) GetDailyRevenue(_ context.Context, day time.Time) (*core.DailyRevenue, error) {
	return f.daily[day.Format("2006-01-02")], nil
}

func (f *fakeStore) UpsertDailyRevenue(_ context.Context, d *core.DailyRevenue) error {
	f.daily[d.Date.Format("2006-01-02")] = d
	return nil
}

func (f *fakeStore) ListChargesInRange(_ context.Context, from, to time.Time) ([]*core.Charge, error) {
	var out []*core.Charge
	for _, ch := range f.charges {
		if ch.Date.Before(from) || ch.Date.After(to) {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

// fakePublisher satisfies ReminderPublisher.
type fakePublisher struct {
	published []*amqp.ReminderMessage
	fail      bool
}

func (f *fakePublisher) PublishReminder(_ context.Context, msg *amqp.ReminderMessage) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.published = append(f.published, msg)
	return nil
}

func testClient() *core.Client {
	c, _ := core.NewClient("Jane Doe", "Rex", "Poodle", "555-0101", "1 Main St")
	return c
}
