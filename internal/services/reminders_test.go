package services

import (
	"context"
	"testing"
	"time"

	"furfolio/internal/core"
)

func TestProcessDueRemindersHandsOffEligible(t *testing.T) {
	store := newFakeStore()
	sched := NewScheduler(store, 60)
	pub := &fakePublisher{}
	p := NewReminderProcessor(sched, pub, 7)

	client := testClient()
	soon, err := sched.Schedule(context.Background(), client, testNow.Add(3*time.Hour), core.ServiceBasic, ScheduleOptions{}, testNow)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	far, err := sched.Schedule(context.Background(), client, testNow.AddDate(0, 0, 3), core.ServiceFull, ScheduleOptions{}, testNow)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	canceled, err := sched.Schedule(context.Background(), client, testNow.AddDate(0, 0, 5), core.ServiceBasic, ScheduleOptions{}, testNow)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := sched.Cancel(context.Background(), canceled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	handed, err := p.ProcessDueReminders(context.Background(), []*core.Client{client}, testNow)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if handed != 2 {
		t.Fatalf("handed = %d, want 2", handed)
	}
	if len(pub.published) != 2 {
		t.Fatalf("published = %d, want 2", len(pub.published))
	}

	// Near appointment gets the short lead, far one the long lead.
	if pub.published[0].AppointmentID != soon.ID || pub.published[0].LeadTime != shortLead {
		t.Fatalf("soon reminder wrong: %+v", pub.published[0])
	}
	if pub.published[1].AppointmentID != far.ID || pub.published[1].LeadTime != longLead {
		t.Fatalf("far reminder wrong: %+v", pub.published[1])
	}

	if !soon.IsNotified || !far.IsNotified {
		t.Fatalf("handed-off appointments must be marked notified")
	}
	if canceled.IsNotified {
		t.Fatalf("canceled appointment must not be reminded")
	}
}

func TestProcessDueRemindersAtMostOnce(t *testing.T) {
	sched := NewScheduler(newFakeStore(), 60)
	pub := &fakePublisher{}
	p := NewReminderProcessor(sched, pub, 7)

	client := testClient()
	if _, err := sched.Schedule(context.Background(), client, testNow.Add(3*time.Hour), core.ServiceBasic, ScheduleOptions{}, testNow); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := p.ProcessDueReminders(context.Background(), []*core.Client{client}, testNow); err != nil {
			t.Fatalf("process run %d: %v", i, err)
		}
	}
	if len(pub.published) != 1 {
		t.Fatalf("published = %d, want exactly 1 across repeated runs", len(pub.published))
	}
}

func TestProcessDueRemindersKeepsFlagOnPublishFailure(t *testing.T) {
	sched := NewScheduler(newFakeStore(), 60)
	pub := &fakePublisher{fail: true}
	p := NewReminderProcessor(sched, pub, 7)

	client := testClient()
	ap, err := sched.Schedule(context.Background(), client, testNow.Add(3*time.Hour), core.ServiceBasic, ScheduleOptions{}, testNow)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	handed, err := p.ProcessDueReminders(context.Background(), []*core.Client{client}, testNow)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if handed != 0 {
		t.Fatalf("handed = %d, want 0", handed)
	}
	if ap.IsNotified {
		t.Fatalf("flag must not be set when the handoff failed")
	}

	// Broker recovers: the reminder goes out on the next run.
	pub.fail = false
	if _, err := p.ProcessDueReminders(context.Background(), []*core.Client{client}, testNow); err != nil {
		t.Fatalf("process: %v", err)
	}
	if !ap.IsNotified || len(pub.published) != 1 {
		t.Fatalf("reminder not retried after recovery")
	}
}

func TestResetNotificationReschedulesReminder(t *testing.T) {
	sched := NewScheduler(newFakeStore(), 60)
	pub := &fakePublisher{}
	p := NewReminderProcessor(sched, pub, 7)

	client := testClient()
	ap, err := sched.Schedule(context.Background(), client, testNow.Add(3*time.Hour), core.ServiceBasic, ScheduleOptions{}, testNow)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := p.ProcessDueReminders(context.Background(), []*core.Client{client}, testNow); err != nil {
		t.Fatalf("process: %v", err)
	}

	// Date change: the notification gets reset and re-handed.
	ap.Date = testNow.Add(5 * time.Hour)
	if err := sched.ResetNotification(context.Background(), ap); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := p.ProcessDueReminders(context.Background(), []*core.Client{client}, testNow); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(pub.published) != 2 {
		t.Fatalf("published = %d, want 2 after rescheduling", len(pub.published))
	}
}
