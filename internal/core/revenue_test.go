package core

import (
	"testing"
	"time"
)

func TestNewDailyRevenueRejectsFutureDate(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	if _, err := NewDailyRevenue(now.AddDate(0, 0, 1), now); err != ErrFutureDate {
		t.Fatalf("expected ErrFutureDate, got %v", err)
	}
	// Later the same day is fine: the day itself has started.
	if _, err := NewDailyRevenue(now.Add(5*time.Hour), now); err != nil {
		t.Fatalf("same-day creation failed: %v", err)
	}
	if _, err := NewDailyRevenue(now.AddDate(0, 0, -3), now); err != nil {
		t.Fatalf("past day should be allowed for backfill: %v", err)
	}
}

func TestDailyRevenueAddRevenue(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	d, err := NewDailyRevenue(now, now)
	if err != nil {
		t.Fatalf("new bucket: %v", err)
	}
	if err := d.AddRevenue(Money{Cents: 4200}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.AddRevenue(Money{}); err != nil {
		t.Fatalf("adding zero is allowed: %v", err)
	}
	if err := d.AddRevenue(Money{Cents: -1}); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if d.Total.Cents != 4200 {
		t.Fatalf("total = %d, want 4200 (failed add must not change it)", d.Total.Cents)
	}
}

func TestDailyRevenueResetAtMidnight(t *testing.T) {
	yesterday := time.Date(2025, 6, 9, 18, 0, 0, 0, time.UTC)
	d, err := NewDailyRevenue(yesterday, yesterday)
	if err != nil {
		t.Fatalf("new bucket: %v", err)
	}
	if err := d.AddRevenue(Money{Cents: 4200}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Still the same day: no transition.
	if d.ResetIfNotToday(yesterday.Add(2 * time.Hour)) {
		t.Fatalf("reset before midnight")
	}
	if d.Total.Cents != 4200 {
		t.Fatalf("total clobbered without a day change")
	}

	// First access after the clock crosses midnight.
	today := time.Date(2025, 6, 10, 0, 0, 1, 0, time.UTC)
	if !d.ResetIfNotToday(today) {
		t.Fatalf("expected a reset after the day advanced")
	}
	if d.Total.Cents != 0 {
		t.Fatalf("total = %d after reset, want 0", d.Total.Cents)
	}
	if !SameDay(d.Date, today) {
		t.Fatalf("bucket not re-dated to today: %v", d.Date)
	}
	if !d.IsToday(today) {
		t.Fatalf("bucket should report today after reset")
	}

	// Second access the same day is a no-op.
	if d.ResetIfNotToday(today.Add(time.Hour)) {
		t.Fatalf("repeated reset within the same day")
	}
}
