package core

import (
	"testing"
	"time"
)

// Scenario from the ledger docs: $50 + $30 on Jan 5, $20 on Feb 1.
func janCharges() []*Charge {
	return []*Charge{
		chargeOn(2025, 1, 5, 5000, ServiceBasic),
		chargeOn(2025, 1, 5, 3000, ServiceFull),
		chargeOn(2025, 2, 1, 2000, ServiceBasic),
	}
}

func TestTotalRevenueRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	got := TotalRevenue(janCharges(), from, to)
	if got.Cents != 8000 {
		t.Fatalf("january total = %d, want 8000", got.Cents)
	}
	// Pure function of its inputs: a repeat call returns the same value.
	if again := TotalRevenue(janCharges(), from, to); again != got {
		t.Fatalf("repeat call differed: %v vs %v", again, got)
	}
}

func TestMonthlySummaryGroupsByDay(t *testing.T) {
	got := MonthlySummary(janCharges(), time.January, 2025)
	if len(got) != 1 {
		t.Fatalf("expected one day row, got %d", len(got))
	}
	if got[0].Day != 5 || got[0].Total.Cents != 8000 {
		t.Fatalf("got day %d total %d, want day 5 total 8000", got[0].Day, got[0].Total.Cents)
	}
}

func TestMonthlySummarySortedByDay(t *testing.T) {
	charges := []*Charge{
		chargeOn(2025, 3, 20, 100, ServiceBasic),
		chargeOn(2025, 3, 2, 200, ServiceBasic),
		chargeOn(2025, 3, 11, 300, ServiceBasic),
	}
	got := MonthlySummary(charges, time.March, 2025)
	if len(got) != 3 || got[0].Day != 2 || got[1].Day != 11 || got[2].Day != 20 {
		t.Fatalf("not sorted by day: %+v", got)
	}
}

func TestWeeklySummaryFromRecurrence(t *testing.T) {
	// Weekly template on a Monday, expanded through week 4, each
	// occurrence billed at $10: the rollup must show 4 weeks of $10.
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) // Monday
	tmpl := Appointment{
		Date:        start,
		ServiceType: ServiceBasic,
		IsRecurring: true,
		Frequency:   Weekly,
	}
	occurrences := append([]Appointment{tmpl}, ExpandRecurrence(tmpl, start.AddDate(0, 0, 21))...)

	charges := make([]*Charge, len(occurrences))
	for i, occ := range occurrences {
		charges[i] = &Charge{Date: occ.Date, Amount: Money{Cents: 1000}, ServiceType: ServiceBasic}
	}

	got := WeeklySummary(charges)
	if len(got) != 4 {
		t.Fatalf("expected 4 week rows, got %d", len(got))
	}
	for i, row := range got {
		if row.Total.Cents != 1000 {
			t.Fatalf("week row %d total = %d, want 1000", i, row.Total.Cents)
		}
		if i > 0 && got[i-1].Week >= row.Week {
			t.Fatalf("weeks not ascending: %+v", got)
		}
	}
}

func TestQuarterlySummary(t *testing.T) {
	charges := []*Charge{
		chargeOn(2025, 1, 10, 100, ServiceBasic),  // Q1
		chargeOn(2025, 3, 31, 200, ServiceBasic),  // Q1
		chargeOn(2025, 4, 1, 300, ServiceBasic),   // Q2
		chargeOn(2025, 12, 25, 400, ServiceBasic), // Q4
	}
	got := QuarterlySummary(charges)
	if len(got) != 3 {
		t.Fatalf("expected 3 quarter rows, got %d", len(got))
	}
	if got[0].Quarter != 1 || got[0].Total.Cents != 300 {
		t.Fatalf("Q1 row wrong: %+v", got[0])
	}
	if got[1].Quarter != 2 || got[1].Total.Cents != 300 {
		t.Fatalf("Q2 row wrong: %+v", got[1])
	}
	if got[2].Quarter != 4 || got[2].Total.Cents != 400 {
		t.Fatalf("Q4 row wrong: %+v", got[2])
	}
}

func TestAverageDailyRevenue(t *testing.T) {
	charges := []*Charge{
		chargeOn(2025, 1, 1, 1000, ServiceBasic),
		chargeOn(2025, 1, 2, 2000, ServiceBasic),
	}
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	// 3000 cents over 2 days.
	if got := AverageDailyRevenue(charges, from, to); got.Cents != 1500 {
		t.Fatalf("got %d, want 1500", got.Cents)
	}
	// Single-day range divides by one.
	if got := AverageDailyRevenue(charges, from, from); got.Cents != 1000 {
		t.Fatalf("got %d, want 1000", got.Cents)
	}
	// Degenerate range yields zero instead of dividing by zero.
	if got := AverageDailyRevenue(charges, to, from); !got.IsZero() {
		t.Fatalf("degenerate range should be zero, got %d", got.Cents)
	}
}

// Ranges are inclusive at day granularity: a `to` of plain midnight
// still covers every charge on that calendar day.
func TestTotalRevenueIncludesWholeBoundaryDays(t *testing.T) {
	charges := []*Charge{
		{Date: time.Date(2026, 1, 30, 23, 45, 0, 0, time.UTC), Amount: Money{Cents: 1000}},
		{Date: time.Date(2026, 1, 31, 14, 0, 0, 0, time.UTC), Amount: Money{Cents: 2000}},
		{Date: time.Date(2026, 2, 1, 0, 30, 0, 0, time.UTC), Amount: Money{Cents: 4000}},
	}
	from := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	if got := TotalRevenue(charges, from, to); got.Cents != 3000 {
		t.Fatalf("got %d, want 3000", got.Cents)
	}
}

// Day counting must follow the calendar, not elapsed hours: a range
// spanning a spring-forward transition still counts every date.
func TestAverageDailyRevenueAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	charges := []*Charge{
		{Date: time.Date(2026, 3, 8, 12, 0, 0, 0, loc), Amount: Money{Cents: 1000}},
		{Date: time.Date(2026, 3, 9, 12, 0, 0, 0, loc), Amount: Money{Cents: 1000}},
	}
	from := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	to := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	// Mar 8 is only 23 hours long here; it is still one full day.
	if got := AverageDailyRevenue(charges, from, to); got.Cents != 1000 {
		t.Fatalf("got %d, want 1000", got.Cents)
	}
}

func TestUpcomingQueries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c1 := &Client{Name: "Jane"}
	c1.Appointments = []*Appointment{
		{Date: now.AddDate(0, 0, 2)},
		{Date: now.AddDate(0, 0, 1)},
		{Date: now.AddDate(0, 0, 1).Add(time.Hour), IsCanceled: true},
		{Date: now.AddDate(0, 0, -1)}, // already happened
	}
	c2 := &Client{Name: "Ann"}
	c2.Appointments = []*Appointment{
		{Date: now.AddDate(0, 0, 9)}, // beyond the 7 day horizon
		{Date: now.Add(3 * time.Hour)},
	}

	next := NextUpcoming(c1, now)
	if next == nil || !next.Date.Equal(now.AddDate(0, 0, 1)) {
		t.Fatalf("next upcoming wrong: %+v", next)
	}

	got := UpcomingWithinDays([]*Client{c1, c2}, now, 7)
	if len(got) != 3 {
		t.Fatalf("expected 3 upcoming, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date.After(got[i].Date) {
			t.Fatalf("not sorted ascending")
		}
	}

	stats := CountAppointments([]*Client{c1, c2}, now)
	if stats.Completed != 1 || stats.Canceled != 1 || stats.Upcoming != 4 {
		t.Fatalf("stats = %+v", stats)
	}
}
