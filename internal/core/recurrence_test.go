package core

import (
	"testing"
	"time"
)

func weeklyTemplate(start time.Time) Appointment {
	return Appointment{
		Date:        start,
		ServiceType: ServiceBasic,
		IsRecurring: true,
		Frequency:   Weekly,
		Notes:       "standing visit",
		Tags:        []string{"regular"},
	}
}

func TestExpandRecurrenceNonRecurring(t *testing.T) {
	ap := Appointment{Date: time.Now(), ServiceType: ServiceBasic}
	if got := ExpandRecurrence(ap, time.Now().AddDate(1, 0, 0)); len(got) != 0 {
		t.Fatalf("non-recurring template expanded to %d occurrences", len(got))
	}
	ap.IsRecurring = true // frequency still unset
	if got := ExpandRecurrence(ap, time.Now().AddDate(1, 0, 0)); len(got) != 0 {
		t.Fatalf("template without frequency expanded to %d occurrences", len(got))
	}
}

func TestExpandRecurrenceUntilBeforeStart(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if got := ExpandRecurrence(weeklyTemplate(start), start.AddDate(0, 0, -1)); len(got) != 0 {
		t.Fatalf("expected empty sequence, got %d", len(got))
	}
}

func TestExpandRecurrenceWeeklyCountAndBound(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) // a Monday
	until := start.AddDate(0, 0, 28)                     // exactly 4 weekly steps
	got := ExpandRecurrence(weeklyTemplate(start), until)
	if len(got) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(got))
	}
	for i, occ := range got {
		want := start.AddDate(0, 0, 7*(i+1))
		if !occ.Date.Equal(want) {
			t.Fatalf("occurrence %d at %v, want %v", i, occ.Date, want)
		}
		if occ.Date.After(until) {
			t.Fatalf("occurrence %d beyond the bound", i)
		}
		if !occ.IsRecurring || occ.Frequency != Weekly {
			t.Fatalf("occurrence %d lost recurrence metadata", i)
		}
		if occ.ServiceType != ServiceBasic || occ.Notes != "standing visit" {
			t.Fatalf("occurrence %d lost template fields", i)
		}
	}
	// The last occurrence lands exactly on until and must be included.
	if !got[3].Date.Equal(until) {
		t.Fatalf("inclusive bound violated: last at %v, until %v", got[3].Date, until)
	}
}

func TestExpandRecurrenceDaily(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	tmpl := weeklyTemplate(start)
	tmpl.Frequency = Daily
	got := ExpandRecurrence(tmpl, start.AddDate(0, 0, 10))
	if len(got) != 10 {
		t.Fatalf("expected 10 daily occurrences, got %d", len(got))
	}
}

func TestExpandRecurrenceMonthlyClamp(t *testing.T) {
	// Jan 31 template: February clamps to its last day, March returns
	// to the 31st.
	start := time.Date(2025, 1, 31, 14, 0, 0, 0, time.UTC)
	tmpl := weeklyTemplate(start)
	tmpl.Frequency = Monthly
	got := ExpandRecurrence(tmpl, time.Date(2025, 4, 30, 23, 59, 0, 0, time.UTC))
	if len(got) != 3 {
		t.Fatalf("expected Feb/Mar/Apr occurrences, got %d", len(got))
	}
	wants := []time.Time{
		time.Date(2025, 2, 28, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 30, 14, 0, 0, 0, time.UTC),
	}
	for i, want := range wants {
		if !got[i].Date.Equal(want) {
			t.Fatalf("occurrence %d at %v, want %v", i, got[i].Date, want)
		}
	}
}

func TestExpandRecurrenceLeapFebruary(t *testing.T) {
	start := time.Date(2024, 1, 30, 10, 0, 0, 0, time.UTC)
	tmpl := weeklyTemplate(start)
	tmpl.Frequency = Monthly
	got := ExpandRecurrence(tmpl, time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC))
	if len(got) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(got))
	}
	if d := got[0].Date; d.Month() != time.February || d.Day() != 29 {
		t.Fatalf("expected Feb 29 in a leap year, got %v", d)
	}
}

func TestExpandRecurrenceDoesNotMutateTemplate(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tmpl := weeklyTemplate(start)
	tmpl.IsNotified = true
	got := ExpandRecurrence(tmpl, start.AddDate(0, 2, 0))
	if !tmpl.Date.Equal(start) || !tmpl.IsNotified {
		t.Fatalf("template mutated by expansion")
	}
	for i, occ := range got {
		if occ.ID == tmpl.ID {
			t.Fatalf("occurrence %d shares the template id", i)
		}
		if occ.IsNotified || occ.IsCanceled {
			t.Fatalf("occurrence %d inherited lifecycle flags", i)
		}
	}
	// Tag slices must be independent copies.
	if len(got) > 0 {
		got[0].Tags[0] = "changed"
		if tmpl.Tags[0] == "changed" {
			t.Fatalf("occurrence shares the template's tag slice")
		}
	}
}
