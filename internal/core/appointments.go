package core

import (
	"sort"
	"time"
)

// NextUpcoming returns the earliest non-canceled appointment strictly
// after now, or nil when the client has none.
func NextUpcoming(client *Client, now time.Time) *Appointment {
	var next *Appointment
	for _, ap := range client.Appointments {
		if ap.IsCanceled || !ap.Date.After(now) {
			continue
		}
		if next == nil || ap.Date.Before(next.Date) {
			next = ap
		}
	}
	return next
}

// UpcomingWithinDays collects every non-canceled appointment across
// clients falling in [now, now+days], sorted ascending by date. This
// feeds the "upcoming appointments" display and the reminder scan.
func UpcomingWithinDays(clients []*Client, now time.Time, days int) []*Appointment {
	horizon := now.AddDate(0, 0, days)
	var out []*Appointment
	for _, c := range clients {
		for _, ap := range c.Appointments {
			if ap.IsCanceled {
				continue
			}
			if ap.Date.Before(now) || ap.Date.After(horizon) {
				continue
			}
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// AppointmentStats are the dashboard counters. Canceled appointments are
// counted once and excluded from both other buckets.
type AppointmentStats struct {
	Completed int
	Canceled  int
	Upcoming  int
}

// CountAppointments classifies every appointment across clients
// relative to now.
func CountAppointments(clients []*Client, now time.Time) AppointmentStats {
	var st AppointmentStats
	for _, c := range clients {
		for _, ap := range c.Appointments {
			switch {
			case ap.IsCanceled:
				st.Canceled++
			case ap.Date.Before(now):
				st.Completed++
			default:
				st.Upcoming++
			}
		}
	}
	return st
}
