package core

import "time"

// DefaultBufferMinutes is the minimum separation between two visits for
// the same client.
const DefaultBufferMinutes = 60

// Conflicts reports whether two appointments for the same client fall
// within the buffer window. The comparison is strict: exactly buffer
// minutes apart is not a conflict. Symmetric in a and b; service type is
// irrelevant. Cross-client comparisons are the caller's concern, the
// scheduler only ever checks within one client's list.
func Conflicts(a, b Appointment, bufferMinutes int) bool {
	if bufferMinutes <= 0 {
		bufferMinutes = DefaultBufferMinutes
	}
	gap := a.Date.Sub(b.Date)
	if gap < 0 {
		gap = -gap
	}
	return gap < time.Duration(bufferMinutes)*time.Minute
}

// FindConflict returns the first non-canceled appointment in existing
// that collides with candidate, or nil.
func FindConflict(candidate Appointment, existing []*Appointment, bufferMinutes int) *Appointment {
	for _, ap := range existing {
		if ap == nil || ap.IsCanceled {
			continue
		}
		if Conflicts(candidate, *ap, bufferMinutes) {
			return ap
		}
	}
	return nil
}
