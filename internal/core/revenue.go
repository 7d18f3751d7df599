package core

import (
	"time"

	"github.com/google/uuid"
)

// DailyRevenue is a derived rollup of one calendar day's charges, not a
// source-of-truth transaction. It can always be rebuilt from the charge
// ledger.
//
// The bucket tracks "today" without a background timer: every read or
// write path calls ResetIfNotToday first, so once the wall clock passes
// midnight the next access observes a zeroed bucket dated today. The
// transitions are synchronous and deterministic, which keeps the model
// testable across process suspension.
type DailyRevenue struct {
	ID    uuid.UUID
	Date  time.Time // start of day
	Total Money
}

// NewDailyRevenue opens a bucket for the given day. Days after now are
// rejected with ErrFutureDate; revenue cannot be recorded for a day that
// has not happened.
func NewDailyRevenue(date, now time.Time) (*DailyRevenue, error) {
	day := StartOfDay(date)
	if day.After(now) {
		return nil, ErrFutureDate
	}
	return &DailyRevenue{
		ID:   uuid.New(),
		Date: day,
	}, nil
}

// AddRevenue accumulates a non-negative amount into the bucket.
func (d *DailyRevenue) AddRevenue(m Money) error {
	if err := m.Validate(); err != nil {
		return err
	}
	d.Total = d.Total.Add(m)
	return nil
}

// IsToday reports whether the bucket covers the current calendar day.
func (d *DailyRevenue) IsToday(now time.Time) bool {
	return SameDay(d.Date, now)
}

// ResetIfNotToday rolls the bucket forward once the clock has crossed
// midnight: the stale total is zeroed and the bucket re-dated to the
// current day. Returns true when a reset happened.
func (d *DailyRevenue) ResetIfNotToday(now time.Time) bool {
	if d.IsToday(now) {
		return false
	}
	d.Date = StartOfDay(now)
	d.Total = Money{}
	return true
}
