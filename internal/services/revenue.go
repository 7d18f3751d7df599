package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"furfolio/internal/core"
)

// RevenueStore is the slice of the repository the revenue service
// needs: the materialized daily buckets plus the charge ledger the
// rollups derive from.
type RevenueStore interface {
	GetDailyRevenue(ctx context.Context, day time.Time) (*core.DailyRevenue, error)
	UpsertDailyRevenue(ctx context.Context, d *core.DailyRevenue) error
	ListChargesInRange(ctx context.Context, from, to time.Time) ([]*core.Charge, error)
}

// RevenueService maintains the rolling "today" bucket and answers
// windowed rollup queries. The today boundary is enforced on every
// access, never by a background timer: the process may not be resident
// at midnight, a synchronous check always runs.
type RevenueService struct {
	store RevenueStore

	today *core.DailyRevenue
}

func NewRevenueService(store RevenueStore) *RevenueService {
	return &RevenueService{store: store}
}

// Forecast is the month outlook derived from month-to-date charges.
type Forecast struct {
	MonthToDate  core.Money
	DailyAverage core.Money
	Projected    core.Money
	Goal         core.Money
	GoalProgress float64 // percent of goal covered by the projection
}

// todayBucket returns the current-day bucket, loading or opening it on
// first use and rolling it forward when the calendar day has advanced.
func (s *RevenueService) todayBucket(ctx context.Context, now time.Time) (*core.DailyRevenue, error) {
	if s.today == nil {
		stored, err := s.store.GetDailyRevenue(ctx, core.StartOfDay(now))
		if err != nil {
			return nil, fmt.Errorf("load daily revenue: %w", err)
		}
		if stored == nil {
			stored, err = core.NewDailyRevenue(now, now)
			if err != nil {
				return nil, err
			}
		}
		s.today = stored
	}
	if s.today.ResetIfNotToday(now) {
		slog.InfoContext(ctx, "Daily revenue bucket rolled over",
			"date", s.today.Date.Format("2006-01-02"))
		if err := s.store.UpsertDailyRevenue(ctx, s.today); err != nil {
			return nil, fmt.Errorf("persist rolled bucket: %w", err)
		}
	}
	return s.today, nil
}

// AddRevenue accumulates an amount into today's bucket and persists it.
func (s *RevenueService) AddRevenue(ctx context.Context, amount core.Money, now time.Time) error {
	bucket, err := s.todayBucket(ctx, now)
	if err != nil {
		return err
	}
	if err := bucket.AddRevenue(amount); err != nil {
		return err
	}
	if err := s.store.UpsertDailyRevenue(ctx, bucket); err != nil {
		return fmt.Errorf("persist daily revenue: %w", err)
	}
	return nil
}

// TodayTotal reads today's accumulated revenue, applying the midnight
// check first.
func (s *RevenueService) TodayTotal(ctx context.Context, now time.Time) (core.Money, error) {
	bucket, err := s.todayBucket(ctx, now)
	if err != nil {
		return core.Money{}, err
	}
	return bucket.Total, nil
}

// dayBounds widens a range to whole calendar days so the store query
// fetches every charge on the boundary days. Ranges are inclusive at
// day granularity: a `to` of midnight still covers that entire day.
func dayBounds(from, to time.Time) (time.Time, time.Time) {
	return core.StartOfDay(from), core.StartOfDay(to).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// TotalRevenue sums charges in [from, to], both ends inclusive.
func (s *RevenueService) TotalRevenue(ctx context.Context, from, to time.Time) (core.Money, error) {
	qFrom, qTo := dayBounds(from, to)
	charges, err := s.store.ListChargesInRange(ctx, qFrom, qTo)
	if err != nil {
		return core.Money{}, fmt.Errorf("list charges: %w", err)
	}
	return core.TotalRevenue(charges, from, to), nil
}

// AverageDailyRevenue divides the range total across its calendar days.
func (s *RevenueService) AverageDailyRevenue(ctx context.Context, from, to time.Time) (core.Money, error) {
	qFrom, qTo := dayBounds(from, to)
	charges, err := s.store.ListChargesInRange(ctx, qFrom, qTo)
	if err != nil {
		return core.Money{}, fmt.Errorf("list charges: %w", err)
	}
	return core.AverageDailyRevenue(charges, from, to), nil
}

// WeeklySummary groups the range's charges by ISO week.
func (s *RevenueService) WeeklySummary(ctx context.Context, from, to time.Time) ([]core.WeekTotal, error) {
	qFrom, qTo := dayBounds(from, to)
	charges, err := s.store.ListChargesInRange(ctx, qFrom, qTo)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	return core.WeeklySummary(charges), nil
}

// MonthlySummary groups one month's charges by day-of-month.
func (s *RevenueService) MonthlySummary(ctx context.Context, month time.Month, year int) ([]core.DayTotal, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	charges, err := s.store.ListChargesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	return core.MonthlySummary(charges, month, year), nil
}

// QuarterlySummary groups one year's charges by calendar quarter.
func (s *RevenueService) QuarterlySummary(ctx context.Context, year int) ([]core.QuarterTotal, error) {
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)
	charges, err := s.store.ListChargesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	return core.QuarterlySummary(charges), nil
}

// MonthForecast projects month-end revenue from the month-to-date daily
// average and reports progress against a revenue goal.
func (s *RevenueService) MonthForecast(ctx context.Context, now time.Time, goal core.Money) (Forecast, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	qFrom, qTo := dayBounds(monthStart, now)
	charges, err := s.store.ListChargesInRange(ctx, qFrom, qTo)
	if err != nil {
		return Forecast{}, fmt.Errorf("list charges: %w", err)
	}

	f := Forecast{Goal: goal}
	f.MonthToDate = core.TotalRevenue(charges, monthStart, now)
	f.DailyAverage = core.AverageDailyRevenue(charges, monthStart, now)

	daysInMonth := monthStart.AddDate(0, 1, -1).Day()
	f.Projected = core.Money{Cents: f.DailyAverage.Cents * int64(daysInMonth)}
	if goal.Cents > 0 {
		f.GoalProgress = float64(f.Projected.Cents) / float64(goal.Cents) * 100
	}
	return f, nil
}
