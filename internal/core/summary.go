package core

import (
	"sort"
	"time"
)

type (
	// WeekTotal is one row of a weekly rollup, keyed by ISO week.
	WeekTotal struct {
		Year  int
		Week  int
		Total Money
	}

	// DayTotal is one row of a monthly rollup, keyed by day-of-month.
	DayTotal struct {
		Day   int
		Total Money
	}

	// QuarterTotal is one row of a quarterly rollup.
	QuarterTotal struct {
		Quarter int // 1-4
		Total   Money
	}
)

// TotalRevenue sums charge amounts dated within [from, to] inclusive.
// Pure function of its input: repeated calls with no intervening writes
// return the same value.
func TotalRevenue(charges []*Charge, from, to time.Time) Money {
	return TotalInRange(charges, from, to)
}

// AverageDailyRevenue divides the range total by the number of calendar
// days it spans (daysBetween+1). Degenerate ranges of fewer than one day
// yield zero rather than dividing by zero.
func AverageDailyRevenue(charges []*Charge, from, to time.Time) Money {
	days := daysBetween(from, to) + 1
	if days < 1 {
		return Money{}
	}
	total := TotalRevenue(charges, from, to)
	return Money{Cents: total.Cents / int64(days)}
}

// daysBetween counts whole calendar days from a to b. Both dates are
// reprojected into UTC, where days are uniformly 24 hours, so DST
// transitions in the inputs' locations cannot skew the count.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// WeeklySummary groups charges by ISO week-of-year and sums each group,
// sorted ascending by (year, week).
func WeeklySummary(charges []*Charge) []WeekTotal {
	type key struct{ year, week int }
	totals := make(map[key]Money)
	for _, ch := range charges {
		y, w := ch.Date.ISOWeek()
		k := key{y, w}
		totals[k] = totals[k].Add(ch.Amount)
	}
	out := make([]WeekTotal, 0, len(totals))
	for k, total := range totals {
		out = append(out, WeekTotal{Year: k.year, Week: k.week, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out
}

// MonthlySummary restricts charges to one month and groups by
// day-of-month, sorted numerically by day.
func MonthlySummary(charges []*Charge, month time.Month, year int) []DayTotal {
	totals := make(map[int]Money)
	for _, ch := range charges {
		if ch.Date.Year() != year || ch.Date.Month() != month {
			continue
		}
		d := ch.Date.Day()
		totals[d] = totals[d].Add(ch.Amount)
	}
	out := make([]DayTotal, 0, len(totals))
	for d, total := range totals {
		out = append(out, DayTotal{Day: d, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// QuarterlySummary groups charges by calendar quarter ((month-1)/3 + 1)
// and sums each group, sorted by quarter.
func QuarterlySummary(charges []*Charge) []QuarterTotal {
	totals := make(map[int]Money)
	for _, ch := range charges {
		q := (int(ch.Date.Month())-1)/3 + 1
		totals[q] = totals[q].Add(ch.Amount)
	}
	out := make([]QuarterTotal, 0, len(totals))
	for q, total := range totals {
		out = append(out, QuarterTotal{Quarter: q, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quarter < out[j].Quarter })
	return out
}
