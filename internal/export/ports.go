package export

import (
	"context"
	"time"

	"furfolio/internal/core"
)

// RevenueReport is one month's revenue rollup, ready to hand to an
// external sink.
type RevenueReport struct {
	Year          int
	Month         time.Month
	Days          []core.DayTotal
	Total         core.Money
	AveragePerDay core.Money
}

// ReportWriter is the outbound port for revenue reports. The returned
// reference identifies where the sink stored the report (a sheet range,
// a synthetic id) and is logged, never parsed.
type ReportWriter interface {
	WriteRevenueReport(ctx context.Context, r RevenueReport) (ref string, err error)
}

// NewMonthReport assembles a report from per-day totals, deriving the
// month total and the average over days that actually had revenue.
func NewMonthReport(month time.Month, year int, days []core.DayTotal) RevenueReport {
	r := RevenueReport{Year: year, Month: month, Days: days}
	active := 0
	for _, d := range days {
		r.Total = r.Total.Add(d.Total)
		if d.Total.Cents > 0 {
			active++
		}
	}
	if active > 0 {
		r.AveragePerDay = core.Money{Cents: r.Total.Cents / int64(active)}
	}
	return r
}
