package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"furfolio/internal/export"
	"furfolio/internal/services"
)

// ExportWorker pushes monthly revenue reports to an external sink.
type ExportWorker struct {
	revenue *services.RevenueService
	writer  export.ReportWriter
}

func NewExportWorker(revenue *services.RevenueService, writer export.ReportWriter) *ExportWorker {
	return &ExportWorker{revenue: revenue, writer: writer}
}

// ExportMonth assembles one month's rollup and writes it out.
func (w *ExportWorker) ExportMonth(ctx context.Context, month time.Month, year int) (string, error) {
	days, err := w.revenue.MonthlySummary(ctx, month, year)
	if err != nil {
		return "", fmt.Errorf("monthly summary: %w", err)
	}

	report := export.NewMonthReport(month, year, days)
	ref, err := w.writer.WriteRevenueReport(ctx, report)
	if err != nil {
		return "", fmt.Errorf("write revenue report: %w", err)
	}

	slog.InfoContext(ctx, "Exported revenue report",
		"year", year,
		"month", int(month),
		"days", len(days),
		"total_cents", report.Total.Cents,
		"ref", ref)
	return ref, nil
}

// ExportPreviousMonth is the periodic entry point: each run covers the
// month before now, the one whose books are closed.
func (w *ExportWorker) ExportPreviousMonth(ctx context.Context, now time.Time) (string, error) {
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	return w.ExportMonth(ctx, prev.Month(), prev.Year())
}
