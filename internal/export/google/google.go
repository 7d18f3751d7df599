package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"furfolio/internal/export"
)

// Client writes monthly revenue reports into a Google spreadsheet, one
// sheet per year.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base sheet name without the year (e.g. "Revenue"); the year is
	// prefixed per report.
	sheetBase string
}

var _ export.ReportWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_REVENUE_SHEET_NAME (default "Revenue").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetBase := strings.TrimSpace(os.Getenv("GOOGLE_REVENUE_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Revenue"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteRevenueReport writes the month's rows into the year's sheet,
// after the rows already present. Amounts are written as decimal
// dollars so the spreadsheet can sum them.
func (c *Client) WriteRevenueReport(ctx context.Context, r export.RevenueReport) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheetName := yearPrefixedName(c.sheetBase, r.Year)

	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}
	startRow := len(resp.Values) + 1

	rows := reportRows(r)
	endRow := startRow + len(rows) - 1
	dataRange := fmt.Sprintf("%s!A%d:C%d", sheetName, startRow, endRow)
	vr := &gsheet.ValueRange{Values: rows}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write report to %s: %w", sheetName, err)
	}

	slog.InfoContext(ctx, "Revenue report exported",
		"sheet", sheetName,
		"month", r.Month.String(),
		"rows", len(rows),
		"total_cents", r.Total.Cents)
	return dataRange, nil
}

// reportRows flattens a report into sheet rows: one per day with
// revenue, then a total and an average line.
func reportRows(r export.RevenueReport) [][]any {
	rows := make([][]any, 0, len(r.Days)+2)
	for _, d := range r.Days {
		if d.Total.Cents == 0 {
			continue
		}
		date := fmt.Sprintf("%04d-%02d-%02d", r.Year, int(r.Month), d.Day)
		rows = append(rows, []any{date, "day", d.Total.Dollars()})
	}
	rows = append(rows,
		[]any{r.Month.String(), "total", r.Total.Dollars()},
		[]any{r.Month.String(), "average", r.AveragePerDay.Dollars()})
	return rows
}

// yearPrefixedName returns "<year> <base>" unless base already starts
// with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
