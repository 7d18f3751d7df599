package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"furfolio/internal/core"
	"furfolio/internal/services"
)

func (s *Server) handleRevenueToday(w http.ResponseWriter, r *http.Request) {
	total, err := s.revenue.TodayTotal(r.Context(), time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read today's revenue", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read revenue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":        core.StartOfDay(time.Now()).Format("2006-01-02"),
		"total_cents": total.Cents,
		"total":       total.String(),
	})
}

// handleRevenueSummary answers windowed rollups. Granularity selects
// the bucket shape: weekly and total take a from/to range, monthly
// takes month+year, quarterly takes a year.
func (s *Server) handleRevenueSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	granularity := strings.TrimSpace(q.Get("granularity"))
	if granularity == "" {
		granularity = "total"
	}

	cacheKey := "summary:" + r.URL.RawQuery
	if cached, ok := s.summaryCache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	payload, status, errMsg := s.buildSummary(r, granularity)
	if errMsg != "" {
		writeError(w, status, errMsg)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.summaryCache.Set(cacheKey, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) buildSummary(r *http.Request, granularity string) (any, int, string) {
	ctx := r.Context()
	q := r.URL.Query()
	now := time.Now()

	switch granularity {
	case "total", "weekly":
		from, to, err := parseRange(q.Get("from"), q.Get("to"), now)
		if err != nil {
			return nil, http.StatusBadRequest, err.Error()
		}
		if granularity == "weekly" {
			weeks, err := s.revenue.WeeklySummary(ctx, from, to)
			if err != nil {
				return nil, http.StatusInternalServerError, "failed to compute summary"
			}
			rows := make([]weekTotalBody, 0, len(weeks))
			for _, wk := range weeks {
				rows = append(rows, weekTotalBody{Year: wk.Year, Week: wk.Week, TotalCents: wk.Total.Cents})
			}
			return map[string]any{"granularity": "weekly", "weeks": rows}, 0, ""
		}
		total, err := s.revenue.TotalRevenue(ctx, from, to)
		if err != nil {
			return nil, http.StatusInternalServerError, "failed to compute summary"
		}
		avg, err := s.revenue.AverageDailyRevenue(ctx, from, to)
		if err != nil {
			return nil, http.StatusInternalServerError, "failed to compute summary"
		}
		return map[string]any{
			"granularity":         "total",
			"total_cents":         total.Cents,
			"average_daily_cents": avg.Cents,
		}, 0, ""

	case "monthly":
		year, month := intParam(q.Get("year"), now.Year()), intParam(q.Get("month"), int(now.Month()))
		if month < 1 || month > 12 {
			return nil, http.StatusBadRequest, "invalid month"
		}
		days, err := s.revenue.MonthlySummary(ctx, time.Month(month), year)
		if err != nil {
			return nil, http.StatusInternalServerError, "failed to compute summary"
		}
		rows := make([]dayTotalBody, 0, len(days))
		for _, d := range days {
			rows = append(rows, dayTotalBody{Day: d.Day, TotalCents: d.Total.Cents})
		}
		return map[string]any{"granularity": "monthly", "year": year, "month": month, "days": rows}, 0, ""

	case "quarterly":
		year := intParam(q.Get("year"), now.Year())
		quarters, err := s.revenue.QuarterlySummary(ctx, year)
		if err != nil {
			return nil, http.StatusInternalServerError, "failed to compute summary"
		}
		rows := make([]quarterTotalBody, 0, len(quarters))
		for _, qt := range quarters {
			rows = append(rows, quarterTotalBody{Quarter: qt.Quarter, TotalCents: qt.Total.Cents})
		}
		return map[string]any{"granularity": "quarterly", "year": year, "quarters": rows}, 0, ""
	}

	return nil, http.StatusBadRequest, "invalid granularity"
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	goalCents := int64(intParam(r.URL.Query().Get("goal_cents"), int(s.monthlyGoalCents)))
	f, err := s.revenue.MonthForecast(r.Context(), time.Now(), core.Money{Cents: goalCents})
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute forecast", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute forecast")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month_to_date_cents": f.MonthToDate.Cents,
		"daily_average_cents": f.DailyAverage.Cents,
		"projected_cents":     f.Projected.Cents,
		"goal_cents":          f.Goal.Cents,
		"goal_progress":       f.GoalProgress,
	})
}

type weekTotalBody struct {
	Year       int   `json:"year"`
	Week       int   `json:"week"`
	TotalCents int64 `json:"total_cents"`
}

type dayTotalBody struct {
	Day        int   `json:"day"`
	TotalCents int64 `json:"total_cents"`
}

type quarterTotalBody struct {
	Quarter    int   `json:"quarter"`
	TotalCents int64 `json:"total_cents"`
}

type topClientBody struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	DogName  string `json:"dog_name,omitempty"`
	Visits   int    `json:"visits"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	m, ok := s.dashboardCache.Get(dashboardCacheKey)
	if !ok {
		clients, err := s.directory.ListClients(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to list clients", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to build dashboard")
			return
		}
		m = services.BuildMetrics(clients, time.Now(), intParam(r.URL.Query().Get("top"), 3))
		s.dashboardCache.Set(dashboardCacheKey, m)
	}

	top := make([]topClientBody, 0, len(m.TopClients))
	for _, tc := range m.TopClients {
		top = append(top, topClientBody{
			ClientID: tc.Client.ID.String(),
			Name:     tc.Client.Name,
			DogName:  tc.Client.DogName,
			Visits:   tc.Visits,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"appointments": map[string]int{
			"completed": m.Appointments.Completed,
			"canceled":  m.Appointments.Canceled,
			"upcoming":  m.Appointments.Upcoming,
		},
		"top_clients":      top,
		"popular_services": m.PopularServices,
	})
}

// parseRange defaults to the current month when from/to are omitted.
func parseRange(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now
	if strings.TrimSpace(fromRaw) != "" {
		var err error
		if from, err = parseTime(fromRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if strings.TrimSpace(toRaw) != "" {
		var err error
		if to, err = parseTime(toRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

func intParam(raw string, fallback int) int {
	if v := strings.TrimSpace(raw); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
