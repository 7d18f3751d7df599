// Package http exposes the engine as a JSON API: client records,
// appointment booking, the charge ledger and the revenue dashboard.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"furfolio/internal/cache"
	"furfolio/internal/core"
	"furfolio/internal/log"
	"furfolio/internal/middleware/trace"
	"furfolio/internal/services"
)

// Directory is the slice of the repository the API needs for client
// records; scheduling and ledger writes go through the services.
type Directory interface {
	SaveClient(ctx context.Context, c *core.Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*core.Client, error)
	ListClients(ctx context.Context) ([]*core.Client, error)
	UpdateClient(ctx context.Context, c *core.Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

type Server struct {
	http.Server

	directory Directory
	scheduler *services.Scheduler
	ledger    *services.Ledger
	revenue   *services.RevenueService

	rateLimiter *rateLimiter
	metrics     *trace.Metrics
	audit       *log.StructuredLogger

	// Default revenue goal for forecasts, overridable per request.
	monthlyGoalCents int64

	// Cached dashboard and summary payloads; invalidated on writes.
	dashboardCache *cache.LRUCache[services.Metrics]
	summaryCache   *cache.LRUCache[[]byte]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and returns a ready-to-run server.
func NewServer(addr string, dir Directory, scheduler *services.Scheduler, ledger *services.Ledger, revenue *services.RevenueService, monthlyGoalCents int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		directory:        dir,
		scheduler:        scheduler,
		ledger:           ledger,
		revenue:          revenue,
		rateLimiter:      newRateLimiter(),
		metrics:          trace.NewMetrics(),
		audit:            log.NewStructuredLogger(log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)),
		monthlyGoalCents: monthlyGoalCents,
		dashboardCache:   cache.NewLRUCache[services.Metrics](10, 1*time.Minute),
		summaryCache:     cache.NewLRUCache[[]byte](100, 5*time.Minute),
		cacheManager:     cache.NewManager(),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /clients", s.secured(s.handleCreateClient))
	mux.HandleFunc("GET /clients", s.secured(s.handleListClients))
	mux.HandleFunc("GET /clients/{id}", s.secured(s.handleGetClient))
	mux.HandleFunc("DELETE /clients/{id}", s.secured(s.handleDeleteClient))

	mux.HandleFunc("POST /clients/{id}/appointments", s.secured(s.handleSchedule))
	mux.HandleFunc("POST /clients/{id}/appointments/{apptID}/materialize", s.secured(s.handleMaterialize))
	mux.HandleFunc("POST /clients/{id}/appointments/{apptID}/cancel", s.secured(s.handleCancel))

	mux.HandleFunc("POST /clients/{id}/charges", s.secured(s.handleRecordCharge))
	mux.HandleFunc("POST /clients/{id}/charges/{chargeID}/discount", s.secured(s.handleDiscount))
	mux.HandleFunc("POST /clients/{id}/sessions", s.secured(s.handleLogSession))

	mux.HandleFunc("GET /revenue/today", s.secured(s.handleRevenueToday))
	mux.HandleFunc("GET /revenue/summary", s.secured(s.handleRevenueSummary))
	mux.HandleFunc("GET /revenue/forecast", s.secured(s.handleForecast))
	mux.HandleFunc("GET /dashboard", s.secured(s.handleDashboard))

	return s
}

// Shutdown stops the HTTP server and the background cleanup
// goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// secured adds security headers, rate limiting and request logging.
func (s *Server) secured(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := trace.NewRequestID()
		ctx := trace.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.metrics.Observe(duration)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	requests, avg := s.metrics.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"requests":         requests,
		"avg_response_us":  avg.Microseconds(),
		"dashboard_cached": s.dashboardCache.Size(),
		"summaries_cached": s.summaryCache.Size(),
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateStats drops the cached dashboard and summary payloads after
// any write.
func (s *Server) invalidateStats() {
	s.dashboardCache.Delete(dashboardCacheKey)
	// Summaries are keyed per query; dropping the whole cache is
	// cheaper than tracking which windows a write touched.
	s.summaryCache.Clear()
}

const dashboardCacheKey = "dashboard"
