package http

import (
	"log/slog"
	"net/http"
	"time"

	"furfolio/internal/core"
	"furfolio/internal/log"
	"furfolio/internal/services"
)

type recordChargeRequest struct {
	Date        string   `json:"date"`
	ServiceType string   `json:"service_type"`
	Amount      string   `json:"amount"` // decimal, e.g. "45.00"
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleRecordCharge(w http.ResponseWriter, r *http.Request) {
	client := s.loadClient(w, r)
	if client == nil {
		return
	}

	var req recordChargeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	now := time.Now()
	date := now
	if req.Date != "" {
		var err error
		if date, err = parseTime(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ch, err := s.ledger.Record(r.Context(), client, date, core.ServiceType(req.ServiceType),
		core.Money{Cents: cents}, services.ChargeOptions{
			Notes: sanitizeInput(req.Notes),
			Tags:  sanitizeSlice(req.Tags),
		})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.audit.LogChargeRecorded(r.Context(), ch.ID.String(), client.ID.String(),
		ch.Amount.Cents, string(ch.ServiceType))

	// Same-day charges also feed the rolling today bucket.
	if core.SameDay(date, now) {
		if err := s.revenue.AddRevenue(r.Context(), ch.Amount, now); err != nil {
			s.audit.LogError(r.Context(), "Failed to update today's revenue", err,
				log.ComponentRevenue, log.OpUpdate,
				log.NewFields().WithCharge(ch.ID.String(), client.ID.String(),
					ch.Amount.Cents, string(ch.ServiceType)))
		}
	}

	s.invalidateStats()
	writeJSON(w, http.StatusCreated, toChargeBody(ch))
}

type discountRequest struct {
	Percentage float64 `json:"percentage"`
}

func (s *Server) handleDiscount(w http.ResponseWriter, r *http.Request) {
	client := s.loadClient(w, r)
	if client == nil {
		return
	}
	chargeID, err := pathUUID(r, "chargeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req discountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	for _, ch := range client.Charges {
		if ch.ID != chargeID {
			continue
		}
		if err := s.ledger.ApplyDiscount(r.Context(), ch, req.Percentage); err != nil {
			writeDomainError(w, err)
			return
		}
		s.invalidateStats()
		writeJSON(w, http.StatusOK, toChargeBody(ch))
		return
	}
	writeError(w, http.StatusNotFound, "charge not found")
}

type logSessionRequest struct {
	Date              string `json:"date"`
	ServicesPerformed string `json:"services_performed"`
	GroomerName       string `json:"groomer_name"`
	Notes             string `json:"notes"`
}

func (s *Server) handleLogSession(w http.ResponseWriter, r *http.Request) {
	client := s.loadClient(w, r)
	if client == nil {
		return
	}

	var req logSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	date := time.Now()
	if req.Date != "" {
		var err error
		if date, err = parseTime(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	gs, err := s.ledger.LogSession(r.Context(), client, date,
		sanitizeInput(req.ServicesPerformed),
		sanitizeInput(req.GroomerName),
		sanitizeInput(req.Notes))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to log grooming session",
			"client_id", client.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log session")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":                 gs.ID.String(),
		"client_id":          gs.ClientID.String(),
		"date":               gs.Date.Format(time.RFC3339),
		"services_performed": gs.ServicesPerformed,
		"groomer_name":       gs.GroomerName,
	})
}
