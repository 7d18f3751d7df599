package http

import (
	"log/slog"
	"net/http"
	"time"

	"furfolio/internal/core"
	"furfolio/internal/services"
)

type scheduleRequest struct {
	Date        string   `json:"date"`
	ServiceType string   `json:"service_type"`
	Notes       string   `json:"notes"`
	Recurring   bool     `json:"recurring"`
	Frequency   string   `json:"frequency"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	client := s.loadClient(w, r)
	if client == nil {
		return
	}

	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	date, err := parseTime(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ap, err := s.scheduler.Schedule(r.Context(), client, date, core.ServiceType(req.ServiceType),
		services.ScheduleOptions{
			Notes:     sanitizeInput(req.Notes),
			Tags:      sanitizeSlice(req.Tags),
			Recurring: req.Recurring,
			Frequency: core.RecurrenceFrequency(req.Frequency),
		}, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.audit.LogAppointmentScheduled(r.Context(), ap.ID.String(), client.ID.String(),
		string(ap.ServiceType))

	s.invalidateStats()
	writeJSON(w, http.StatusCreated, toAppointmentBody(ap))
}

type materializeRequest struct {
	Until string `json:"until"`
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	client := s.loadClient(w, r)
	if client == nil {
		return
	}
	apptID, err := pathUUID(r, "apptID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req materializeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	until, err := parseTime(req.Until)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var template *core.Appointment
	for _, ap := range client.Appointments {
		if ap.ID == apptID {
			template = ap
			break
		}
	}
	if template == nil {
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	}
	if !template.IsRecurring {
		writeError(w, http.StatusUnprocessableEntity, "appointment is not recurring")
		return
	}

	occurrences, err := s.scheduler.MaterializeRecurrence(r.Context(), client, *template, until)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateStats()
	out := make([]appointmentBody, 0, len(occurrences))
	for _, occ := range occurrences {
		out = append(out, toAppointmentBody(occ))
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	client := s.loadClient(w, r)
	if client == nil {
		return
	}
	apptID, err := pathUUID(r, "apptID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, ap := range client.Appointments {
		if ap.ID != apptID {
			continue
		}
		if err := s.scheduler.Cancel(r.Context(), ap); err != nil {
			slog.ErrorContext(r.Context(), "Failed to cancel appointment",
				"appointment_id", apptID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to cancel appointment")
			return
		}
		s.invalidateStats()
		writeJSON(w, http.StatusOK, toAppointmentBody(ap))
		return
	}
	writeError(w, http.StatusNotFound, "appointment not found")
}
