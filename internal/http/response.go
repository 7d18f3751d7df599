package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"furfolio/internal/core"
)

type errorBody struct {
	Error string `json:"error"`
}

// conflictBody carries the colliding appointment alongside the error so
// the caller can show which booking is in the way.
type conflictBody struct {
	Error     string          `json:"error"`
	Colliding appointmentBody `json:"colliding"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeDomainError maps domain errors onto HTTP statuses. A scheduling
// conflict gets its own body shape.
func writeDomainError(w http.ResponseWriter, err error) {
	var conflict *core.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, conflictBody{
			Error:     conflict.Error(),
			Colliding: toAppointmentBody(conflict.Colliding),
		})
		return
	}

	switch {
	case errors.Is(err, core.ErrPastDate),
		errors.Is(err, core.ErrFutureDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDiscount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidService),
		errors.Is(err, core.ErrInvalidFreq):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Wire shapes. Money travels as integer cents; dates as RFC 3339.

type clientBody struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	DogName      string            `json:"dog_name,omitempty"`
	Breed        string            `json:"breed,omitempty"`
	ContactInfo  string            `json:"contact_info,omitempty"`
	Address      string            `json:"address,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Appointments []appointmentBody `json:"appointments,omitempty"`
	Charges      []chargeBody      `json:"charges,omitempty"`
}

type appointmentBody struct {
	ID          string   `json:"id"`
	ClientID    string   `json:"client_id"`
	Date        string   `json:"date"`
	ServiceType string   `json:"service_type"`
	Notes       string   `json:"notes,omitempty"`
	IsRecurring bool     `json:"is_recurring,omitempty"`
	Frequency   string   `json:"frequency,omitempty"`
	IsCanceled  bool     `json:"is_canceled,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type chargeBody struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	Date        string `json:"date"`
	ServiceType string `json:"service_type"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Notes       string `json:"notes,omitempty"`
}

func toClientBody(c *core.Client) clientBody {
	body := clientBody{
		ID:          c.ID.String(),
		Name:        c.Name,
		DogName:     c.DogName,
		Breed:       c.Breed,
		ContactInfo: c.ContactInfo,
		Address:     c.Address,
		Notes:       c.Notes,
		Tags:        c.Tags,
	}
	for _, ap := range c.Appointments {
		body.Appointments = append(body.Appointments, toAppointmentBody(ap))
	}
	for _, ch := range c.Charges {
		body.Charges = append(body.Charges, toChargeBody(ch))
	}
	return body
}

func toAppointmentBody(ap *core.Appointment) appointmentBody {
	return appointmentBody{
		ID:          ap.ID.String(),
		ClientID:    ap.ClientID.String(),
		Date:        ap.Date.Format(time.RFC3339),
		ServiceType: string(ap.ServiceType),
		Notes:       ap.Notes,
		IsRecurring: ap.IsRecurring,
		Frequency:   string(ap.Frequency),
		IsCanceled:  ap.IsCanceled,
		Tags:        ap.Tags,
	}
}

func toChargeBody(ch *core.Charge) chargeBody {
	return chargeBody{
		ID:          ch.ID.String(),
		ClientID:    ch.ClientID.String(),
		Date:        ch.Date.Format(time.RFC3339),
		ServiceType: string(ch.ServiceType),
		AmountCents: ch.Amount.Cents,
		Amount:      ch.Amount.String(),
		Notes:       ch.Notes,
	}
}
