package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ServiceBasic  ServiceType = "basic"
	ServiceFull   ServiceType = "full"
	ServiceCustom ServiceType = "custom"
)

const (
	Daily   RecurrenceFrequency = "daily"
	Weekly  RecurrenceFrequency = "weekly"
	Monthly RecurrenceFrequency = "monthly"
)

type (
	ServiceType string

	RecurrenceFrequency string

	// Client is the business's customer. It owns its appointment and
	// charge histories; deleting a client cascades to both (a storage
	// concern, enforced by the schema).
	Client struct {
		ID          uuid.UUID
		Name        string
		DogName     string
		Breed       string
		ContactInfo string
		Address     string
		Notes       string
		Birthdate   *time.Time
		Tags        []string

		Appointments []*Appointment
		Charges      []*Charge
		Sessions     []*GroomingSession
	}

	// Appointment is one scheduled visit. A recurring appointment acts
	// as a template: expansion creates sibling records, it never mutates
	// the template itself.
	Appointment struct {
		ID          uuid.UUID
		ClientID    uuid.UUID
		Date        time.Time
		ServiceType ServiceType
		Notes       string
		IsRecurring bool
		Frequency   RecurrenceFrequency // set only when IsRecurring
		IsCanceled  bool
		IsNotified  bool // at most one reminder per occurrence
		Tags        []string
	}

	// Charge is a billable transaction against a client. Immutable after
	// creation except for the explicit discount operation.
	Charge struct {
		ID          uuid.UUID
		ClientID    uuid.UUID
		Date        time.Time
		ServiceType ServiceType
		Amount      Money
		Notes       string
		Tags        []string
	}

	// GroomingSession records what was actually done during a visit.
	GroomingSession struct {
		ID                uuid.UUID
		ClientID          uuid.UUID
		Date              time.Time
		ServicesPerformed string
		GroomerName       string
		Notes             string
	}
)

var (
	ErrPastDate        = errors.New("date must be in the future")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrFutureDate      = errors.New("date must not be in the future")
	ErrInvalidDiscount = errors.New("discount percentage must be in (0, 100]")
	ErrEmptyName       = errors.New("empty client name")
	ErrInvalidService  = errors.New("invalid service type")
	ErrInvalidFreq     = errors.New("invalid recurrence frequency")
)

// ConflictError reports a scheduling collision and carries the existing
// appointment so callers can display it.
type ConflictError struct {
	Colliding *Appointment
}

func (e *ConflictError) Error() string {
	return "appointment conflicts with an existing booking at " +
		e.Colliding.Date.Format(time.RFC3339)
}

func (s ServiceType) Validate() error {
	switch s {
	case ServiceBasic, ServiceFull, ServiceCustom:
		return nil
	}
	return ErrInvalidService
}

func (f RecurrenceFrequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly:
		return nil
	}
	return ErrInvalidFreq
}

// NewClient trims name fields and assigns an id. Name is required; the
// remaining contact fields are opaque to the engine.
func NewClient(name, dogName, breed, contactInfo, address string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Client{
		ID:          uuid.New(),
		Name:        name,
		DogName:     strings.TrimSpace(dogName),
		Breed:       strings.TrimSpace(breed),
		ContactInfo: strings.TrimSpace(contactInfo),
		Address:     strings.TrimSpace(address),
	}, nil
}

func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (a Appointment) Validate() error {
	if err := a.ServiceType.Validate(); err != nil {
		return err
	}
	if a.IsRecurring {
		return a.Frequency.Validate()
	}
	return nil
}

// Cancel is idempotent; canceled appointments stay on record.
func (a *Appointment) Cancel() {
	a.IsCanceled = true
}

// MarkNotified records that a reminder was handed off to the transport.
func (a *Appointment) MarkNotified() {
	a.IsNotified = true
}

// ResetNotification clears the reminder flag so a rescheduled
// appointment can be reminded again.
func (a *Appointment) ResetNotification() {
	a.IsNotified = false
}

// EligibleForReminder reports whether a reminder may still be scheduled:
// not canceled, not already notified, and the visit is still ahead.
func (a Appointment) EligibleForReminder(now time.Time) bool {
	return !a.IsCanceled && !a.IsNotified && a.Date.After(now)
}

func (c Charge) Validate() error {
	if c.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return c.ServiceType.Validate()
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
