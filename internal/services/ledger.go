package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"furfolio/internal/core"
)

// ChargeStore is the slice of the repository the ledger needs. As with
// the scheduler, a nil store keeps the operations in-memory only.
type ChargeStore interface {
	SaveCharge(ctx context.Context, ch *core.Charge) error
	UpdateCharge(ctx context.Context, ch *core.Charge) error
	SaveGroomingSession(ctx context.Context, gs *core.GroomingSession) error
}

// Ledger is the append-only transaction log per client. Charges are
// never deleted here; removal is a persistence-layer concern.
type Ledger struct {
	store ChargeStore
}

func NewLedger(store ChargeStore) *Ledger {
	return &Ledger{store: store}
}

// ChargeOptions carries the optional fields of a new charge.
type ChargeOptions struct {
	Notes string
	Tags  []string
}

// Record appends a billable transaction to the client's history.
// Non-positive amounts are rejected with ErrInvalidAmount; nothing is
// ever clamped silently.
func (l *Ledger) Record(
	ctx context.Context,
	client *core.Client,
	date time.Time,
	serviceType core.ServiceType,
	amount core.Money,
	opts ChargeOptions,
) (*core.Charge, error) {
	if amount.Cents <= 0 {
		return nil, core.ErrInvalidAmount
	}
	if err := serviceType.Validate(); err != nil {
		return nil, err
	}

	ch := &core.Charge{
		ID:          uuid.New(),
		ClientID:    client.ID,
		Date:        date,
		ServiceType: serviceType,
		Amount:      amount,
		Notes:       opts.Notes,
		Tags:        append([]string(nil), opts.Tags...),
	}
	if l.store != nil {
		if err := l.store.SaveCharge(ctx, ch); err != nil {
			return nil, err
		}
	}
	client.Charges = append(client.Charges, ch)

	slog.InfoContext(ctx, "Charge recorded",
		"charge_id", ch.ID,
		"client_id", client.ID,
		"amount_cents", ch.Amount.Cents,
		"service_type", ch.ServiceType)
	return ch, nil
}

// ApplyDiscount reduces the charge amount by the given percentage.
// Percentages outside (0, 100] are rejected with ErrInvalidDiscount.
func (l *Ledger) ApplyDiscount(ctx context.Context, ch *core.Charge, percentage float64) error {
	if percentage <= 0 || percentage > 100 {
		return core.ErrInvalidDiscount
	}
	before := ch.Amount
	ch.Amount = ch.Amount.DiscountPercent(percentage)
	if l.store != nil {
		if err := l.store.UpdateCharge(ctx, ch); err != nil {
			ch.Amount = before
			return err
		}
	}
	slog.InfoContext(ctx, "Discount applied",
		"charge_id", ch.ID,
		"percentage", percentage,
		"amount_cents", ch.Amount.Cents)
	return nil
}

// LogSession records what was done during a visit alongside the charge
// history.
func (l *Ledger) LogSession(
	ctx context.Context,
	client *core.Client,
	date time.Time,
	servicesPerformed, groomerName, notes string,
) (*core.GroomingSession, error) {
	gs := &core.GroomingSession{
		ID:                uuid.New(),
		ClientID:          client.ID,
		Date:              date,
		ServicesPerformed: servicesPerformed,
		GroomerName:       groomerName,
		Notes:             notes,
	}
	if l.store != nil {
		if err := l.store.SaveGroomingSession(ctx, gs); err != nil {
			return nil, err
		}
	}
	client.Sessions = append(client.Sessions, gs)
	return gs, nil
}
