// Package backend selects the persistence layer from configuration.
// SQLite is the production store; the memory store backs development
// and tests.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"furfolio/internal/config"
	"furfolio/internal/core"
	"furfolio/internal/storage"
)

// Store is everything the API server and the workers need from
// persistence. *storage.SQLiteRepository and *MemoryStore satisfy it.
type Store interface {
	SaveClient(ctx context.Context, c *core.Client) error
	UpdateClient(ctx context.Context, c *core.Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	GetClient(ctx context.Context, id uuid.UUID) (*core.Client, error)
	ListClients(ctx context.Context) ([]*core.Client, error)

	SaveAppointment(ctx context.Context, ap *core.Appointment) error
	SaveAppointments(ctx context.Context, aps []*core.Appointment) error
	UpdateAppointment(ctx context.Context, ap *core.Appointment) error

	SaveCharge(ctx context.Context, ch *core.Charge) error
	UpdateCharge(ctx context.Context, ch *core.Charge) error
	SaveGroomingSession(ctx context.Context, gs *core.GroomingSession) error

	GetDailyRevenue(ctx context.Context, day time.Time) (*core.DailyRevenue, error)
	UpsertDailyRevenue(ctx context.Context, d *core.DailyRevenue) error
	ListChargesInRange(ctx context.Context, from, to time.Time) ([]*core.Charge, error)
}

var (
	_ Store = (*storage.SQLiteRepository)(nil)
	_ Store = (*MemoryStore)(nil)
)

// CleanupFunc releases the store's resources.
type CleanupFunc func() error

// Result pairs an opened store with its cleanup.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// Type identifies a persistence backend.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	}
	return false
}

// Open builds the store named by cfg.DataBackend.
func Open(cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	switch Type(cfg.DataBackend) {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return &Result{Store: repo, Cleanup: repo.Close}, nil
	case Memory:
		return &Result{Store: NewMemoryStore(), Cleanup: func() error { return nil }}, nil
	}
	return nil, fmt.Errorf("unknown backend type: %s", cfg.DataBackend)
}
