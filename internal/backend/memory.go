package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"furfolio/internal/core"
)

// MemoryStore keeps everything in process memory. Clients own their
// appointment and charge histories, so child writes attach to the
// owning client the same way the SQLite hydration does on reads.
type MemoryStore struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*core.Client
	daily   map[string]*core.DailyRevenue
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients: make(map[uuid.UUID]*core.Client),
		daily:   make(map[string]*core.DailyRevenue),
	}
}

func (m *MemoryStore) SaveClient(_ context.Context, c *core.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
	return nil
}

func (m *MemoryStore) UpdateClient(_ context.Context, c *core.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; !ok {
		return fmt.Errorf("client %s: not found", c.ID)
	}
	m.clients[c.ID] = c
	return nil
}

func (m *MemoryStore) DeleteClient(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return fmt.Errorf("client %s: not found", id)
	}
	delete(m.clients, id)
	return nil
}

func (m *MemoryStore) GetClient(_ context.Context, id uuid.UUID) (*core.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clients[id], nil
}

func (m *MemoryStore) ListClients(_ context.Context) ([]*core.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*core.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

func (m *MemoryStore) SaveAppointment(_ context.Context, ap *core.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attachAppointment(ap)
}

// SaveAppointments is all-or-nothing like the SQLite transaction: a
// missing owner rejects the whole batch.
func (m *MemoryStore) SaveAppointments(_ context.Context, aps []*core.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ap := range aps {
		if _, ok := m.clients[ap.ClientID]; !ok {
			return fmt.Errorf("client %s: not found", ap.ClientID)
		}
	}
	for _, ap := range aps {
		if err := m.attachAppointment(ap); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) attachAppointment(ap *core.Appointment) error {
	owner, ok := m.clients[ap.ClientID]
	if !ok {
		return fmt.Errorf("client %s: not found", ap.ClientID)
	}
	for i, existing := range owner.Appointments {
		if existing.ID == ap.ID {
			owner.Appointments[i] = ap
			return nil
		}
	}
	owner.Appointments = append(owner.Appointments, ap)
	return nil
}

func (m *MemoryStore) UpdateAppointment(_ context.Context, ap *core.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.clients[ap.ClientID]
	if !ok {
		return fmt.Errorf("client %s: not found", ap.ClientID)
	}
	for i, existing := range owner.Appointments {
		if existing.ID == ap.ID {
			owner.Appointments[i] = ap
			return nil
		}
	}
	return fmt.Errorf("appointment %s: not found", ap.ID)
}

func (m *MemoryStore) SaveCharge(_ context.Context, ch *core.Charge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.clients[ch.ClientID]
	if !ok {
		return fmt.Errorf("client %s: not found", ch.ClientID)
	}
	for i, existing := range owner.Charges {
		if existing.ID == ch.ID {
			owner.Charges[i] = ch
			return nil
		}
	}
	owner.Charges = append(owner.Charges, ch)
	return nil
}

func (m *MemoryStore) UpdateCharge(_ context.Context, ch *core.Charge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.clients[ch.ClientID]
	if !ok {
		return fmt.Errorf("client %s: not found", ch.ClientID)
	}
	for i, existing := range owner.Charges {
		if existing.ID == ch.ID {
			owner.Charges[i] = ch
			return nil
		}
	}
	return fmt.Errorf("charge %s: not found", ch.ID)
}

func (m *MemoryStore) SaveGroomingSession(_ context.Context, gs *core.GroomingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.clients[gs.ClientID]
	if !ok {
		return fmt.Errorf("client %s: not found", gs.ClientID)
	}
	owner.Sessions = append(owner.Sessions, gs)
	return nil
}

func (m *MemoryStore) GetDailyRevenue(_ context.Context, day time.Time) (*core.DailyRevenue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.daily[core.StartOfDay(day).Format("2006-01-02")], nil
}

func (m *MemoryStore) UpsertDailyRevenue(_ context.Context, d *core.DailyRevenue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.daily[core.StartOfDay(d.Date).Format("2006-01-02")] = d
	return nil
}

func (m *MemoryStore) ListChargesInRange(_ context.Context, from, to time.Time) ([]*core.Charge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*core.Charge
	for _, c := range m.clients {
		for _, ch := range c.Charges {
			if !ch.Date.Before(from) && !ch.Date.After(to) {
				out = append(out, ch)
			}
		}
	}
	return out, nil
}
