package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"furfolio/internal/core"
	"furfolio/internal/services"
)

type fakeDirectory struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*core.Client
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{clients: make(map[uuid.UUID]*core.Client)}
}

func (d *fakeDirectory) SaveClient(_ context.Context, c *core.Client) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients[c.ID] = c
	return nil
}

func (d *fakeDirectory) GetClient(_ context.Context, id uuid.UUID) (*core.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clients[id], nil
}

func (d *fakeDirectory) ListClients(_ context.Context) ([]*core.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*core.Client, 0, len(d.clients))
	for _, c := range d.clients {
		out = append(out, c)
	}
	return out, nil
}

func (d *fakeDirectory) UpdateClient(_ context.Context, c *core.Client) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.clients[c.ID]; !ok {
		return fmt.Errorf("client %s not found", c.ID)
	}
	d.clients[c.ID] = c
	return nil
}

func (d *fakeDirectory) DeleteClient(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.clients, id)
	return nil
}

type fakeRevenueStore struct {
	daily   map[string]*core.DailyRevenue
	charges []*core.Charge
}

func newFakeRevenueStore() *fakeRevenueStore {
	return &fakeRevenueStore{daily: make(map[string]*core.DailyRevenue)}
}

func (s *fakeRevenueStore) GetDailyRevenue(_ context.Context, day time.Time) (*core.DailyRevenue, error) {
	return s.daily[core.StartOfDay(day).Format("2006-01-02")], nil
}

func (s *fakeRevenueStore) UpsertDailyRevenue(_ context.Context, d *core.DailyRevenue) error {
	s.daily[core.StartOfDay(d.Date).Format("2006-01-02")] = d
	return nil
}

func (s *fakeRevenueStore) ListChargesInRange(_ context.Context, from, to time.Time) ([]*core.Charge, error) {
	var out []*core.Charge
	for _, ch := range s.charges {
		if !ch.Date.Before(from) && !ch.Date.After(to) {
			out = append(out, ch)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *fakeDirectory) {
	t.Helper()
	dir := newFakeDirectory()
	srv := NewServer(":0", dir,
		services.NewScheduler(nil, 0),
		services.NewLedger(nil),
		services.NewRevenueService(newFakeRevenueStore()),
		0)
	return srv, dir
}

func seedClient(t *testing.T, dir *fakeDirectory) *core.Client {
	t.Helper()
	c, err := core.NewClient("Dana", "Rex", "Beagle", "dana@example.com", "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := dir.SaveClient(context.Background(), c); err != nil {
		t.Fatalf("SaveClient: %v", err)
	}
	return c
}

func doJSON(t *testing.T, srv *Server, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetClient(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/clients", map[string]any{
		"name": "Dana", "dog_name": "Rex", "breed": "Beagle",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client status = %d, body %s", rec.Code, rec.Body)
	}
	var created clientBody
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Name != "Dana" || created.ID == "" {
		t.Errorf("unexpected client body: %+v", created)
	}

	rec = doJSON(t, srv, http.MethodGet, "/clients/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get client status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/clients/"+uuid.New().String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing client status = %d, want 404", rec.Code)
	}
}

func TestCreateClientRejectsEmptyName(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/clients", map[string]any{"name": "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body)
	}
}

func TestScheduleAppointment(t *testing.T) {
	srv, dir := newTestServer(t)
	client := seedClient(t, dir)

	date := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	rec := doJSON(t, srv, http.MethodPost, "/clients/"+client.ID.String()+"/appointments",
		map[string]any{"date": date, "service_type": "full"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule status = %d, body %s", rec.Code, rec.Body)
	}
	var ap appointmentBody
	if err := json.Unmarshal(rec.Body.Bytes(), &ap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ap.ServiceType != "full" || ap.ClientID != client.ID.String() {
		t.Errorf("unexpected appointment body: %+v", ap)
	}
}

func TestSchedulePastDateRejected(t *testing.T) {
	srv, dir := newTestServer(t)
	client := seedClient(t, dir)

	date := time.Now().Add(-48 * time.Hour).Format(time.RFC3339)
	rec := doJSON(t, srv, http.MethodPost, "/clients/"+client.ID.String()+"/appointments",
		map[string]any{"date": date, "service_type": "basic"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body)
	}
}

func TestScheduleConflictReturns409(t *testing.T) {
	srv, dir := newTestServer(t)
	client := seedClient(t, dir)
	base := time.Now().Add(72 * time.Hour)

	rec := doJSON(t, srv, http.MethodPost, "/clients/"+client.ID.String()+"/appointments",
		map[string]any{"date": base.Format(time.RFC3339), "service_type": "basic"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first booking status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/clients/"+client.ID.String()+"/appointments",
		map[string]any{"date": base.Add(30 * time.Minute).Format(time.RFC3339), "service_type": "basic"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflicting booking status = %d, want 409, body %s", rec.Code, rec.Body)
	}
	var body conflictBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode conflict body: %v", err)
	}
	if body.Colliding.ID == "" {
		t.Errorf("conflict body missing colliding appointment: %+v", body)
	}
}

func TestCancelAppointment(t *testing.T) {
	srv, dir := newTestServer(t)
	client := seedClient(t, dir)

	date := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	rec := doJSON(t, srv, http.MethodPost, "/clients/"+client.ID.String()+"/appointments",
		map[string]any{"date": date, "service_type": "basic"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule status = %d", rec.Code)
	}
	var ap appointmentBody
	if err := json.Unmarshal(rec.Body.Bytes(), &ap); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost,
		"/clients/"+client.ID.String()+"/appointments/"+ap.ID+"/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body %s", rec.Code, rec.Body)
	}
	var canceled appointmentBody
	if err := json.Unmarshal(rec.Body.Bytes(), &canceled); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !canceled.IsCanceled {
		t.Error("appointment not marked canceled")
	}
}

func TestRecordChargeFeedsTodayBucket(t *testing.T) {
	srv, dir := newTestServer(t)
	client := seedClient(t, dir)

	rec := doJSON(t, srv, http.MethodPost, "/clients/"+client.ID.String()+"/charges",
		map[string]any{"service_type": "full", "amount": "45.00"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record charge status = %d, body %s", rec.Code, rec.Body)
	}
	var ch chargeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &ch); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ch.AmountCents != 4500 || ch.Amount != "$45.00" {
		t.Errorf("unexpected charge body: %+v", ch)
	}

	rec = doJSON(t, srv, http.MethodGet, "/revenue/today", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("revenue today status = %d", rec.Code)
	}
	var today struct {
		TotalCents int64 `json:"total_cents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &today); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if today.TotalCents != 4500 {
		t.Errorf("today total = %d cents, want 4500", today.TotalCents)
	}
}

func TestDiscountMissingCharge(t *testing.T) {
	srv, dir := newTestServer(t)
	client := seedClient(t, dir)

	rec := doJSON(t, srv, http.MethodPost,
		"/clients/"+client.ID.String()+"/charges/"+uuid.New().String()+"/discount",
		map[string]any{"percentage": 10.0})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body %s", rec.Code, rec.Body)
	}
}

func TestRevenueSummaryRejectsBadGranularity(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/revenue/summary?granularity=hourly", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body)
	}
}

// A plain-date `to` parses to midnight; the range must still cover
// every charge recorded later that day.
func TestRevenueSummaryCoversFullToDay(t *testing.T) {
	store := newFakeRevenueStore()
	store.charges = []*core.Charge{
		{Date: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), Amount: core.Money{Cents: 2000}},
		{Date: time.Date(2026, 1, 31, 16, 30, 0, 0, time.UTC), Amount: core.Money{Cents: 3500}},
	}
	srv := NewServer(":0", newFakeDirectory(),
		services.NewScheduler(nil, 0),
		services.NewLedger(nil),
		services.NewRevenueService(store),
		0)

	rec := doJSON(t, srv, http.MethodGet,
		"/revenue/summary?granularity=total&from=2026-01-01&to=2026-01-31", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body struct {
		TotalCents int64 `json:"total_cents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.TotalCents != 5500 {
		t.Errorf("total = %d cents, want 5500", body.TotalCents)
	}
}

func TestDashboard(t *testing.T) {
	srv, dir := newTestServer(t)
	client := seedClient(t, dir)

	rec := doJSON(t, srv, http.MethodPost, "/clients/"+client.ID.String()+"/charges",
		map[string]any{"service_type": "basic", "amount": "30.00"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record charge status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body %s", rec.Code, rec.Body)
	}
	var dash struct {
		TopClients      []topClientBody `json:"top_clients"`
		PopularServices map[string]int  `json:"popular_services"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(dash.TopClients) != 1 || dash.TopClients[0].Visits != 1 {
		t.Errorf("unexpected top clients: %+v", dash.TopClients)
	}
	if dash.PopularServices["basic"] != 1 {
		t.Errorf("unexpected popular services: %+v", dash.PopularServices)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}
