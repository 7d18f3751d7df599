package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"furfolio/internal/core"

	_ "modernc.org/sqlite"
)

// Dates are stored as RFC 3339 text so lexicographic comparison in SQL
// matches chronological order. Daily revenue buckets key on the plain
// calendar day.
const (
	timeFormat = time.RFC3339Nano
	dayFormat  = "2006-01-02"
)

// storedTime renders a timestamp for the date columns. Values are
// normalized to UTC first: lexicographic comparison only agrees with
// chronological order when every stored row carries the same offset,
// and callers hand in times with arbitrary zones.
func storedTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveClient inserts the client row only; owned appointments, charges
// and sessions are persisted by their own Save calls.
func (r *SQLiteRepository) SaveClient(ctx context.Context, c *core.Client) error {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}

	var birthdate sql.NullString
	if c.Birthdate != nil {
		birthdate = sql.NullString{String: storedTime(*c.Birthdate), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, dog_name, breed, contact_info, address, notes, birthdate, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.DogName, c.Breed, c.ContactInfo, c.Address, c.Notes, birthdate, tags)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}

	slog.InfoContext(ctx, "Client saved",
		"id", c.ID,
		"name", c.Name,
		"dog", c.DogName)
	return nil
}

func (r *SQLiteRepository) UpdateClient(ctx context.Context, c *core.Client) error {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}

	var birthdate sql.NullString
	if c.Birthdate != nil {
		birthdate = sql.NullString{String: storedTime(*c.Birthdate), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, dog_name = ?, breed = ?, contact_info = ?, address = ?, notes = ?, birthdate = ?, tags = ?
		WHERE id = ?`,
		c.Name, c.DogName, c.Breed, c.ContactInfo, c.Address, c.Notes, birthdate, tags, c.ID.String())
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return requireRow(res, "client", c.ID)
}

// DeleteClient removes the client; the schema cascades the delete to
// appointments, charges and grooming sessions.
func (r *SQLiteRepository) DeleteClient(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if err := requireRow(res, "client", id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Client deleted", "id", id)
	return nil
}

// GetClient loads one client with its full appointment, charge and
// session histories.
func (r *SQLiteRepository) GetClient(ctx context.Context, id uuid.UUID) (*core.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, dog_name, breed, contact_info, address, notes, birthdate, tags
		FROM clients WHERE id = ?`, id.String())

	client, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	if err := r.hydrate(ctx, map[uuid.UUID]*core.Client{client.ID: client}); err != nil {
		return nil, err
	}
	return client, nil
}

// ListClients loads every client, fully hydrated, ordered by name.
func (r *SQLiteRepository) ListClients(ctx context.Context) ([]*core.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, dog_name, breed, contact_info, address, notes, birthdate, tags
		FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*core.Client
	byID := make(map[uuid.UUID]*core.Client)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, client)
		byID[client.ID] = client
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	if err := r.hydrate(ctx, byID); err != nil {
		return nil, err
	}
	return clients, nil
}

// hydrate attaches appointments, charges and sessions to the given
// clients in three bulk queries instead of one round trip per client.
func (r *SQLiteRepository) hydrate(ctx context.Context, clients map[uuid.UUID]*core.Client) error {
	if len(clients) == 0 {
		return nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, date, service_type, notes, is_recurring, frequency, is_canceled, is_notified, tags
		FROM appointments ORDER BY date`)
	if err != nil {
		return fmt.Errorf("load appointments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		ap, err := scanAppointment(rows)
		if err != nil {
			return fmt.Errorf("scan appointment: %w", err)
		}
		if c, ok := clients[ap.ClientID]; ok {
			c.Appointments = append(c.Appointments, ap)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load appointments: %w", err)
	}

	chRows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, date, service_type, amount_cents, notes, tags
		FROM charges ORDER BY date`)
	if err != nil {
		return fmt.Errorf("load charges: %w", err)
	}
	defer chRows.Close()
	for chRows.Next() {
		ch, err := scanCharge(chRows)
		if err != nil {
			return fmt.Errorf("scan charge: %w", err)
		}
		if c, ok := clients[ch.ClientID]; ok {
			c.Charges = append(c.Charges, ch)
		}
	}
	if err := chRows.Err(); err != nil {
		return fmt.Errorf("load charges: %w", err)
	}

	gsRows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, date, services_performed, groomer_name, notes
		FROM grooming_sessions ORDER BY date`)
	if err != nil {
		return fmt.Errorf("load grooming sessions: %w", err)
	}
	defer gsRows.Close()
	for gsRows.Next() {
		var gs core.GroomingSession
		var id, clientID, date string
		if err := gsRows.Scan(&id, &clientID, &date, &gs.ServicesPerformed, &gs.GroomerName, &gs.Notes); err != nil {
			return fmt.Errorf("scan grooming session: %w", err)
		}
		if gs.ID, err = uuid.Parse(id); err != nil {
			return fmt.Errorf("parse session id: %w", err)
		}
		if gs.ClientID, err = uuid.Parse(clientID); err != nil {
			return fmt.Errorf("parse session client id: %w", err)
		}
		if gs.Date, err = time.Parse(timeFormat, date); err != nil {
			return fmt.Errorf("parse session date: %w", err)
		}
		if c, ok := clients[gs.ClientID]; ok {
			c.Sessions = append(c.Sessions, &gs)
		}
	}
	if err := gsRows.Err(); err != nil {
		return fmt.Errorf("load grooming sessions: %w", err)
	}

	return nil
}

// SaveAppointment implements services.AppointmentStore.
func (r *SQLiteRepository) SaveAppointment(ctx context.Context, ap *core.Appointment) error {
	tags, err := encodeTags(ap.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO appointments (id, client_id, date, service_type, notes, is_recurring, frequency, is_canceled, is_notified, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ap.ID.String(), ap.ClientID.String(), storedTime(ap.Date), string(ap.ServiceType),
		ap.Notes, ap.IsRecurring, string(ap.Frequency), ap.IsCanceled, ap.IsNotified, tags)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	slog.InfoContext(ctx, "Appointment saved",
		"id", ap.ID,
		"client_id", ap.ClientID,
		"date", storedTime(ap.Date),
		"service", ap.ServiceType)
	return nil
}

// SaveAppointments inserts a batch in one transaction, so a recurrence
// series commits all-or-nothing.
func (r *SQLiteRepository) SaveAppointments(ctx context.Context, aps []*core.Appointment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO appointments (id, client_id, date, service_type, notes, is_recurring, frequency, is_canceled, is_notified, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ap := range aps {
		tags, err := encodeTags(ap.Tags)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			ap.ID.String(), ap.ClientID.String(), storedTime(ap.Date), string(ap.ServiceType),
			ap.Notes, ap.IsRecurring, string(ap.Frequency), ap.IsCanceled, ap.IsNotified, tags); err != nil {
			return fmt.Errorf("insert appointment %s: %w", ap.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit appointments: %w", err)
	}

	slog.InfoContext(ctx, "Appointment batch saved", "count", len(aps))
	return nil
}

// UpdateAppointment implements services.AppointmentStore.
func (r *SQLiteRepository) UpdateAppointment(ctx context.Context, ap *core.Appointment) error {
	tags, err := encodeTags(ap.Tags)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET date = ?, service_type = ?, notes = ?, is_recurring = ?, frequency = ?, is_canceled = ?, is_notified = ?, tags = ?
		WHERE id = ?`,
		storedTime(ap.Date), string(ap.ServiceType), ap.Notes, ap.IsRecurring,
		string(ap.Frequency), ap.IsCanceled, ap.IsNotified, tags, ap.ID.String())
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return requireRow(res, "appointment", ap.ID)
}

// SaveCharge implements services.ChargeStore.
func (r *SQLiteRepository) SaveCharge(ctx context.Context, ch *core.Charge) error {
	tags, err := encodeTags(ch.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO charges (id, client_id, date, service_type, amount_cents, notes, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ch.ID.String(), ch.ClientID.String(), storedTime(ch.Date),
		string(ch.ServiceType), ch.Amount.Cents, ch.Notes, tags)
	if err != nil {
		return fmt.Errorf("insert charge: %w", err)
	}

	slog.InfoContext(ctx, "Charge saved",
		"id", ch.ID,
		"client_id", ch.ClientID,
		"amount_cents", ch.Amount.Cents,
		"service", ch.ServiceType)
	return nil
}

// UpdateCharge implements services.ChargeStore. Only the mutable fields
// change; id, client and date are fixed at creation.
func (r *SQLiteRepository) UpdateCharge(ctx context.Context, ch *core.Charge) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE charges SET amount_cents = ?, notes = ? WHERE id = ?`,
		ch.Amount.Cents, ch.Notes, ch.ID.String())
	if err != nil {
		return fmt.Errorf("update charge: %w", err)
	}
	return requireRow(res, "charge", ch.ID)
}

// SaveGroomingSession implements services.ChargeStore.
func (r *SQLiteRepository) SaveGroomingSession(ctx context.Context, gs *core.GroomingSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO grooming_sessions (id, client_id, date, services_performed, groomer_name, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		gs.ID.String(), gs.ClientID.String(), storedTime(gs.Date),
		gs.ServicesPerformed, gs.GroomerName, gs.Notes)
	if err != nil {
		return fmt.Errorf("insert grooming session: %w", err)
	}
	return nil
}

// GetDailyRevenue implements services.RevenueStore. A missing bucket is
// (nil, nil); the caller decides whether to open one.
func (r *SQLiteRepository) GetDailyRevenue(ctx context.Context, day time.Time) (*core.DailyRevenue, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, total_cents FROM daily_revenue WHERE date = ?`,
		core.StartOfDay(day).Format(dayFormat))

	var id, date string
	var cents int64
	err := row.Scan(&id, &date, &cents)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily revenue: %w", err)
	}

	d := &core.DailyRevenue{Total: core.Money{Cents: cents}}
	if d.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse daily revenue id: %w", err)
	}
	if d.Date, err = time.ParseInLocation(dayFormat, date, day.Location()); err != nil {
		return nil, fmt.Errorf("parse daily revenue date: %w", err)
	}
	return d, nil
}

// UpsertDailyRevenue implements services.RevenueStore.
func (r *SQLiteRepository) UpsertDailyRevenue(ctx context.Context, d *core.DailyRevenue) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_revenue (id, date, total_cents, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET total_cents = excluded.total_cents, updated_at = CURRENT_TIMESTAMP`,
		d.ID.String(), d.Date.Format(dayFormat), d.Total.Cents)
	if err != nil {
		return fmt.Errorf("upsert daily revenue: %w", err)
	}
	return nil
}

// ListChargesInRange implements services.RevenueStore. Both ends are
// inclusive.
func (r *SQLiteRepository) ListChargesInRange(ctx context.Context, from, to time.Time) ([]*core.Charge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, date, service_type, amount_cents, notes, tags
		FROM charges WHERE date >= ? AND date <= ? ORDER BY date`,
		storedTime(from), storedTime(to))
	if err != nil {
		return nil, fmt.Errorf("list charges in range: %w", err)
	}
	defer rows.Close()

	var charges []*core.Charge
	for rows.Next() {
		ch, err := scanCharge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan charge: %w", err)
		}
		charges = append(charges, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list charges in range: %w", err)
	}
	return charges, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (*core.Client, error) {
	var c core.Client
	var id, tags string
	var birthdate sql.NullString
	if err := row.Scan(&id, &c.Name, &c.DogName, &c.Breed, &c.ContactInfo, &c.Address, &c.Notes, &birthdate, &tags); err != nil {
		return nil, err
	}

	var err error
	if c.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse client id: %w", err)
	}
	if birthdate.Valid {
		t, err := time.Parse(timeFormat, birthdate.String)
		if err != nil {
			return nil, fmt.Errorf("parse birthdate: %w", err)
		}
		c.Birthdate = &t
	}
	if c.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanAppointment(row scanner) (*core.Appointment, error) {
	var ap core.Appointment
	var id, clientID, date, serviceType, frequency, tags string
	if err := row.Scan(&id, &clientID, &date, &serviceType, &ap.Notes,
		&ap.IsRecurring, &frequency, &ap.IsCanceled, &ap.IsNotified, &tags); err != nil {
		return nil, err
	}

	var err error
	if ap.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse appointment id: %w", err)
	}
	if ap.ClientID, err = uuid.Parse(clientID); err != nil {
		return nil, fmt.Errorf("parse appointment client id: %w", err)
	}
	if ap.Date, err = time.Parse(timeFormat, date); err != nil {
		return nil, fmt.Errorf("parse appointment date: %w", err)
	}
	ap.ServiceType = core.ServiceType(serviceType)
	ap.Frequency = core.RecurrenceFrequency(frequency)
	if ap.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &ap, nil
}

func scanCharge(row scanner) (*core.Charge, error) {
	var ch core.Charge
	var id, clientID, date, serviceType, tags string
	if err := row.Scan(&id, &clientID, &date, &serviceType, &ch.Amount.Cents, &ch.Notes, &tags); err != nil {
		return nil, err
	}

	var err error
	if ch.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse charge id: %w", err)
	}
	if ch.ClientID, err = uuid.Parse(clientID); err != nil {
		return nil, fmt.Errorf("parse charge client id: %w", err)
	}
	if ch.Date, err = time.Parse(timeFormat, date); err != nil {
		return nil, fmt.Errorf("parse charge date: %w", err)
	}
	ch.ServiceType = core.ServiceType(serviceType)
	if ch.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &ch, nil
}

func requireRow(res sql.Result, kind string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s not found", kind, id)
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(s string) ([]string, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}
