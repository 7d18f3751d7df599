package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReminderMessage asks the notification worker to deliver a reminder
// for one appointment occurrence. The engine only decides *when* a
// reminder should fire; delivery is the worker's concern.
type ReminderMessage struct {
	AppointmentID uuid.UUID     `json:"appointment_id"`
	ClientID      uuid.UUID     `json:"client_id"`
	Date          time.Time     `json:"date"`
	LeadTime      time.Duration `json:"lead_time"`
	Timestamp     time.Time     `json:"timestamp"`
}

func NewReminderMessage(appointmentID, clientID uuid.UUID, date time.Time, lead time.Duration) *ReminderMessage {
	return &ReminderMessage{
		AppointmentID: appointmentID,
		ClientID:      clientID,
		Date:          date,
		LeadTime:      lead,
		Timestamp:     time.Now(),
	}
}

// FireAt is the instant the notification should be shown.
func (m *ReminderMessage) FireAt() time.Time {
	return m.Date.Add(-m.LeadTime)
}

func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
