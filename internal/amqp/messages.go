package amqp

import (
	"encoding/json"
	"time"

	"moneybook/internal/core"
	"moneybook/internal/feed"
)

// RecordChangedMessage announces a write to one owner's period. Consumers
// re-read the period from the store; the message carries no record data.
type RecordChangedMessage struct {
	OwnerID   string    `json:"owner_id"`
	Period    string    `json:"period"`
	RecordID  string    `json:"record_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordChangedMessage creates a message for c stamped with the current time
func NewRecordChangedMessage(c feed.Change) *RecordChangedMessage {
	return &RecordChangedMessage{
		OwnerID:   c.OwnerID,
		Period:    string(c.Period),
		RecordID:  c.RecordID,
		Action:    string(c.Action),
		Timestamp: time.Now(),
	}
}

// Change converts the message back into a feed change
func (m *RecordChangedMessage) Change() feed.Change {
	return feed.Change{
		OwnerID:  m.OwnerID,
		Period:   core.PeriodKey(m.Period),
		RecordID: m.RecordID,
		Action:   feed.Action(m.Action),
	}
}

func (m *RecordChangedMessage) Validate() error {
	return m.Change().Validate()
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON parses and validates a message
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
