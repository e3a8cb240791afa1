package amqp

import (
	"encoding/json"
	"time"

	"github.com/NotIntruder/Expense-Tracker/internal/core"
)

const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEvent notifies external consumers (sync tooling, other front
// ends) that a record changed. It carries identifiers only; consumers
// fetch the full record from storage.
type TransactionEvent struct {
	Action    string               `json:"action"`
	Type      core.TransactionType `json:"type"`
	ID        string               `json:"id"`
	Date      string               `json:"date"`
	Timestamp time.Time            `json:"timestamp"`
}

// NewTransactionEvent creates an event stamped with the current time.
func NewTransactionEvent(action string, txType core.TransactionType, id, date string) *TransactionEvent {
	return &TransactionEvent{
		Action:    action,
		Type:      txType,
		ID:        id,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
