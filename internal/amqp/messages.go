package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionRecorded = "recorded"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
)

// TransactionEvent is the lightweight message published after every ledger
// mutation. It carries only the id and action; consumers fetch the full
// record from storage.
type TransactionEvent struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(id, action string) *TransactionEvent {
	return &TransactionEvent{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
