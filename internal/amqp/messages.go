package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Actions carried by an ExpenseEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEvent is the lightweight message published after a mutation.
// It carries only identifiers; consumers fetch the full record from the
// store, so a stale event never overwrites newer data.
type ExpenseEvent struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(id, action, userID string) *ExpenseEvent {
	return &ExpenseEvent{
		ID:        id,
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

func (e *ExpenseEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event without expense id")
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return nil
	default:
		return fmt.Errorf("unknown event action %q", e.Action)
	}
}

func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
