package amqp

import "testing"

func TestExpenseEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   ExpenseEvent
		wantErr bool
	}{
		{"created", ExpenseEvent{ID: "e1", Action: ActionCreated, UserID: "u1"}, false},
		{"updated", ExpenseEvent{ID: "e1", Action: ActionUpdated, UserID: "u1"}, false},
		{"deleted", ExpenseEvent{ID: "e1", Action: ActionDeleted, UserID: "u1"}, false},
		{"missing id", ExpenseEvent{Action: ActionCreated, UserID: "u1"}, true},
		{"unknown action", ExpenseEvent{ID: "e1", Action: "renamed", UserID: "u1"}, true},
		{"empty action", ExpenseEvent{ID: "e1", UserID: "u1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpenseEventFromJSONRejectsInvalid(t *testing.T) {
	if _, err := ExpenseEventFromJSON([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed body")
	}
	if _, err := ExpenseEventFromJSON([]byte(`{"id":"","action":"created"}`)); err == nil {
		t.Error("expected error for event without id")
	}

	ev := NewExpenseEvent("e1", ActionCreated, "u1")
	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	decoded, err := ExpenseEventFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if decoded.ID != "e1" || decoded.Action != ActionCreated || decoded.UserID != "u1" {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}
