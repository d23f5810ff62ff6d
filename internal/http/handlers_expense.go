package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tally/internal/auth"
	"tally/internal/core"
	"tally/internal/services"
)

// expenseJSON is the wire shape of a single record.
type expenseJSON struct {
	ID         string       `json:"_id"`
	Title      string       `json:"title"`
	Category   string       `json:"category"`
	Amount     float64      `json:"amount"`
	IncurredOn time.Time    `json:"incurred_on"`
	Notes      string       `json:"notes,omitempty"`
	RecordedBy core.UserRef `json:"recorded_by"`
	Created    time.Time    `json:"created"`
	Updated    *time.Time   `json:"updated,omitempty"`
}

func toExpenseJSON(e *core.Expense) expenseJSON {
	out := expenseJSON{
		ID:         e.ID,
		Title:      e.Title,
		Category:   e.Category,
		Amount:     e.Amount.Float64(),
		IncurredOn: e.IncurredOn.UTC(),
		Notes:      e.Notes,
		RecordedBy: e.RecordedBy,
		Created:    e.CreatedAt.UTC(),
	}
	if !e.UpdatedAt.IsZero() {
		updated := e.UpdatedAt.UTC()
		out.Updated = &updated
	}
	return out
}

// amountField accepts a decimal amount as either a JSON string ("12,50")
// or a number (12.5).
type amountField struct {
	raw string
	set bool
}

func (a *amountField) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	a.raw = strings.TrimSpace(s)
	a.set = true
	return nil
}

func (a *amountField) cents() (core.Money, error) {
	cents, err := core.ParseDecimalToCents(a.raw)
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: %v", core.ErrInvalidAmount, err)
	}
	return core.Money{Cents: cents}, nil
}

type createExpenseRequest struct {
	Title      string      `json:"title"`
	Category   string      `json:"category"`
	Amount     amountField `json:"amount"`
	IncurredOn string      `json:"incurred_on"`
	Notes      string      `json:"notes"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	in := services.CreateInput{
		Title:    strings.TrimSpace(req.Title),
		Category: strings.TrimSpace(req.Category),
		Notes:    strings.TrimSpace(req.Notes),
	}

	if !req.Amount.set {
		writeError(r.Context(), w, fmt.Errorf("%w: amount is required", core.ErrInvalidAmount))
		return
	}
	amount, err := req.Amount.cents()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	in.Amount = amount

	if v := strings.TrimSpace(req.IncurredOn); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		in.IncurredOn = t
	}

	if _, err := s.expenses.Create(r.Context(), claims.User(), in); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	// Acknowledgment only; clients re-fetch through the list endpoint.
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Expense recorded!"})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	first, last, err := ParseDayRange(r.URL.Query())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	list, err := s.expenses.List(r.Context(), claims.UserID, first, last)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]expenseJSON, 0, len(list))
	for i := range list {
		out = append(out, toExpenseJSON(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	expense, err := s.expenses.Get(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

type updateExpenseRequest struct {
	Title      *string      `json:"title"`
	Category   *string      `json:"category"`
	Amount     *amountField `json:"amount"`
	IncurredOn *string      `json:"incurred_on"`
	Notes      *string      `json:"notes"`
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	var req updateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	changes := services.UpdateChanges{
		Title:    req.Title,
		Category: req.Category,
		Notes:    req.Notes,
	}
	if req.Amount != nil && req.Amount.set {
		amount, err := req.Amount.cents()
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		changes.Amount = &amount
	}
	if req.IncurredOn != nil {
		t, _, err := parseDate(strings.TrimSpace(*req.IncurredOn))
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		changes.IncurredOn = &t
	}

	expense, err := s.expenses.Update(r.Context(), claims.UserID, r.PathValue("id"), changes)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	expense, err := s.expenses.Delete(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Expense removed",
		"expense": toExpenseJSON(expense),
	})
}
