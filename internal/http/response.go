package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tally/internal/auth"
	"tally/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to status codes. Storage failures stay
// opaque; validation sentinels carry their message to the client.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		// Client went away; nothing useful left to write.
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, core.ErrNotFound):
		status, message = http.StatusNotFound, "expense not found"
	case errors.Is(err, core.ErrForbidden):
		status, message = http.StatusForbidden, "expense belongs to another user"
	case errors.Is(err, core.ErrUnauthenticated),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		status, message = http.StatusUnauthorized, "authentication required"
	case errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrMissingOwner):
		status, message = http.StatusBadRequest, err.Error()
	default:
		slog.ErrorContext(ctx, "Request failed", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": message})
}
