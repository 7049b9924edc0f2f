package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/storefront/internal/domain"
)

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeFailure sends the storefront's failure envelope:
// {"success":false,"errors":"..."}.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "errors": message})
}

// writeError maps a service error onto a status code. Anything that is not a
// known domain failure is treated as a storage fault and reported as 503.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeFailure(w, http.StatusBadRequest, detail(err, domain.ErrInvalidInput))
	case errors.Is(err, domain.ErrUnauthorized):
		writeFailure(w, http.StatusUnauthorized, detail(err, domain.ErrUnauthorized))
	case errors.Is(err, domain.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeFailure(w, http.StatusConflict, detail(err, domain.ErrConflict))
	default:
		slog.Error(op, "error", err)
		writeFailure(w, http.StatusServiceUnavailable, "service unavailable")
	}
}

// detail returns the message that follows base in a wrapped error chain,
// e.g. "Wrong Password" for "get user: unauthorized: Wrong Password".
func detail(err, base error) string {
	msg := err.Error()
	prefix := base.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// readJSON decodes the request body into the given destination.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
