package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BIHBOB/ssiteJungle/internal/store"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeFieldErrors returns a 400 with a field -> message map so the client
// can highlight individual inputs.
func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"message": "Validation failed",
		"errors":  fields,
	})
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeStoreError translates business-rule errors to 4xx and everything
// else to a 500 with the detail kept server-side.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrPromoNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEmptyCart),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrInsufficientBalance),
		errors.Is(err, store.ErrPromoInactive),
		errors.Is(err, store.ErrPromoOutsideWindow),
		errors.Is(err, store.ErrPromoExhausted),
		errors.Is(err, store.ErrPromoMinAmount),
		errors.Is(err, store.ErrPromoAlreadyUsed),
		errors.Is(err, store.ErrPromoAlreadyApplied),
		errors.Is(err, store.ErrInvalidTransition):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
