package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error kinds returned to clients. Values are stable and machine-readable.
const (
	kindValidation      = "validation"
	kindUnauthenticated = "unauthenticated"
	kindConflict        = "conflict"
	kindNotFound        = "not_found"
	kindInternal        = "internal"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}

// decodeBody decodes a JSON request body after capping its size.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, kindValidation, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return false
	}
	return true
}
