package handlers

import (
	"encoding/json"
	"net/http"
)

// Machine-readable API error codes.
const (
	ErrInvalidInput = "invalid_input" // malformed submission, client fault
	ErrRateLimited  = "rate_limited"  // expected, retryable after the indicated delay
	ErrDatabase     = "database_error"
	ErrInternal     = "internal_error"
)

type errorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}
