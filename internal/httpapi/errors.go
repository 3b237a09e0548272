// Package httpapi exposes the collector over a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"InflationTracker/internal/model"
)

// errorMapping maps a core sentinel to its presentation.
type errorMapping struct {
	err     error
	status  int
	code    string
	message string
	// detail exposes err.Error() to the client; only for caller mistakes.
	detail bool
}

var errorTable = []errorMapping{
	{model.ErrInvalidRequest, http.StatusBadRequest, "invalid_request", "The request parameters are invalid.", true},
	{model.ErrInvalidBaseDate, http.StatusBadRequest, "invalid_base_date", "No data is available for the requested date.", true},
	{model.ErrInsufficientData, http.StatusUnprocessableEntity, "insufficient_data", "Not enough data to compute this metric.", true},
	{model.ErrEmptyData, http.StatusNotFound, "no_data", "Data unavailable for the requested range.", false},
	{model.ErrAuth, http.StatusServiceUnavailable, "upstream_auth", "Data unavailable: the data provider rejected the API key.", false},
	{model.ErrNetwork, http.StatusBadGateway, "upstream_unavailable", "Data unavailable: the data provider could not be reached.", false},
}

var internalError = errorMapping{
	status:  http.StatusInternalServerError,
	code:    "internal",
	message: "Something went wrong. Please try again later.",
}

func lookupError(err error) errorMapping {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m
		}
	}
	return internalError
}

// UserMessage returns the display text for err, without internal details.
func UserMessage(err error) string {
	return lookupError(err).message
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	return lookupError(err).status
}

// jsonError represents a JSON error payload.
type jsonError struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, code, message, details, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: code, Message: message, Details: details, RequestID: requestID})
}

// writeError maps err through the error table and logs server-side failures.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	m := lookupError(err)
	reqID := RequestIDFromContext(r.Context())
	if m.status >= 500 {
		log.Printf("[ERROR] %s %s req=%s: %v", r.Method, r.URL.Path, reqID, err)
	}
	details := ""
	if m.detail {
		details = err.Error()
	}
	WriteJSONError(w, m.status, m.code, m.message, details, reqID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}
