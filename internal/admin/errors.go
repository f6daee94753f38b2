package admin

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the "error" field of failure responses.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeNotFound           = "not_found"
	ErrCodeInternalError      = "internal_error"
)

// APIError is the failure envelope of the JSON endpoints. Message is safe
// to show to the user; Hint, when set, tells the caller how to fix the
// request.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// WriteError writes a failure response without a hint.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorWithHint(w, status, code, message, "")
}

// WriteErrorWithHint writes a failure response.
func WriteErrorWithHint(w http.ResponseWriter, status int, code, message, hint string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encErr := json.NewEncoder(w).Encode(APIError{Error: code, Message: message, Hint: hint})
	if encErr != nil {
		// Response already started, nothing we can do
		_ = encErr
	}
}
