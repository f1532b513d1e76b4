// Package handlers carries the response plumbing shared by the gateway's
// endpoints. Two body shapes leave this service: execution results use the
// interpreter's wire form ({status, stdout, stderr}) even when the code
// failed, while the error envelope below is reserved for requests the
// service could not carry out at all.
package handlers

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the envelope. The set is closed: a client can
// switch on these without seeing new values appear between releases.
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeSessionLimit       = "SESSION_LIMIT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the envelope for requests that never reached the
// interpreter: malformed input, unknown resources, the session cap,
// panics, and missing dependencies.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail pairs a machine-readable code with a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendJSON encodes body as JSON under the given status. A nil body sends
// the status line and headers alone.
func SendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// SendError writes the error envelope.
func SendError(w http.ResponseWriter, status int, code, msg string) {
	SendJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: msg}})
}
