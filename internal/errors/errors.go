package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON error body returned to clients.
// Only Message and Detail are serialized.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Detail     string `json:"detail,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError
func New(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewWithDetail creates a new APIError carrying a detail string
func NewWithDetail(statusCode int, message, detail string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Detail:     detail,
	}
}

// Client-visible messages. These strings are part of the HTTP contract.
const (
	MsgUnauthorized    = "Unauthorized"
	MsgMissingID       = "License JSON must include .id"
	MsgInvalidKey      = "License .id is not a valid storage key"
	MsgPayloadTooLarge = "Payload Too Large"
	MsgStoreFailed     = "Failed to store license"
	MsgUpstreamFailed  = "Upstream fetch failed"
)

// Predefined error responses
var (
	// 400 Bad Request
	ErrMissingID  = New(http.StatusBadRequest, MsgMissingID)
	ErrInvalidKey = New(http.StatusBadRequest, MsgInvalidKey)

	// 401 Unauthorized
	ErrUnauthorized = New(http.StatusUnauthorized, MsgUnauthorized)

	// 404 Not Found
	ErrNotFound = New(http.StatusNotFound, "Not Found")

	// 405 Method Not Allowed
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "Method Not Allowed")

	// 413 Payload Too Large
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, MsgPayloadTooLarge)

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "Too Many Requests")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, "Internal Server Error")
	ErrStoreFailed    = New(http.StatusInternalServerError, MsgStoreFailed)
)

// UpstreamFetchFailed builds the 502 body for an unreachable issuer
func UpstreamFetchFailed(cause error) *APIError {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return NewWithDetail(http.StatusBadGateway, MsgUpstreamFailed, detail)
}

// WriteError writes err as JSON without going through chi/render. It is used
// by middleware that may run before a render context exists.
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(err)
}
