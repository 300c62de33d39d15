package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to an APIError and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	apiErr := ToAPIError(err)

	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", apiErr.StatusCode),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	render.Render(w, r, apiErr)
}

// ToAPIError maps an error to the response body the client sees. Causes of
// auth and storage failures are never exposed.
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return ErrPayloadTooLarge
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return ErrInternalServer
	}

	switch appErr.Type {
	case ErrTypeAuth:
		return ErrUnauthorized
	case ErrTypeValidation:
		return New(http.StatusBadRequest, appErr.Message)
	case ErrTypeStorage:
		return ErrStoreFailed
	case ErrTypeNetwork:
		return UpstreamFetchFailed(appErr.Cause)
	default:
		return ErrInternalServer
	}
}

// HandlePanic logs a recovered panic and responds with a 500
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	attrs := []any{
		slog.Any("panic", recovered),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	if h.includeStack {
		attrs = append(attrs, slog.String("stack", string(debug.Stack())))
	}
	h.logger.ErrorContext(r.Context(), "panic recovered", attrs...)

	WriteError(w, ErrInternalServer)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, ErrNotFound)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewWithDetail(http.StatusMethodNotAllowed, ErrMethodNotAllowed.Message,
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method)))
}
