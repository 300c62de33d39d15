package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "github.com/coder4567/nwf-provider-license-api-1/internal/errors"
	"github.com/coder4567/nwf-provider-license-api-1/internal/services"
)

// AdminHandler accepts licenses pushed by the minter
type AdminHandler struct {
	service      services.IngestService
	errorHandler *apierrors.ErrorHandler
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler. Bodies larger than
// maxBodyBytes are rejected with 413.
func NewAdminHandler(service services.IngestService, errorHandler *apierrors.ErrorHandler, maxBodyBytes int64, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service:      service,
		errorHandler: errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With(slog.String("handler", "admin")),
	}
}

// Ingest handles POST /api/v1/admin/licenses
func (h *AdminHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")

	// Unauthenticated callers never get their body read
	if err := h.service.Authorize(r.Context(), authHeader); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Ingest(r.Context(), authHeader, body)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}
