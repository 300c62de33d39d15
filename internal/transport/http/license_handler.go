package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coder4567/nwf-provider-license-api-1/internal/services"
)

// LicenseHandler serves license documents to reading apps
type LicenseHandler struct {
	service services.RetrievalService
	logger  *slog.Logger
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(service services.RetrievalService, logger *slog.Logger) *LicenseHandler {
	return &LicenseHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "license")),
	}
}

// Get handles GET /api/v1/licenses/{id}
func (h *LicenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// chi routes on RawPath when it is set, leaving the param escaped.
	// Otherwise the param is already decoded and must not be decoded again.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
	}

	env := h.service.Retrieve(r.Context(), id)

	w.Header().Set("Content-Type", env.ContentType)
	w.Header().Set("Cache-Control", env.CacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(env.Body)))
	w.WriteHeader(env.Status)

	if _, err := w.Write(env.Body); err != nil {
		h.logger.DebugContext(r.Context(), "client went away before the license was written",
			slog.String("license_id", id),
			slog.String("error", err.Error()))
	}
}
