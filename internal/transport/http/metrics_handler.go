package http

import (
	"net/http"

	apierrors "github.com/coder4567/nwf-provider-license-api-1/internal/errors"
)

// MetricsHandler exposes the Prometheus registry. A nil exporter answers 404
// so the route can stay mounted when metrics are disabled.
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// ServeHTTP implements http.Handler
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		apierrors.WriteError(w, apierrors.ErrNotFound)
		return
	}
	h.exporter.ServeHTTP(w, r)
}
