// Package http holds the HTTP handlers of the license API. Handlers stay
// thin: they decode the request, call a service and write its result.
//
// Routes served:
//
//	GET  /healthz                  liveness, text/plain "ok"
//	GET  /api/v1/licenses/{id}     stored license or issuer passthrough
//	POST /api/v1/admin/licenses    bearer-authenticated ingest
//	GET  /metrics                  Prometheus exposition
//
// Error bodies are JSON objects of the form {"error": "...", "detail": "..."}
// written through the internal/errors ErrorHandler.
package http
