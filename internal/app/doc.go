// Package app wires the license API together: configuration, logging,
// telemetry, the lookaside store, the issuer client and the HTTP router.
//
// Startup order:
//
//  1. Resolve paths and create the store directory
//  2. Initialize OpenTelemetry and the service metrics
//  3. Build the store, the issuer client and the event publisher
//  4. Build the retrieval and ingest services
//  5. Mount middleware and routes, create the HTTP server
//
// Run blocks until SIGINT or SIGTERM and then drains in-flight requests.
// Errors are returned to the caller; the package never exits the process.
package app
