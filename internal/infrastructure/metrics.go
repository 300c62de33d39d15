package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Lookup results
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// Issuer and ingest outcomes
const (
	OutcomeSuccess      = "success"
	OutcomeUpstreamErr  = "upstream_error"
	OutcomeNetworkErr   = "network_error"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeStorageErr   = "storage_error"
)

// ProxyMetrics holds the service's metrics. A nil *ProxyMetrics records
// nothing.
type ProxyMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// License metrics
	LicenseLookups        metric.Int64Counter
	IssuerRequests        metric.Int64Counter
	IssuerRequestDuration metric.Float64Histogram
	AdminIngests          metric.Int64Counter
}

// CreateProxyMetrics registers the service's instruments on meter
func CreateProxyMetrics(meter metric.Meter) (*ProxyMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	licenseLookups, err := meter.Int64Counter(
		"license_lookups_total",
		metric.WithDescription("Lookaside store lookups by result"),
	)
	if err != nil {
		return nil, err
	}

	issuerRequests, err := meter.Int64Counter(
		"issuer_requests_total",
		metric.WithDescription("Requests sent to the license issuer by outcome"),
	)
	if err != nil {
		return nil, err
	}

	issuerRequestDuration, err := meter.Float64Histogram(
		"issuer_request_duration_seconds",
		metric.WithDescription("License issuer round-trip duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	adminIngests, err := meter.Int64Counter(
		"admin_ingests_total",
		metric.WithDescription("Admin license ingest attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &ProxyMetrics{
		HTTPRequestsTotal:     httpRequestsTotal,
		HTTPRequestDuration:   httpRequestDuration,
		HTTPActiveRequests:    httpActiveRequests,
		LicenseLookups:        licenseLookups,
		IssuerRequests:        issuerRequests,
		IssuerRequestDuration: issuerRequestDuration,
		AdminIngests:          adminIngests,
	}, nil
}

// RecordLookup counts a store lookup
func (m *ProxyMetrics) RecordLookup(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.LicenseLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordIssuerRequest counts an issuer call and its duration
func (m *ProxyMetrics) RecordIssuerRequest(ctx context.Context, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.IssuerRequests.Add(ctx, 1, attrs)
	m.IssuerRequestDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordIngest counts an admin ingest attempt
func (m *ProxyMetrics) RecordIngest(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.AdminIngests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
