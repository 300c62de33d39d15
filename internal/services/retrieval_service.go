package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apierrors "github.com/coder4567/nwf-provider-license-api-1/internal/errors"
	"github.com/coder4567/nwf-provider-license-api-1/internal/infrastructure"
	"github.com/coder4567/nwf-provider-license-api-1/internal/issuer"
	"github.com/coder4567/nwf-provider-license-api-1/internal/license"
	"github.com/coder4567/nwf-provider-license-api-1/internal/lookaside"
)

// CacheControlNoStore is set on every license response
const CacheControlNoStore = "no-store"

// IssuerClient mints fresh licenses
type IssuerClient interface {
	FetchFresh(ctx context.Context, id string, payload license.KeyPayload) (*issuer.Response, error)
}

// Envelope is a fully decided HTTP response
type Envelope struct {
	Status       int
	ContentType  string
	CacheControl string
	Body         []byte
}

// RetrievalService resolves a license id to a response
type RetrievalService interface {
	// Retrieve never fails: every outcome, including an unreachable issuer,
	// is expressed as an Envelope.
	Retrieve(ctx context.Context, id string) *Envelope
}

type retrievalService struct {
	store   lookaside.Store
	issuer  IssuerClient
	payload license.KeyPayload
	metrics *infrastructure.ProxyMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewRetrievalService creates a retrieval service. payload is sent with
// every issuer request.
func NewRetrievalService(store lookaside.Store, client IssuerClient, payload license.KeyPayload, metrics *infrastructure.ProxyMetrics, logger *slog.Logger) RetrievalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &retrievalService{
		store:   store,
		issuer:  client,
		payload: payload,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  logger.With(slog.String("service", "retrieval")),
	}
}

func (s *retrievalService) Retrieve(ctx context.Context, id string) *Envelope {
	ctx, span := s.tracer.Start(ctx, "RetrievalService.Retrieve",
		trace.WithAttributes(attribute.String("license.id", id)))
	defer span.End()

	reqID := middleware.GetReqID(ctx)

	doc, found, err := s.store.Get(ctx, id)
	switch {
	case err != nil:
		// Readers are still served by the issuer when the store is unhealthy.
		s.metrics.RecordLookup(ctx, infrastructure.LookupError)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "lookaside read failed, falling back to issuer",
			slog.String("request_id", reqID),
			slog.String("license_id", id),
			slog.String("error", err.Error()))
	case found:
		s.metrics.RecordLookup(ctx, infrastructure.LookupHit)
		span.SetAttributes(attribute.String("license.source", "lookaside"))
		s.logger.DebugContext(ctx, "license served from lookaside",
			slog.String("request_id", reqID),
			slog.String("license_id", id))
		return licenseEnvelope(http.StatusOK, doc)
	default:
		s.metrics.RecordLookup(ctx, infrastructure.LookupMiss)
	}

	span.SetAttributes(attribute.String("license.source", "issuer"))
	return s.proxy(ctx, id, reqID)
}

// proxy performs exactly one issuer call. Cancellation of the inbound
// request does not abort it.
func (s *retrievalService) proxy(ctx context.Context, id, reqID string) *Envelope {
	start := time.Now()
	resp, err := s.issuer.FetchFresh(context.WithoutCancel(ctx), id, s.payload)
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.RecordIssuerRequest(ctx, infrastructure.OutcomeNetworkErr, elapsed)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "issuer fetch failed",
			slog.String("request_id", reqID),
			slog.String("license_id", id),
			slog.Duration("latency", elapsed),
			slog.String("error", err.Error()))
		return gatewayErrorEnvelope(err)
	}

	outcome := infrastructure.OutcomeSuccess
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = infrastructure.OutcomeUpstreamErr
	}
	s.metrics.RecordIssuerRequest(ctx, outcome, elapsed)

	s.logger.InfoContext(ctx, "license proxied from issuer",
		slog.String("request_id", reqID),
		slog.String("license_id", id),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", elapsed))

	return licenseEnvelope(resp.StatusCode, resp.Body)
}

func licenseEnvelope(status int, body []byte) *Envelope {
	return &Envelope{
		Status:       status,
		ContentType:  license.MediaType,
		CacheControl: CacheControlNoStore,
		Body:         body,
	}
}

func gatewayErrorEnvelope(err error) *Envelope {
	cause := err
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		cause = appErr.Cause
	}

	apiErr := apierrors.UpstreamFetchFailed(cause)
	body, _ := json.Marshal(apiErr)

	return &Envelope{
		Status:       apiErr.StatusCode,
		ContentType:  "application/json",
		CacheControl: CacheControlNoStore,
		Body:         body,
	}
}
