package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "github.com/coder4567/nwf-provider-license-api-1/internal/errors"
	"github.com/coder4567/nwf-provider-license-api-1/internal/events"
	"github.com/coder4567/nwf-provider-license-api-1/internal/infrastructure"
	"github.com/coder4567/nwf-provider-license-api-1/internal/license"
	"github.com/coder4567/nwf-provider-license-api-1/internal/lookaside"
)

// IngestResult is returned for a stored license
type IngestResult struct {
	Saved string `json:"saved"`
}

// IngestService admits licenses pushed by the minter
type IngestService interface {
	// Authorize checks the Authorization header value. Rejections are
	// logged and counted.
	Authorize(ctx context.Context, authHeader string) error

	// Ingest authorizes, validates and stores body. The store is untouched
	// unless the returned error is nil.
	Ingest(ctx context.Context, authHeader string, body []byte) (*IngestResult, error)
}

type ingestService struct {
	token     string
	store     lookaside.Store
	publisher events.Publisher
	subject   string
	metrics   *infrastructure.ProxyMetrics
	logger    *slog.Logger
}

// NewIngestService creates an ingest service. An empty token rejects every
// request.
func NewIngestService(token string, store lookaside.Store, publisher events.Publisher, subject string, metrics *infrastructure.ProxyMetrics, logger *slog.Logger) IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	if subject == "" {
		subject = events.TopicLicenseIngested
	}
	return &ingestService{
		token:     token,
		store:     store,
		publisher: publisher,
		subject:   subject,
		metrics:   metrics,
		logger:    logger.With(slog.String("service", "ingest")),
	}
}

func (s *ingestService) Authorize(ctx context.Context, authHeader string) error {
	err := s.checkToken(authHeader)
	if err != nil {
		s.metrics.RecordIngest(ctx, infrastructure.OutcomeUnauthorized)
		s.logger.WarnContext(ctx, "ingest rejected",
			slog.String("request_id", middleware.GetReqID(ctx)),
			slog.String("reason", err.Error()))
	}
	return err
}

func (s *ingestService) checkToken(authHeader string) error {
	if s.token == "" {
		return apierrors.NewAuthError("admin endpoint disabled")
	}
	expected := "Bearer " + s.token
	if subtle.ConstantTimeCompare([]byte(authHeader), []byte(expected)) != 1 {
		return apierrors.NewAuthError("bearer token mismatch")
	}
	return nil
}

func (s *ingestService) Ingest(ctx context.Context, authHeader string, body []byte) (*IngestResult, error) {
	reqID := middleware.GetReqID(ctx)

	if err := s.Authorize(ctx, authHeader); err != nil {
		return nil, err
	}

	doc, err := license.ParseDocument(body)
	if err != nil {
		s.metrics.RecordIngest(ctx, infrastructure.OutcomeInvalid)
		msg := apierrors.MsgMissingID
		if errors.Is(err, license.ErrInvalidKey) {
			msg = apierrors.MsgInvalidKey
		}
		s.logger.WarnContext(ctx, "ingest payload invalid",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()))
		return nil, apierrors.NewValidationError(msg, err)
	}

	if err := s.store.Put(ctx, doc.ID, doc.Raw); err != nil {
		s.metrics.RecordIngest(ctx, infrastructure.OutcomeStorageErr)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "failed to store license",
			slog.String("request_id", reqID),
			slog.String("license_id", doc.ID),
			slog.String("error", err.Error()))
		return nil, apierrors.NewStorageError("failed to store license", err).
			WithContext("license_id", doc.ID)
	}

	s.metrics.RecordIngest(ctx, infrastructure.OutcomeSuccess)
	s.logger.InfoContext(ctx, "license ingested",
		slog.String("request_id", reqID),
		slog.String("license_id", doc.ID),
		slog.Int("bytes", len(doc.Raw)))

	s.publish(ctx, doc, reqID)

	return &IngestResult{Saved: doc.ID}, nil
}

// publish notifies subscribers. Failures never affect the response.
func (s *ingestService) publish(ctx context.Context, doc *license.Document, reqID string) {
	event := events.LicenseIngested{
		ID:         doc.ID,
		Bytes:      len(doc.Raw),
		RequestID:  reqID,
		IngestedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, s.subject, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish ingest event",
			slog.String("request_id", reqID),
			slog.String("license_id", doc.ID),
			slog.String("error", err.Error()))
	}
}
