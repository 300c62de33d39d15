// Package events publishes notifications about stored licenses.
package events

import (
	"context"
	"time"

	"github.com/coder4567/nwf-provider-license-api-1/internal/config"
)

// TopicLicenseIngested is the default subject for ingest notifications
const TopicLicenseIngested = config.DefaultIngestSubject

// LicenseIngested is published after a license has been durably stored
type LicenseIngested struct {
	ID         string    `json:"id"`
	Bytes      int       `json:"bytes"`
	RequestID  string    `json:"request_id,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Publisher sends events to a topic
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// NewPublisher returns a NATS publisher when a URL is configured and a
// NoopPublisher otherwise.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	if cfg.NATSURL == "" {
		return &NoopPublisher{}, nil
	}
	return NewNATSPublisher(cfg.NATSURL)
}
