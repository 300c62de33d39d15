package events

import "context"

// NoopPublisher drops every event. It is used when no NATS URL is configured
// or the connection cannot be established at startup.
type NoopPublisher struct{}

// Publish discards the event
func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

// Close is a no-op
func (n *NoopPublisher) Close() error {
	return nil
}
