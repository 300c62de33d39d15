package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/coder4567/nwf-provider-license-api-1/internal/issuer"
	"github.com/coder4567/nwf-provider-license-api-1/internal/license"
)

// MockIssuerClient is a mock implementation of IssuerClient
type MockIssuerClient struct {
	mock.Mock
}

func (m *MockIssuerClient) FetchFresh(ctx context.Context, id string, payload license.KeyPayload) (*issuer.Response, error) {
	args := m.Called(ctx, id, payload)
	if resp := args.Get(0); resp != nil {
		return resp.(*issuer.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockStore is a mock implementation of lookaside.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	args := m.Called(ctx, id)
	var doc []byte
	if d := args.Get(0); d != nil {
		doc = d.([]byte)
	}
	return doc, args.Bool(1), args.Error(2)
}

func (m *MockStore) Put(ctx context.Context, id string, doc []byte) error {
	args := m.Called(ctx, id, doc)
	return args.Error(0)
}

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, event any) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var testPayload = license.KeyPayload{HexValue: "ABCD", TextHint: "hint"}
