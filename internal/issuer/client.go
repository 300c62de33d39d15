// Package issuer talks to the upstream LCP server that mints fresh licenses.
package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/coder4567/nwf-provider-license-api-1/internal/config"
	apierrors "github.com/coder4567/nwf-provider-license-api-1/internal/errors"
	"github.com/coder4567/nwf-provider-license-api-1/internal/license"
)

// Response is the issuer's answer, passed through unmodified
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client performs one POST per fetch. It never retries.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates an issuer client from configuration
func NewClient(cfg config.IssuerConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "issuer " + r.Method + " /licenses/{id}"
				}),
			),
		},
		logger: logger.With(slog.String("component", "issuer_client")),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchFresh asks the issuer to mint the license for id, encrypted with
// payload. Any HTTP response, including non-2xx, is returned as-is; an error
// is returned only when no response was obtained.
func (c *Client) FetchFresh(ctx context.Context, id string, payload license.KeyPayload) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode key payload: %w", err)
	}

	endpoint := c.baseURL + "/licenses/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apierrors.NewNetworkError("failed to build issuer request", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", license.MediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Issuer unreachable",
			slog.String("license_id", id),
			slog.String("error", err.Error()))
		return nil, apierrors.NewNetworkError("issuer request failed", err).
			WithContext("license_id", id)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError("failed to read issuer response", err).
			WithContext("license_id", id)
	}

	c.logger.DebugContext(ctx, "Issuer responded",
		slog.String("license_id", id),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)))

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
