package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/coder4567/nwf-provider-license-api-1/internal/errors"
	"github.com/coder4567/nwf-provider-license-api-1/internal/infrastructure"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	t.Run("generates an id when absent", func(t *testing.T) {
		var seen, traceID string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetReqID(r.Context())
			traceID = infrastructure.GetTraceID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
		assert.Equal(t, seen, traceID)
	})

	t.Run("reuses the caller's id", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetReqID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", seen)
		assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	})
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := RequestID(StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/licenses", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "req-7", entry["request_id"])
	assert.Equal(t, http.MethodPost, entry["method"])
	assert.Equal(t, "/api/v1/admin/licenses", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(len("short and stout")), entry["bytes"])
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(apierrors.NewErrorHandler(testLogger(), false))

	t.Run("panic becomes json 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
	})

	t.Run("abort handler is re-raised", func(t *testing.T) {
		wrapped := h(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))
		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})

	t.Run("no panic passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, testLogger())
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/licenses", nil))
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests {
			assert.JSONEq(t, `{"error":"Too Many Requests"}`, rec.Body.String())
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "remote addr", want: "192.0.2.1:1234"},
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "10.0.0.9"}, want: "10.0.0.9"},
		{
			name:    "first forwarded hop",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1", "X-Real-IP": "10.0.0.9"},
			want:    "203.0.113.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetRealIP(req))
		})
	}
}

func TestOTelMiddleware_RecordsRoutePattern(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), testLogger())
	require.NoError(t, err)

	metrics, err := infrastructure.CreateProxyMetrics(providers.Meter)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(NewOTelMiddleware(providers, metrics).Handler)
	r.Get("/api/v1/licenses/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/licenses/lic-123", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	scrape := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()

	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `route="/api/v1/licenses/{id}"`)
	assert.Contains(t, body, `status_code="502"`)
	assert.NotContains(t, body, "lic-123")
}

func TestOTelMiddleware_NilMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(nil, testLogger())
	require.NoError(t, err)

	h := NewOTelMiddleware(providers, nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	})
	assert.Equal(t, "ok", rec.Body.String())
}
