package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medibook/internal/booking"
	"github.com/wolfman30/medibook/internal/chat"
	"github.com/wolfman30/medibook/internal/clinic"
	"github.com/wolfman30/medibook/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/medibook/internal/http/middleware"
	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/internal/pagesession"
	"github.com/wolfman30/medibook/internal/webchat"
	"github.com/wolfman30/medibook/pkg/logging"
)

type staticProvider struct{}

func (staticProvider) Name() string { return "static" }

func (staticProvider) NewConverser() chat.Converser {
	return chat.ConverserFunc(func(context.Context, string, i18n.Language) string { return "ok" })
}

func newTestRouter(t *testing.T, limiter *httpmiddleware.RateLimiter) http.Handler {
	t.Helper()
	logger := logging.NewWithWriter(io.Discard, "error")
	registry := pagesession.NewRegistry(pagesession.Config{
		Submitters: func(func() string) booking.Submitter {
			return booking.SubmitterFunc(func(context.Context, booking.Form) error { return nil })
		},
		ChatProvider: staticProvider{},
		Logger:       logger,
	})
	t.Cleanup(registry.Close)

	return New(&Config{
		Logger:             logger,
		ClinicHandler:      clinic.NewHandler(clinic.DefaultDirectory, i18n.Korean, logger),
		SessionHandler:     handlers.NewPageSessionHandler(registry, handlers.PageSessionConfig{}, logger),
		WebChatHandler:     webchat.NewHandler(registry, []string{"https://clinic.example"}, 0, logger),
		MetricsHandler:     promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"https://clinic.example"},
		RateLimiter:        limiter,
	})
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHospitalsRoute(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hospitals?lang=en", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Language  string `json:"language"`
		Hospitals []any  `json:"hospitals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "en", body.Language)
	assert.NotEmpty(t, body.Hospitals)
}

func TestSessionRoutesMounted(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/unknown/chat/ws", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/hospitals", nil)
	req.Header.Set("Origin", "https://clinic.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://clinic.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	r := newTestRouter(t, httpmiddleware.NewRateLimiter(0.001, 1))

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.9:5000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("/api/hospitals"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api/hospitals"))
	assert.Equal(t, http.StatusOK, do("/health"))
}
