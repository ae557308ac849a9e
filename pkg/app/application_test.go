package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confreg/pkg/config"
	apperrors "confreg/pkg/errors"
	httputil "confreg/pkg/http"
	"confreg/pkg/logger"
)

type writeHandler struct {
	wrap  []func(http.Handler) http.Handler
	calls int
}

func (h *writeHandler) RegisterRoutes(router *httprouter.Router) {
	var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.calls++
		_ = httputil.WriteSuccess(w, map[string]bool{"success": true})
	})
	for i := len(h.wrap) - 1; i >= 0; i-- {
		next = h.wrap[i](next)
	}
	router.Handler(http.MethodPost, "/api/register", next)
	router.GET("/boom", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		panic("boom")
	})
}

func newTestApplication(t *testing.T, opts ...func(*config.Config)) (*Application, *writeHandler) {
	t.Helper()
	cfg, err := config.Read(viper.New())
	require.NoError(t, err)
	cfg.Log = logger.NewNop()
	for _, opt := range opts {
		opt(cfg)
	}

	a := NewApplication(cfg)
	h := &writeHandler{wrap: a.WriteMiddleware()}
	a.SetApp(h)
	return a, h
}

func register(a *Application, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{}`))
	req.RemoteAddr = remoteAddr
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestApplication_RateLimitsPerClientAddress(t *testing.T) {
	a, h := newTestApplication(t)

	for i := 0; i < config.DefaultRateLimitRequests; i++ {
		rec := register(a, "203.0.113.7:4000", nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := register(a, "203.0.113.7:4000", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeRateLimited)
	assert.Equal(t, config.DefaultRateLimitRequests, h.calls)

	rec = register(a, "198.51.100.2:4000", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "other clients keep their own quota")
}

func TestApplication_RateLimitIgnoresSpoofedForwardingHeaders(t *testing.T) {
	a, h := newTestApplication(t)

	spoofed := []map[string]string{
		{"X-Forwarded-For": "198.51.100.1"},
		{"X-Real-IP": "198.51.100.2"},
		{"True-Client-IP": "198.51.100.3"},
		{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"},
		{"X-Real-IP": "198.51.100.5"},
	}
	for i, headers := range spoofed {
		rec := register(a, "203.0.113.7:4000", headers)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := register(a, "203.0.113.7:4000", map[string]string{"X-Forwarded-For": "198.51.100.6"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, config.DefaultRateLimitRequests, h.calls)
}

func TestApplication_RateLimitTrustsConfiguredProxy(t *testing.T) {
	a, _ := newTestApplication(t, func(cfg *config.Config) {
		cfg.TrustedProxies = []string{"10.0.0.0/8"}
	})

	for i := 0; i < config.DefaultRateLimitRequests; i++ {
		register(a, "10.0.0.1:4000", map[string]string{"X-Forwarded-For": "203.0.113.7"})
	}

	rec := register(a, "10.0.0.1:4000", map[string]string{"X-Forwarded-For": "198.51.100.2"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = register(a, "10.0.0.1:4000", map[string]string{"X-Forwarded-For": "203.0.113.7"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestApplication_IdempotentReplayDoesNotSpendQuota(t *testing.T) {
	a, h := newTestApplication(t)

	for i := 0; i < config.DefaultRateLimitRequests+2; i++ {
		rec := register(a, "203.0.113.7:4000", map[string]string{"Idempotency-Key": "same"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, h.calls)

	rec := register(a, "203.0.113.7:4000", map[string]string{"Idempotency-Key": "same"})
	assert.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
}

func TestApplication_RejectsNonJSON(t *testing.T) {
	a, h := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader("full_name=Ama"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Zero(t, h.calls)
}

func TestApplication_CORS(t *testing.T) {
	a, _ := newTestApplication(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/register", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/register", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_UnknownRoutes(t *testing.T) {
	a, _ := newTestApplication(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeNotFound)

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/register", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeMethodNotAllowed)
}

func TestApplication_PanicBecomesInternalError(t *testing.T) {
	a, _ := newTestApplication(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeInternal)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
