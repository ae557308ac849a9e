package app

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/cors"
	"github.com/julienschmidt/httprouter"

	"confreg/pkg/config"
	"confreg/pkg/contracts"
	apperrors "confreg/pkg/errors"
	httputil "confreg/pkg/http"
	"confreg/pkg/middleware"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	handler          http.Handler
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.IPRateLimiter
	closers          []func() error
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{
		cfg:              cfg,
		idempotencyStore: middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL),
		rateLimiter: middleware.NewIPRateLimiter(
			cfg.RateLimitRequests,
			cfg.RateLimitWindow,
			middleware.ClientIP,
			cfg.Log,
		),
	}
}

// WriteMiddleware is the stack for routes that accept a JSON body and cause
// side effects. Idempotency sits outside the rate limit so a replay does
// not spend quota.
func (a *Application) WriteMiddleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.ContentTypeValidation(a.cfg.Log),
		middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize)),
		middleware.Idempotency(a.idempotencyStore, "Idempotency-Key"),
		middleware.RateLimit(a.rateLimiter),
	}
}

// OnShutdown registers fn to run after the server has stopped.
func (a *Application) OnShutdown(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *Application) SetApp(handlers ...contracts.Handler) {
	a.setAppHandler(handlers)
	a.setAppServer()
}

// Handler is the fully wrapped router. Exposed for in-process tests.
func (a *Application) Handler() http.Handler {
	return a.handler
}

func (a *Application) setAppHandler(handlers []contracts.Handler) {
	router := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}
	router.NotFound = http.HandlerFunc(a.notFound)
	router.MethodNotAllowed = http.HandlerFunc(a.methodNotAllowed)

	var appHttpHandler http.Handler = router
	appHttpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(appHttpHandler)
	appHttpHandler = cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           300,
	})(appHttpHandler)
	appHttpHandler = middleware.RequestLogging(a.cfg.Log)(appHttpHandler)
	appHttpHandler = middleware.TrustedRealIP(a.trustedProxies())(appHttpHandler)
	appHttpHandler = middleware.Recovery(a.cfg.Log)(appHttpHandler)
	a.handler = appHttpHandler
	a.cfg.Log.Info("Application endpoints configured", "cors_origins", a.cfg.CORSOrigins())
}

func (a *Application) trustedProxies() []netip.Prefix {
	prefixes, err := a.cfg.TrustedProxyPrefixes()
	if err != nil {
		a.cfg.Log.Warn("Ignoring trusted proxies", "error", err)
		return nil
	}
	return prefixes
}

func (a *Application) notFound(w http.ResponseWriter, r *http.Request) {
	if err := httputil.WriteError(w, apperrors.NotFound("Not found")); err != nil {
		a.cfg.Log.Error("failed to write error response", "handler", "NotFound", "operation", "WriteError", "error", err)
	}
}

func (a *Application) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	appErr := apperrors.New(apperrors.CodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed)
	if err := httputil.WriteError(w, appErr); err != nil {
		a.cfg.Log.Error("failed to write error response", "handler", "MethodNotAllowed", "operation", "WriteError", "error", err)
	}
}

func (a *Application) setAppServer() {
	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.cfg.Log.Error("Failed to release resource", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
