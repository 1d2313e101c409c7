package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"docbook/pkg/config"
	"docbook/pkg/contracts"
	"docbook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const IdempotencyHeader = "Idempotency-Key"

type Options struct {
	// Health serves /health and /ready behind Recovery and Logging only.
	Health contracts.Handler
	// Handlers are mounted behind the full middleware stack.
	Handlers []contracts.Handler
	// Registry defaults to a fresh registry with Go and process collectors.
	Registry *prometheus.Registry
	// Idempotency defaults to an in-process store with the configured TTL.
	Idempotency middleware.IdempotencyStore
	// OnShutdown runs after the server stops, before the config's own
	// connections are closed.
	OnShutdown []func()
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	handler          http.Handler
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.ClientRateLimiter
	onShutdown       []func()
}

func NewApplication(cfg *config.Config, opts Options) *Application {
	a := &Application{cfg: cfg, onShutdown: opts.OnShutdown, idempotencyStore: opts.Idempotency}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	mux := http.NewServeMux()
	if opts.Health != nil {
		health := a.healthHandler(opts.Health)
		mux.Handle("/health", health)
		mux.Handle("/ready", health)
	}
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", a.appHandler(opts.Handlers, middleware.NewHTTPMetrics(registry)))
	a.handler = mux

	a.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	cfg.Log.Info("HTTP server configured", "port", cfg.Port)
	return a
}

func (a *Application) healthHandler(h contracts.Handler) http.Handler {
	router := httprouter.New()
	h.RegisterRoutes(router)

	var handler http.Handler = router
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	a.cfg.Log.Debug("Health endpoints configured with minimal middleware (Recovery + Logging only)")
	return handler
}

func (a *Application) appHandler(handlers []contracts.Handler, metrics *middleware.HTTPMetrics) http.Handler {
	router := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	if a.idempotencyStore == nil {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	}
	a.rateLimiter = middleware.NewClientRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.DefaultClientExtractor,
		a.cfg.Log,
	)

	var handler http.Handler = router
	handler = middleware.Idempotency(a.idempotencyStore, IdempotencyHeader, a.cfg.Log)(handler)
	handler = middleware.RequestTimeout(a.cfg.RequestTimeout, a.cfg.Log)(handler)
	handler = middleware.ClientRateLimit(a.rateLimiter)(handler)
	handler = middleware.ContentTypeValidation(a.cfg.Log)(handler)
	handler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(handler)
	handler = middleware.Metrics(metrics)(handler)
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	a.cfg.Log.Debug("Application endpoints configured with full middleware stack")
	return handler
}

// Handler exposes the assembled mux.
func (a *Application) Handler() http.Handler {
	return a.handler
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
		a.stopWorkers()
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) stopWorkers() {
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.stopWorkers()
	for _, fn := range a.onShutdown {
		fn()
	}
	a.cfg.GracefulShutdown()

	a.cfg.Log.Info("Server stopped gracefully")
}
