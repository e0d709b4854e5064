// Package server provides the HTTP JSON API over the account catalog,
// the service registry, and the invocation engine.
package server

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/storelink/storelink/internal/logging"
	"github.com/storelink/storelink/internal/ratelimiter"
	"github.com/storelink/storelink/pkg/account"
	"github.com/storelink/storelink/pkg/config"
	"github.com/storelink/storelink/pkg/invocation"
	"github.com/storelink/storelink/pkg/metrics"
	"github.com/storelink/storelink/pkg/registry"
)

// Server exposes the catalog and invocation API over HTTP.
type Server struct {
	cfg         config.ServerConfig
	registry    *registry.Registry
	invoker     *invocation.Invoker
	accounts    account.Store
	httpMetrics *metrics.HTTPMetrics
	limiter     *ratelimiter.RateLimiter
}

// NewServer creates a server bound to the given registry and invoker. The
// account store is taken from the registry. httpMetrics may be nil.
func NewServer(cfg config.ServerConfig, reg *registry.Registry, inv *invocation.Invoker, httpMetrics *metrics.HTTPMetrics) *Server {
	s := &Server{
		cfg:         cfg,
		registry:    reg,
		invoker:     inv,
		accounts:    reg.AccountStore(),
		httpMetrics: httpMetrics,
	}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		s.limiter = ratelimiter.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	return s
}

// Handler builds the route table. Routes use Go 1.22 method patterns.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	if s.cfg.Metrics.Enabled && metrics.IsEnabled() {
		mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /v1/services", s.handleListServices)

	mux.HandleFunc("POST /v1/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /v1/accounts", s.handleListAccounts)
	mux.HandleFunc("GET /v1/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PUT /v1/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /v1/accounts/{id}", s.handleDeleteAccount)
	mux.HandleFunc("GET /v1/accounts/{id}/addons", s.handleListAccountAddons)
	mux.HandleFunc("GET /v1/accounts/{id}/invocations", s.handleListAccountInvocations)

	mux.HandleFunc("POST /v1/resource-references", s.handleResolveResource)
	mux.HandleFunc("GET /v1/resource-references/{id}", s.handleGetResource)
	mux.HandleFunc("GET /v1/resource-references/{id}/addons", s.handleListResourceAddons)

	mux.HandleFunc("POST /v1/addons", s.handleCreateAddon)
	mux.HandleFunc("GET /v1/addons/{id}", s.handleGetAddon)
	mux.HandleFunc("PUT /v1/addons/{id}", s.handleUpdateAddon)
	mux.HandleFunc("DELETE /v1/addons/{id}", s.handleDeleteAddon)

	mux.HandleFunc("POST /v1/invocations", s.handleCreateInvocation)
	mux.HandleFunc("GET /v1/invocations/{id}", s.handleGetInvocation)

	var handler http.Handler = mux
	if s.limiter != nil {
		handler = withRateLimit(handler, s.limiter)
	}
	return withObservability(handler, s.httpMetrics)
}

// Serve runs the HTTP server until the context is cancelled, then shuts it
// down gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info("http server listening", zap.String("addr", s.cfg.ListenAddress))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()

	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	type serviceInfo struct {
		Name     string `json:"name"`
		Provider string `json:"provider"`
	}

	names := s.registry.ListServices()
	sort.Strings(names)

	out := make([]serviceInfo, 0, len(names))
	for _, name := range names {
		svc, err := s.registry.GetService(name)
		if err != nil {
			continue
		}
		out = append(out, serviceInfo{Name: svc.Name, Provider: string(svc.Provider)})
	}
	writeJSON(w, http.StatusOK, out)
}
