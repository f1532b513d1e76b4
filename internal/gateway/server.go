// Package gateway provides the HTTP server exposing the interpreter
// over a REST API, a websocket stream, health and metrics endpoints.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apiv1 "github.com/bitsnaps/open-creator/api/v1"
	"github.com/bitsnaps/open-creator/internal/config"
	"github.com/bitsnaps/open-creator/internal/gateway/handlers"
	"github.com/bitsnaps/open-creator/internal/gateway/middleware"
	"github.com/bitsnaps/open-creator/internal/metrics"
	"github.com/bitsnaps/open-creator/internal/session"
	"github.com/bitsnaps/open-creator/internal/skills"
	"github.com/bitsnaps/open-creator/internal/storage"
	"github.com/bitsnaps/open-creator/internal/tools"
	"github.com/bitsnaps/open-creator/pkg/logger"
)

// Deps bundles the services the gateway serves. Nil members disable
// the endpoints that need them.
type Deps struct {
	Sessions *session.Manager
	DB       *storage.DB
	Tools    *tools.Registry
	Skills   *skills.Store
	Metrics  *metrics.Collector
	Version  string
}

// Server is the HTTP gateway.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	deps       Deps
}

// NewServer creates the gateway with all routes registered.
func NewServer(cfg *config.Config, deps Deps) *Server {
	router := mux.NewRouter()
	// Attached here rather than around the mux so the matched route
	// template is visible when the request is recorded.
	router.Use(middleware.Metrics(deps.Metrics))

	var sessionCount func() int
	if deps.Sessions != nil {
		sessionCount = deps.Sessions.Count
	}
	router.HandleFunc("/healthz", handlers.HealthHandler(deps.Version, sessionCount)).Methods(http.MethodGet)

	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	apiv1.NewRouter(apiv1.RouterDeps{
		Sessions: deps.Sessions,
		DB:       deps.DB,
		Tools:    deps.Tools,
		Skills:   deps.Skills,
	}).RegisterRoutes(router)

	handler := middleware.Recovery(middleware.Logging(router))

	httpServer := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     handler,
		ReadTimeout: 60 * time.Second,
		// No write timeout: websocket streams stay open for the life
		// of the connection.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		config:     cfg,
		deps:       deps,
	}
}

// Start begins serving and blocks until the listener fails or the
// server is shut down.
func (s *Server) Start() error {
	handlers.InitStartTime()
	logger.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP gateway")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting up to five seconds
// for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info().Msg("shutting down HTTP gateway")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// Router returns the underlying router, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}
