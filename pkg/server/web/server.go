// Package web provides the plumbing for the mimetpl RESTful API.
package web

import (
	"context"
	"errors"
	"expvar"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/inbucket/mimetpl/pkg/config"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Server defines an instance of the HTTP server.
type Server struct {
	config         config.Web
	globalShutdown chan bool
	server         *http.Server
	listener       net.Listener
	stopped        chan struct{}

	// Router sends incoming requests to the correct handler function.
	Router *mux.Router
}

// NewServer creates a Server whose handlers receive env through their Context.
func NewServer(conf config.Web, shutdownChan chan bool, env *Env) *Server {
	r := mux.NewRouter()
	r.Use(WithEnv(env))
	r.Path("/debug/vars").Handler(expvar.Handler()).Methods("GET")
	r.NotFoundHandler = noMatchHandler(http.StatusNotFound, "No route matches URI path")
	r.MethodNotAllowedHandler = noMatchHandler(http.StatusMethodNotAllowed,
		"Method not allowed for URI path")
	return &Server{
		config:         conf,
		globalShutdown: shutdownChan,
		stopped:        make(chan struct{}),
		Router:         r,
	}
}

// Handler returns the root handler, with request logging.
func (s *Server) Handler() http.Handler {
	return requestLoggingWrapper(s.Router)
}

// Start begins listening for HTTP requests, and blocks until ctx is done.
func (s *Server) Start(ctx context.Context, readyFunc func()) {
	defer close(s.stopped)
	s.server = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// We don't use ListenAndServe because it lacks a way to close the listener.
	slog := log.With().Str("module", "web").Str("phase", "startup").Str("addr", s.config.Addr).
		Logger()
	var err error
	s.listener, err = net.Listen("tcp", s.config.Addr)
	if err != nil {
		slog.Error().Err(err).Msg("HTTP failed to start TCP listener")
		s.emergencyShutdown()
		return
	}
	slog.Info().Msg("HTTP listening on TCP")
	if readyFunc != nil {
		readyFunc()
	}

	// Listener go routine.
	go s.serve(ctx)

	// Wait for shutdown.
	<-ctx.Done()
	log.Debug().Str("module", "web").Str("phase", "shutdown").Msg("HTTP server shutting down on request")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(sctx); err != nil {
		log.Error().Str("module", "web").Str("phase", "shutdown").Err(err).
			Msg("HTTP server did not shut down cleanly")
	}
}

// Done is closed once Start has returned and in flight requests have finished.
func (s *Server) Done() <-chan struct{} {
	return s.stopped
}

// serve begins serving HTTP requests.
func (s *Server) serve(ctx context.Context) {
	// server.Serve blocks until we shut down the server.
	err := s.server.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return
	}
	select {
	case <-ctx.Done():
		// Nop
	default:
		log.Error().Str("module", "web").Err(err).Msg("HTTP server failed")
		s.emergencyShutdown()
	}
}

func (s *Server) emergencyShutdown() {
	select {
	case <-s.globalShutdown:
	default:
		close(s.globalShutdown)
	}
}
