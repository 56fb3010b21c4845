// Package httpapi exposes the timer service over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/countdown/internal/logging"
	"github.com/dmitrijs2005/countdown/internal/server/models"
)

// TimerService is the part of services.TimerService the handlers use.
type TimerService interface {
	Create(ctx context.Context, id, name string, days int) (*models.Timer, error)
	Reset(ctx context.Context, id string) (*models.Timer, error)
	List(ctx context.Context) ([]models.Timer, error)
	Initialize(ctx context.Context) error
}

type HTTPServer struct {
	address   string
	timers    TimerService
	logger    logging.Logger
	jwtSecret []byte
	timeout   time.Duration
	mux       *http.ServeMux
}

// NewHTTPServer builds the server and registers its routes. An empty
// secretKey leaves the mutating routes unauthenticated.
func NewHTTPServer(a string, l logging.Logger, ts TimerService, secretKey string, timeout time.Duration) *HTTPServer {
	s := &HTTPServer{
		address:   a,
		timers:    ts,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
		timeout:   timeout,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *HTTPServer) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /timers", s.handleList)

	s.mux.Handle("POST /init", s.requireToken(http.HandlerFunc(s.handleInit)))
	s.mux.Handle("POST /timers", s.requireToken(http.HandlerFunc(s.handleCreate)))
	s.mux.Handle("POST /timers/{id}/reset", s.requireToken(http.HandlerFunc(s.handleReset)))

	// routes kept from the first version of the API
	s.mux.Handle("POST /timers/create", s.requireToken(http.HandlerFunc(s.handleCreate)))
	s.mux.Handle("POST /timers/reset", s.requireToken(http.HandlerFunc(s.handleReset)))
}

// Handler returns the routed handler wrapped in request logging.
func (s *HTTPServer) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.timeout,
		ReadHeaderTimeout: s.timeout,
		WriteTimeout:      s.timeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
