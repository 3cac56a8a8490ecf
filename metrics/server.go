package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// MetricsPath is where Serve exposes the handler.
const MetricsPath = "/metrics"

// Server serves a metrics handler until its context ends.
type Server struct {
	srv      *http.Server
	listener net.Listener
}

// Listen binds addr (":9464", "127.0.0.1:0", ...) and mounts handler at MetricsPath.
func Listen(addr string, handler http.Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, handler)
	return &Server{
		srv:      &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: ln,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server, letting in-flight scrapes finish until ctx ends. Serve then
// returns nil.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Serve blocks until ctx is cancelled or Shutdown is called. Cancelling ctx shuts the
// server down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
