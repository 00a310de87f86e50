package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rook-computer/cardkit/internal/logging"
)

// HTTPServer serves the dev control API until Stop or until the context
// passed to Start is cancelled.
type HTTPServer struct {
	Addr    string
	Handler http.Handler
	Logger  logging.Logger

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	closed bool
}

func NewHTTPServer(addr string, handler http.Handler, logger logging.Logger) *HTTPServer {
	return &HTTPServer{Addr: addr, Handler: handler, Logger: logging.OrNoop(logger)}
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}
	logger := logging.OrNoop(s.Logger)

	addr := s.Addr
	if addr == "" {
		addr = ":8080"
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	logger.Infof("web", "listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv := s.srv
	go func() {
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		logger.Errorf("web", "serve: %v", err)
	}()

	return nil
}

// ListenAddr returns the bound address, useful when Addr asked for port 0.
func (s *HTTPServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	ln := s.ln
	s.srv = nil
	s.ln = nil
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
