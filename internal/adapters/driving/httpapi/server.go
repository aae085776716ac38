package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// maxBodyBytes bounds request bodies; report text arrives inline.
const maxBodyBytes = 32 << 20

// Server is the comply HTTP API server.
type Server struct {
	mu       sync.Mutex
	ports    *Ports
	addr     string
	handler  http.Handler
	server   *http.Server
	listener net.Listener
}

// NewServer creates an API server that will listen on addr.
func NewServer(ports *Ports, addr string) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		addr:  addr,
	}
	s.handler = withRequestLog(s.routes())
	return s, nil
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/frameworks", s.handleFrameworks)
	mux.HandleFunc("POST /api/analyze/{framework}", s.handleAnalyze)

	if s.ports.Advisor != nil {
		mux.HandleFunc("POST /api/analyze/{framework}/improve", s.handleImprove)
		mux.HandleFunc("POST /api/analyze/{framework}/draft", s.handleDraft)
		mux.HandleFunc("POST /api/analyze/summary", s.handleSummary)
	}

	if s.ports.Corpus != nil {
		mux.HandleFunc("POST /api/embed", s.handleEmbed)
		mux.HandleFunc("GET /api/documents", s.handleDocuments)
		mux.HandleFunc("POST /api/chat", s.handleChat)
	}

	return mux
}

// Start listens on the configured address and serves in the background.
// An address with port 0 picks a free port; see Addr.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = s.server.Serve(listener)
	}()

	return nil
}

// Addr returns the address the server is listening on, or the configured
// address before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop shuts the server down, waiting up to five seconds for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	err = srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
