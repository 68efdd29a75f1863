package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	logger "log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/settler/internal/core/domain"
	"github.com/vietddude/settler/internal/settlement"
)

// Server exposes the storefront swap API over HTTP.
type Server struct {
	settlement *settlement.Service
	monitor    *Monitor
	server     *http.Server
	log        *logger.Logger
}

// NewServer creates the API server.
func NewServer(svc *settlement.Service, monitor *Monitor, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		settlement: svc,
		monitor:    monitor,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		log: logger.With("component", "api"),
	}

	mux.HandleFunc("/api/v1/quote", s.handleQuote)
	mux.HandleFunc("/api/v1/swap/complete", s.handleComplete)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("API server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleQuote serves the current swap quote. When the live price is
// unavailable the response carries the fallback price, an error field
// and a 500 status so clients can degrade gracefully.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := s.settlement.Quote(r.Context())
	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, resp)
}

// handleComplete verifies a reported payment and settles it.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req domain.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.settlement.Complete(r.Context(), &req)
	if err != nil {
		status := domain.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("Settlement failed", "error", err)
		}
		s.writeError(w, status, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())
	status := StatusHealthy

	// Aggregate status (worst case wins)
	for _, component := range report {
		if component.Status == StatusCritical {
			status = StatusCritical
			break
		}
		if component.Status == StatusDegraded {
			status = StatusDegraded
		}
	}

	code := http.StatusOK
	if status == StatusCritical {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]string{"status": string(status)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.monitor.CheckHealth(r.Context()))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
