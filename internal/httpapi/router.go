// Package httpapi serves the node status and metrics over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

// StatusSource provides the latest node snapshot; it must be safe for concurrent use
type StatusSource interface {
	Status() models.Status
}

// NewRouter builds the status routes
func NewRouter(src StatusSource, metrics http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", statusHandler(src)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}
	return r
}

func statusHandler(src StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(src.Status()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, "ok\n")
}

// Server runs the status API alongside the control loop
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer wraps the router with request logging
func NewServer(addr string, router http.Handler, accessLog io.Writer, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handlers.LoggingHandler(accessLog, router),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logging.Component(logger, "httpapi"),
	}
}

// Start listens in the background
func (s *Server) Start() {
	go func() {
		s.logger.Info("listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "error", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
