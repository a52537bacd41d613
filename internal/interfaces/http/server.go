package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/quality/tracker"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/telemetry"
)

// Server is the read-only monitoring HTTP server: health counters,
// Prometheus metrics, and quality-log aggregates. It never mutates
// engine state.
type Server struct {
	router *mux.Router
	server *http.Server
	config ServerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	port := 8080
	if portStr := os.Getenv("HTTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	return ServerConfig{
		Host:         "127.0.0.1", // Local-only by default
		Port:         port,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates the monitoring server wired to the tracker and the
// global metrics registry
func NewServer(config ServerConfig, qt *tracker.Tracker) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", config.Port, err)
	}
	listener.Close()

	router := mux.NewRouter()
	handlers := NewHandlers(qt)

	router.HandleFunc("/health", handlers.Health).Methods("GET")
	router.HandleFunc("/stats", handlers.Stats).Methods("GET")
	router.HandleFunc("/effectiveness", handlers.Effectiveness).Methods("GET")
	router.Handle("/metrics", telemetry.GetMetrics().MetricsHandler()).Methods("GET")

	server := &Server{
		router: router,
		config: config,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}

	return server, nil
}

// Start begins serving; blocks until the server stops
func (s *Server) Start() error {
	log.Info().
		Str("addr", s.server.Addr).
		Msg("Monitoring server listening")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("monitoring server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Monitoring server shutting down")
	return s.server.Shutdown(ctx)
}
