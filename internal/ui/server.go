package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thep200/gitshare/api"
	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/pkg/log"
)

// Server represents the web view server
type Server struct {
	Logger   log.Logger
	Config   *cfg.Config
	GitShare *api.GitShareAPI
	server   *http.Server
	port     int
}

// NewServer creates a new view server
func NewServer(logger log.Logger, config *cfg.Config, gitshare *api.GitShareAPI, port int) (*Server, error) {
	return &Server{
		Logger:   logger,
		Config:   config,
		GitShare: gitshare,
		port:     port,
	}, nil
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	handler, err := NewHandler(s.Logger, s.Config, s.GitShare)
	if err != nil {
		return fmt.Errorf("failed to create view handler: %w", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting view server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down view server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
