// Gói relay là backend mỏng đổi OAuth code lấy access token cho client.
// Client không bao giờ giữ client secret; việc đổi code diễn ra
// server-to-server tại đây rồi token được trả về cho client.

package relay

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/pkg/log"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

type Server struct {
	Logger   log.Logger
	Config   *cfg.Config
	Endpoint oauth2.Endpoint
	server   *http.Server
}

func NewServer(logger log.Logger, config *cfg.Config) (*Server, error) {
	return &Server{
		Logger:   logger,
		Config:   config,
		Endpoint: githuboauth.Endpoint,
	}, nil
}

// Handler dựng router cho relay
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/", s.getRoot)
	r.Get("/health", s.getHealth)
	r.Post("/exchange-code", s.exchangeCode)

	return r
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	port := s.Config.Relay.Port
	if port <= 0 {
		port = 3000
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting relay server on port %d", port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down relay server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requestLogger log mỗi request đi qua relay
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Logger.Info(r.Context(), "%s %s (%v)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
