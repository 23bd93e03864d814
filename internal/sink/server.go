package sink

import (
	"context"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the Prometheus scrape endpoint.
type Server struct {
	server *http.Server
	log    *slog.Logger
}

func NewServer(listen string, log *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		server: &http.Server{
			Addr:         listen,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving scrapes until Stop is called.
func (s *Server) Start() error {
	s.log.Info("Starting Prometheus endpoint", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the endpoint down, letting in-flight scrapes finish.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
