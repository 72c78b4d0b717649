// internal/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"review-responder/internal/common/config"
	"review-responder/internal/common/logger"
)

const DefaultMaxBodyBytes int64 = 64 << 10

type Options struct {
	Generator      Generator
	Readiness      ReadinessChecker
	Static         fs.FS
	MaxBodyBytes   int64
	MetricsEnabled bool
	Logger         logger.Logger
}

// NewRouter wires the public endpoints behind request ID, access log and
// panic recovery middleware.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()
	mux.Handle("/api/responder", &responderHandler{
		generator:    opts.Generator,
		maxBodyBytes: maxBody,
		logger:       log,
	})
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(opts.Readiness, log))
	if opts.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	if opts.Static != nil {
		mux.Handle("/", http.FileServer(http.FS(opts.Static)))
	}

	return chain(mux, requestID, recoverer(log), accessLog(log))
}

type Server struct {
	http   *http.Server
	logger logger.Logger
}

func NewServer(cfg config.ServerConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       config.GetDuration(cfg.ReadTimeout),
			WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
		},
		logger: log,
	}
}

// Start blocks until the server stops. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
