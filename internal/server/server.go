// Package server exposes the advisor over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/haskel/optfox/internal/advisor"
	"github.com/haskel/optfox/internal/config"
	"github.com/haskel/optfox/internal/server/middleware"
	"github.com/haskel/optfox/internal/store"
)

type Server struct {
	httpServer *http.Server
	advisor    *advisor.Advisor
	cache      *store.CacheStore
	dataset    *store.DatasetStore
	models     *store.ModelStore
	config     *config.Config
	logger     *slog.Logger
	version    string
}

func New(cfg *config.Config, adv *advisor.Advisor, cache *store.CacheStore, dataset *store.DatasetStore, models *store.ModelStore, logger *slog.Logger, version string) *Server {
	s := &Server{
		advisor: adv,
		cache:   cache,
		dataset: dataset,
		models:  models,
		config:  cfg,
		logger:  logger,
		version: version,
	}

	mux := s.setupRoutes()

	handler := middleware.Chain(
		mux,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.RateLimit(&middleware.RateLimitConfig{
			Enabled:           cfg.Server.RateLimit.Enabled,
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		}),
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
	)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: handler,
		// Evaluation benchmarks several tiers sequentially, so writes
		// can legitimately take minutes.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
