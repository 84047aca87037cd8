package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/edvin/modelhost/internal/api/handler"
	mw "github.com/edvin/modelhost/internal/api/middleware"
	"github.com/edvin/modelhost/internal/config"
	"github.com/edvin/modelhost/internal/deploy"
)

type Server struct {
	router chi.Router
	logger zerolog.Logger
	ctrl   *deploy.Controller
	cfg    *config.Config
}

func NewServer(logger zerolog.Logger, ctrl *deploy.Controller, cfg *config.Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		ctrl:   ctrl,
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		deployment := handler.NewDeployment(s.ctrl)
		r.Get("/deployments", deployment.List)
		r.Post("/deployments", deployment.Create)
		r.Get("/deployments/{id}", deployment.Get)
		r.Delete("/deployments/{id}", deployment.Delete)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleReadyz reports host capacity alongside readiness. The service holds
// all state in memory, so readiness never fails once the listener is up; the
// GPU and memory figures are advisory for operators and schedulers.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{
		"status":      "ok",
		"gpus":        s.ctrl.GPUCount(r.Context()),
		"deployments": s.ctrl.RegisteredCount(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		checks["host_memory_free_bytes"] = vm.Available
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
