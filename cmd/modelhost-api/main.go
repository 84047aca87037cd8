package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/modelhost/internal/api"
	"github.com/edvin/modelhost/internal/config"
	"github.com/edvin/modelhost/internal/deploy"
	"github.com/edvin/modelhost/internal/gpu"
	"github.com/edvin/modelhost/internal/logging"
	"github.com/edvin/modelhost/internal/proc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.LogDir).Msg("failed to create deployment log directory")
	}

	prober := gpu.Chain{gpu.NewNVMLProber(logger), gpu.NewSMIProber(logger), gpu.Noop{}}

	registry := deploy.NewRegistry()
	launcher := proc.NewCommandLauncher(logger, cfg.CommandTemplate)
	ctrl := deploy.NewController(logger, cfg, registry, prober, launcher, proc.SysControl{})

	srv := api.NewServer(logger, ctrl, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPListenAddr).
			Int("gpus", ctrl.GPUCount(context.Background())).
			Msg("starting modelhost API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Deployment records live in memory only; serving processes launched in
	// their own sessions keep running across a restart and must be cleaned up
	// out of band.
	logger.Info().Msg("shutting down server, launched processes are left running")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	ctrl.WaitMonitors()
}
