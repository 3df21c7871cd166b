package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/spf13/cobra"

	"parceldash/internal/logger"
	"parceldash/internal/server"
	"parceldash/internal/session"
	"parceldash/internal/source"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	hlog.SetLogger(logger.NewHertzAdapter(a.logger))
	a.logger.Info("parceldash starting", "version", version, "config", cfgFile, "source", a.cfg.Data.Source)

	// raw tables are loaded once and shared by every session
	start := time.Now()
	tables, err := source.Preload(ctx, a.loader)
	if err != nil {
		return fmt.Errorf("preload datasets: %w", err)
	}
	a.logger.Info("datasets ready", "elapsed", time.Since(start).Truncate(time.Millisecond).String())

	manager := session.NewManager(a.defaultVariant(), a.sessionOptions(tables))
	ready := func(context.Context) error {
		if len(tables) == 0 {
			return errors.New("no datasets loaded")
		}
		return nil
	}
	h := server.NewHandler(manager, a.mapPolicy(), ready)
	s := server.New(a.cfg.Server, a.cfg.ServerAddr(), h, a.logger)

	var metricsSrv *http.Server
	if a.metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.Observability.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.logger.Info("metrics listening", "addr", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	go func() {
		a.logger.Info("server listening", "addr", a.cfg.ServerAddr())
		if err := s.Run(); err != nil {
			a.logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown failed", "error", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("metrics shutdown failed", "error", err)
		}
	}
	a.logger.Info("server exited", "sessions", manager.Len())
	return nil
}
