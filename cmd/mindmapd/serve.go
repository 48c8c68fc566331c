package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mindmapd/internal/config"
	mhttp "github.com/fyrsmithlabs/mindmapd/internal/http"
	"github.com/fyrsmithlabs/mindmapd/internal/render"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		_ = a.Close(shutdownCtx)
	}()
	log := a.logger.Underlying()

	renderOpts := render.DefaultOptions()
	renderOpts.MaxPixels = cfg.Server.RenderMaxPixels

	srv, err := mhttp.NewServer(a.svc, log.Named("http"), &mhttp.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Version: version,
		Render:  renderOpts,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	go a.sessions.Run(ctx, cfg.Server.SweepInterval.Duration())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
		return err
	}
	log.Info("server shutdown complete")
	return nil
}
