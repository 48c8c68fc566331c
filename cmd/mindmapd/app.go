package main

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mindmapd/internal/config"
	"github.com/fyrsmithlabs/mindmapd/internal/events"
	"github.com/fyrsmithlabs/mindmapd/internal/generator"
	"github.com/fyrsmithlabs/mindmapd/internal/interaction"
	"github.com/fyrsmithlabs/mindmapd/internal/layout"
	"github.com/fyrsmithlabs/mindmapd/internal/logging"
	"github.com/fyrsmithlabs/mindmapd/internal/mindmap"
	"github.com/fyrsmithlabs/mindmapd/internal/secrets"
	"github.com/fyrsmithlabs/mindmapd/internal/store"
	"github.com/fyrsmithlabs/mindmapd/internal/telemetry"
)

// app holds everything both server modes share.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	store     store.Store
	events    events.Publisher
	sessions  *interaction.Manager
	svc       *mindmap.Service
}

// newApp wires the service from cfg. Close must be called on success.
func newApp(ctx context.Context, cfg *config.Config) (a *app, err error) {
	a = &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	// Telemetry first so the logger can bridge to it.
	a.telemetry, err = telemetry.New(ctx, &cfg.Telemetry, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	a.logger, err = logging.NewLogger(&cfg.Logging, global.GetLoggerProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := a.logger.Underlying()

	scrubber, err := secrets.New(&cfg.Secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secret scrubber: %w", err)
	}

	gen, err := generator.New(cfg.Generator.ToGenerator(), scrubber, log.Named("generator"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	a.store, err = store.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a.events, err = events.New(cfg.Events, log.Named("events"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}

	engine, err := layout.New(&cfg.Layout)
	if err != nil {
		return nil, err
	}

	a.sessions = interaction.NewManager(&cfg.Interaction, log.Named("sessions"))

	a.svc, err = mindmap.NewService(mindmap.Dependencies{
		Store:     a.store,
		Generator: gen,
		Layout:    engine,
		Sessions:  a.sessions,
		Events:    a.events,
		Logger:    log.Named("mindmap"),
	})
	if err != nil {
		return nil, err
	}

	log.Info("mindmapd initialized",
		zap.String("version", version),
		zap.String("generator", cfg.Generator.Provider),
		zap.String("model", cfg.Generator.Model),
		zap.String("storage", cfg.Storage.Provider),
		zap.Bool("events", cfg.Events.NATSURL != ""),
		zap.Bool("telemetry", cfg.Telemetry.Enabled))
	return a, nil
}

// Close releases resources in reverse order of creation.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}
