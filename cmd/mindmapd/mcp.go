package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/mindmapd/internal/config"
	"github.com/fyrsmithlabs/mindmapd/internal/mcp"
)

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
	cfg.Logging.Output.Stream = "stderr"

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	srv, err := mcp.NewServer(&mcp.Config{
		Name:    "mindmapd",
		Version: version,
		Logger:  a.logger.Underlying().Named("mcp"),
	}, a.svc)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
