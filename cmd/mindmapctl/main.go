// Package main implements mindmapctl, a command-line client for the mindmapd
// HTTP API.
package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		serverURL string
		timeout   time.Duration
	)

	root := &cobra.Command{
		Use:   "mindmapctl",
		Short: "CLI for the mindmapd HTTP server",
		Long: `mindmapctl generates, shows and searches mind maps on a running mindmapd
server.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "mindmapd server URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "request timeout")

	client := func() *Client { return NewClient(serverURL, timeout) }

	root.AddCommand(newGenerateCmd(client))
	root.AddCommand(newShowCmd(client))
	root.AddCommand(newSearchCmd(client))
	root.AddCommand(newHealthCmd(client))
	return root
}
