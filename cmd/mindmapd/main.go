// Package main is the mindmapd daemon: the HTTP API by default, or an MCP
// server on stdio.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"

	configPath string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mindmapd",
		Short: "Generate and serve LLM mind maps",
		Long: `mindmapd turns free text into hierarchical mind maps using a language model,
stores them, and serves them for interactive viewing.

Configuration is read from ~/.config/mindmapd/config.yaml (or --config) and
MINDMAPD_* environment variables.`,
		SilenceUsage: true,
		// Bare "mindmapd" runs the server.
		RunE: runServe,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/mindmapd/config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server on stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the
mindmap_generate, mindmap_get, mindmap_layout and mindmap_search tools.
Logs go to stderr.`,
		RunE: runMCP,
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd)
		},
	})
	return root
}

func printVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "mindmapd by Fyrsmith Labs\n")
	fmt.Fprintf(out, "Version:    %s\n", version)
	fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
	fmt.Fprintf(out, "Build Date: %s\n", buildDate)
}
