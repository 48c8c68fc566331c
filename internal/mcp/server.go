package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mindmapd/internal/mindmap"
)

// Server is an MCP server over the mind map service.
type Server struct {
	mcp     *mcp.Server
	svc     *mindmap.Service
	metrics *Metrics
	logger  *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the implementation name (default: "mindmapd")
	Name string

	// Version is the implementation version (default: "dev")
	Version string

	Logger *zap.Logger
}

// DefaultConfig returns the stock settings.
func DefaultConfig() *Config {
	return &Config{
		Name:    "mindmapd",
		Version: "dev",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates the server and registers its tools.
func NewServer(cfg *Config, svc *mindmap.Service) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if svc == nil {
		return nil, fmt.Errorf("mindmap service is required")
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		svc:     svc,
		metrics: NewMetrics(cfg.Logger),
		logger:  cfg.Logger,
	}
	s.registerTools()
	return s, nil
}

// Run serves on the stdio transport until ctx is done or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// MCPServer returns the underlying SDK server, for in-memory transports.
func (s *Server) MCPServer() *mcp.Server { return s.mcp }
