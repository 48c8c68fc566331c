package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
	"github.com/fyrsmithlabs/mindmapd/internal/mindmap"
	"github.com/fyrsmithlabs/mindmapd/internal/outline"
	"github.com/fyrsmithlabs/mindmapd/internal/store"
)

const defaultSearchLimit = 10

type generateInput struct {
	Title    string `json:"title" jsonschema:"required,Title of the mind map"`
	Content  string `json:"content" jsonschema:"required,Text to turn into a mind map"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"Maximum outline depth 1-10 (default: 3)"`
}

type mindMapOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	NodeCount int    `json:"node_count"`
	Depth     int    `json:"depth"`
	MaxDepth  int    `json:"max_depth"`
	// Outline is the tree as an indented bullet list.
	Outline string `json:"outline"`
}

type getInput struct {
	ID string `json:"id" jsonschema:"required,Mind map ID"`
}

type layoutInput struct {
	ID string `json:"id" jsonschema:"required,Mind map ID"`
}

type layoutOutput struct {
	ID    string         `json:"id"`
	Nodes []diagram.Node `json:"nodes"`
}

type searchInput struct {
	Query string `json:"query,omitempty" jsonschema:"Fuzzy title query; empty lists the newest mind maps"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results (default: 10)"`
}

type summaryOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type searchOutput struct {
	Results []summaryOutput `json:"results"`
	Count   int             `json:"count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mindmap_generate",
		Description: "Generate a hierarchical mind map from a title and a body of text, store it and return its outline. Generation calls a language model and can take several seconds.",
	}, instrument(s, "mindmap_generate", s.generate))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mindmap_get",
		Description: "Fetch a stored mind map by ID and return its outline.",
	}, instrument(s, "mindmap_get", s.get))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mindmap_layout",
		Description: "Return the positioned diagram nodes of a stored mind map, with tier and color per node.",
	}, instrument(s, "mindmap_layout", s.layout))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mindmap_search",
		Description: "List stored mind maps, newest first, or fuzzy-match them by title.",
	}, instrument(s, "mindmap_search", s.search))
}

// instrument records metrics and logs failures for a tool handler.
func instrument[In, Out any](s *Server, name string, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		start := time.Now()
		res, out, err := h(ctx, req, in)
		s.metrics.RecordInvocation(ctx, name, time.Since(start), err)
		if err != nil {
			s.logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
		}
		return res, out, err
	}
}

func (s *Server) generate(ctx context.Context, _ *mcp.CallToolRequest, in generateInput) (*mcp.CallToolResult, mindMapOutput, error) {
	req := mindmap.CreateRequest{Title: in.Title, Content: in.Content}
	if in.MaxDepth != 0 {
		req.Settings = &outline.Settings{MaxDepth: in.MaxDepth}
	}

	rec, err := s.svc.Create(ctx, req)
	if err != nil {
		return nil, mindMapOutput{}, err
	}
	out := toOutput(rec)
	return textResult(fmt.Sprintf("Created mind map %s (%d nodes)\n\n%s", out.ID, out.NodeCount, out.Outline)), out, nil
}

func (s *Server) get(ctx context.Context, _ *mcp.CallToolRequest, in getInput) (*mcp.CallToolResult, mindMapOutput, error) {
	if in.ID == "" {
		return nil, mindMapOutput{}, fmt.Errorf("id is required")
	}
	rec, err := s.svc.Get(ctx, in.ID)
	if err != nil {
		return nil, mindMapOutput{}, err
	}
	out := toOutput(rec)
	return textResult(fmt.Sprintf("%s\n\n%s", out.Title, out.Outline)), out, nil
}

func (s *Server) layout(ctx context.Context, _ *mcp.CallToolRequest, in layoutInput) (*mcp.CallToolResult, layoutOutput, error) {
	if in.ID == "" {
		return nil, layoutOutput{}, fmt.Errorf("id is required")
	}
	nodes, _, err := s.svc.Layout(ctx, in.ID)
	if err != nil {
		return nil, layoutOutput{}, err
	}
	return textResult(fmt.Sprintf("Laid out %d nodes", len(nodes))), layoutOutput{ID: in.ID, Nodes: nodes}, nil
}

func (s *Server) search(ctx context.Context, _ *mcp.CallToolRequest, in searchInput) (*mcp.CallToolResult, searchOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	summaries, err := s.svc.Search(ctx, in.Query, limit)
	if err != nil {
		return nil, searchOutput{}, err
	}

	out := searchOutput{Results: make([]summaryOutput, 0, len(summaries))}
	var b strings.Builder
	for _, sum := range summaries {
		out.Results = append(out.Results, summaryOutput{
			ID:        sum.ID,
			Title:     sum.Title,
			CreatedAt: sum.CreatedAt.Format(time.RFC3339),
		})
		fmt.Fprintf(&b, "\n%s  %s", sum.ID, sum.Title)
	}
	out.Count = len(out.Results)
	return textResult(fmt.Sprintf("Found %d mind maps%s", out.Count, b.String())), out, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toOutput(rec *store.Record) mindMapOutput {
	out := mindMapOutput{
		ID:        rec.ID,
		Title:     rec.Title,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		MaxDepth:  rec.Settings.MaxDepth,
		Outline:   outlineText(rec.Structure),
	}
	if root, ok := rec.Structure.Root(); ok {
		out.NodeCount = root.Count()
		out.Depth = root.Depth()
	}
	return out
}

// outlineText renders the tree as "- title: description" lines, two spaces
// of indent per tier.
func outlineText(s *outline.Structure) string {
	var b strings.Builder
	var walk func(n *outline.Node, depth int)
	walk = func(n *outline.Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		b.WriteString(n.Title)
		if n.Description != "" {
			b.WriteString(": ")
			b.WriteString(n.Description)
		}
		b.WriteByte('\n')
		for i := range n.Children {
			walk(&n.Children[i], depth+1)
		}
	}
	if root, ok := s.Root(); ok {
		walk(root, 0)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
