package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/mindmapd/internal/generator"
	"github.com/fyrsmithlabs/mindmapd/internal/mindmap"
	"github.com/fyrsmithlabs/mindmapd/internal/outline"
	"github.com/fyrsmithlabs/mindmapd/internal/store"
)

const nested = `{"nodes":[{"title":"Biology","description":"life","children":[
	{"title":"Cells","children":[{"title":"Membrane"}]},
	{"title":"Genetics"}
]}]}`

func newTestServer(t *testing.T, raw string) *Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc, err := mindmap.NewService(mindmap.Dependencies{
		Store:     store.NewMemory(),
		Generator: generator.NewStatic(raw),
		Logger:    logger,
	})
	require.NoError(t, err)

	s, err := NewServer(&Config{Name: "mindmapd", Version: "test", Logger: logger}, svc)
	require.NoError(t, err)
	return s
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.Error(t, err)
}

func TestGenerateAndGet(t *testing.T) {
	s := newTestServer(t, nested)
	ctx := context.Background()

	res, out, err := s.generate(ctx, nil, generateInput{Title: "Bio", Content: "notes", MaxDepth: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "Bio", out.Title)
	assert.Equal(t, 5, out.NodeCount)
	assert.Equal(t, 3, out.Depth)
	assert.Equal(t, 5, out.MaxDepth)
	assert.Equal(t, "- Biology: life\n  - Cells\n    - Membrane\n  - Genetics", out.Outline)
	assert.Contains(t, textOf(t, res), out.ID)

	res, got, err := s.get(ctx, nil, getInput{ID: out.ID})
	require.NoError(t, err)
	assert.Equal(t, out, got)
	assert.Contains(t, textOf(t, res), "- Biology: life")
}

func TestGenerate_DefaultDepth(t *testing.T) {
	s := newTestServer(t, nested)
	_, out, err := s.generate(context.Background(), nil, generateInput{Title: "Bio", Content: "notes"})
	require.NoError(t, err)
	assert.Equal(t, outline.DefaultSettings().MaxDepth, out.MaxDepth)
}

func TestGenerate_MaxDepthBoundsOutline(t *testing.T) {
	s := newTestServer(t, nested)
	_, out, err := s.generate(context.Background(), nil, generateInput{Title: "Bio", Content: "notes", MaxDepth: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Depth)
	assert.Equal(t, 3, out.NodeCount)
	assert.Equal(t, "- Biology: life\n  - Cells\n  - Genetics", out.Outline)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		in    generateInput
		isErr error
	}{
		{"missing title", nested, generateInput{Content: "x"}, mindmap.ErrValidation},
		{"depth too large", nested, generateInput{Title: "T", Content: "x", MaxDepth: 11}, mindmap.ErrValidation},
		{"model output unusable", "not json", generateInput{Title: "T", Content: "x"}, mindmap.ErrGeneration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.raw)
			_, _, err := s.generate(context.Background(), nil, tt.in)
			assert.ErrorIs(t, err, tt.isErr)
		})
	}
}

func TestGet_Errors(t *testing.T) {
	s := newTestServer(t, nested)

	_, _, err := s.get(context.Background(), nil, getInput{})
	assert.Error(t, err)

	_, _, err = s.get(context.Background(), nil, getInput{ID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLayout(t *testing.T) {
	s := newTestServer(t, nested)
	ctx := context.Background()
	_, created, err := s.generate(ctx, nil, generateInput{Title: "Bio", Content: "notes"})
	require.NoError(t, err)

	res, out, err := s.layout(ctx, nil, layoutInput{ID: created.ID})
	require.NoError(t, err)
	require.Len(t, out.Nodes, 5)
	assert.Equal(t, "node-0-0", out.Nodes[0].ID)
	assert.Equal(t, 0, out.Nodes[0].Tier)
	assert.Equal(t, "Laid out 5 nodes", textOf(t, res))

	_, _, err = s.layout(ctx, nil, layoutInput{ID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, nested)
	ctx := context.Background()
	for _, title := range []string{"Photosynthesis", "Cell Biology", "Astronomy"} {
		_, _, err := s.generate(ctx, nil, generateInput{Title: title, Content: "notes on " + title})
		require.NoError(t, err)
	}

	_, out, err := s.search(ctx, nil, searchInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)

	res, out, err := s.search(ctx, nil, searchInput{Query: "astro"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Astronomy", out.Results[0].Title)
	assert.Contains(t, textOf(t, res), "Found 1 mind maps")

	_, out, err = s.search(ctx, nil, searchInput{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
}

func TestCategorizeError(t *testing.T) {
	assert.Equal(t, "validation_error", categorizeError(mindmap.ErrValidation))
	assert.Equal(t, "not_found", categorizeError(store.ErrNotFound))
	assert.Equal(t, "timeout", categorizeError(context.DeadlineExceeded))
	assert.Equal(t, "internal_error", categorizeError(errors.New("boom")))
}

func TestServer_OverTransport(t *testing.T) {
	s := newTestServer(t, nested)
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := s.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"mindmap_generate", "mindmap_get", "mindmap_layout", "mindmap_search"}, names)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "mindmap_generate",
		Arguments: map[string]any{"title": "Bio", "content": "notes"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), "Created mind map")

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "mindmap_get",
		Arguments: map[string]any{"id": "missing"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
