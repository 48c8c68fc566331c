package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/mindmapd/internal/generator"
	mhttp "github.com/fyrsmithlabs/mindmapd/internal/http"
	"github.com/fyrsmithlabs/mindmapd/internal/mindmap"
	"github.com/fyrsmithlabs/mindmapd/internal/render"
	"github.com/fyrsmithlabs/mindmapd/internal/store"
)

const staticOutline = `{"nodes":[{"title":"Biology","description":"life","children":[{"title":"Cells"},{"title":"Genetics"}]}]}`

func startServer(t *testing.T, raw string) *httptest.Server {
	t.Helper()
	color.NoColor = true

	logger := zaptest.NewLogger(t)
	svc, err := mindmap.NewService(mindmap.Dependencies{
		Store:     store.NewMemory(),
		Generator: generator.NewStatic(raw),
		Logger:    logger,
	})
	require.NoError(t, err)
	srv, err := mhttp.NewServer(svc, logger, &mhttp.Config{Version: "test", Render: render.DefaultOptions()})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func run(t *testing.T, ts *httptest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", ts.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestGenerateShowSearch(t *testing.T) {
	ts := startServer(t, staticOutline)

	notes := writeFile(t, "notes.txt", "Cells divide. Genes encode proteins.")
	out, err := run(t, ts, "", "generate", "--title", "Bio Notes", "--file", notes)
	require.NoError(t, err)
	assert.Contains(t, out, "Bio Notes")
	assert.Contains(t, out, "● Biology - life")
	assert.Contains(t, out, "  - Cells")

	out, err = run(t, ts, "", "search", "bio")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	id := strings.Fields(lines[0])[0]

	out, err = run(t, ts, "", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "  - Genetics")

	out, err = run(t, ts, "", "search", "zzz")
	require.NoError(t, err)
	assert.Equal(t, "No mind maps found\n", out)
}

func TestGenerate_FromStdinWithSettings(t *testing.T) {
	ts := startServer(t, staticOutline)
	settings := writeFile(t, "settings.toml", `
max_depth = 5

[style.central_node]
color = "#000000"
`)

	out, err := run(t, ts, "piped notes", "generate", "--title", "Piped", "--file", "-", "--settings", settings)
	require.NoError(t, err)
	assert.Contains(t, out, "Piped")
}

func TestGenerate_Errors(t *testing.T) {
	ts := startServer(t, "no outline here")

	_, err := run(t, ts, "", "generate", "--title", "T", "--file", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content is empty")

	notes := writeFile(t, "notes.txt", "text")
	_, err = run(t, ts, "", "generate", "--title", "T", "--file", notes)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "Failed to generate mind map", apiErr.Kind)

	_, err = run(t, ts, "", "generate", "--file", notes)
	assert.Error(t, err)
}

func TestShow_NotFound(t *testing.T) {
	ts := startServer(t, staticOutline)

	_, err := run(t, ts, "", "show", "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "Mind map not found")
}

func TestHealth(t *testing.T) {
	ts := startServer(t, staticOutline)

	out, err := run(t, ts, "", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Server Status: ok")
	assert.Contains(t, out, "Version:       test")
}

func TestLoadSettings(t *testing.T) {
	good := writeFile(t, "good.toml", "max_depth = 2\n[style.primary_nodes]\ncolor = \"#111111\"\n")
	s, err := loadSettings(good)
	require.NoError(t, err)
	assert.Equal(t, 2, s.MaxDepth)
	assert.Equal(t, "#111111", s.Style.PrimaryNodes.Color)

	unknown := writeFile(t, "unknown.toml", "max_depth = 2\ndepth = 3\n")
	_, err = loadSettings(unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depth")

	broken := writeFile(t, "broken.toml", "max_depth = \n")
	_, err = loadSettings(broken)
	assert.Error(t, err)
}
