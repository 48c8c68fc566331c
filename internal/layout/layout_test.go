package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
	"github.com/fyrsmithlabs/mindmapd/internal/outline"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(nil)
	require.NoError(t, err)
	return e
}

func leaves(titles ...string) []outline.Node {
	nodes := make([]outline.Node, len(titles))
	for i, title := range titles {
		nodes[i] = outline.Node{Title: title}
	}
	return nodes
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		e := newEngine(t)
		assert.Equal(t, 300.0, e.cfg.HorizontalSpacing)
		assert.Equal(t, 120.0, e.cfg.VerticalSpacing)
	})

	t.Run("rejects bad spacing", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.VerticalSpacing = 0
		_, err := New(cfg)
		assert.Error(t, err)
	})

	t.Run("rejects empty palette", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Palette = nil
		_, err := New(cfg)
		assert.Error(t, err)
	})
}

func TestLayout_RootWithThreeChildren(t *testing.T) {
	e := newEngine(t)
	s := &outline.Structure{Nodes: []outline.Node{{
		Title:    "Root",
		Children: leaves("A", "B", "C"),
	}}}

	nodes, edges := e.Layout(s)
	require.Len(t, nodes, 4)
	assert.Empty(t, edges)

	assert.Equal(t, diagram.Node{
		ID: "node-0-0", Position: diagram.Position{X: 0, Y: 0}, Tier: 0, Color: "#1a1a1a", Label: "Root",
	}, nodes[0])

	wantY := []float64{-120, 0, 120}
	wantColor := []string{"#6366f1", "#ef4444", "#10b981"}
	for i, n := range nodes[1:] {
		assert.Equal(t, diagram.NodeID(1, i), n.ID)
		assert.Equal(t, 1, n.Tier)
		assert.Equal(t, 300.0, n.Position.X)
		assert.Equal(t, wantY[i], n.Position.Y)
		assert.Equal(t, wantColor[i], n.Color)
	}
	assert.Equal(t, []string{"A", "B", "C"}, []string{nodes[1].Label, nodes[2].Label, nodes[3].Label})
}

func TestLayout_PaletteCycles(t *testing.T) {
	e := newEngine(t)
	root := outline.Node{Title: "Root", Children: leaves("1", "2", "3", "4", "5", "6")}

	nodes, _ := e.LayoutNode(&root)
	require.Len(t, nodes, 7)
	assert.Equal(t, "#6366f1", nodes[5].Color)
	assert.Equal(t, "#ef4444", nodes[6].Color)
	assert.Equal(t, -300.0, nodes[1].Position.Y)
	assert.Equal(t, 300.0, nodes[6].Position.Y)
}

func TestLayout_DeepTiers(t *testing.T) {
	e := newEngine(t)
	root := outline.Node{
		Title: "Root",
		Children: []outline.Node{
			{Title: "A", Children: leaves("A1", "A2")},
			{Title: "B", Children: []outline.Node{
				{Title: "B1", Description: "detail", Children: leaves("B1a")},
			}},
		},
	}

	nodes, edges := e.LayoutNode(&root)
	assert.Empty(t, edges)

	labels := make([]string, len(nodes))
	for i, n := range nodes {
		labels[i] = n.Label
	}
	assert.Equal(t, []string{"Root", "A", "A1", "A2", "B", "B1", "B1a"}, labels)

	byLabel := map[string]diagram.Node{}
	for _, n := range nodes {
		byLabel[n.Label] = n
	}

	assert.Equal(t, diagram.Position{X: 600, Y: 0}, byLabel["A1"].Position)
	assert.Equal(t, diagram.Position{X: 600, Y: 120}, byLabel["A2"].Position)
	assert.Equal(t, diagram.Position{X: 600, Y: 0}, byLabel["B1"].Position)
	assert.Equal(t, diagram.Position{X: 600, Y: 0}, byLabel["B1a"].Position)
	assert.Equal(t, 3, byLabel["B1a"].Tier)
	assert.Equal(t, "#f0f0f0", byLabel["B1a"].Color)
	assert.Equal(t, "detail", byLabel["B1"].Description)

	// Sibling indices restart per parent, so ids collide across branches.
	assert.Equal(t, "node-2-0", byLabel["A1"].ID)
	assert.Equal(t, "node-2-0", byLabel["B1"].ID)
}

func TestLayout_NodeCountMatchesTree(t *testing.T) {
	e := newEngine(t)
	trees := []outline.Node{
		{Title: "solo"},
		{Title: "r", Children: leaves("a")},
		{Title: "r", Children: []outline.Node{
			{Title: "a", Children: leaves("x", "y", "z")},
			{Title: "b", Children: []outline.Node{{Title: "c", Children: leaves("d", "e")}}},
		}},
	}
	for _, tree := range trees {
		nodes, edges := e.LayoutNode(&tree)
		assert.Len(t, nodes, tree.Count())
		assert.Empty(t, edges)
		assert.Equal(t, diagram.Position{}, nodes[0].Position)
	}
}

func TestLayout_Empty(t *testing.T) {
	e := newEngine(t)

	nodes, edges := e.Layout(&outline.Structure{})
	assert.NotNil(t, nodes)
	assert.NotNil(t, edges)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)

	nodes, edges = e.Layout(nil)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestLayout_CustomSpacing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HorizontalSpacing = 100
	cfg.VerticalSpacing = 50
	e, err := New(cfg)
	require.NoError(t, err)

	root := outline.Node{Title: "r", Children: leaves("a", "b")}
	nodes, _ := e.LayoutNode(&root)
	assert.Equal(t, diagram.Position{X: 100, Y: -25}, nodes[1].Position)
	assert.Equal(t, diagram.Position{X: 100, Y: 25}, nodes[2].Position)
}

func TestBounds(t *testing.T) {
	assert.Equal(t, Rect{}, Bounds(nil))

	r := Bounds([]diagram.Node{
		{Position: diagram.Position{X: 0, Y: 0}},
		{Position: diagram.Position{X: 300, Y: -120}},
		{Position: diagram.Position{X: 600, Y: 240}},
	})
	assert.Equal(t, diagram.Position{X: 0, Y: -120}, r.Min)
	assert.Equal(t, diagram.Position{X: 600, Y: 240}, r.Max)
	assert.Equal(t, 600.0, r.Width())
	assert.Equal(t, 360.0, r.Height())
}
