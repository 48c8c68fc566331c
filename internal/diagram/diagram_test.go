package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDs(t *testing.T) {
	assert.Equal(t, "node-0-0", NodeID(0, 0))
	assert.Equal(t, "node-2-7", NodeID(2, 7))
	assert.Equal(t, "node-1-0-node-1-1", EdgeID("node-1-0", "node-1-1"))
}

func TestPosition_Distance(t *testing.T) {
	assert.InDelta(t, 5.0, Position{X: 0, Y: 0}.Distance(Position{X: 3, Y: 4}), 1e-9)
	assert.InDelta(t, 0.0, Position{X: 1, Y: 1}.Distance(Position{X: 1, Y: 1}), 1e-9)
}

func TestEdge_SamePair(t *testing.T) {
	e := Edge{Source: "a", Target: "b"}
	assert.True(t, e.SamePair("a", "b"))
	assert.True(t, e.SamePair("b", "a"))
	assert.False(t, e.SamePair("a", "c"))
}

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		tier       int
		color      string
		background string
		text       string
		fontSize   float64
		bold       bool
		maxWidth   float64
	}{
		{"root ignores color", 0, "#6366f1", "#1a1a1a", "#fff", 24, true, 300},
		{"primary uses color", 1, "#ef4444", "#ef4444", "#fff", 14, false, 200},
		{"deep is neutral", 2, "#f0f0f0", "#f0f0f0", "#333", 13, false, 280},
		{"deeper is neutral", 5, "#abcdef", "#f0f0f0", "#333", 13, false, 280},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Render(tt.tier, tt.color, "Label", "")
			assert.Equal(t, tt.background, v.Background)
			assert.Equal(t, tt.text, v.TextColor)
			assert.Equal(t, tt.fontSize, v.FontSize)
			assert.Equal(t, tt.bold, v.Bold)
			assert.Equal(t, tt.maxWidth, v.MaxWidth)
			assert.Equal(t, "Label", v.Label)
			assert.Zero(t, v.DescriptionSize)
		})
	}

	t.Run("description", func(t *testing.T) {
		v := Node{Tier: 1, Color: "#10b981", Label: "A", Description: "more"}.Visual()
		assert.Equal(t, "more", v.Description)
		assert.Equal(t, 12.0, v.DescriptionSize)
	})
}
