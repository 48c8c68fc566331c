// Package layout places outline nodes on a tiered diagram.
//
// The walk is depth-first with children in their original order. The root
// sits at the origin, primary nodes form a column centred on it, and every
// deeper node goes into a second column stacked by its index among its own
// siblings. Layout never creates edges.
package layout

import (
	"fmt"

	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
	"github.com/fyrsmithlabs/mindmapd/internal/outline"
)

// Config holds the layout constants.
type Config struct {
	HorizontalSpacing float64  `koanf:"horizontal_spacing"`
	VerticalSpacing   float64  `koanf:"vertical_spacing"`
	RootColor         string   `koanf:"root_color"`
	Palette           []string `koanf:"palette"`
	DeepColor         string   `koanf:"deep_color"`
}

// DefaultConfig returns the stock spacing and colors.
func DefaultConfig() *Config {
	return &Config{
		HorizontalSpacing: 300,
		VerticalSpacing:   120,
		RootColor:         "#1a1a1a",
		Palette:           []string{"#6366f1", "#ef4444", "#10b981", "#8b5cf6"},
		DeepColor:         "#f0f0f0",
	}
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.HorizontalSpacing <= 0 {
		return fmt.Errorf("horizontal_spacing must be > 0, got %v", c.HorizontalSpacing)
	}
	if c.VerticalSpacing <= 0 {
		return fmt.Errorf("vertical_spacing must be > 0, got %v", c.VerticalSpacing)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("palette must have at least one color")
	}
	return nil
}

// Engine converts outlines into diagram nodes.
type Engine struct {
	cfg Config
}

// New creates an Engine. A nil config uses DefaultConfig.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}
	return &Engine{cfg: *cfg}, nil
}

// Layout places the root of s and all its descendants. An empty structure
// yields empty, non-nil slices.
func (e *Engine) Layout(s *outline.Structure) ([]diagram.Node, []diagram.Edge) {
	root, ok := s.Root()
	if !ok {
		return []diagram.Node{}, []diagram.Edge{}
	}
	return e.LayoutNode(root)
}

// LayoutNode places root and all its descendants.
//
// Node ids are "node-{tier}-{siblingIndex}". Sibling indices restart under
// every parent, so two branches can mint the same id at the same tier.
func (e *Engine) LayoutNode(root *outline.Node) ([]diagram.Node, []diagram.Edge) {
	nodes := make([]diagram.Node, 0, root.Count())
	e.place(&nodes, root, 0, 0, 1)
	return nodes, []diagram.Edge{}
}

func (e *Engine) place(out *[]diagram.Node, n *outline.Node, tier, index, siblings int) {
	*out = append(*out, diagram.Node{
		ID:          diagram.NodeID(tier, index),
		Position:    e.position(tier, index, siblings),
		Tier:        tier,
		Color:       e.color(tier, index),
		Label:       n.Title,
		Description: n.Description,
	})

	for i := range n.Children {
		e.place(out, &n.Children[i], tier+1, i, len(n.Children))
	}
}

func (e *Engine) position(tier, index, siblings int) diagram.Position {
	h, v := e.cfg.HorizontalSpacing, e.cfg.VerticalSpacing
	switch tier {
	case 0:
		return diagram.Position{}
	case 1:
		total := float64(siblings-1) * v
		return diagram.Position{X: h, Y: -total/2 + float64(index)*v}
	default:
		return diagram.Position{X: 2 * h, Y: float64(index) * v}
	}
}

func (e *Engine) color(tier, index int) string {
	switch tier {
	case 0:
		return e.cfg.RootColor
	case 1:
		return e.cfg.Palette[index%len(e.cfg.Palette)]
	default:
		return e.cfg.DeepColor
	}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min diagram.Position `json:"min"`
	Max diagram.Position `json:"max"`
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Bounds returns the box enclosing every node position. The zero Rect is
// returned for no nodes.
func Bounds(nodes []diagram.Node) Rect {
	if len(nodes) == 0 {
		return Rect{}
	}
	r := Rect{Min: nodes[0].Position, Max: nodes[0].Position}
	for _, n := range nodes[1:] {
		p := n.Position
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	return r
}
