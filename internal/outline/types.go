package outline

import (
	"fmt"
	"strings"
)

// Node is one titled entry of an outline tree.
type Node struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Children    []Node `json:"children,omitempty"`
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 1
	for i := range n.Children {
		total += n.Children[i].Count()
	}
	return total
}

// Depth returns the number of tiers in the subtree rooted at n (a leaf is 1).
func (n *Node) Depth() int {
	deepest := 0
	for i := range n.Children {
		if d := n.Children[i].Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// prune drops every descendant more than depth tiers below n, counting n
// as the first tier. It reports whether anything was dropped.
func (n *Node) prune(depth int) bool {
	if len(n.Children) == 0 {
		return false
	}
	if depth <= 1 {
		n.Children = nil
		return true
	}
	pruned := false
	for i := range n.Children {
		if n.Children[i].prune(depth - 1) {
			pruned = true
		}
	}
	return pruned
}

// validate checks that every node in the subtree carries a title.
func (n *Node) validate(path string) error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("node %s: title is required", path)
	}
	for i := range n.Children {
		if err := n.Children[i].validate(fmt.Sprintf("%s.%d", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// Structure is the persisted wrapper around the outline tree.
type Structure struct {
	Nodes []Node `json:"nodes"`
}

// Root returns the first top-level node.
func (s *Structure) Root() (*Node, bool) {
	if s == nil || len(s.Nodes) == 0 {
		return nil, false
	}
	return &s.Nodes[0], true
}

// Prune limits every top-level tree to maxDepth tiers and reports whether
// nodes were removed. A maxDepth below 1 leaves the structure alone.
func (s *Structure) Prune(maxDepth int) bool {
	if s == nil || maxDepth < 1 {
		return false
	}
	pruned := false
	for i := range s.Nodes {
		if s.Nodes[i].prune(maxDepth) {
			pruned = true
		}
	}
	return pruned
}

// Validate checks the shape of the structure.
func (s *Structure) Validate() error {
	if s == nil || len(s.Nodes) == 0 {
		return fmt.Errorf("structure has no nodes")
	}
	for i := range s.Nodes {
		if err := s.Nodes[i].validate(fmt.Sprintf("%d", i)); err != nil {
			return err
		}
	}
	return nil
}

// NodeStyle is the display color for one tier of the map.
type NodeStyle struct {
	Color string `json:"color" toml:"color"`
}

// Style groups the per-tier colors.
type Style struct {
	CentralNode    NodeStyle `json:"centralNode" toml:"central_node"`
	PrimaryNodes   NodeStyle `json:"primaryNodes" toml:"primary_nodes"`
	SecondaryNodes NodeStyle `json:"secondaryNodes" toml:"secondary_nodes"`
	TertiaryNodes  NodeStyle `json:"tertiaryNodes" toml:"tertiary_nodes"`
}

// Settings are the generation options stored with a mind map.
type Settings struct {
	MaxDepth int   `json:"maxDepth" toml:"max_depth"`
	Style    Style `json:"style" toml:"style"`
}

// Bounds for Settings.MaxDepth.
const (
	DefaultMaxDepth = 3
	MaxAllowedDepth = 10
)

// DefaultSettings returns the settings applied when a submission omits them.
func DefaultSettings() Settings {
	return Settings{
		MaxDepth: DefaultMaxDepth,
		Style: Style{
			CentralNode:    NodeStyle{Color: "#4A90E2"},
			PrimaryNodes:   NodeStyle{Color: "#50C878"},
			SecondaryNodes: NodeStyle{Color: "#FFB366"},
			TertiaryNodes:  NodeStyle{Color: "#FF7F7F"},
		},
	}
}

// Normalize fills zero-valued fields from DefaultSettings.
func (s *Settings) Normalize() {
	def := DefaultSettings()
	if s.MaxDepth == 0 {
		s.MaxDepth = def.MaxDepth
	}
	if s.Style.CentralNode.Color == "" {
		s.Style.CentralNode = def.Style.CentralNode
	}
	if s.Style.PrimaryNodes.Color == "" {
		s.Style.PrimaryNodes = def.Style.PrimaryNodes
	}
	if s.Style.SecondaryNodes.Color == "" {
		s.Style.SecondaryNodes = def.Style.SecondaryNodes
	}
	if s.Style.TertiaryNodes.Color == "" {
		s.Style.TertiaryNodes = def.Style.TertiaryNodes
	}
}

// Validate checks the settings are usable.
func (s *Settings) Validate() error {
	if s.MaxDepth < 1 || s.MaxDepth > MaxAllowedDepth {
		return fmt.Errorf("maxDepth must be between 1 and %d, got %d", MaxAllowedDepth, s.MaxDepth)
	}
	return nil
}
