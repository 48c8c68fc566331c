// Package diagram holds the render-ready node and edge records derived from
// an outline. They are ephemeral: built per view and never persisted.
package diagram

import (
	"fmt"
	"math"
)

// Position is a point on the diagram canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Position) Distance(q Position) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Node is one box on the diagram.
type Node struct {
	ID          string   `json:"id"`
	Position    Position `json:"position"`
	Tier        int      `json:"tier"`
	Color       string   `json:"color"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
}

// Edge connects two nodes. Transient edges are drag-time previews.
type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Transient bool   `json:"transient,omitempty"`
}

// SamePair reports whether e joins a and b in either direction.
func (e Edge) SamePair(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// NodeID returns the id minted for the index-th sibling at tier.
func NodeID(tier, index int) string {
	return fmt.Sprintf("node-%d-%d", tier, index)
}

// EdgeID returns the id of the edge from source to target.
func EdgeID(source, target string) string {
	return source + "-" + target
}
