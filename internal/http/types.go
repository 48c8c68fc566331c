package http

import (
	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
	"github.com/fyrsmithlabs/mindmapd/internal/interaction"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Sessions int    `json:"sessions"`
}

// LayoutNode is a placed node with its computed visual.
type LayoutNode struct {
	diagram.Node
	Visual diagram.Visual `json:"visual"`
}

// LayoutResponse is the response body for GET /api/mindmap/:id/layout.
type LayoutResponse struct {
	Nodes []LayoutNode   `json:"nodes"`
	Edges []diagram.Edge   `json:"edges"`
}

// SessionResponse describes a viewer session and its current diagram.
type SessionResponse struct {
	interaction.Info
	interaction.Snapshot
	Preview *diagram.Edge `json:"preview,omitempty"`
}

// DragRequest is the body of POST /api/sessions/:sid/drag.
type DragRequest struct {
	NodeID string  `json:"node_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	// Final marks the drag end. Otherwise the move is in progress.
	Final bool `json:"final"`
}

// DragResponse adds whether a drag end committed an edge.
type DragResponse struct {
	SessionResponse
	Committed bool `json:"committed"`
}

// ConnectRequest is the body of POST /api/sessions/:sid/connect.
type ConnectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func withVisuals(nodes []diagram.Node) []LayoutNode {
	out := make([]LayoutNode, len(nodes))
	for i, n := range nodes {
		out[i] = LayoutNode{Node: n, Visual: n.Visual()}
	}
	return out
}
