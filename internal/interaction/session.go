// Package interaction holds the live state of one diagram view: node
// positions, committed edges, the drag-time preview edge and the fullscreen
// flag.
//
// A Session has a single writer. Every operation is synchronous and bounded
// by the node count. Referencing a node id that is not in the session is a
// caller bug and panics with a *ContractViolation.
package interaction

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
)

// ErrUnknownNode is wrapped by ContractViolation.
var ErrUnknownNode = errors.New("unknown node id")

// ContractViolation is the panic value raised when an operation names a
// node the session does not hold.
type ContractViolation struct {
	Op     string
	NodeID string
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("interaction: %s: %v %q", v.Op, ErrUnknownNode, v.NodeID)
}

func (v *ContractViolation) Unwrap() error { return ErrUnknownNode }

// DefaultCaptureRadius is the distance under which a drag links two nodes.
const DefaultCaptureRadius = 150.0

// Options configures a Session.
type Options struct {
	CaptureRadius float64
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Nodes      []diagram.Node `json:"nodes"`
	Edges      []diagram.Edge `json:"edges"`
	Fullscreen bool           `json:"fullscreen"`
}

// Session is the mutable diagram state of one view.
type Session struct {
	radius     float64
	nodes      []diagram.Node
	index      map[string]int
	committed  []diagram.Edge
	preview    *diagram.Edge
	fullscreen bool
}

// NewSession takes ownership of a copy of nodes. When ids collide, the first
// node carrying the id is the one addressed by it.
func NewSession(nodes []diagram.Node, opts Options) *Session {
	if opts.CaptureRadius <= 0 {
		opts.CaptureRadius = DefaultCaptureRadius
	}

	s := &Session{
		radius:    opts.CaptureRadius,
		nodes:     append([]diagram.Node(nil), nodes...),
		index:     make(map[string]int, len(nodes)),
		committed: []diagram.Edge{},
	}
	for i, n := range s.nodes {
		if _, dup := s.index[n.ID]; !dup {
			s.index[n.ID] = i
		}
	}
	return s
}

// Has reports whether id names a node of the session.
func (s *Session) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Node returns the node addressed by id.
func (s *Session) Node(id string) diagram.Node {
	return s.nodes[s.mustIndex("node", id)]
}

// DragMove moves the node and refreshes the preview edge toward the nearest
// other node inside the capture radius, or clears it when there is none.
func (s *Session) DragMove(id string, pos diagram.Position) {
	i := s.mustIndex("drag move", id)
	s.nodes[i].Position = pos

	s.preview = nil
	edge, ok := s.closestEdge(i)
	if !ok || s.connected(edge.Source, edge.Target) {
		return
	}
	edge.Transient = true
	s.preview = &edge
}

// DragEnd moves the node, drops the preview and commits an edge to the
// nearest node inside the capture radius unless the pair is already linked.
// It reports whether an edge was committed.
func (s *Session) DragEnd(id string, pos diagram.Position) bool {
	i := s.mustIndex("drag end", id)
	s.nodes[i].Position = pos

	s.preview = nil
	edge, ok := s.closestEdge(i)
	if !ok || s.connected(edge.Source, edge.Target) {
		return false
	}
	s.committed = append(s.committed, edge)
	return true
}

// Connect commits an edge from source to target. Unlike DragEnd it does not
// check for an existing edge between the pair.
func (s *Session) Connect(source, target string) diagram.Edge {
	s.mustIndex("connect", source)
	s.mustIndex("connect", target)

	edge := diagram.Edge{
		ID:     diagram.EdgeID(source, target),
		Source: source,
		Target: target,
	}
	s.committed = append(s.committed, edge)
	return edge
}

// ToggleFullscreen flips the presentation flag and returns the new value.
func (s *Session) ToggleFullscreen() bool {
	s.fullscreen = !s.fullscreen
	return s.fullscreen
}

// Fullscreen returns the presentation flag.
func (s *Session) Fullscreen() bool { return s.fullscreen }

// Preview returns the transient edge, if any.
func (s *Session) Preview() (diagram.Edge, bool) {
	if s.preview == nil {
		return diagram.Edge{}, false
	}
	return *s.preview, true
}

// Nodes returns a copy of the nodes.
func (s *Session) Nodes() []diagram.Node {
	return append([]diagram.Node(nil), s.nodes...)
}

// CommittedEdges returns a copy of the committed edges.
func (s *Session) CommittedEdges() []diagram.Edge {
	return append([]diagram.Edge{}, s.committed...)
}

// Edges returns the committed edges followed by the preview edge, if any.
func (s *Session) Edges() []diagram.Edge {
	edges := make([]diagram.Edge, 0, len(s.committed)+1)
	edges = append(edges, s.committed...)
	if s.preview != nil {
		edges = append(edges, *s.preview)
	}
	return edges
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Nodes:      s.Nodes(),
		Edges:      s.Edges(),
		Fullscreen: s.fullscreen,
	}
}

// closestEdge builds the edge between node i and the nearest node strictly
// within the capture radius. The node further left is the source; on equal x
// the dragged node is.
func (s *Session) closestEdge(i int) (diagram.Edge, bool) {
	dragged := s.nodes[i]

	best := -1
	bestDist := s.radius
	for j, n := range s.nodes {
		if n.ID == dragged.ID {
			continue
		}
		if d := dragged.Position.Distance(n.Position); d < bestDist {
			best, bestDist = j, d
		}
	}
	if best < 0 {
		return diagram.Edge{}, false
	}

	other := s.nodes[best]
	source, target := dragged.ID, other.ID
	if other.Position.X < dragged.Position.X {
		source, target = other.ID, dragged.ID
	}
	return diagram.Edge{
		ID:     diagram.EdgeID(source, target),
		Source: source,
		Target: target,
	}, true
}

// connected reports whether a committed edge joins a and b.
func (s *Session) connected(a, b string) bool {
	for _, e := range s.committed {
		if e.SamePair(a, b) {
			return true
		}
	}
	return false
}

func (s *Session) mustIndex(op, id string) int {
	i, ok := s.index[id]
	if !ok {
		panic(&ContractViolation{Op: op, NodeID: id})
	}
	return i
}
