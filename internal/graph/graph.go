// Package graph models the node and edge sets that a layout runs over.
//
// Node identifiers are strings; the engine only sees indexes, so a Graph
// keeps the ID to index mapping and converts its edges to force.Link values.
package graph

import (
	"errors"
	"fmt"

	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
)

var (
	ErrEmptyID       = errors.New("graph: empty node id")
	ErrDuplicateNode = errors.New("graph: duplicate node")
	ErrUnknownNode   = errors.New("graph: unknown node")
	ErrBadEdge       = errors.New("graph: malformed edge")
	ErrDimension     = errors.New("graph: position dimension mismatch")
)

type Node struct {
	ID       string    `json:"id"`
	Radius   float64   `json:"radius,omitempty"`
	Position []float64 `json:"position,omitempty"`
	Fixed    bool      `json:"fixed,omitempty"`
	Group    int       `json:"group,omitempty"`
}

// Edge joins two nodes by ID. Zero Strength or Distance means the link force
// decides.
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Strength float64 `json:"strength,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index map[string]int
}

// New validates nodes and edges and returns a graph that owns them.
func New(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{Nodes: nodes, Edges: edges}
	if err := g.Reindex(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reindex rebuilds the ID index after Nodes or Edges were edited in place.
func (g *Graph) Reindex() error {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: %w", i, ErrEmptyID)
		}
		if _, ok := g.index[n.ID]; ok {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNode)
		}
		g.index[n.ID] = i
	}
	for _, e := range g.Edges {
		if _, ok := g.index[e.Source]; !ok {
			return fmt.Errorf("edge %s->%s: %w %q", e.Source, e.Target, ErrUnknownNode, e.Source)
		}
		if _, ok := g.index[e.Target]; !ok {
			return fmt.Errorf("edge %s->%s: %w %q", e.Source, e.Target, ErrUnknownNode, e.Target)
		}
	}
	return nil
}

func (g *Graph) Len() int { return len(g.Nodes) }

func (g *Graph) Index(id string) (int, bool) {
	if g.index == nil {
		if err := g.Reindex(); err != nil {
			return 0, false
		}
	}
	i, ok := g.index[id]
	return i, ok
}

// Links converts edges to index form, preserving order and overrides.
func (g *Graph) Links() ([]force.Link, error) {
	out := make([]force.Link, len(g.Edges))
	for k, e := range g.Edges {
		src, ok := g.Index(e.Source)
		if !ok {
			return nil, fmt.Errorf("edge %d: %w %q", k, ErrUnknownNode, e.Source)
		}
		dst, ok := g.Index(e.Target)
		if !ok {
			return nil, fmt.Errorf("edge %d: %w %q", k, ErrUnknownNode, e.Target)
		}
		out[k] = force.Link{Source: src, Target: dst, Strength: e.Strength, Distance: e.Distance}
	}
	return out, nil
}

// Radii returns each node's radius, substituting fallback for unset ones.
func (g *Graph) Radii(fallback float64) []float64 {
	out := make([]float64, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Radius
		if n.Radius == 0 {
			out[i] = fallback
		}
	}
	return out
}

func (g *Graph) Pinned() []int {
	var out []int
	for i, n := range g.Nodes {
		if n.Fixed {
			out = append(out, i)
		}
	}
	return out
}

// Positions returns starting points in the space of like. Nodes carrying a
// position keep it; the rest take their phyllotaxis slot.
func Positions[P geom.Point[P]](g *Graph, like P) ([]P, error) {
	pts := geom.Phyllotaxis(len(g.Nodes), like, geom.DefaultPlacementRadius)
	dim := like.Dim()
	for i, n := range g.Nodes {
		if n.Position == nil {
			continue
		}
		if len(n.Position) != dim {
			return nil, fmt.Errorf("node %s: %w: got %d, want %d", n.ID, ErrDimension, len(n.Position), dim)
		}
		pos := n.Position
		pts[i] = like.Map(func(k int, _ float64) float64 { return pos[k] })
	}
	return pts, nil
}

// SetPositions writes layout coordinates back onto the nodes.
func SetPositions[P geom.Point[P]](g *Graph, pts []P) {
	for i := range g.Nodes {
		if i < len(pts) {
			g.Nodes[i].Position = geom.Coords(pts[i])
		}
	}
}
