package quadtree

import (
	"math"

	"github.com/san-kum/forcesim/internal/geom"
)

// maxDepth stops subdivision once cells approach float64 resolution; items
// that still collide at that depth share a leaf.
const maxDepth = 64

// Item is one point inserted into the tree.
type Item[P geom.Point[P]] struct {
	Index  int
	Point  P
	Mass   float64
	Radius float64
}

// Node is a cell of the tree. A node is empty, a leaf holding items at a
// single location, or internal with children in 2^d slots (nil slots are
// empty cells).
type Node[P geom.Point[P]] struct {
	Box      geom.Box
	Items    []Item[P]
	Children []*Node[P]

	Mass      float64 // sum of item masses
	Weight    float64 // sum of |mass|
	Centroid  P       // |mass|-weighted mean position
	MaxRadius float64
	Count     int

	depth int
}

func (n *Node[P]) IsLeaf() bool { return n.Children == nil }

// Side is the edge length of the node's cell.
func (n *Node[P]) Side() float64 { return n.Box.Side() }

// MayContain reports whether target could lie within radius of some point
// of this node's cell.
func (n *Node[P]) MayContain(target P, radius float64) bool {
	return MayCollide(n.Box, radius, target)
}

type Tree[P geom.Point[P]] struct {
	Root *Node[P]
	dim  int
	size int
}

// Build inserts items into a fresh tree. bounds may be nil, in which case the
// region is the cube covering every item; a supplied region is grown to cover
// items that fall outside it. Items must share one dimension no larger than
// geom.MaxDim.
func Build[P geom.Point[P]](items []Item[P], bounds *geom.Box) *Tree[P] {
	t := &Tree[P]{size: len(items)}
	if len(items) == 0 {
		return t
	}
	t.dim = items[0].Point.Dim()

	pts := make([]P, len(items))
	for i, it := range items {
		pts[i] = it.Point
	}
	region, _ := geom.BoundsOf(pts)
	if bounds != nil && bounds.Dim() == t.dim {
		region = bounds.Union(region)
	}

	t.Root = &Node[P]{Box: region.Cube()}
	for _, it := range items {
		t.insert(it)
	}
	t.Root.accumulate()
	return t
}

func (t *Tree[P]) Len() int { return t.size }
func (t *Tree[P]) Dim() int { return t.dim }

func (t *Tree[P]) insert(it Item[P]) {
	n := t.Root
	for {
		if n.Children == nil {
			if len(n.Items) == 0 || geom.Equal(n.Items[0].Point, it.Point) || n.depth >= maxDepth {
				n.Items = append(n.Items, it)
				return
			}
			old := n.Items
			n.Items = nil
			n.Children = make([]*Node[P], 1<<t.dim)
			for _, o := range old {
				c := n.child(n.quadrant(o.Point))
				c.Items = append(c.Items, o)
			}
		}
		n = n.child(n.quadrant(it.Point))
	}
}

func (n *Node[P]) quadrant(p P) int {
	idx := 0
	for k := range n.Box.Min {
		if p.At(k) >= n.Box.Mid(k) {
			idx |= 1 << k
		}
	}
	return idx
}

func (n *Node[P]) child(idx int) *Node[P] {
	c := n.Children[idx]
	if c == nil {
		c = &Node[P]{Box: n.Box.Child(idx), depth: n.depth + 1}
		n.Children[idx] = c
	}
	return c
}

func (n *Node[P]) accumulate() {
	n.Mass, n.Weight, n.MaxRadius, n.Count = 0, 0, 0, 0

	if n.IsLeaf() {
		if len(n.Items) == 0 {
			return
		}
		for _, it := range n.Items {
			n.Mass += it.Mass
			n.Weight += math.Abs(it.Mass)
			n.MaxRadius = math.Max(n.MaxRadius, it.Radius)
		}
		n.Count = len(n.Items)
		if len(n.Items) == 1 {
			n.Centroid = n.Items[0].Point
			return
		}
		n.Centroid = weightedMean(n.Items[0].Point, len(n.Items), n.Weight, func(i int) (P, float64, int) {
			it := n.Items[i]
			return it.Point, math.Abs(it.Mass), 1
		})
		return
	}

	live := make([]*Node[P], 0, len(n.Children))
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		c.accumulate()
		if c.Count == 0 {
			continue
		}
		live = append(live, c)
		n.Mass += c.Mass
		n.Weight += c.Weight
		n.Count += c.Count
		n.MaxRadius = math.Max(n.MaxRadius, c.MaxRadius)
	}
	if len(live) == 0 {
		return
	}
	n.Centroid = weightedMean(live[0].Centroid, len(live), n.Weight, func(i int) (P, float64, int) {
		return live[i].Centroid, live[i].Weight, live[i].Count
	})
}

// weightedMean averages k points by weight, falling back to count weighting
// when every weight is zero.
func weightedMean[P geom.Point[P]](like P, k int, total float64, at func(i int) (P, float64, int)) P {
	sum := geom.Zero(like)
	if total > 0 {
		for i := 0; i < k; i++ {
			p, w, _ := at(i)
			sum = sum.Add(p.Scale(w))
		}
		return sum.Scale(1 / total)
	}
	count := 0
	for i := 0; i < k; i++ {
		p, _, c := at(i)
		sum = sum.Add(p.Scale(float64(c)))
		count += c
	}
	return sum.Scale(1 / float64(count))
}

// Visit walks the tree in pre-order, children in slot order. Returning true
// from fn skips the node's children.
func (t *Tree[P]) Visit(fn func(n *Node[P]) bool) {
	if t.Root == nil {
		return
	}
	stack := []*Node[P]{t.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fn(n) || n.IsLeaf() {
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			if c := n.Children[i]; c != nil && c.Count > 0 {
				stack = append(stack, c)
			}
		}
	}
}

// VisitAfter walks the tree in post-order.
func (t *Tree[P]) VisitAfter(fn func(n *Node[P])) {
	if t.Root == nil {
		return
	}
	var walk func(n *Node[P])
	walk = func(n *Node[P]) {
		for _, c := range n.Children {
			if c != nil && c.Count > 0 {
				walk(c)
			}
		}
		fn(n)
	}
	walk(t.Root)
}
