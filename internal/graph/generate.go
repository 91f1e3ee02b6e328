package graph

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

var ErrUnknownGenerator = errors.New("graph: unknown generator")

// Params sizes a generated graph. Fields a generator has no use for are
// ignored.
type Params struct {
	Nodes     int
	Branching int
	Clusters  int
	Edges     int
	Radius    float64
}

type Generator func(p Params, rng *rand.Rand) *Graph

var generators = map[string]Generator{
	"ring": func(p Params, _ *rand.Rand) *Graph { return Ring(p.Nodes) },
	"grid": func(p Params, _ *rand.Rand) *Graph { return Grid(p.Nodes) },
	"tree": func(p Params, _ *rand.Rand) *Graph { return Tree(p.Nodes, p.Branching) },
	"clusters": func(p Params, rng *rand.Rand) *Graph {
		return Clusters(p.Nodes, p.Clusters, rng)
	},
	"random": func(p Params, rng *rand.Rand) *Graph { return Random(p.Nodes, p.Edges, rng) },
}

// Generate builds a named graph from p, seeding any randomness with seed.
func Generate(kind string, p Params, seed int64) (*Graph, error) {
	gen, ok := generators[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, kind)
	}
	if p.Nodes < 0 {
		return nil, fmt.Errorf("generator %s: negative node count %d", kind, p.Nodes)
	}
	g := gen(p, rand.New(rand.NewSource(seed)))
	if p.Radius > 0 {
		for i := range g.Nodes {
			g.Nodes[i].Radius = p.Radius
		}
	}
	return g, nil
}

func Generators() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func nodeID(i int) string { return fmt.Sprintf("n%d", i) }

func nodes(n int) []Node {
	out := make([]Node, n)
	for i := range out {
		out[i] = Node{ID: nodeID(i)}
	}
	return out
}

func edge(a, b int) Edge { return Edge{Source: nodeID(a), Target: nodeID(b)} }

// build indexes a generated graph; generator output is valid by construction.
func build(ns []Node, es []Edge) *Graph {
	g, err := New(ns, es)
	if err != nil {
		panic(err)
	}
	return g
}

// Ring links n nodes in a cycle. Two nodes share a single edge.
func Ring(n int) *Graph {
	var es []Edge
	switch {
	case n == 2:
		es = []Edge{edge(0, 1)}
	case n > 2:
		es = make([]Edge, n)
		for i := range es {
			es[i] = edge(i, (i+1)%n)
		}
	}
	return build(nodes(n), es)
}

// Grid lays n nodes row-major on a near-square lattice and links lattice
// neighbours.
func Grid(n int) *Graph {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	var es []Edge
	for i := 0; i < n; i++ {
		if (i+1)%cols != 0 && i+1 < n {
			es = append(es, edge(i, i+1))
		}
		if i+cols < n {
			es = append(es, edge(i, i+cols))
		}
	}
	return build(nodes(n), es)
}

// Tree links each node to its parent in a complete tree of the given
// branching factor (at least 1).
func Tree(n, branching int) *Graph {
	if branching < 1 {
		branching = 2
	}
	var es []Edge
	for i := 1; i < n; i++ {
		es = append(es, edge((i-1)/branching, i))
	}
	return build(nodes(n), es)
}

// Clusters splits n nodes into k groups, each a random spanning tree with a
// few extra chords, and joins the groups' first members in a ring.
func Clusters(n, k int, rng *rand.Rand) *Graph {
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	ns := nodes(n)
	members := make([][]int, k)
	for i := range ns {
		c := i % k
		ns[i].Group = c
		members[c] = append(members[c], i)
	}

	var es []Edge
	for _, m := range members {
		for j := 1; j < len(m); j++ {
			es = append(es, edge(m[rng.Intn(j)], m[j]))
		}
		for c := 0; c < len(m)/4; c++ {
			a, b := m[rng.Intn(len(m))], m[rng.Intn(len(m))]
			if a != b {
				es = append(es, edge(a, b))
			}
		}
	}
	bridges := k
	if k == 2 {
		bridges = 1
	}
	for c := 0; k > 1 && c < bridges; c++ {
		es = append(es, edge(members[c][0], members[(c+1)%k][0]))
	}
	return build(ns, es)
}

// Random draws m distinct undirected edges without self loops, capped at
// the complete graph.
func Random(n, m int, rng *rand.Rand) *Graph {
	limit := n * (n - 1) / 2
	m = max(0, min(m, limit))
	seen := make(map[[2]int]bool, m)
	es := make([]Edge, 0, m)
	for len(es) < m {
		a, b := rng.Intn(n), rng.Intn(n)
		if a == b {
			continue
		}
		key := [2]int{min(a, b), max(a, b)}
		if seen[key] {
			continue
		}
		seen[key] = true
		es = append(es, edge(a, b))
	}
	return build(nodes(n), es)
}
