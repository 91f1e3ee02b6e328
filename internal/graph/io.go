package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// UnmarshalJSON accepts either an object with source/target fields or a
// two-element array of node IDs.
func (e *Edge) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []string
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("%w: %v", ErrBadEdge, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("%w: want 2 endpoints, got %d", ErrBadEdge, len(pair))
		}
		*e = Edge{Source: pair[0], Target: pair[1]}
		return nil
	}

	type record Edge
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("%w: %v", ErrBadEdge, err)
	}
	if r.Source == "" || r.Target == "" {
		return fmt.Errorf("%w: missing source or target", ErrBadEdge)
	}
	*e = Edge(r)
	return nil
}

// ReadJSON decodes a graph from r:
//
//	{
//	  "nodes": [{"id": "a", "radius": 4}, {"id": "b", "position": [10, 0], "fixed": true}],
//	  "edges": [{"source": "a", "target": "b", "distance": 40}, ["b", "a"]]
//	}
//
// It fails on malformed JSON, empty or duplicate IDs, and edges naming
// unknown nodes. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := g.Reindex(); err != nil {
		return nil, err
	}
	return &g, nil
}

func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func (g *Graph) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

func (g *Graph) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := g.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
