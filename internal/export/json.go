package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/forcesim/internal/experiment"
	"github.com/san-kum/forcesim/internal/graph"
)

type ExportData struct {
	Name    string             `json:"name"`
	Ticks   int                `json:"ticks"`
	Settled bool               `json:"settled"`
	Alpha   float64            `json:"alpha"`
	Metrics map[string]float64 `json:"metrics"`
	Nodes   []graph.Node       `json:"nodes"`
	Edges   []graph.Edge       `json:"edges"`
}

// NewExportData pairs a graph with its result; positions from res replace
// those on the nodes. A nil res exports the graph as it stands.
func NewExportData(g *graph.Graph, res *experiment.Result) ExportData {
	data := ExportData{
		Nodes: make([]graph.Node, len(g.Nodes)),
		Edges: g.Edges,
	}
	copy(data.Nodes, g.Nodes)
	if res == nil {
		return data
	}
	data.Name = res.Name
	data.Ticks = res.Ticks
	data.Settled = res.Settled
	data.Alpha = res.Alpha
	data.Metrics = res.Metrics
	for i := range data.Nodes {
		if i < len(res.Positions) {
			data.Nodes[i].Position = res.Positions[i]
		}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
