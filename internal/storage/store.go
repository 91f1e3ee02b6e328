// Package storage keeps finished layout runs on disk, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/forcesim/internal/config"
	"github.com/san-kum/forcesim/internal/experiment"
	"github.com/san-kum/forcesim/internal/graph"
)

const (
	metadataFile  = "metadata.json"
	positionsFile = "positions.csv"
	edgesFile     = "edges.csv"
	traceFile     = "trace.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dimensions int                `json:"dimensions"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	Ticks      int                `json:"ticks"`
	Settled    bool               `json:"settled"`
	Alpha      float64            `json:"alpha"`
	ElapsedMS  int64              `json:"elapsed_ms"`
	Metrics    map[string]float64 `json:"metrics"`
	Config     *config.Config     `json:"config,omitempty"`
}

func ff(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Save writes a run and returns its ID.
func (s *Store) Save(cfg *config.Config, g *graph.Graph, res *experiment.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Name, uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       cfg.Name,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Dimensions: cfg.Dimensions,
		Nodes:      g.Len(),
		Edges:      len(g.Edges),
		Ticks:      res.Ticks,
		Settled:    res.Settled,
		Alpha:      res.Alpha,
		ElapsedMS:  res.Elapsed.Milliseconds(),
		Metrics:    res.Metrics,
		Config:     cfg,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	radii := g.Radii(0)
	header := []string{"node", "id", "radius"}
	for i := 0; i < cfg.Dimensions; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	rows := make([][]string, 0, len(res.Positions))
	for i, p := range res.Positions {
		row := []string{strconv.Itoa(i), g.Nodes[i].ID, ff(radii[i])}
		for _, v := range p {
			row = append(row, ff(v))
		}
		rows = append(rows, row)
	}
	if err := writeCSV(filepath.Join(runDir, positionsFile), header, rows); err != nil {
		return "", err
	}

	rows = rows[:0]
	for _, e := range g.Edges {
		rows = append(rows, []string{e.Source, e.Target, ff(e.Strength), ff(e.Distance)})
	}
	if err := writeCSV(filepath.Join(runDir, edgesFile), []string{"source", "target", "strength", "distance"}, rows); err != nil {
		return "", err
	}

	if res.Trace != nil {
		header = append([]string{"tick", "alpha"}, res.Trace.Columns...)
		rows = rows[:0]
		for _, smp := range res.Trace.Samples {
			row := []string{strconv.Itoa(smp.Tick), ff(smp.Alpha)}
			for _, v := range smp.Values {
				row = append(row, ff(v))
			}
			rows = append(rows, row)
		}
		if err := writeCSV(filepath.Join(runDir, traceFile), header, rows); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %s: %w", runID, name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// LoadGraph rebuilds the run's graph with final positions on its nodes.
func (s *Store) LoadGraph(runID string) (*graph.Graph, error) {
	posRows, err := s.readCSV(runID, positionsFile)
	if err != nil {
		return nil, err
	}
	nodes := make([]graph.Node, 0, len(posRows))
	for _, rec := range posRows {
		if len(rec) < 3 {
			return nil, fmt.Errorf("run %s: short position row %v", runID, rec)
		}
		vals, err := parseFloats(rec[2:])
		if err != nil {
			return nil, fmt.Errorf("run %s: node %s: %w", runID, rec[1], err)
		}
		nodes = append(nodes, graph.Node{ID: rec[1], Radius: vals[0], Position: vals[1:]})
	}

	edgeRows, err := s.readCSV(runID, edgesFile)
	if err != nil {
		return nil, err
	}
	edges := make([]graph.Edge, 0, len(edgeRows))
	for _, rec := range edgeRows {
		if len(rec) != 4 {
			return nil, fmt.Errorf("run %s: malformed edge row %v", runID, rec)
		}
		vals, err := parseFloats(rec[2:])
		if err != nil {
			return nil, fmt.Errorf("run %s: edge %s->%s: %w", runID, rec[0], rec[1], err)
		}
		edges = append(edges, graph.Edge{Source: rec[0], Target: rec[1], Strength: vals[0], Distance: vals[1]})
	}

	return graph.New(nodes, edges)
}

func (s *Store) LoadTrace(runID string) (*experiment.Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %s: %w", runID, traceFile, err)
	}
	tr := &experiment.Trace{}
	if len(records) == 0 {
		return tr, nil
	}
	if len(records[0]) < 2 {
		return nil, fmt.Errorf("run %s: bad trace header %v", runID, records[0])
	}
	tr.Columns = append([]string(nil), records[0][2:]...)
	for _, rec := range records[1:] {
		tick, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("run %s: trace tick %q: %w", runID, rec[0], err)
		}
		vals, err := parseFloats(rec[1:])
		if err != nil {
			return nil, fmt.Errorf("run %s: trace tick %d: %w", runID, tick, err)
		}
		tr.Samples = append(tr.Samples, experiment.Sample{Tick: tick, Alpha: vals[0], Values: vals[1:]})
	}
	return tr, nil
}
