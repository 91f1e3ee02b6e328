package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/forcesim/internal/config"
	"github.com/san-kum/forcesim/internal/experiment"
	"github.com/san-kum/forcesim/internal/export"
	"github.com/san-kum/forcesim/internal/graph"
	"github.com/san-kum/forcesim/internal/storage"
	"github.com/san-kum/forcesim/internal/viz"
)

// layout runs cfg to completion. An interrupted run still returns its
// partial result with the error.
func layout(ctx context.Context, cfg *config.Config) (*graph.Graph, *experiment.Result, error) {
	g, err := experiment.LoadGraph(cfg)
	if err != nil {
		return nil, nil, err
	}
	r, err := experiment.Open(ctx, cfg, g)
	if err != nil {
		return nil, nil, err
	}
	res, err := r.Run(ctx)
	return g, res, err
}

// positioned copies the result positions onto the graph nodes.
func positioned(g *graph.Graph, res *experiment.Result) *graph.Graph {
	for i := range g.Nodes {
		if i < len(res.Positions) {
			g.Nodes[i].Position = res.Positions[i]
		}
	}
	return g
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  %s: %.6f\n", k, m[k])
	}
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	g, res, err := layout(cmd.Context(), cfg)
	if res == nil {
		return err
	}
	runID, saveErr := st.Save(cfg, g, res)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d (settled: %v, alpha %.4f)\n", res.Ticks, res.Settled, res.Alpha)
	fmt.Printf("completed in %v\n", res.Elapsed.Round(time.Millisecond))
	fmt.Println("\nmetrics:")
	printMetrics(res.Metrics)
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := experiment.LoadGraph(cfg)
	if err != nil {
		return err
	}
	// the alternate screen owns the terminal
	logger := log.FromContext(cmd.Context()).With()
	logger.SetLevel(log.WarnLevel)
	ctx := log.WithContext(cmd.Context(), logger)
	r, err := experiment.Open(ctx, cfg, g)
	if err != nil {
		return err
	}
	return viz.RunLive(ctx, r, theme)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDIMS\tNODES\tEDGES\tTICKS\tSETTLED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%v\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dimensions,
			run.Nodes,
			run.Edges,
			run.Ticks,
			run.Settled,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if trace.Len() < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("ticks: %d\n\n", trace.Len())

	columns := append([]string{"alpha"}, trace.Columns...)
	if column != "" {
		columns = []string{column}
	}
	for _, col := range columns {
		data := trace.Series(col)
		if data == nil {
			return fmt.Errorf("unknown column %q", col)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col+" vs tick"),
		))
		fmt.Println()
	}
	return nil
}

// source returns a stored run's graph and metadata, or runs a fresh layout
// when no run ID is given.
func source(cmd *cobra.Command, args []string) (*graph.Graph, *experiment.Result, error) {
	if len(args) == 0 {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, nil, err
		}
		g, res, err := layout(cmd.Context(), cfg)
		if err != nil {
			return nil, nil, err
		}
		return positioned(g, res), res, nil
	}

	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return nil, nil, err
	}
	g, err := st.LoadGraph(args[0])
	if err != nil {
		return nil, nil, err
	}
	res := &experiment.Result{
		Name:    meta.Name,
		Ticks:   meta.Ticks,
		Settled: meta.Settled,
		Alpha:   meta.Alpha,
		Elapsed: time.Duration(meta.ElapsedMS) * time.Millisecond,
		Metrics: meta.Metrics,
	}
	return g, res, nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	g, _, err := source(cmd, args)
	if err != nil {
		return err
	}
	opts := export.DefaultSVGOptions()
	opts.Width, opts.Height = svgWidth, svgHeight
	if err := os.WriteFile(outPath, []byte(export.LayoutToSVG(g, opts)), 0644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	g, res, err := source(cmd, args)
	if err != nil {
		return err
	}
	data := export.NewExportData(g, res)
	if outPath == "" {
		return export.WriteJSON(os.Stdout, data)
	}
	if err := export.ExportJSON(outPath, data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDIMS\tGRAPH\tNODES\tFORCES")
		for _, name := range config.ListPresets() {
			p := config.GetPreset(name)
			keys := make([]string, len(p.Forces))
			for i, fc := range p.Forces {
				keys[i] = fc.Key()
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%v\n", name, p.Dimensions, p.Graph.Generator, p.Graph.Nodes, keys)
		}
		return w.Flush()
	}

	p := config.GetPreset(args[0])
	if p == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if savePath != "" {
		if err := config.Save(savePath, p); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", savePath)
		return nil
	}
	body, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(body)
	return err
}

func benchLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("benchmarking %s over %d seeds\n\n", cfg.Name, numRuns)

	start := time.Now()
	results, err := experiment.NewEnsemble(cfg, numRuns, cfg.Seed).Run(cmd.Context())
	if err != nil {
		return err
	}
	wall := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTICKS\tSETTLED\tTIME\tTICKS/SEC\tSTRESS\tOVERLAP")
	total := 0
	for i, res := range results {
		total += res.Ticks
		rate := float64(res.Ticks) / max(res.Elapsed.Seconds(), 1e-9)
		fmt.Fprintf(w, "%d\t%d\t%v\t%v\t%.0f\t%.4f\t%.4f\n",
			cfg.Seed+int64(i), res.Ticks, res.Settled, res.Elapsed.Round(time.Millisecond), rate,
			res.Metrics["link_stress"], res.Metrics["max_overlap"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d ticks in %v (%.0f ticks/sec)\n", total, wall.Round(time.Millisecond), float64(total)/wall.Seconds())
	return nil
}
