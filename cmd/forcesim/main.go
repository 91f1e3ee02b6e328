package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcesim/internal/config"
	"github.com/san-kum/forcesim/internal/graph"
	"github.com/san-kum/forcesim/internal/viz"
)

var (
	dataDir string
	verbose bool
	theme   string

	configFile    string
	preset        string
	graphFile     string
	generator     string
	nodes         int
	seed          int64
	maxTicks      int
	dims          int
	workers       int
	velocityDecay float64

	outPath   string
	svgWidth  int
	svgHeight int
	numRuns   int
	column    string
	savePath  string
)

func newLogger() *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// addLayoutFlags registers the flags that override a layout config.
func addLayoutFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (yaml or toml)")
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.StringVar(&graphFile, "graph", "", "graph file (json)")
	f.StringVar(&generator, "generator", "", "graph generator ("+strings.Join(graph.Generators(), ", ")+")")
	f.IntVar(&nodes, "nodes", config.DefaultNodes, "generated node count")
	f.Int64Var(&seed, "seed", 1, "random seed")
	f.IntVar(&maxTicks, "max-ticks", config.DefaultMaxTicks, "tick limit, 0 for none")
	f.IntVar(&dims, "dims", config.DefaultDimensions, "layout dimensions")
	f.IntVar(&workers, "workers", 0, "worker goroutines, 0 for one per CPU")
	f.Float64Var(&velocityDecay, "velocity-decay", config.DefaultVelocityDecay, "velocity decay")
}

// loadConfig resolves preset, then config file, then any changed flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("graph") {
		cfg.Graph = config.GraphConfig{File: graphFile, Radius: cfg.Graph.Radius}
	}
	if flags.Changed("generator") {
		cfg.Graph.File = ""
		cfg.Graph.Generator = generator
	}
	if flags.Changed("nodes") {
		cfg.Graph.Nodes = nodes
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("max-ticks") {
		cfg.MaxTicks = maxTicks
	}
	if flags.Changed("dims") {
		cfg.Dimensions = dims
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("velocity-decay") {
		cfg.VelocityDecay = velocityDecay
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "forcesim",
		Short:         "force-directed graph layout",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(log.WithContext(cmd.Context(), newLogger()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(cmd.Context(), theme)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".forcesim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "cyberpunk", "terminal theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a layout to completion and store it",
		Args:  cobra.NoArgs,
		RunE:  runLayout,
	}
	addLayoutFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a layout in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLayoutFlags(liveCmd)
	liveCmd.Flags().StringVar(&viz.GIFPath, "gif", viz.GIFPath, "recording output path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the trace of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "plot one trace column only")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored run, or a fresh one, to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	addLayoutFlags(exportSVGCmd)
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "layout.svg", "output file")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run, or a fresh one, as a positioned graph",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	addLayoutFlags(exportJSONCmd)
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or show or save one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}
	presetsCmd.Flags().StringVar(&savePath, "save", "", "write the preset to a config file")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run one layout per seed concurrently",
		Args:  cobra.NoArgs,
		RunE:  benchLayout,
	}
	addLayoutFlags(benchCmd)
	benchCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, presetsCmd, benchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
