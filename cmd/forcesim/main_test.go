package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func layoutCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addLayoutFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := loadConfig(layoutCmd(t))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Name != "default" || cfg.Graph.Generator != "ring" {
		t.Errorf("unexpected default config %+v", cfg)
	}

	cfg, err = loadConfig(layoutCmd(t, "--preset", "tree", "--nodes", "12", "--seed", "9"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Name != "tree" || cfg.Graph.Nodes != 12 || cfg.Seed != 9 {
		t.Errorf("flags not applied: name=%s nodes=%d seed=%d", cfg.Name, cfg.Graph.Nodes, cfg.Seed)
	}
	if cfg.MaxTicks == 0 {
		t.Error("unchanged flag overrode the preset")
	}
}

func TestLoadConfigFileAndGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	body := "name: from-file\ndimensions: 3\ngraph:\n  generator: grid\n  nodes: 16\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(layoutCmd(t, "--config", path, "--graph", "g.json"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Name != "from-file" || cfg.Dimensions != 3 {
		t.Errorf("file not applied: %+v", cfg)
	}
	if cfg.Graph.File != "g.json" || cfg.Graph.Generator != "" {
		t.Errorf("graph flag not applied: %+v", cfg.Graph)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := loadConfig(layoutCmd(t, "--preset", "nope")); err == nil {
		t.Error("unknown preset accepted")
	}
	if _, err := loadConfig(layoutCmd(t, "--dims", "0")); err == nil {
		t.Error("zero dimensions accepted")
	}
}
