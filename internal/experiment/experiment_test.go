package experiment

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcesim/internal/config"
	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/graph"
	"github.com/san-kum/forcesim/internal/sim"
)

func quiet() context.Context {
	return log.WithContext(context.Background(), log.New(io.Discard))
}

func ringConfig(n int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Graph.Nodes = n
	return cfg
}

func mustGraph(t *testing.T, cfg *config.Config) *graph.Graph {
	t.Helper()
	g, err := LoadGraph(cfg)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	return g
}

func TestRunSettles(t *testing.T) {
	cfg := ringConfig(20)
	e, err := New(quiet(), cfg, mustGraph(t, cfg), geom.Vec2{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := e.Run(quiet())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Settled {
		t.Error("expected layout to settle")
	}
	if res.Ticks < 290 || res.Ticks > 320 {
		t.Errorf("expected about 300 ticks, got %d", res.Ticks)
	}
	if len(res.Positions) != 20 || len(res.Positions[0]) != 2 {
		t.Fatalf("unexpected positions shape %d", len(res.Positions))
	}
	for _, name := range []string{"kinetic_energy", "displacement", "max_overlap", "link_stress"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if res.Metrics["kinetic_energy"] > 1e-3 {
		t.Errorf("expected near-zero energy at rest, got %f", res.Metrics["kinetic_energy"])
	}
}

func TestTrace(t *testing.T) {
	cfg := ringConfig(10)
	cfg.MaxTicks = 50
	e, err := New(quiet(), cfg, mustGraph(t, cfg), geom.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(quiet())
	if err != nil {
		t.Fatal(err)
	}

	if res.Trace.Len() != 50 {
		t.Fatalf("expected 50 samples, got %d", res.Trace.Len())
	}
	if res.Trace.Samples[0].Tick != 1 || res.Trace.Samples[49].Tick != 50 {
		t.Errorf("unexpected tick numbering %d..%d", res.Trace.Samples[0].Tick, res.Trace.Samples[49].Tick)
	}
	alpha := res.Trace.Series("alpha")
	for i := 1; i < len(alpha); i++ {
		if alpha[i] >= alpha[i-1] {
			t.Fatalf("alpha not decreasing at %d: %f then %f", i, alpha[i-1], alpha[i])
		}
	}
	if got := res.Trace.Series("link_stress"); len(got) != 50 {
		t.Errorf("expected link_stress series, got %d values", len(got))
	}
	if res.Trace.Series("nope") != nil {
		t.Error("expected nil for unknown column")
	}
}

func TestDeterministic(t *testing.T) {
	run := func() [][]float64 {
		cfg := config.GetPreset("clusters")
		cfg.MaxTicks = 80
		e, err := New(quiet(), cfg, mustGraph(t, cfg), geom.Vec2{})
		if err != nil {
			t.Fatal(err)
		}
		res, err := e.Run(quiet())
		if err != nil {
			t.Fatal(err)
		}
		return res.Positions
	}

	a, b := run(), run()
	for i := range a {
		if a[i][0] != b[i][0] || a[i][1] != b[i][1] {
			t.Fatalf("node %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestNewErrors(t *testing.T) {
	cfg := ringConfig(5)
	g := mustGraph(t, cfg)

	if _, err := New(quiet(), cfg, g, geom.Vec3{}); !errors.Is(err, ErrDimension) {
		t.Errorf("expected ErrDimension, got %v", err)
	}

	bad := ringConfig(5)
	bad.Alpha.Min = 0
	if _, err := New(quiet(), bad, g, geom.Vec2{}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	neg := ringConfig(5)
	neg.Forces = []config.ForceConfig{{Kind: config.KindCollide, Radius: config.Float(-1)}}
	if _, err := New(quiet(), neg, g, geom.Vec2{}); err == nil || !strings.Contains(err.Error(), "collide") {
		t.Errorf("expected collide force error, got %v", err)
	}
}

func TestPinnedNodes(t *testing.T) {
	doc := `{"nodes":[{"id":"hub","position":[0,0],"fixed":true},{"id":"a"},{"id":"b"}],
		"edges":[["hub","a"],["hub","b"]]}`
	g, err := graph.ReadJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Graph = config.GraphConfig{File: "inline.json"}

	e, err := New(quiet(), cfg, g, geom.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(quiet())
	if err != nil {
		t.Fatal(err)
	}
	if res.Positions[0][0] != 0 || res.Positions[0][1] != 0 {
		t.Errorf("pinned hub moved to %v", res.Positions[0])
	}
	for i := 1; i < 3; i++ {
		d := math.Hypot(res.Positions[i][0], res.Positions[i][1])
		if d < 10 || d > 80 {
			t.Errorf("node %d settled at implausible distance %f", i, d)
		}
	}
}

func TestScaleStrength(t *testing.T) {
	cfg := ringConfig(12)
	e, err := New(quiet(), cfg, mustGraph(t, cfg), geom.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	e.Step(400)
	if !e.Simulation().Settled() {
		t.Fatal("expected settled layout")
	}

	if err := e.ScaleStrength("manybody", 2); err != nil {
		t.Fatalf("ScaleStrength failed: %v", err)
	}
	if got := e.Gain("manybody"); got != 2 {
		t.Errorf("expected gain 2, got %f", got)
	}
	if err := e.ScaleStrength("link", 0.5); err != nil {
		t.Fatalf("ScaleStrength link failed: %v", err)
	}

	if err := e.ScaleStrength("gravity", 2); !errors.Is(err, sim.ErrUnknownForce) {
		t.Errorf("expected ErrUnknownForce, got %v", err)
	}
	if err := e.ScaleStrength("manybody", 0); err == nil {
		t.Error("expected error for zero factor")
	}

	if err := e.Reheat(); err != nil {
		t.Fatal(err)
	}
	if e.Step(1) != 1 {
		t.Error("expected reheated layout to tick")
	}
	snap := e.Snapshot()
	if snap.Settled || snap.Alpha >= 1 || len(snap.Links) != 12 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestOpen(t *testing.T) {
	for _, dims := range []int{1, 2, 3, 4} {
		cfg := ringConfig(8)
		cfg.Dimensions = dims
		cfg.MaxTicks = 20
		r, err := Open(quiet(), cfg, mustGraph(t, cfg))
		if err != nil {
			t.Fatalf("dims %d: Open failed: %v", dims, err)
		}
		res, err := r.Run(quiet())
		if err != nil {
			t.Fatalf("dims %d: Run failed: %v", dims, err)
		}
		if res.Ticks != 20 || len(res.Positions[0]) != dims {
			t.Errorf("dims %d: got %d ticks, %d coords", dims, res.Ticks, len(res.Positions[0]))
		}
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := ringConfig(10)
	e, err := New(quiet(), cfg, mustGraph(t, cfg), geom.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(quiet())
	cancel()

	res, err := e.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.Ticks != 0 {
		t.Errorf("expected empty partial result, got %+v", res)
	}
}

func TestEnsemble(t *testing.T) {
	cfg := config.GetPreset("clusters")
	cfg.Graph.Nodes = 30
	cfg.MaxTicks = 40

	a, err := NewEnsemble(cfg, 3, 100).Run(quiet())
	if err != nil {
		t.Fatalf("Ensemble failed: %v", err)
	}
	b, err := NewEnsemble(cfg, 3, 100).Run(quiet())
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 3 {
		t.Fatalf("expected 3 results, got %d", len(a))
	}
	for i := range a {
		if a[i].Positions[5][0] != b[i].Positions[5][0] {
			t.Errorf("run %d not reproducible", i)
		}
	}
	if a[0].Positions[5][0] == a[1].Positions[5][0] {
		t.Error("different seeds produced identical layouts")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry[geom.Vec2]()
	kinds := r.Kinds()
	if len(kinds) != len(config.Kinds) {
		t.Errorf("expected %v, got %v", config.Kinds, kinds)
	}
	if _, err := r.Build(config.ForceConfig{Kind: "gravity"}, Env[geom.Vec2]{}); err == nil {
		t.Error("expected error for unknown kind")
	}
	f, err := r.Build(config.ForceConfig{Kind: config.KindPosition, Target: []float64{3, 4}, Axes: []int{1}}, Env[geom.Vec2]{})
	if err != nil || f == nil {
		t.Fatalf("Build position failed: %v", err)
	}
}

func TestLinkGainScalesEdgeStrengths(t *testing.T) {
	links := []force.Link{{Source: 0, Target: 1, Strength: 0.5}, {Source: 1, Target: 2}}
	env := Env[geom.Vec2]{Links: links, Degree: []int{1, 2, 1}, Gain: 3}

	f, err := NewRegistry[geom.Vec2]().Build(config.ForceConfig{Kind: config.KindLink}, env)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Init(3, rand.New(rand.NewSource(1))); err != nil {
		t.Fatal(err)
	}
	got := f.(*force.LinkForce[geom.Vec2, force.Link]).Strengths()
	want := []float64{1.5, 3}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("edge %d: expected strength %v, got %v", i, want[i], got[i])
		}
	}
	if links[0].Strength != 0.5 {
		t.Errorf("input links modified: %v", links[0].Strength)
	}
}
