package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/forcesim/internal/geom"
)

func bruteOverlap(pos []geom.Vec2, radii []float64) float64 {
	worst := 0.0
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			worst = math.Max(worst, radii[i]+radii[j]-geom.Dist(pos[i], pos[j]))
		}
	}
	return worst
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name  string
		pos   []geom.Vec2
		radii []float64
		want  float64
	}{
		{"empty", nil, nil, 0},
		{"single", []geom.Vec2{geom.V2(0, 0)}, []float64{5}, 0},
		{"apart", []geom.Vec2{geom.V2(0, 0), geom.V2(10, 0)}, []float64{2, 2}, 0},
		{"touching", []geom.Vec2{geom.V2(0, 0), geom.V2(4, 0)}, []float64{2, 2}, 0},
		{"overlap", []geom.Vec2{geom.V2(0, 0), geom.V2(3, 0)}, []float64{2, 2}, 1},
		{"coincident", []geom.Vec2{geom.V2(1, 1), geom.V2(1, 1)}, []float64{1, 2}, 3},
		{"worst of three", []geom.Vec2{geom.V2(0, 0), geom.V2(3, 0), geom.V2(100, 0)}, []float64{2, 2, 99}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlap(tt.pos, tt.radii); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected overlap %f, got %f", tt.want, got)
			}
		})
	}
}

func TestOverlapMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		n := 2 + rng.Intn(80)
		pos := make([]geom.Vec2, n)
		radii := make([]float64, n)
		for i := range pos {
			pos[i] = geom.V2(rng.Float64()*100, rng.Float64()*100)
			radii[i] = rng.Float64() * 6
		}
		want := bruteOverlap(pos, radii)
		if got := Overlap(pos, radii); math.Abs(got-want) > 1e-9 {
			t.Fatalf("trial %d: expected %f, got %f", trial, want, got)
		}
	}
}

func TestMaxOverlapIgnoresMismatchedFrames(t *testing.T) {
	m := NewMaxOverlap[geom.Vec2]([]float64{2, 2})
	m.OnTick(frame([]geom.Vec2{geom.V2(0, 0), geom.V2(1, 0)}, nil))
	if m.Value() != 3 {
		t.Fatalf("expected overlap 3, got %f", m.Value())
	}

	m.OnTick(frame([]geom.Vec2{geom.V2(0, 0)}, nil))
	if m.Value() != 3 {
		t.Errorf("mismatched frame changed value to %f", m.Value())
	}
}
