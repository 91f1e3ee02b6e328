package geom

import (
	"math"
	"testing"
)

func TestIsFiniteVecN(t *testing.T) {
	tests := []struct {
		name  string
		vec   VecN
		valid bool
	}{
		{"empty", VecN{}, true},
		{"normal", VecN{1.0, 2.0, 3.0}, true},
		{"zeros", VecN{0.0, 0.0}, true},
		{"with NaN", VecN{1.0, math.NaN()}, false},
		{"with +Inf", VecN{1.0, math.Inf(1)}, false},
		{"with -Inf", VecN{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.vec); got != tt.valid {
				t.Errorf("IsFinite() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestNormVecN(t *testing.T) {
	tests := []struct {
		vec      VecN
		expected float64
	}{
		{VecN{3, 4}, 5.0},
		{VecN{1, 0}, 1.0},
		{VecN{0, 0}, 0.0},
		{VecN{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := Norm(tt.vec); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.vec, got, tt.expected)
		}
	}
}

func TestVecN_Arithmetic(t *testing.T) {
	a := VecN{1, 2, 3}
	b := VecN{4, 5, 6}

	sum := a.Add(b)
	if sum[0] != 5 || sum[1] != 7 || sum[2] != 9 {
		t.Errorf("Add failed: got %v", sum)
	}

	diff := b.Sub(a)
	if diff[0] != 3 || diff[1] != 3 || diff[2] != 3 {
		t.Errorf("Sub failed: got %v", diff)
	}

	scaled := a.Scale(2)
	if scaled[0] != 2 || scaled[1] != 4 || scaled[2] != 6 {
		t.Errorf("Scale failed: got %v", scaled)
	}

	if a[0] != 1 {
		t.Error("operations must not mutate the receiver")
	}
}

func TestFixedVectors(t *testing.T) {
	a := V2(1, 2)
	b := V2(4, 6)
	if got := Dist(a, b); math.Abs(got-5) > 1e-12 {
		t.Errorf("Dist = %v, want 5", got)
	}
	if got := a.Add(b); got != V2(5, 8) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a).Scale(0.5); got != V2(1.5, 2) {
		t.Errorf("Sub.Scale = %v", got)
	}

	p := V3(1, 2, 2)
	if got := p.Len(); math.Abs(got-3) > 1e-12 {
		t.Errorf("Len = %v, want 3", got)
	}
	if got := Dot(p, V3(1, 0, 1)); got != 3 {
		t.Errorf("Dot = %v, want 3", got)
	}
	if z := Zero(p); z != V3(0, 0, 0) {
		t.Errorf("Zero = %v", z)
	}
}

func TestCentroid(t *testing.T) {
	c, ok := Centroid([]Vec2{V2(0, 0), V2(2, 0), V2(2, 2), V2(0, 2)})
	if !ok {
		t.Fatal("expected centroid")
	}
	if c != V2(1, 1) {
		t.Errorf("Centroid = %v, want (1,1)", c)
	}

	if _, ok := Centroid([]Vec2{}); ok {
		t.Error("empty slice has no centroid")
	}
}

func TestBox(t *testing.T) {
	b, ok := BoundsOf([]Vec2{V2(-1, 0), V2(3, 1), V2(0, 2)})
	if !ok {
		t.Fatal("expected bounds")
	}
	if b.Min[0] != -1 || b.Min[1] != 0 || b.Max[0] != 3 || b.Max[1] != 2 {
		t.Errorf("BoundsOf = %+v", b)
	}
	if b.Side() != 4 {
		t.Errorf("Side = %v, want 4", b.Side())
	}

	c := b.Cube()
	if c.Max[1]-c.Min[1] < 4 {
		t.Errorf("cube not grown on short axis: %+v", c)
	}
	if !Contains(c, V2(3, 2)) {
		t.Error("cube must contain original max corner")
	}

	upper := c.Child(0b11)
	if !Contains(upper, V2(3, 3)) || Contains(upper, V2(0, 0)) {
		t.Errorf("child 3 = %+v", upper)
	}

	e := b.Expand(1)
	if !Contains(e, V2(-2, -1)) || Contains(e, V2(-2.1, 0)) {
		t.Errorf("Expand = %+v", e)
	}
}

func TestBox_Degenerate(t *testing.T) {
	b, _ := BoundsOf([]VecN{{1, 1, 1}, {1, 1, 1}})
	c := b.Cube()
	if c.Side() <= 0 {
		t.Errorf("degenerate cube must have positive side, got %v", c.Side())
	}
}

func TestPhyllotaxis(t *testing.T) {
	for _, dim := range []int{1, 2, 3, 4} {
		pts := Phyllotaxis(50, make(VecN, dim), 0)
		if len(pts) != 50 {
			t.Fatalf("dim %d: got %d points", dim, len(pts))
		}
		for i := range pts {
			if pts[i].Dim() != dim {
				t.Fatalf("dim %d: point %d has dim %d", dim, i, pts[i].Dim())
			}
			for j := i + 1; j < len(pts); j++ {
				if Equal(pts[i], pts[j]) {
					t.Fatalf("dim %d: points %d and %d coincide", dim, i, j)
				}
			}
		}
	}
}
