package geom

import "math"

// MaxDim is the largest dimension the spatial index will split over.
// Each split allocates 2^d children.
const MaxDim = 10

// Point is the arithmetic capability shared by every coordinate type.
// Implementations are values; operations return new points and never mutate
// the receiver.
type Point[P any] interface {
	Dim() int
	At(i int) float64
	Add(q P) P
	Sub(q P) P
	Scale(s float64) P
	Map(fn func(i int, x float64) float64) P
}

func Dot[P Point[P]](a, b P) float64 {
	sum := 0.0
	for i := 0; i < a.Dim(); i++ {
		sum += a.At(i) * b.At(i)
	}
	return sum
}

func Norm2[P Point[P]](p P) float64 { return Dot(p, p) }

func Norm[P Point[P]](p P) float64 { return math.Sqrt(Dot(p, p)) }

func Dist2[P Point[P]](a, b P) float64 { return Norm2(a.Sub(b)) }

func Dist[P Point[P]](a, b P) float64 { return math.Sqrt(Dist2(a, b)) }

// Zero returns the origin in the space of like.
func Zero[P Point[P]](like P) P {
	return like.Map(func(int, float64) float64 { return 0 })
}

// IsFinite reports whether no coordinate is NaN or infinite.
func IsFinite[P Point[P]](p P) bool {
	for i := 0; i < p.Dim(); i++ {
		v := p.At(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Equal reports exact coordinate equality.
func Equal[P Point[P]](a, b P) bool {
	if a.Dim() != b.Dim() {
		return false
	}
	for i := 0; i < a.Dim(); i++ {
		if a.At(i) != b.At(i) {
			return false
		}
	}
	return true
}

func Coords[P Point[P]](p P) []float64 {
	out := make([]float64, p.Dim())
	for i := range out {
		out[i] = p.At(i)
	}
	return out
}

// Centroid is the unweighted mean of pts. It returns false for an empty slice.
func Centroid[P Point[P]](pts []P) (P, bool) {
	var c P
	if len(pts) == 0 {
		return c, false
	}
	c = Zero(pts[0])
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(pts))), true
}

// Less orders points lexicographically by coordinate.
func Less[P Point[P]](a, b P) bool {
	for i := 0; i < a.Dim(); i++ {
		if a.At(i) != b.At(i) {
			return a.At(i) < b.At(i)
		}
	}
	return false
}
