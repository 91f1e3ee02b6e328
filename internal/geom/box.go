package geom

import "math"

// Box is an axis-aligned region [Min, Max] per axis.
type Box struct {
	Min []float64
	Max []float64
}

func NewBox(min, max []float64) Box {
	b := Box{Min: make([]float64, len(min)), Max: make([]float64, len(max))}
	copy(b.Min, min)
	copy(b.Max, max)
	return b
}

// BoundsOf returns the tight box around pts. It returns false when pts is
// empty.
func BoundsOf[P Point[P]](pts []P) (Box, bool) {
	if len(pts) == 0 {
		return Box{}, false
	}
	d := pts[0].Dim()
	b := Box{Min: make([]float64, d), Max: make([]float64, d)}
	for i := 0; i < d; i++ {
		b.Min[i] = math.Inf(1)
		b.Max[i] = math.Inf(-1)
	}
	for _, p := range pts {
		for i := 0; i < d; i++ {
			v := p.At(i)
			b.Min[i] = math.Min(b.Min[i], v)
			b.Max[i] = math.Max(b.Max[i], v)
		}
	}
	return b, true
}

func (b Box) Dim() int { return len(b.Min) }

// Side returns the largest extent over all axes.
func (b Box) Side() float64 {
	side := 0.0
	for i := range b.Min {
		side = math.Max(side, b.Max[i]-b.Min[i])
	}
	return side
}

// Cube grows b into a cube anchored at Min whose side is the largest extent,
// padded slightly so that the original Max lies strictly inside. Degenerate
// boxes get a unit side.
func (b Box) Cube() Box {
	side := b.Side()
	if side == 0 || math.IsNaN(side) {
		side = 1
	}
	side *= 1 + 1e-9
	c := Box{Min: make([]float64, len(b.Min)), Max: make([]float64, len(b.Min))}
	for i := range b.Min {
		c.Min[i] = b.Min[i]
		c.Max[i] = b.Min[i] + side
	}
	return c
}

func (b Box) Union(o Box) Box {
	u := NewBox(b.Min, b.Max)
	for i := range u.Min {
		if i >= len(o.Min) {
			break
		}
		u.Min[i] = math.Min(u.Min[i], o.Min[i])
		u.Max[i] = math.Max(u.Max[i], o.Max[i])
	}
	return u
}

func (b Box) Mid(i int) float64 { return b.Min[i] + (b.Max[i]-b.Min[i])/2 }

// Child returns the sub-box selected by idx, where bit k of idx picks the
// upper half of axis k.
func (b Box) Child(idx int) Box {
	c := Box{Min: make([]float64, len(b.Min)), Max: make([]float64, len(b.Min))}
	for k := range b.Min {
		mid := b.Mid(k)
		if idx&(1<<k) != 0 {
			c.Min[k], c.Max[k] = mid, b.Max[k]
		} else {
			c.Min[k], c.Max[k] = b.Min[k], mid
		}
	}
	return c
}

// Expand grows the box outward by r on every axis.
func (b Box) Expand(r float64) Box {
	e := Box{Min: make([]float64, len(b.Min)), Max: make([]float64, len(b.Min))}
	for i := range b.Min {
		e.Min[i] = b.Min[i] - r
		e.Max[i] = b.Max[i] + r
	}
	return e
}

// Contains reports whether p lies inside b, boundaries included.
func Contains[P Point[P]](b Box, p P) bool {
	for i := range b.Min {
		v := p.At(i)
		if v < b.Min[i] || v > b.Max[i] {
			return false
		}
	}
	return true
}
