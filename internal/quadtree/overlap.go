package quadtree

import "github.com/san-kum/forcesim/internal/geom"

// MayCollide reports whether target lies inside region expanded outward by
// radius on every axis. A false result proves that no point of region is
// within radius of target; a true result only means it might be.
func MayCollide[P geom.Point[P]](region geom.Box, radius float64, target P) bool {
	for k := range region.Min {
		v := target.At(k)
		if v < region.Min[k]-radius || v > region.Max[k]+radius {
			return false
		}
	}
	return true
}
