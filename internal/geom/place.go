package geom

import "math"

const (
	// DefaultPlacementRadius matches d3's initial phyllotaxis radius.
	DefaultPlacementRadius = 10.0

	goldenAngle = math.Pi * 0.7639320225002102 // π(3-√5)
	yawAngle    = math.Pi * 20 / 23.866068747318506
)

// Phyllotaxis places n points on a sunflower spiral in the space of like.
// One-dimensional spaces get evenly spaced points, two dimensions the
// classic spiral, and three or more an interleaved spherical spiral with any
// further axes left at zero.
func Phyllotaxis[P Point[P]](n int, like P, radius float64) []P {
	if radius <= 0 {
		radius = DefaultPlacementRadius
	}
	dim := like.Dim()
	pts := make([]P, n)
	for i := 0; i < n; i++ {
		fi := float64(i)
		var coords [3]float64
		switch {
		case dim <= 1:
			coords[0] = fi * radius
		case dim == 2:
			r := radius * math.Sqrt(0.5+fi)
			a := fi * goldenAngle
			coords[0], coords[1] = r*math.Cos(a), r*math.Sin(a)
		default:
			r := radius * math.Cbrt(0.5+fi)
			roll := fi * goldenAngle
			yaw := fi * yawAngle
			coords[0] = r * math.Cos(roll)
			coords[1] = r * math.Sin(roll) * math.Cos(yaw)
			coords[2] = r * math.Sin(roll) * math.Sin(yaw)
		}
		pts[i] = like.Map(func(k int, _ float64) float64 {
			if k < len(coords) {
				return coords[k]
			}
			return 0
		})
	}
	return pts
}
