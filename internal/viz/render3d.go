package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/forcesim/internal/geom"
)

// Camera orbits the layout origin. Rotations are applied X, then Y, then Z.
type Camera struct {
	RotX, RotY, RotZ float64
	Zoom             float64
	// Distance from the eye to the origin, in layout units after fitting.
	Distance float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1, Distance: 4}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DY(c.RotY)).Mul3(mgl64.Rotate3DX(c.RotX))
}

// RotatePoint applies the camera rotation to p.
func (c *Camera) RotatePoint(p geom.Vec3) geom.Vec3 {
	return geom.Vec3(c.rotation().Mul3x1(mgl64.Vec3(p)))
}

// Project maps a point already scaled into the unit cube onto a sw x sh dot
// grid with perspective. It returns the dot coordinates, the rotated depth,
// and false for points behind the eye.
func (c *Camera) Project(p geom.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	if rot.Z() >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z())
	half := float64(min(sw, sh)) / 2
	sx := int(rot.X()*persp*half) + sw/2
	sy := int(-rot.Y()*persp*half) + sh/2
	return sx, sy, rot.Z(), true
}
