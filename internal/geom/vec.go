package geom

import "github.com/go-gl/mathgl/mgl64"

// Vec2 is a fixed 2D point.
type Vec2 mgl64.Vec2

func V2(x, y float64) Vec2 { return Vec2{x, y} }

func (v Vec2) Dim() int             { return 2 }
func (v Vec2) At(i int) float64     { return v[i] }
func (v Vec2) X() float64           { return v[0] }
func (v Vec2) Y() float64           { return v[1] }
func (v Vec2) Add(o Vec2) Vec2      { return Vec2(mgl64.Vec2(v).Add(mgl64.Vec2(o))) }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2(mgl64.Vec2(v).Sub(mgl64.Vec2(o))) }
func (v Vec2) Scale(s float64) Vec2 { return Vec2(mgl64.Vec2(v).Mul(s)) }
func (v Vec2) Len() float64         { return mgl64.Vec2(v).Len() }

func (v Vec2) Map(fn func(i int, x float64) float64) Vec2 {
	return Vec2{fn(0, v[0]), fn(1, v[1])}
}

// Vec3 is a fixed 3D point.
type Vec3 mgl64.Vec3

func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Dim() int             { return 3 }
func (v Vec3) At(i int) float64     { return v[i] }
func (v Vec3) X() float64           { return v[0] }
func (v Vec3) Y() float64           { return v[1] }
func (v Vec3) Z() float64           { return v[2] }
func (v Vec3) Add(o Vec3) Vec3      { return Vec3(mgl64.Vec3(v).Add(mgl64.Vec3(o))) }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3(mgl64.Vec3(v).Sub(mgl64.Vec3(o))) }
func (v Vec3) Scale(s float64) Vec3 { return Vec3(mgl64.Vec3(v).Mul(s)) }
func (v Vec3) Len() float64         { return mgl64.Vec3(v).Len() }

func (v Vec3) Map(fn func(i int, x float64) float64) Vec3 {
	return Vec3{fn(0, v[0]), fn(1, v[1]), fn(2, v[2])}
}
