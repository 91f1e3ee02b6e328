// Package geom provides the point arithmetic the layout engine is written
// against.
//
// The engine never depends on a concrete coordinate container. Instead every
// coordinate type implements [Point], a small capability of addition,
// subtraction, scaling, per-axis access and per-axis mapping:
//
//   - [Vec2]: fixed 2D tuple backed by mgl64.Vec2
//   - [Vec3]: fixed 3D tuple backed by mgl64.Vec3
//   - [VecN]: dynamic vector of any length
//
// Derived operations ([Dot], [Dist], [Dist2], [Zero], ...) are generic
// functions over that capability.
//
// # Example
//
//	a := geom.V2(1, 2)
//	b := geom.V2(4, 6)
//	d := geom.Dist(a, b) // 5
package geom
