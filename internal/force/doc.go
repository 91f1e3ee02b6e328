// Package force provides the forces a simulation applies each tick.
//
// A force reads and writes the shared position and velocity buffers through
// [Buffers]. Velocity forces ([LinkForce], [ManyBodyForce], [PositionForce])
// scale their effect by alpha so they fade as the layout cools. Position
// forces ([CenterForce], [CollisionForce]) write positions directly and keep
// working at alpha zero; they implement [Restless] so the simulation knows
// when they still have work to do.
//
// Forces are applied in registration order, which matters for position
// forces: a collision pass registered after a center pass sees centered
// positions.
//
// CenterForce and PositionForce both pull toward a point. Combining them
// fights over the centroid and is rarely what you want.
//
// Every force guards its parameters with its own mutex, so setters may be
// called from another goroutine while a simulation ticks.
package force
