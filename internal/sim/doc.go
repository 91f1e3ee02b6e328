// Package sim runs force-directed layouts.
//
// A [Simulation] owns the position and velocity buffers of n nodes, an
// ordered set of named forces and a [CoolingStepper]. Each call to
// [Simulation.Tick] applies every force in registration order, integrates
// velocities into positions and advances the cooling schedule. Once the
// schedule has settled and no force reports pending work, ticks are no-ops.
//
// Simulations are safe for concurrent use: a UI goroutine may read
// snapshots, pin nodes or retarget the cooling schedule while another
// goroutine ticks.
package sim
