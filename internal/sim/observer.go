package sim

import "github.com/san-kum/forcesim/internal/geom"

// Frame describes a completed tick. The slices alias the simulation's
// buffers and are only valid during the callback.
type Frame[P geom.Point[P]] struct {
	Tick       int
	Alpha      float64
	Positions  []P
	Velocities []P
}

// Observer is notified after every tick that did work, while the
// simulation's lock is held. Observers must not call back into the
// simulation.
type Observer[P geom.Point[P]] interface {
	OnTick(f Frame[P])
}

type ObserverFunc[P geom.Point[P]] func(f Frame[P])

func (fn ObserverFunc[P]) OnTick(f Frame[P]) { fn(f) }
