package sim

import (
	"fmt"

	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
)

type namedForce[P geom.Point[P]] struct {
	name  string
	force force.Force[P]
}

// registry keeps forces in insertion order, which is application order.
type registry[P geom.Point[P]] struct {
	entries []namedForce[P]
}

func (r *registry[P]) find(name string) int {
	for i, e := range r.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

func (r *registry[P]) add(name string, f force.Force[P]) error {
	if r.find(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateForce, name)
	}
	r.entries = append(r.entries, namedForce[P]{name: name, force: f})
	return nil
}

func (r *registry[P]) replace(name string, f force.Force[P]) error {
	i := r.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownForce, name)
	}
	r.entries[i].force = f
	return nil
}

func (r *registry[P]) remove(name string) error {
	i := r.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownForce, name)
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	return nil
}

func (r *registry[P]) get(name string) (force.Force[P], bool) {
	if i := r.find(name); i >= 0 {
		return r.entries[i].force, true
	}
	return nil, false
}

func (r *registry[P]) names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}
