package force

// Edge is anything that names two node indexes.
type Edge interface {
	Endpoints() (src, dst int)
}

// Link is a record edge. A zero Strength or Distance leaves that edge on the
// force's configured value.
type Link struct {
	Source   int     `json:"source"`
	Target   int     `json:"target"`
	Strength float64 `json:"strength,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

func (l Link) Endpoints() (int, int) { return l.Source, l.Target }

func (l Link) EdgeStrength() (float64, bool) { return l.Strength, l.Strength != 0 }
func (l Link) EdgeDistance() (float64, bool) { return l.Distance, l.Distance != 0 }

// Pair is a positional edge: source then target.
type Pair [2]int

func (p Pair) Endpoints() (int, int) { return p[0], p[1] }

// Edges with their own spring parameters implement these; a false second
// result defers to the force.
type strengthOverride interface {
	EdgeStrength() (float64, bool)
}

type distanceOverride interface {
	EdgeDistance() (float64, bool)
}
