package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/forcesim/internal/geom"
)

const (
	DefaultDimensions    = 2
	DefaultMaxTicks      = 1000
	DefaultNodes         = 60
	DefaultRadius        = 5.0
	DefaultVelocityDecay = 0.4
	DefaultAlphaMin      = 0.001
	DefaultIterations    = 300
)

// Force kinds understood by the experiment builder.
const (
	KindCenter   = "center"
	KindPosition = "position"
	KindLink     = "link"
	KindManyBody = "manybody"
	KindCollide  = "collide"
)

var Kinds = []string{KindCenter, KindCollide, KindLink, KindManyBody, KindPosition}

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Name          string        `yaml:"name" toml:"name"`
	Dimensions    int           `yaml:"dimensions" toml:"dimensions"`
	Seed          int64         `yaml:"seed" toml:"seed"`
	MaxTicks      int           `yaml:"max_ticks" toml:"max_ticks"`
	Workers       int           `yaml:"workers" toml:"workers"`
	VelocityDecay float64       `yaml:"velocity_decay" toml:"velocity_decay"`
	Alpha         AlphaConfig   `yaml:"alpha" toml:"alpha"`
	Graph         GraphConfig   `yaml:"graph" toml:"graph"`
	Forces        []ForceConfig `yaml:"forces" toml:"forces"`
}

// AlphaConfig shapes the cooling schedule. A zero Decay is derived from Min
// and Iterations.
type AlphaConfig struct {
	Initial    float64 `yaml:"initial" toml:"initial"`
	Min        float64 `yaml:"min" toml:"min"`
	Target     float64 `yaml:"target" toml:"target"`
	Decay      float64 `yaml:"decay,omitempty" toml:"decay,omitempty"`
	Iterations int     `yaml:"iterations" toml:"iterations"`
}

// GraphConfig names either a JSON graph file or a generator.
type GraphConfig struct {
	File      string  `yaml:"file,omitempty" toml:"file,omitempty"`
	Generator string  `yaml:"generator,omitempty" toml:"generator,omitempty"`
	Nodes     int     `yaml:"nodes,omitempty" toml:"nodes,omitempty"`
	Branching int     `yaml:"branching,omitempty" toml:"branching,omitempty"`
	Clusters  int     `yaml:"clusters,omitempty" toml:"clusters,omitempty"`
	Edges     int     `yaml:"edges,omitempty" toml:"edges,omitempty"`
	Radius    float64 `yaml:"radius,omitempty" toml:"radius,omitempty"`
}

// ForceConfig describes one registered force. Nil fields keep the force's
// own default. Name defaults to Kind.
type ForceConfig struct {
	Name        string    `yaml:"name,omitempty" toml:"name,omitempty"`
	Kind        string    `yaml:"kind" toml:"kind"`
	Strength    *float64  `yaml:"strength,omitempty" toml:"strength,omitempty"`
	Distance    *float64  `yaml:"distance,omitempty" toml:"distance,omitempty"`
	Iterations  int       `yaml:"iterations,omitempty" toml:"iterations,omitempty"`
	Radius      *float64  `yaml:"radius,omitempty" toml:"radius,omitempty"`
	Theta       *float64  `yaml:"theta,omitempty" toml:"theta,omitempty"`
	DistanceMin *float64  `yaml:"distance_min,omitempty" toml:"distance_min,omitempty"`
	DistanceMax *float64  `yaml:"distance_max,omitempty" toml:"distance_max,omitempty"`
	Center      []float64 `yaml:"center,omitempty" toml:"center,omitempty"`
	Target      []float64 `yaml:"target,omitempty" toml:"target,omitempty"`
	Axes        []int     `yaml:"axes,omitempty" toml:"axes,omitempty"`
}

func (f ForceConfig) Key() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Kind
}

// Float is a helper for filling optional fields.
func Float(v float64) *float64 { return &v }

func DefaultConfig() *Config {
	return &Config{
		Name:          "default",
		Dimensions:    DefaultDimensions,
		Seed:          1,
		MaxTicks:      DefaultMaxTicks,
		VelocityDecay: DefaultVelocityDecay,
		Alpha: AlphaConfig{
			Initial:    1,
			Min:        DefaultAlphaMin,
			Iterations: DefaultIterations,
		},
		Graph: GraphConfig{
			Generator: "ring",
			Nodes:     DefaultNodes,
			Radius:    DefaultRadius,
		},
		Forces: []ForceConfig{
			{Kind: KindLink},
			{Kind: KindManyBody},
			{Kind: KindCenter},
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or, for .toml paths, TOML file over the defaults.
// A file that describes the graph or lists forces replaces those sections
// of the defaults wholesale.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def := DefaultConfig()
	cfg := DefaultConfig()
	cfg.Graph = GraphConfig{}
	cfg.Forces = nil
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Graph == (GraphConfig{}) {
		cfg.Graph = def.Graph
	}
	if cfg.Forces == nil {
		cfg.Forces = def.Forces
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks ranges and cross-field consistency. It does not open the
// graph file.
func (c *Config) Validate() error {
	if c.Dimensions < 1 || c.Dimensions > geom.MaxDim {
		return invalid("dimensions %d outside [1, %d]", c.Dimensions, geom.MaxDim)
	}
	if c.MaxTicks < 0 {
		return invalid("max_ticks %d is negative", c.MaxTicks)
	}
	if c.Workers < 0 {
		return invalid("workers %d is negative", c.Workers)
	}
	if c.VelocityDecay < 0 || c.VelocityDecay > 1 {
		return invalid("velocity_decay %v outside [0, 1]", c.VelocityDecay)
	}
	if err := c.Alpha.validate(); err != nil {
		return err
	}
	if err := c.Graph.validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Forces))
	for i, f := range c.Forces {
		if err := f.validate(c.Dimensions); err != nil {
			return fmt.Errorf("force %d (%s): %w", i, f.Key(), err)
		}
		if seen[f.Key()] {
			return invalid("force name %q used twice", f.Key())
		}
		seen[f.Key()] = true
	}
	return nil
}

func (a AlphaConfig) validate() error {
	switch {
	case a.Initial < 0 || a.Initial > 1:
		return invalid("alpha.initial %v outside [0, 1]", a.Initial)
	case a.Min <= 0 || a.Min >= 1:
		return invalid("alpha.min %v outside (0, 1)", a.Min)
	case a.Target < 0 || a.Target > 1:
		return invalid("alpha.target %v outside [0, 1]", a.Target)
	case a.Decay < 0 || a.Decay > 1:
		return invalid("alpha.decay %v outside [0, 1]", a.Decay)
	case a.Decay == 0 && a.Iterations < 1:
		return invalid("alpha.iterations must be positive when decay is unset")
	}
	return nil
}

func (g GraphConfig) validate() error {
	switch {
	case g.File == "" && g.Generator == "":
		return invalid("graph needs a file or a generator")
	case g.File != "" && g.Generator != "":
		return invalid("graph file and generator are exclusive")
	case g.Nodes < 0 || g.Edges < 0 || g.Clusters < 0 || g.Branching < 0:
		return invalid("graph sizes must not be negative")
	case g.Radius < 0:
		return invalid("graph radius %v is negative", g.Radius)
	}
	return nil
}

func (f ForceConfig) validate(dim int) error {
	known := false
	for _, k := range Kinds {
		known = known || k == f.Kind
	}
	if !known {
		return invalid("unknown kind %q", f.Kind)
	}
	if f.Iterations < 0 {
		return invalid("iterations %d is negative", f.Iterations)
	}
	if f.Center != nil && len(f.Center) != dim {
		return invalid("center has %d coordinates, want %d", len(f.Center), dim)
	}
	if f.Target != nil && len(f.Target) != dim {
		return invalid("target has %d coordinates, want %d", len(f.Target), dim)
	}
	for _, ax := range f.Axes {
		if ax < 0 || ax >= dim {
			return invalid("axis %d outside [0, %d)", ax, dim)
		}
	}
	return nil
}
