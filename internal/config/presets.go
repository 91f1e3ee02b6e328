package config

import "sort"

var Presets = map[string]*Config{
	"ring": {
		Name: "ring", Dimensions: 2, Seed: 1, MaxTicks: 600, VelocityDecay: 0.4,
		Alpha: AlphaConfig{Initial: 1, Min: 0.001, Iterations: 300},
		Graph: GraphConfig{Generator: "ring", Nodes: 40, Radius: 4},
		Forces: []ForceConfig{
			{Kind: KindLink, Distance: Float(20)},
			{Kind: KindManyBody},
			{Kind: KindCenter},
		},
	},
	"grid": {
		Name: "grid", Dimensions: 2, Seed: 1, MaxTicks: 800, VelocityDecay: 0.4,
		Alpha: AlphaConfig{Initial: 1, Min: 0.001, Iterations: 300},
		Graph: GraphConfig{Generator: "grid", Nodes: 100, Radius: 3},
		Forces: []ForceConfig{
			{Kind: KindLink, Distance: Float(15), Iterations: 2},
			{Kind: KindManyBody, Strength: Float(-20)},
			{Kind: KindCenter},
		},
	},
	"tree": {
		Name: "tree", Dimensions: 2, Seed: 1, MaxTicks: 800, VelocityDecay: 0.4,
		Alpha: AlphaConfig{Initial: 1, Min: 0.001, Iterations: 300},
		Graph: GraphConfig{Generator: "tree", Nodes: 127, Branching: 2, Radius: 3},
		Forces: []ForceConfig{
			{Kind: KindLink, Distance: Float(12)},
			{Kind: KindManyBody, Strength: Float(-40), DistanceMax: Float(200)},
			{Kind: KindCenter},
		},
	},
	"clusters": {
		Name: "clusters", Dimensions: 2, Seed: 7, MaxTicks: 1000, VelocityDecay: 0.4,
		Alpha: AlphaConfig{Initial: 1, Min: 0.001, Iterations: 300},
		Graph: GraphConfig{Generator: "clusters", Nodes: 150, Clusters: 5, Radius: 4},
		Forces: []ForceConfig{
			{Kind: KindLink},
			{Kind: KindManyBody, Theta: Float(0.8)},
			{Kind: KindCollide, Iterations: 2},
			{Kind: KindCenter},
		},
	},
	"bubbles": {
		Name: "bubbles", Dimensions: 2, Seed: 3, MaxTicks: 1000, VelocityDecay: 0.2,
		Alpha: AlphaConfig{Initial: 1, Min: 0.001, Target: 0.3, Iterations: 300},
		Graph: GraphConfig{Generator: "random", Nodes: 200, Edges: 0, Radius: 6},
		Forces: []ForceConfig{
			{Name: "x", Kind: KindPosition, Target: []float64{0, 0}, Axes: []int{0}, Strength: Float(0.02)},
			{Name: "y", Kind: KindPosition, Target: []float64{0, 0}, Axes: []int{1}, Strength: Float(0.02)},
			{Kind: KindCollide, Iterations: 3, Strength: Float(0.9)},
		},
	},
	"galaxy3d": {
		Name: "galaxy3d", Dimensions: 3, Seed: 11, MaxTicks: 600, VelocityDecay: 0.4,
		Alpha: AlphaConfig{Initial: 1, Min: 0.001, Iterations: 300},
		Graph: GraphConfig{Generator: "clusters", Nodes: 300, Clusters: 6, Radius: 2},
		Forces: []ForceConfig{
			{Kind: KindLink, Distance: Float(25)},
			{Kind: KindManyBody, Strength: Float(-15), Theta: Float(0.9), DistanceMin: Float(1)},
			{Kind: KindCenter},
		},
	},
}

// GetPreset returns a deep copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) Clone() *Config {
	out := *c
	out.Forces = make([]ForceConfig, len(c.Forces))
	for i, f := range c.Forces {
		out.Forces[i] = f.clone()
	}
	return &out
}

func (f ForceConfig) clone() ForceConfig {
	ptr := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		return Float(*p)
	}
	f.Strength = ptr(f.Strength)
	f.Distance = ptr(f.Distance)
	f.Radius = ptr(f.Radius)
	f.Theta = ptr(f.Theta)
	f.DistanceMin = ptr(f.DistanceMin)
	f.DistanceMax = ptr(f.DistanceMax)
	f.Center = append([]float64(nil), f.Center...)
	f.Target = append([]float64(nil), f.Target...)
	f.Axes = append([]int(nil), f.Axes...)
	return f
}
