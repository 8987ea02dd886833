package config

import "sort"

// Presets are complete, runnable scenario configurations.
var Presets = map[string]*Config{
	"diffusion": {
		Simulator:   SimulatorConfig{Duration: 20, Seed: 7},
		Integrator:  IntegratorConfig{Kind: "euler_maruyama", Dt: 0.01},
		Environment: EnvironmentConfig{Extents: []float64{40, 40}, Boundary: "reflect"},
		Populations: []PopulationConfig{{
			ID: "walkers", Kind: "brownian", N: 200, Dim: 2,
			Initial: InitialConfig{Shape: "box", Lower: []float64{-5, -5}, Upper: []float64{5, 5}},
			Params: ParamsConfig{Generate: map[string]ParamValue{
				"mu":        constant(0),
				"diffusion": {Sampler: "uniform", Args: map[string]float64{"min": 0.5, "max": 1.5}},
			}},
		}},
		Metrics: []MetricConfig{
			{Kind: "msd", Population: "walkers"},
			{Kind: "dispersion", Population: "walkers"},
		},
	},

	"shepherding": {
		Simulator:  SimulatorConfig{Duration: 60, Seed: 17},
		Integrator: IntegratorConfig{Kind: "euler_maruyama", Dt: 0.05},
		Environment: EnvironmentConfig{
			Extents: []float64{80, 80}, Boundary: "clamp",
			Goal: &GoalConfig{Center: []float64{0, 0}, Radius: 5, StopFraction: 0.99, Watch: "sheep"},
		},
		Populations: []PopulationConfig{
			{
				ID: "sheep", Kind: "brownian", N: 60, Dim: 2,
				Initial: InitialConfig{Shape: "circle", MinRadius: 2, MaxRadius: 25},
				Params: ParamsConfig{Generate: map[string]ParamValue{
					"mu":        constant(0),
					"diffusion": constant(0.1),
				}},
			},
			{
				ID: "dogs", Kind: "simple_integrator", N: 5, Dim: 2,
				Initial: InitialConfig{Shape: "circle", MinRadius: 26, MaxRadius: 30},
				Params: ParamsConfig{Generate: map[string]ParamValue{
					"vmax": constant(15),
				}},
			},
		},
		Interactions: []InteractionConfig{{
			Kind: "harmonic_repulsion", Target: "sheep", Source: "dogs",
			Params: map[string]float64{"strength": 3, "cutoff": 3},
		}},
		Controllers: []ControllerConfig{{
			Kind: "shepherd", Population: "dogs", Targets: "sheep",
			Params: map[string]float64{"sensing": 15, "speed": 12, "gain": 3, "offset": 1.5},
		}},
		Metrics: []MetricConfig{
			{Kind: "goal_fraction", Population: "sheep"},
			{Kind: "path_length", Population: "dogs"},
		},
	},

	"cluster": {
		Simulator:   SimulatorConfig{Duration: 30, Seed: 3},
		Integrator:  IntegratorConfig{Kind: "euler_maruyama", Dt: 0.005},
		Environment: EnvironmentConfig{Extents: []float64{20, 20}, Boundary: "reflect"},
		Populations: []PopulationConfig{{
			ID: "atoms", Kind: "brownian", N: 40, Dim: 2,
			// min_dist keeps the start clear of the steep repulsive wall.
			Initial: InitialConfig{Shape: "box", Lower: []float64{-5, -5}, Upper: []float64{5, 5}, MinDist: 1.1},
			Params: ParamsConfig{Generate: map[string]ParamValue{
				"mu":        constant(0),
				"diffusion": constant(0.02),
				"epsilon":   constant(0.5),
				"sigma":     constant(1),
			}},
		}},
		Interactions: []InteractionConfig{{
			Kind: "lennard_jones", Target: "atoms", Source: "atoms",
		}},
		Metrics: []MetricConfig{
			{Kind: "dispersion", Population: "atoms"},
			{Kind: "path_length", Population: "atoms"},
		},
	},

	"corral": {
		Simulator:   SimulatorConfig{Duration: 40, Seed: 23},
		Integrator:  IntegratorConfig{Kind: "euler_maruyama", Dt: 0.01},
		Environment: EnvironmentConfig{Extents: []float64{60, 60}, Boundary: "none"},
		Populations: []PopulationConfig{{
			ID: "walkers", Kind: "brownian", N: 120, Dim: 2,
			Initial: InitialConfig{Shape: "circle", MinRadius: 5, MaxRadius: 20},
			Params: ParamsConfig{Generate: map[string]ParamValue{
				"mu":        constant(0),
				"diffusion": constant(0.3),
			}},
		}},
		Controllers: []ControllerConfig{{
			Kind: "gaussian_field", Population: "walkers", Target: []float64{0, 0},
			Params: map[string]float64{"strength": -4, "width": 8},
		}},
		Metrics: []MetricConfig{
			{Kind: "dispersion", Population: "walkers"},
		},
	},
}

func constant(v float64) ParamValue { return ParamValue{Const: &v} }

// GetPreset returns a deep copy of a named preset, so callers may override
// fields without touching the shared table. Unknown names return nil.
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
