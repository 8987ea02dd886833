// Package experiment assembles runnable simulators from declarative
// configuration: it resolves kind tags through a registry, samples initial
// states and per-agent parameters, and wires populations, interactions,
// controllers and metrics into a simulator.
package experiment

import (
	"fmt"
	"sort"
	"time"

	"github.com/san-kum/swarmlab/internal/config"
	"github.com/san-kum/swarmlab/internal/controller"
	"github.com/san-kum/swarmlab/internal/environment"
	"github.com/san-kum/swarmlab/internal/population"
	"github.com/san-kum/swarmlab/internal/simulator"
	"github.com/san-kum/swarmlab/internal/swarm"
)

// Build assembles a ready-to-run simulator from cfg using the seed recorded
// in the config.
func Build(reg *Registry, cfg *config.Config) (*simulator.Simulator, error) {
	return BuildSeeded(reg, cfg, cfg.Simulator.Seed)
}

// BuildSeeded assembles a simulator from cfg with an explicit seed.
// Population sampling draws from the same stream the run will consume, so
// one seed pins both the sampled setup and the trajectory. Populations are
// assembled in declaration order, and within each population the initial
// state is drawn before the parameters.
func BuildSeeded(reg *Registry, cfg *config.Config, seed uint64) (*simulator.Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	integ, err := reg.GetIntegrator(cfg.Integrator.Kind, cfg.Integrator.Dt)
	if err != nil {
		return nil, err
	}

	env, err := environment.New(cfg.Environment.Extents, environment.Boundary(cfg.Environment.Boundary))
	if err != nil {
		return nil, err
	}
	if g := cfg.Environment.Goal; g != nil {
		err := env.SetGoal(environment.Goal{
			Center:      g.Center,
			Radius:      g.Radius,
			FinalCenter: g.FinalCenter,
			StartStep:   g.StartStep,
			Steps:       g.Steps,
		})
		if err != nil {
			return nil, err
		}
	}

	rng := swarm.NewStream(seed)
	sim := simulator.New(integ, env, rng)

	for _, pc := range cfg.Populations {
		pop, err := buildPopulation(reg, pc, rng)
		if err != nil {
			return nil, err
		}
		if _, err := sim.AddPopulation(pop); err != nil {
			return nil, err
		}
	}

	for _, ic := range cfg.Interactions {
		target, err := sim.Handle(ic.Target)
		if err != nil {
			return nil, err
		}
		source, err := sim.Handle(ic.Source)
		if err != nil {
			return nil, err
		}
		x, err := reg.GetInteraction(ic, target, source, sim.Populations()[target])
		if err != nil {
			return nil, err
		}
		if err := sim.AddInteraction(x); err != nil {
			return nil, err
		}
	}

	for _, cc := range cfg.Controllers {
		handle, err := sim.Handle(cc.Population)
		if err != nil {
			return nil, err
		}
		targets := -1
		if cc.Targets != "" {
			if targets, err = sim.Handle(cc.Targets); err != nil {
				return nil, err
			}
		}
		ctrl, err := reg.GetController(cc, handle, targets, env)
		if err != nil {
			return nil, err
		}
		if cc.Period > 0 {
			if ctrl, err = controller.WithPeriod(ctrl, cc.Period, cfg.Integrator.Dt); err != nil {
				return nil, err
			}
		}
		if err := sim.AddController(ctrl); err != nil {
			return nil, err
		}
	}

	for _, mc := range cfg.Metrics {
		handle, err := sim.Handle(mc.Population)
		if err != nil {
			return nil, err
		}
		dims := mc.Dims
		if dims <= 0 {
			dims = sim.Populations()[handle].InputDim()
		}
		m, err := reg.GetMetric(mc, dims, env)
		if err != nil {
			return nil, err
		}
		sim.AddMetric(m)
	}

	if g := cfg.Environment.Goal; g != nil && g.StopFraction > 0 {
		sim.StopWhen(goalStop(env, g.Watch, g.StopFraction))
	}

	return sim, nil
}

// Factory adapts a config to the ensemble contract: every call assembles an
// independent simulator for one realization seed.
func Factory(reg *Registry, cfg *config.Config) simulator.Factory {
	return func(seed uint64) (*simulator.Simulator, error) {
		return BuildSeeded(reg, cfg, seed)
	}
}

// RunConfig converts the run settings of a config file into the options
// Simulator.Run expects.
func RunConfig(cfg *config.Config) simulator.Config {
	return simulator.Config{
		Duration: cfg.Simulator.Duration,
		Dt:       cfg.Integrator.Dt,
		Pace:     time.Duration(cfg.Simulator.Pace),
	}
}

func buildPopulation(reg *Registry, pc config.PopulationConfig, rng *swarm.Stream) (*swarm.Population, error) {
	dyn, err := reg.GetDynamics(pc)
	if err != nil {
		return nil, err
	}

	state, err := initialState(pc, dyn, rng)
	if err != nil {
		return nil, fmt.Errorf("population %q: %w", pc.ID, err)
	}

	params, err := buildParams(pc, rng)
	if err != nil {
		return nil, fmt.Errorf("population %q: %w", pc.ID, err)
	}

	pop, err := swarm.NewPopulation(pc.ID, dyn, state, params)
	if err != nil {
		return nil, err
	}
	if b := pc.Bounds; b != nil {
		if err := pop.SetBounds(b.Lower, b.Upper); err != nil {
			return nil, err
		}
	}
	return pop, nil
}

// initialState samples or loads the spatial block of the initial state.
// Dynamics whose state is wider than their input, such as second-order
// kinds, get the sampled block embedded in the leading columns and zeros
// elsewhere.
func initialState(pc config.PopulationConfig, dyn swarm.Dynamics, rng *swarm.Stream) (*swarm.Matrix, error) {
	k := dyn.InputDim()

	var sampled *swarm.Matrix
	var err error
	if pc.Initial.Mode == "file" {
		sampled, err = population.LoadInitial(pc.Initial.File, pc.N, k)
	} else {
		sampled, err = population.SampleInitial(pc.N, k, initSpec(pc.Initial), rng)
	}
	if err != nil {
		return nil, err
	}

	if dyn.StateDim() == k {
		return sampled, nil
	}
	state := swarm.NewMatrix(pc.N, dyn.StateDim())
	for i := 0; i < pc.N; i++ {
		for j := 0; j < k; j++ {
			state.Set(i, j, sampled.At(i, j))
		}
	}
	return state, nil
}

func initSpec(ic config.InitialConfig) population.InitSpec {
	shape := ic.Shape
	if shape == "" {
		shape = "box"
	}
	return population.InitSpec{
		Shape:     shape,
		Lower:     ic.Lower,
		Upper:     ic.Upper,
		MinRadius: ic.MinRadius,
		MaxRadius: ic.MaxRadius,
		MinDist:   ic.MinDist,
	}
}

func buildParams(pc config.PopulationConfig, rng *swarm.Stream) (swarm.ParamSet, error) {
	if pc.Params.Mode == "file" {
		return population.LoadParams(pc.Params.File, pc.N)
	}
	return population.SampleParams(pc.N, paramSpecs(pc.Params.Generate), rng)
}

// paramSpecs flattens the generate map into name-sorted specs so the
// sampling order does not depend on map iteration.
func paramSpecs(generate map[string]config.ParamValue) []population.ParamSpec {
	names := make([]string, 0, len(generate))
	for name := range generate {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]population.ParamSpec, 0, len(names))
	for _, name := range names {
		v := generate[name]
		spec := population.ParamSpec{
			Name:        name,
			Sampler:     v.Sampler,
			Args:        v.Args,
			Cols:        v.Cols,
			Homogeneous: v.Homogeneous,
		}
		if v.Const != nil {
			spec.Const = *v.Const
		}
		specs = append(specs, spec)
	}
	return specs
}

// goalStop ends the run once the watched population has the given fraction
// of its agents inside the goal region. The goal position is read live, so a
// drifting goal is judged where it currently stands.
func goalStop(env *environment.Environment, watch string, fraction float64) func(swarm.Snapshot) bool {
	return func(snap swarm.Snapshot) bool {
		x, ok := snap.States[watch]
		if !ok {
			return false
		}
		center, radius, ok := env.Goal()
		if !ok {
			return false
		}
		k := len(center)
		if c := x.Cols(); c < k {
			k = c
		}
		inside := 0
		for i := 0; i < x.Rows(); i++ {
			d2 := 0.0
			for j := 0; j < k; j++ {
				d := x.At(i, j) - center[j]
				d2 += d * d
			}
			if d2 <= radius*radius {
				inside++
			}
		}
		return float64(inside) >= fraction*float64(x.Rows())
	}
}
