package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/swarmlab/internal/config"
	"github.com/san-kum/swarmlab/internal/controller"
	"github.com/san-kum/swarmlab/internal/environment"
	"github.com/san-kum/swarmlab/internal/integrator"
	"github.com/san-kum/swarmlab/internal/interaction"
	"github.com/san-kum/swarmlab/internal/metrics"
	"github.com/san-kum/swarmlab/internal/population"
	"github.com/san-kum/swarmlab/internal/swarm"
)

// Registry maps the kind tags a config file may use onto constructors for
// dynamics, integrators, interactions, controllers, and metrics. Factories
// receive the slice of config context their kind needs: interactions get the
// resolved target population so per-agent parameters can feed them,
// controllers get population handles and the environment.
type Registry struct {
	dynamics     map[string]func(cfg config.PopulationConfig) (swarm.Dynamics, error)
	integrators  map[string]func(dt float64) (swarm.Integrator, error)
	interactions map[string]func(target, source int, pop *swarm.Population, params map[string]float64) (swarm.Interaction, error)
	controllers  map[string]func(handle, targets int, env *environment.Environment, point []float64, params map[string]float64) (swarm.Controller, error)
	metrics      map[string]func(popID string, dims int, env *environment.Environment) (swarm.Metric, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		dynamics:     make(map[string]func(config.PopulationConfig) (swarm.Dynamics, error)),
		integrators:  make(map[string]func(float64) (swarm.Integrator, error)),
		interactions: make(map[string]func(int, int, *swarm.Population, map[string]float64) (swarm.Interaction, error)),
		controllers:  make(map[string]func(int, int, *environment.Environment, []float64, map[string]float64) (swarm.Controller, error)),
		metrics:      make(map[string]func(string, int, *environment.Environment) (swarm.Metric, error)),
	}

	r.dynamics["brownian"] = func(cfg config.PopulationConfig) (swarm.Dynamics, error) {
		return population.NewBrownian(cfg.Dim)
	}
	r.dynamics["simple_integrator"] = func(cfg config.PopulationConfig) (swarm.Dynamics, error) {
		return population.NewSimpleIntegrator(cfg.Dim)
	}
	r.dynamics["double_integrator"] = func(cfg config.PopulationConfig) (swarm.Dynamics, error) {
		return population.NewDoubleIntegrator(cfg.Dim)
	}
	r.dynamics["fixed"] = func(cfg config.PopulationConfig) (swarm.Dynamics, error) {
		return population.NewFixed(cfg.Dim)
	}

	r.integrators["euler_maruyama"] = func(dt float64) (swarm.Integrator, error) {
		return integrator.NewEulerMaruyama(dt)
	}
	r.integrators["euler"] = func(dt float64) (swarm.Integrator, error) {
		return integrator.NewEuler(dt)
	}

	r.interactions["harmonic_repulsion"] = func(target, source int, pop *swarm.Population, params map[string]float64) (swarm.Interaction, error) {
		return interaction.NewHarmonic(target, source, params["strength"], params["cutoff"])
	}
	r.interactions["power_law_repulsion"] = func(target, source int, pop *swarm.Population, params map[string]float64) (swarm.Interaction, error) {
		return interaction.NewPowerLawRepulsion(target, source, params["strength"], params["cutoff"], params["exponent"])
	}
	r.interactions["power_law_attraction"] = func(target, source int, pop *swarm.Population, params map[string]float64) (swarm.Interaction, error) {
		return interaction.NewPowerLawAttraction(target, source, params["strength"], params["cutoff"], params["exponent"])
	}
	r.interactions["lennard_jones"] = func(target, source int, pop *swarm.Population, params map[string]float64) (swarm.Interaction, error) {
		epsilon, err := agentParam(pop, params, "epsilon")
		if err != nil {
			return nil, err
		}
		sigma, err := agentParam(pop, params, "sigma")
		if err != nil {
			return nil, err
		}
		return interaction.NewLennardJones(target, source, pop.N(), epsilon, sigma)
	}

	r.controllers["pid"] = func(handle, targets int, env *environment.Environment, point []float64, params map[string]float64) (swarm.Controller, error) {
		return controller.NewPID(handle, point, params["kp"], params["ki"], params["kd"])
	}
	r.controllers["shepherd"] = func(handle, targets int, env *environment.Environment, point []float64, params map[string]float64) (swarm.Controller, error) {
		if targets < 0 {
			return nil, fmt.Errorf("%w: shepherd controller needs a targets population", swarm.ErrConfiguration)
		}
		return controller.NewShepherd(handle, targets, env,
			params["sensing"], params["speed"], params["gain"], params["offset"])
	}
	r.controllers["gaussian_field"] = func(handle, targets int, env *environment.Environment, point []float64, params map[string]float64) (swarm.Controller, error) {
		return controller.NewField(handle, point, params["strength"], params["width"])
	}

	r.metrics["dispersion"] = func(popID string, dims int, env *environment.Environment) (swarm.Metric, error) {
		return metrics.NewDispersion(popID, dims)
	}
	r.metrics["goal_fraction"] = func(popID string, dims int, env *environment.Environment) (swarm.Metric, error) {
		return metrics.NewGoalFraction(popID, env)
	}
	r.metrics["msd"] = func(popID string, dims int, env *environment.Environment) (swarm.Metric, error) {
		return metrics.NewMeanSquaredDisplacement(popID, dims)
	}
	r.metrics["path_length"] = func(popID string, dims int, env *environment.Environment) (swarm.Metric, error) {
		return metrics.NewPathLength(popID, dims)
	}

	return r
}

// agentParam resolves a per-agent interaction parameter: a matching entry in
// the target population's parameter set wins, a scalar under the interaction
// params is broadcast, anything else is a configuration error.
func agentParam(pop *swarm.Population, params map[string]float64, name string) (swarm.Param, error) {
	if p, ok := pop.Params()[name]; ok {
		return p, nil
	}
	if v, ok := params[name]; ok {
		return swarm.Scalar(pop.N(), v), nil
	}
	return swarm.Param{}, fmt.Errorf("%w: interaction needs %q in the target population parameters or its own params",
		swarm.ErrConfiguration, name)
}

func (r *Registry) GetDynamics(cfg config.PopulationConfig) (swarm.Dynamics, error) {
	fn, ok := r.dynamics[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown population kind %q", swarm.ErrConfiguration, cfg.Kind)
	}
	return fn(cfg)
}

func (r *Registry) GetIntegrator(kind string, dt float64) (swarm.Integrator, error) {
	fn, ok := r.integrators[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", swarm.ErrConfiguration, kind)
	}
	return fn(dt)
}

func (r *Registry) GetInteraction(cfg config.InteractionConfig, target, source int, pop *swarm.Population) (swarm.Interaction, error) {
	fn, ok := r.interactions[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown interaction %q", swarm.ErrConfiguration, cfg.Kind)
	}
	return fn(target, source, pop, cfg.Params)
}

func (r *Registry) GetController(cfg config.ControllerConfig, handle, targets int, env *environment.Environment) (swarm.Controller, error) {
	fn, ok := r.controllers[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown controller %q", swarm.ErrConfiguration, cfg.Kind)
	}
	return fn(handle, targets, env, cfg.Target, cfg.Params)
}

func (r *Registry) GetMetric(cfg config.MetricConfig, dims int, env *environment.Environment) (swarm.Metric, error) {
	fn, ok := r.metrics[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", swarm.ErrConfiguration, cfg.Kind)
	}
	return fn(cfg.Population, dims, env)
}

func (r *Registry) ListDynamics() []string     { return sortedKeys(r.dynamics) }
func (r *Registry) ListIntegrators() []string  { return sortedKeys(r.integrators) }
func (r *Registry) ListInteractions() []string { return sortedKeys(r.interactions) }
func (r *Registry) ListControllers() []string  { return sortedKeys(r.controllers) }
func (r *Registry) ListMetrics() []string      { return sortedKeys(r.metrics) }

// ListSamplers returns the distribution tags parameter generation accepts.
func (r *Registry) ListSamplers() []string { return population.SamplerKinds() }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
