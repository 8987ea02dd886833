package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swarmlab/internal/swarm"
)

const (
	DefaultDuration = 10.0
	DefaultDt       = 0.01
	DefaultSeed     = 1
)

// Config is the declarative description of a complete simulation: the run
// settings, the integrator, the environment and every population with its
// interactions, controllers and metrics.
type Config struct {
	Simulator    SimulatorConfig     `yaml:"simulator"`
	Integrator   IntegratorConfig    `yaml:"integrator"`
	Environment  EnvironmentConfig   `yaml:"environment"`
	Populations  []PopulationConfig  `yaml:"populations"`
	Interactions []InteractionConfig `yaml:"interactions"`
	Controllers  []ControllerConfig  `yaml:"controllers"`
	Metrics      []MetricConfig      `yaml:"metrics"`
}

type SimulatorConfig struct {
	Duration float64  `yaml:"duration"`
	Dt       float64  `yaml:"dt"`
	Seed     uint64   `yaml:"seed"`
	Pace     Duration `yaml:"pace"`
}

type IntegratorConfig struct {
	Kind string  `yaml:"kind"`
	Dt   float64 `yaml:"dt"`
}

type EnvironmentConfig struct {
	Extents  []float64   `yaml:"extents"`
	Boundary string      `yaml:"boundary"`
	Goal     *GoalConfig `yaml:"goal"`
}

// GoalConfig describes the goal region. A non-zero StopFraction stops the
// run once that fraction of the watched population is inside the goal.
type GoalConfig struct {
	Center       []float64 `yaml:"center"`
	Radius       float64   `yaml:"radius"`
	FinalCenter  []float64 `yaml:"final_center"`
	StartStep    int       `yaml:"start_step"`
	Steps        int       `yaml:"steps"`
	StopFraction float64   `yaml:"stop_fraction"`
	Watch        string    `yaml:"watch"`
}

// PopulationConfig describes one agent population. Dim is the spatial
// dimension; second-order kinds carry a state twice as wide.
type PopulationConfig struct {
	ID      string        `yaml:"id"`
	Kind    string        `yaml:"kind"`
	N       int           `yaml:"n"`
	Dim     int           `yaml:"dim"`
	Initial InitialConfig `yaml:"initial"`
	Params  ParamsConfig  `yaml:"params"`
	Bounds  *BoundsConfig `yaml:"bounds"`
}

type InitialConfig struct {
	Mode      string    `yaml:"mode"`
	Shape     string    `yaml:"shape"`
	Lower     []float64 `yaml:"lower"`
	Upper     []float64 `yaml:"upper"`
	MinRadius float64   `yaml:"min_radius"`
	MaxRadius float64   `yaml:"max_radius"`
	MinDist   float64   `yaml:"min_dist"`
	File      string    `yaml:"file"`
}

type ParamsConfig struct {
	Mode     string                `yaml:"mode"`
	Generate map[string]ParamValue `yaml:"generate"`
	File     string                `yaml:"file"`
}

type BoundsConfig struct {
	Lower []float64 `yaml:"lower"`
	Upper []float64 `yaml:"upper"`
}

type InteractionConfig struct {
	Kind   string             `yaml:"kind"`
	Target string             `yaml:"target"`
	Source string             `yaml:"source"`
	Params map[string]float64 `yaml:"params"`
}

type ControllerConfig struct {
	Kind       string             `yaml:"kind"`
	Population string             `yaml:"population"`
	Targets    string             `yaml:"targets"`
	Target     []float64          `yaml:"target"`
	Params     map[string]float64 `yaml:"params"`
	Period     float64            `yaml:"period"`
}

type MetricConfig struct {
	Kind       string `yaml:"kind"`
	Population string `yaml:"population"`
	Dims       int    `yaml:"dims"`
}

// ParamValue is either a constant (a plain YAML number) or a sampler spec
// with per-sampler args. Cols widens the parameter to a per-agent vector,
// Homogeneous draws once and shares the value across the population.
type ParamValue struct {
	Const       *float64           `yaml:"-"`
	Sampler     string             `yaml:"sampler"`
	Args        map[string]float64 `yaml:"args"`
	Cols        int                `yaml:"cols"`
	Homogeneous bool               `yaml:"homogeneous"`
}

func (p *ParamValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		p.Const = &f
		return nil
	}
	type plain ParamValue
	var v plain
	if err := value.Decode(&v); err != nil {
		return err
	}
	*p = ParamValue(v)
	return nil
}

func (p ParamValue) MarshalYAML() (any, error) {
	if p.Const != nil {
		return *p.Const, nil
	}
	type plain ParamValue
	return plain(p), nil
}

// Duration wraps time.Duration to unmarshal from strings like "150ms" as
// well as from plain numbers of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%w: pace %q: %v", swarm.ErrConfiguration, s, err)
		}
		*d = Duration(v)
		return nil
	}
	var f float64
	if err := value.Decode(&f); err != nil {
		return fmt.Errorf("%w: pace is neither a duration nor seconds", swarm.ErrConfiguration)
	}
	*d = Duration(time.Duration(f * float64(time.Second)))
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func DefaultConfig() *Config {
	return &Config{
		Simulator:   SimulatorConfig{Duration: DefaultDuration, Seed: DefaultSeed},
		Integrator:  IntegratorConfig{Kind: "euler_maruyama", Dt: DefaultDt},
		Environment: EnvironmentConfig{Boundary: "none"},
	}
}

// Load reads a YAML file over the defaults. The result is not validated;
// callers run Validate before building a simulation from it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", swarm.ErrConfiguration, path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone deep-copies a configuration through the YAML codec.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil
	}
	return out
}

// Validate checks the structural integrity of the configuration: positive
// run settings, well-formed population declarations and resolvable
// population references. Kind and sampler tags are resolved later against
// the experiment registries.
func (c *Config) Validate() error {
	if c.Simulator.Duration <= 0 {
		return fmt.Errorf("%w: duration %v", swarm.ErrConfiguration, c.Simulator.Duration)
	}
	if c.Simulator.Pace < 0 {
		return fmt.Errorf("%w: pace %v", swarm.ErrConfiguration, time.Duration(c.Simulator.Pace))
	}
	if c.Integrator.Dt <= 0 {
		return fmt.Errorf("%w: integrator dt %v", swarm.ErrConfiguration, c.Integrator.Dt)
	}
	if c.Simulator.Dt != 0 && c.Simulator.Dt != c.Integrator.Dt {
		return fmt.Errorf("%w: simulator dt %v disagrees with integrator dt %v",
			swarm.ErrConfiguration, c.Simulator.Dt, c.Integrator.Dt)
	}

	if len(c.Populations) == 0 {
		return fmt.Errorf("%w: no populations declared", swarm.ErrConfiguration)
	}
	ids := make(map[string]bool, len(c.Populations))
	for i, p := range c.Populations {
		if p.ID == "" {
			return fmt.Errorf("%w: population %d has no id", swarm.ErrConfiguration, i)
		}
		if ids[p.ID] {
			return fmt.Errorf("%w: population id %q declared twice", swarm.ErrConfiguration, p.ID)
		}
		ids[p.ID] = true
		if p.Kind == "" {
			return fmt.Errorf("%w: population %q has no kind", swarm.ErrConfiguration, p.ID)
		}
		if p.N <= 0 {
			return fmt.Errorf("%w: population %q has n=%d", swarm.ErrConfiguration, p.ID, p.N)
		}
		if p.Dim <= 0 {
			return fmt.Errorf("%w: population %q has dim=%d", swarm.ErrConfiguration, p.ID, p.Dim)
		}
		if err := p.Initial.validate(p.ID); err != nil {
			return err
		}
		if err := p.Params.validate(p.ID); err != nil {
			return err
		}
	}

	for i, x := range c.Interactions {
		if !ids[x.Target] {
			return fmt.Errorf("%w: interaction %d targets %q", swarm.ErrUnknownPopulation, i, x.Target)
		}
		if !ids[x.Source] {
			return fmt.Errorf("%w: interaction %d sources %q", swarm.ErrUnknownPopulation, i, x.Source)
		}
	}
	for i, ctl := range c.Controllers {
		if !ids[ctl.Population] {
			return fmt.Errorf("%w: controller %d drives %q", swarm.ErrUnknownPopulation, i, ctl.Population)
		}
		if ctl.Targets != "" && !ids[ctl.Targets] {
			return fmt.Errorf("%w: controller %d watches %q", swarm.ErrUnknownPopulation, i, ctl.Targets)
		}
		if ctl.Period < 0 {
			return fmt.Errorf("%w: controller %d period %v", swarm.ErrConfiguration, i, ctl.Period)
		}
	}
	for i, m := range c.Metrics {
		if !ids[m.Population] {
			return fmt.Errorf("%w: metric %d observes %q", swarm.ErrUnknownPopulation, i, m.Population)
		}
	}

	for i, w := range c.Environment.Extents {
		if w <= 0 {
			return fmt.Errorf("%w: extent %d is %v", swarm.ErrConfiguration, i, w)
		}
	}
	if g := c.Environment.Goal; g != nil {
		if g.Radius <= 0 {
			return fmt.Errorf("%w: goal radius %v", swarm.ErrConfiguration, g.Radius)
		}
		if len(g.Center) == 0 {
			return fmt.Errorf("%w: goal has no center", swarm.ErrConfiguration)
		}
		if g.FinalCenter != nil && len(g.FinalCenter) != len(g.Center) {
			return fmt.Errorf("%w: goal final center has %d components, center has %d",
				swarm.ErrConfiguration, len(g.FinalCenter), len(g.Center))
		}
		if g.FinalCenter != nil && g.Steps <= 0 {
			return fmt.Errorf("%w: drifting goal needs steps > 0", swarm.ErrConfiguration)
		}
		if g.StopFraction < 0 || g.StopFraction > 1 {
			return fmt.Errorf("%w: goal stop fraction %v outside [0, 1]", swarm.ErrConfiguration, g.StopFraction)
		}
		if g.StopFraction > 0 && !ids[g.Watch] {
			return fmt.Errorf("%w: goal watches %q", swarm.ErrUnknownPopulation, g.Watch)
		}
	}
	return nil
}

func (ic InitialConfig) validate(id string) error {
	if ic.MinDist < 0 {
		return fmt.Errorf("%w: population %q initial min_dist %v", swarm.ErrConfiguration, id, ic.MinDist)
	}
	switch ic.Mode {
	case "", "random":
		switch ic.Shape {
		case "", "box":
			if len(ic.Lower) != len(ic.Upper) {
				return fmt.Errorf("%w: population %q box bounds have %d lower and %d upper values",
					swarm.ErrConfiguration, id, len(ic.Lower), len(ic.Upper))
			}
		case "circle":
			if ic.MinRadius < 0 || ic.MaxRadius <= ic.MinRadius {
				return fmt.Errorf("%w: population %q circle radii [%v, %v]",
					swarm.ErrConfiguration, id, ic.MinRadius, ic.MaxRadius)
			}
		default:
			return fmt.Errorf("%w: population %q initial shape %q", swarm.ErrConfiguration, id, ic.Shape)
		}
	case "file":
		if ic.File == "" {
			return fmt.Errorf("%w: population %q initial mode file needs a path", swarm.ErrConfiguration, id)
		}
	default:
		return fmt.Errorf("%w: population %q initial mode %q", swarm.ErrConfiguration, id, ic.Mode)
	}
	return nil
}

func (pc ParamsConfig) validate(id string) error {
	switch pc.Mode {
	case "", "generate":
		for name, v := range pc.Generate {
			if v.Const == nil && v.Sampler == "" {
				return fmt.Errorf("%w: population %q parameter %q is neither constant nor sampled",
					swarm.ErrConfiguration, id, name)
			}
			if v.Cols < 0 {
				return fmt.Errorf("%w: population %q parameter %q cols %d",
					swarm.ErrConfiguration, id, name, v.Cols)
			}
		}
	case "file":
		if pc.File == "" {
			return fmt.Errorf("%w: population %q params mode file needs a path", swarm.ErrConfiguration, id)
		}
	default:
		return fmt.Errorf("%w: population %q params mode %q", swarm.ErrConfiguration, id, pc.Mode)
	}
	return nil
}
