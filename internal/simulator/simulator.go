package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Phase is the simulator lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Running
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Environment is the spatial-domain hook the simulator drives each tick.
type Environment interface {
	// Update advances time-dependent environment features (a drifting
	// goal) after the tick with the given step index committed.
	Update(step int)

	// Enforce applies the boundary policy to a committed population state
	// and reports whether the run must terminate.
	Enforce(p *swarm.Population) bool

	// Reset rewinds time-dependent features for a fresh run.
	Reset()
}

// Config carries the run-level settings.
type Config struct {
	// Duration is the simulated time span.
	Duration float64

	// Dt optionally repeats the step size for cross-checking; when set it
	// must equal the integrator's dt or the run refuses to start.
	Dt float64

	// Pace inserts a wall-clock delay after every tick, slowing the run
	// toward real time without affecting its logical trajectory.
	Pace time.Duration
}

func DefaultConfig() Config {
	return Config{Duration: 10.0}
}

// Result summarizes a finished run.
type Result struct {
	Steps   int
	Time    float64
	Phase   Phase
	Metrics map[string]float64
	Final   swarm.Snapshot
}

// Simulator composes populations, interactions, controllers, one integrator
// and one environment into a deterministic tick loop.
type Simulator struct {
	pops         []*swarm.Population
	index        map[string]int
	interactions []swarm.Interaction
	controllers  []swarm.Controller
	integrator   swarm.Integrator
	env          Environment
	rng          *swarm.Stream
	log          *slog.Logger

	metrics   []swarm.Metric
	observers []swarm.Observer
	stopWhen  func(swarm.Snapshot) bool

	phase Phase
	t     float64
	step  int

	inputs  []*swarm.Matrix
	staged  []*swarm.Matrix
	initial []*swarm.Matrix
}

func New(integrator swarm.Integrator, env Environment, rng *swarm.Stream) *Simulator {
	return &Simulator{
		index:      make(map[string]int),
		integrator: integrator,
		env:        env,
		rng:        rng,
		log:        slog.New(slog.DiscardHandler),
	}
}

// SetLogger installs a logger for run-level diagnostics. The simulator is
// silent by default.
func (s *Simulator) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	}
}

// AddPopulation registers a population and returns its handle. Handles
// index registration order and are how interactions and controllers refer
// to populations.
func (s *Simulator) AddPopulation(p *swarm.Population) (int, error) {
	if s.phase != Idle {
		return 0, fmt.Errorf("%w: populations register before the run starts", swarm.ErrNotRunning)
	}
	if _, dup := s.index[p.ID()]; dup {
		return 0, fmt.Errorf("%w: population id %q registered twice", swarm.ErrConfiguration, p.ID())
	}
	s.pops = append(s.pops, p)
	h := len(s.pops) - 1
	s.index[p.ID()] = h

	s.inputs = append(s.inputs, swarm.NewMatrix(p.N(), p.InputDim()))
	s.staged = append(s.staged, swarm.NewMatrix(p.N(), p.Dim()))
	return h, nil
}

// Handle resolves a population id to its handle.
func (s *Simulator) Handle(id string) (int, error) {
	h, ok := s.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", swarm.ErrUnknownPopulation, id)
	}
	return h, nil
}

// Populations returns the registered populations in handle order.
func (s *Simulator) Populations() []*swarm.Population { return s.pops }

func (s *Simulator) AddInteraction(x swarm.Interaction) error {
	target, source := x.Pair()
	if target < 0 || target >= len(s.pops) || source < 0 || source >= len(s.pops) {
		return fmt.Errorf("%w: interaction couples handles (%d, %d) of %d populations",
			swarm.ErrUnknownPopulation, target, source, len(s.pops))
	}
	s.interactions = append(s.interactions, x)
	return nil
}

func (s *Simulator) AddController(c swarm.Controller) error {
	if h := c.Handle(); h < 0 || h >= len(s.pops) {
		return fmt.Errorf("%w: controller drives handle %d of %d populations",
			swarm.ErrUnknownPopulation, h, len(s.pops))
	}
	s.controllers = append(s.controllers, c)
	return nil
}

func (s *Simulator) AddMetric(m swarm.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o swarm.Observer) { s.observers = append(s.observers, o) }

// Metrics returns the registered metrics in registration order.
func (s *Simulator) Metrics() []swarm.Metric { return s.metrics }

// StopWhen installs a stop condition checked against every committed
// snapshot; returning true ends the run without error.
func (s *Simulator) StopWhen(cond func(swarm.Snapshot) bool) { s.stopWhen = cond }

func (s *Simulator) Phase() Phase  { return s.phase }
func (s *Simulator) Time() float64 { return s.t }
func (s *Simulator) Step() int     { return s.step }

// Dt returns the integrator step size.
func (s *Simulator) Dt() float64 { return s.integrator.Dt() }

// Env returns the environment the simulator drives, nil when none is set.
func (s *Simulator) Env() Environment { return s.env }

// Start moves the simulator from Idle to Running. The first start captures
// the initial states and marks the randomness stream, defining the point
// Reset rewinds to.
func (s *Simulator) Start() error {
	if s.phase != Idle {
		return fmt.Errorf("%w: start requires the idle phase, currently %s", swarm.ErrNotRunning, s.phase)
	}
	if len(s.pops) == 0 {
		return fmt.Errorf("%w: no populations registered", swarm.ErrConfiguration)
	}
	if s.initial == nil {
		s.initial = make([]*swarm.Matrix, len(s.pops))
		for i, p := range s.pops {
			s.initial[i] = p.State().Clone()
		}
		s.rng.Mark()
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	s.phase = Running
	return nil
}

// Stop ends the run explicitly.
func (s *Simulator) Stop() {
	if s.phase == Running {
		s.phase = Stopped
	}
}

// Reset returns a stopped or running simulator to Idle: initial states,
// clock, randomness stream, controllers, metrics and environment all rewind
// to their pre-run condition.
func (s *Simulator) Reset() error {
	if s.initial != nil {
		for i, p := range s.pops {
			p.State().CopyFrom(s.initial[i])
		}
		if err := s.rng.Reset(); err != nil {
			return err
		}
	}
	for _, c := range s.controllers {
		c.Reset()
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	if s.env != nil {
		s.env.Reset()
	}
	s.t = 0
	s.step = 0
	s.phase = Idle
	return nil
}

// Tick advances the simulation by exactly one step. It either commits the
// whole tick or leaves every population state untouched.
func (s *Simulator) Tick() error {
	if s.phase != Running {
		return fmt.Errorf("%w: tick requires the running phase, currently %s", swarm.ErrNotRunning, s.phase)
	}

	for _, in := range s.inputs {
		in.Zero()
	}

	// Controllers first, then interactions: the shared stream is consumed
	// in this fixed order, then by the integrator in population order.
	for _, c := range s.controllers {
		h := c.Handle()
		u := c.Control(s.t, s.pops, s.rng)
		pop := s.pops[h]
		if u.Rows() != pop.N() || u.Cols() != pop.InputDim() {
			s.phase = Stopped
			return &swarm.DimensionError{
				Population: pop.ID(),
				WantRows:   pop.N(),
				WantCols:   pop.InputDim(),
				Rows:       u.Rows(),
				Cols:       u.Cols(),
			}
		}
		s.inputs[h].Add(u)
	}

	for _, x := range s.interactions {
		target, source := x.Pair()
		x.Force(s.inputs[target], s.pops[target], s.pops[source], s.rng)
	}

	for i, p := range s.pops {
		s.integrator.Step(s.staged[i], p, s.inputs[i], s.rng)
	}

	for i, p := range s.pops {
		if row, col, v, bad := s.staged[i].FirstNonFinite(); bad {
			s.phase = Stopped
			err := &swarm.InstabilityError{
				Step:       s.step,
				Time:       s.t,
				Population: p.ID(),
				Agent:      row,
				Value:      v,
			}
			s.log.Warn("numerical instability, run stopped",
				"population", p.ID(), "agent", row, "column", col, "step", s.step)
			return err
		}
	}

	for i, p := range s.pops {
		p.State().CopyFrom(s.staged[i])
	}

	terminated := false
	for _, p := range s.pops {
		if s.env != nil && s.env.Enforce(p) {
			terminated = true
		}
	}
	if s.env != nil {
		s.env.Update(s.step)
	}

	s.t += s.integrator.Dt()
	s.step++

	snap := s.snapshot()
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, o := range s.observers {
		o.OnTick(snap)
	}

	if terminated {
		s.phase = Stopped
		return nil
	}
	if s.stopWhen != nil && s.stopWhen(snap) {
		s.phase = Stopped
	}
	return nil
}

// Run starts the simulator and ticks until the duration elapses, the
// context is canceled, a stop condition fires or an error stops the run.
// Cancellation is cooperative: it is checked once per tick boundary, so a
// started tick always commits or fails whole.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration %v", swarm.ErrConfiguration, cfg.Duration)
	}
	if cfg.Dt != 0 && math.Abs(cfg.Dt-s.integrator.Dt()) > 1e-12 {
		return nil, fmt.Errorf("%w: run dt %v disagrees with integrator dt %v",
			swarm.ErrConfiguration, cfg.Dt, s.integrator.Dt())
	}
	if err := s.Start(); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / s.integrator.Dt())
	s.log.Info("run started",
		"populations", len(s.pops), "steps", steps, "dt", s.integrator.Dt(), "seed", s.rng.Seed())

	var runErr error
	for i := 0; i < steps && s.phase == Running; i++ {
		select {
		case <-ctx.Done():
			s.phase = Stopped
			runErr = ctx.Err()
		default:
			runErr = s.Tick()
		}
		if runErr != nil {
			break
		}
		if cfg.Pace > 0 {
			time.Sleep(cfg.Pace)
		}
	}

	if s.phase == Running {
		s.phase = Stopped
	}

	res := &Result{
		Steps:   s.step,
		Time:    s.t,
		Phase:   s.phase,
		Metrics: make(map[string]float64, len(s.metrics)),
		Final:   s.snapshot(),
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}

	s.log.Info("run finished", "steps", res.Steps, "time", res.Time, "err", runErr)
	return res, runErr
}

// Snapshot returns a read-only view of the current states.
func (s *Simulator) Snapshot() swarm.Snapshot { return s.snapshot() }

func (s *Simulator) snapshot() swarm.Snapshot {
	states := make(map[string]*swarm.Matrix, len(s.pops))
	for _, p := range s.pops {
		states[p.ID()] = p.State().Clone()
	}
	return swarm.Snapshot{Time: s.t, Step: s.step, States: states}
}
