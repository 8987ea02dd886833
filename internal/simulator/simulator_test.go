package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/san-kum/swarmlab/internal/integrator"
	"github.com/san-kum/swarmlab/internal/interaction"
	"github.com/san-kum/swarmlab/internal/population"
	"github.com/san-kum/swarmlab/internal/swarm"
)

type divergentDynamics struct{ dim int }

func (d *divergentDynamics) StateDim() int { return d.dim }
func (d *divergentDynamics) InputDim() int { return d.dim }
func (d *divergentDynamics) Drift(dst, x, input *swarm.Matrix, p swarm.ParamSet) {
	dst.Fill(math.NaN())
}
func (d *divergentDynamics) Diffusion(dst, x *swarm.Matrix, p swarm.ParamSet) {}

type badController struct {
	handle int
	out    *swarm.Matrix
}

func (c *badController) Handle() int { return c.handle }
func (c *badController) Control(t float64, pops []*swarm.Population, rng *swarm.Stream) *swarm.Matrix {
	return c.out
}
func (c *badController) Reset() {}

type haltEnv struct {
	after    int
	enforced int
	lastStep int
}

func (e *haltEnv) Update(step int) { e.lastStep = step }
func (e *haltEnv) Enforce(p *swarm.Population) bool {
	e.enforced++
	return e.enforced >= e.after
}
func (e *haltEnv) Reset() { e.enforced = 0 }

type tickCounter struct{ count int }

func (m *tickCounter) Name() string             { return "ticks" }
func (m *tickCounter) Observe(s swarm.Snapshot) { m.count++ }
func (m *tickCounter) Value() float64           { return float64(m.count) }
func (m *tickCounter) Reset()                   { m.count = 0 }

type tickRecorder struct {
	ticks int
	last  swarm.Snapshot
}

func (r *tickRecorder) OnTick(s swarm.Snapshot) {
	r.ticks++
	r.last = s
}

func brownianPop(t *testing.T, id string, diffusion float64, agents [][]float64) *swarm.Population {
	t.Helper()
	dim := len(agents[0])
	data := make([]float64, 0, len(agents)*dim)
	for _, a := range agents {
		data = append(data, a...)
	}
	state, err := swarm.NewMatrixFrom(len(agents), dim, data)
	if err != nil {
		t.Fatalf("state matrix: %v", err)
	}
	dyn, err := population.NewBrownian(dim)
	if err != nil {
		t.Fatalf("brownian dynamics: %v", err)
	}
	params := swarm.ParamSet{
		"mu":        swarm.Scalar(len(agents), 0),
		"diffusion": swarm.Scalar(len(agents), diffusion),
	}
	pop, err := swarm.NewPopulation(id, dyn, state, params)
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	return pop
}

// pairSim builds two agents at (0,0) and (1,0) coupled by a harmonic
// repulsion of strength 1 and cutoff 2, stepped at dt 0.1.
func pairSim(t *testing.T, diffusion float64, seed uint64) *Simulator {
	t.Helper()
	integ, err := integrator.NewEulerMaruyama(0.1)
	if err != nil {
		t.Fatalf("integrator: %v", err)
	}
	sim := New(integ, nil, swarm.NewStream(seed))
	h, err := sim.AddPopulation(brownianPop(t, "agents", diffusion, [][]float64{{0, 0}, {1, 0}}))
	if err != nil {
		t.Fatalf("add population: %v", err)
	}
	rep, err := interaction.NewHarmonic(h, h, 1.0, 2.0)
	if err != nil {
		t.Fatalf("harmonic: %v", err)
	}
	if err := sim.AddInteraction(rep); err != nil {
		t.Fatalf("add interaction: %v", err)
	}
	return sim
}

func TestHarmonicPairSeparates(t *testing.T) {
	sim := pairSim(t, 0, 1)
	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	x := sim.Populations()[0].State()

	if err := sim.Tick(); err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	if got := x.At(0, 0); got != -0.1 {
		t.Errorf("agent 0 after tick 1 = %v, want -0.1", got)
	}
	if got := x.At(1, 0); got != 1.1 {
		t.Errorf("agent 1 after tick 1 = %v, want 1.1", got)
	}

	if err := sim.Tick(); err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	if got := x.At(0, 0); math.Abs(got-(-0.18)) > 1e-12 {
		t.Errorf("agent 0 after tick 2 = %v, want -0.18", got)
	}
	if got := x.At(1, 0); math.Abs(got-1.18) > 1e-12 {
		t.Errorf("agent 1 after tick 2 = %v, want 1.18", got)
	}
	if x.At(0, 1) != 0 || x.At(1, 1) != 0 {
		t.Errorf("y components moved without any y force: %v, %v", x.At(0, 1), x.At(1, 1))
	}

	// Separation grows toward the cutoff and never reaches it.
	prev := x.At(1, 0) - x.At(0, 0)
	for i := 0; i < 48; i++ {
		if err := sim.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i+3, err)
		}
		d := x.At(1, 0) - x.At(0, 0)
		if d <= prev {
			t.Fatalf("separation stopped growing at tick %d: %v -> %v", i+3, prev, d)
		}
		if d >= 2 {
			t.Fatalf("separation crossed the cutoff at tick %d: %v", i+3, d)
		}
		prev = d
	}

	if com := x.At(0, 0) + x.At(1, 0); math.Abs(com-1.0) > 1e-12 {
		t.Errorf("center of mass drifted to %v, want 1", com)
	}
}

func TestRunDeterminism(t *testing.T) {
	cfg := Config{Duration: 1.0}

	runOnce := func() *swarm.Matrix {
		sim := pairSim(t, 0.5, 42)
		res, err := sim.Run(context.Background(), cfg)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if res.Steps != 10 {
			t.Fatalf("steps = %d, want 10", res.Steps)
		}
		return res.Final.States["agents"]
	}

	a, b := runOnce(), runOnce()
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			if a.At(i, j) != b.At(i, j) {
				t.Fatalf("same seed diverged at (%d,%d): %v vs %v", i, j, a.At(i, j), b.At(i, j))
			}
		}
	}
}

func TestSeedChangesTrajectory(t *testing.T) {
	cfg := Config{Duration: 1.0}

	r1, err := pairSim(t, 0.5, 1).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run seed 1: %v", err)
	}
	r2, err := pairSim(t, 0.5, 2).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run seed 2: %v", err)
	}

	a, b := r1.Final.States["agents"], r2.Final.States["agents"]
	same := true
	for i := range a.Data() {
		if a.Data()[i] != b.Data()[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical trajectories")
	}
}

func TestResetReplaysRun(t *testing.T) {
	sim := pairSim(t, 0.5, 7)
	cfg := Config{Duration: 1.0}

	r1, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if sim.Phase() != Stopped {
		t.Fatalf("phase after run = %s, want stopped", sim.Phase())
	}

	if err := sim.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if sim.Phase() != Idle {
		t.Fatalf("phase after reset = %s, want idle", sim.Phase())
	}
	if got := sim.Populations()[0].State().At(1, 0); got != 1.0 {
		t.Fatalf("reset did not restore initial state: %v", got)
	}

	r2, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	a, b := r1.Final.States["agents"], r2.Final.States["agents"]
	for i := range a.Data() {
		if a.Data()[i] != b.Data()[i] {
			t.Fatalf("replay diverged at element %d: %v vs %v", i, a.Data()[i], b.Data()[i])
		}
	}
}

func TestFixedPopulationStays(t *testing.T) {
	integ, err := integrator.NewEulerMaruyama(0.1)
	if err != nil {
		t.Fatalf("integrator: %v", err)
	}
	sim := New(integ, nil, swarm.NewStream(11))

	if _, err := sim.AddPopulation(brownianPop(t, "walkers", 1.0, [][]float64{{0, 0}, {1, 1}})); err != nil {
		t.Fatalf("add walkers: %v", err)
	}

	fixedDyn, err := population.NewFixed(2)
	if err != nil {
		t.Fatalf("fixed dynamics: %v", err)
	}
	state, err := swarm.NewMatrixFrom(1, 2, []float64{5, 5})
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	obstacle, err := swarm.NewPopulation("obstacle", fixedDyn, state, nil)
	if err != nil {
		t.Fatalf("obstacle: %v", err)
	}
	if _, err := sim.AddPopulation(obstacle); err != nil {
		t.Fatalf("add obstacle: %v", err)
	}

	if _, err := sim.Run(context.Background(), Config{Duration: 1.0}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if obstacle.State().At(0, 0) != 5 || obstacle.State().At(0, 1) != 5 {
		t.Errorf("fixed population moved to (%v, %v)", obstacle.State().At(0, 0), obstacle.State().At(0, 1))
	}
}

func TestInstabilityAbortsTick(t *testing.T) {
	integ, err := integrator.NewEulerMaruyama(0.1)
	if err != nil {
		t.Fatalf("integrator: %v", err)
	}
	sim := New(integ, nil, swarm.NewStream(3))

	state, err := swarm.NewMatrixFrom(1, 1, []float64{1})
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	pop, err := swarm.NewPopulation("unstable", &divergentDynamics{dim: 1}, state, nil)
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	if _, err := sim.AddPopulation(pop); err != nil {
		t.Fatalf("add population: %v", err)
	}
	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	err = sim.Tick()
	if err == nil {
		t.Fatal("expected instability error, got nil")
	}
	if !errors.Is(err, swarm.ErrUnstable) {
		t.Errorf("error %v does not wrap ErrUnstable", err)
	}
	var ie *swarm.InstabilityError
	if !errors.As(err, &ie) {
		t.Fatalf("error %T is not an InstabilityError", err)
	}
	if ie.Population != "unstable" || ie.Step != 0 || ie.Agent != 0 {
		t.Errorf("instability located at population %q step %d agent %d", ie.Population, ie.Step, ie.Agent)
	}
	if !math.IsNaN(ie.Value) {
		t.Errorf("diverged value = %v, want NaN", ie.Value)
	}
	if sim.Phase() != Stopped {
		t.Errorf("phase = %s, want stopped", sim.Phase())
	}
	if got := pop.State().At(0, 0); got != 1 {
		t.Errorf("failed tick mutated state: %v, want 1", got)
	}
}

func TestDimensionMismatchAborts(t *testing.T) {
	sim := pairSim(t, 0, 5)
	if err := sim.AddController(&badController{handle: 0, out: swarm.NewMatrix(1, 1)}); err != nil {
		t.Fatalf("add controller: %v", err)
	}
	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	err := sim.Tick()
	if err == nil {
		t.Fatal("expected dimension error, got nil")
	}
	if !errors.Is(err, swarm.ErrDimension) {
		t.Errorf("error %v does not wrap ErrDimension", err)
	}
	var de *swarm.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("error %T is not a DimensionError", err)
	}
	if de.WantRows != 2 || de.WantCols != 2 || de.Rows != 1 || de.Cols != 1 {
		t.Errorf("mismatch reported as want %dx%d got %dx%d", de.WantRows, de.WantCols, de.Rows, de.Cols)
	}
	if sim.Phase() != Stopped {
		t.Errorf("phase = %s, want stopped", sim.Phase())
	}

	x := sim.Populations()[0].State()
	if x.At(0, 0) != 0 || x.At(1, 0) != 1 {
		t.Errorf("failed tick mutated state: (%v, %v)", x.At(0, 0), x.At(1, 0))
	}
}

func TestSnapshotIsolation(t *testing.T) {
	sim := pairSim(t, 0, 9)
	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sim.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}

	snap := sim.Snapshot()
	snap.States["agents"].Set(0, 0, 999)

	if got := sim.Populations()[0].State().At(0, 0); got == 999 {
		t.Error("mutating a snapshot reached the live state")
	}
}

func TestStopCondition(t *testing.T) {
	sim := pairSim(t, 0, 13)
	sim.StopWhen(func(s swarm.Snapshot) bool { return s.Step >= 5 })

	res, err := sim.Run(context.Background(), Config{Duration: 10})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Steps != 5 {
		t.Errorf("steps = %d, want 5", res.Steps)
	}
	if res.Phase != Stopped {
		t.Errorf("phase = %s, want stopped", res.Phase)
	}
}

func TestContextCancellation(t *testing.T) {
	sim := pairSim(t, 0, 17)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := sim.Run(ctx, Config{Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if res.Steps != 0 {
		t.Errorf("steps = %d, want 0", res.Steps)
	}
}

func TestEnvironmentTermination(t *testing.T) {
	integ, err := integrator.NewEulerMaruyama(0.1)
	if err != nil {
		t.Fatalf("integrator: %v", err)
	}
	env := &haltEnv{after: 3}
	sim := New(integ, env, swarm.NewStream(21))
	if _, err := sim.AddPopulation(brownianPop(t, "agents", 0, [][]float64{{0, 0}})); err != nil {
		t.Fatalf("add population: %v", err)
	}

	res, err := sim.Run(context.Background(), Config{Duration: 10})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Steps != 3 {
		t.Errorf("steps = %d, want 3", res.Steps)
	}
	if res.Phase != Stopped {
		t.Errorf("phase = %s, want stopped", res.Phase)
	}
	if env.lastStep != 2 {
		t.Errorf("environment saw last step %d, want 2", env.lastStep)
	}
}

func TestMetricsAndObservers(t *testing.T) {
	sim := pairSim(t, 0, 23)
	metric := &tickCounter{}
	rec := &tickRecorder{}
	sim.AddMetric(metric)
	sim.AddObserver(rec)

	res, err := sim.Run(context.Background(), Config{Duration: 1.0})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if metric.count != 10 {
		t.Errorf("metric observed %d ticks, want 10", metric.count)
	}
	if got, ok := res.Metrics["ticks"]; !ok || got != 10 {
		t.Errorf("result metric = %v (present %v), want 10", got, ok)
	}
	if rec.ticks != 10 {
		t.Errorf("observer saw %d ticks, want 10", rec.ticks)
	}
	if rec.last.Step != 10 {
		t.Errorf("last snapshot step = %d, want 10", rec.last.Step)
	}
	if math.Abs(rec.last.Time-1.0) > 1e-9 {
		t.Errorf("last snapshot time = %v, want 1.0", rec.last.Time)
	}
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero duration", Config{Duration: 0}},
		{"negative duration", Config{Duration: -1}},
		{"dt mismatch", Config{Duration: 1.0, Dt: 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := pairSim(t, 0, 1)
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, swarm.ErrConfiguration) {
				t.Errorf("error = %v, want ErrConfiguration", err)
			}
			if sim.Phase() != Idle {
				t.Errorf("rejected config changed phase to %s", sim.Phase())
			}
		})
	}
}

func TestRunAfterRejectedConfig(t *testing.T) {
	sim := pairSim(t, 0, 1)
	if _, err := sim.Run(context.Background(), Config{Duration: 1.0, Dt: 0.2}); err == nil {
		t.Fatal("expected dt mismatch error")
	}
	if _, err := sim.Run(context.Background(), Config{Duration: 1.0, Dt: 0.1}); err != nil {
		t.Fatalf("matching dt rejected: %v", err)
	}
}

func TestRegistrationErrors(t *testing.T) {
	integ, err := integrator.NewEulerMaruyama(0.1)
	if err != nil {
		t.Fatalf("integrator: %v", err)
	}
	sim := New(integ, nil, swarm.NewStream(1))

	if _, err := sim.AddPopulation(brownianPop(t, "agents", 0, [][]float64{{0}})); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := sim.AddPopulation(brownianPop(t, "agents", 0, [][]float64{{1}})); !errors.Is(err, swarm.ErrConfiguration) {
		t.Errorf("duplicate id error = %v, want ErrConfiguration", err)
	}

	rep, err := interaction.NewHarmonic(0, 5, 1, 2)
	if err != nil {
		t.Fatalf("harmonic: %v", err)
	}
	if err := sim.AddInteraction(rep); !errors.Is(err, swarm.ErrUnknownPopulation) {
		t.Errorf("bad interaction handle error = %v, want ErrUnknownPopulation", err)
	}

	if err := sim.AddController(&badController{handle: -1}); !errors.Is(err, swarm.ErrUnknownPopulation) {
		t.Errorf("bad controller handle error = %v, want ErrUnknownPopulation", err)
	}

	if _, err := sim.Handle("missing"); !errors.Is(err, swarm.ErrUnknownPopulation) {
		t.Errorf("unknown id error = %v, want ErrUnknownPopulation", err)
	}
	if h, err := sim.Handle("agents"); err != nil || h != 0 {
		t.Errorf("Handle(agents) = %d, %v, want 0, nil", h, err)
	}
}

func TestLifecycle(t *testing.T) {
	sim := pairSim(t, 0, 1)

	if err := sim.Tick(); !errors.Is(err, swarm.ErrNotRunning) {
		t.Errorf("tick while idle error = %v, want ErrNotRunning", err)
	}
	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sim.Start(); !errors.Is(err, swarm.ErrNotRunning) {
		t.Errorf("double start error = %v, want ErrNotRunning", err)
	}

	sim.Stop()
	if sim.Phase() != Stopped {
		t.Fatalf("phase after stop = %s, want stopped", sim.Phase())
	}
	if err := sim.Tick(); !errors.Is(err, swarm.ErrNotRunning) {
		t.Errorf("tick after stop error = %v, want ErrNotRunning", err)
	}
}

func TestEnsembleRuns(t *testing.T) {
	factory := func(seed uint64) (*Simulator, error) {
		return pairSim(t, 0.5, seed), nil
	}

	ens, err := NewEnsemble(factory, 3, 100)
	if err != nil {
		t.Fatalf("new ensemble: %v", err)
	}

	cfg := Config{Duration: 0.5}
	first, err := ens.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ensemble run: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("got %d results, want 3", len(first))
	}
	for i, res := range first {
		if res.Steps != 5 {
			t.Errorf("run %d took %d steps, want 5", i, res.Steps)
		}
	}

	a := first[0].Final.States["agents"].Data()
	b := first[1].Final.States["agents"].Data()
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
		}
	}
	if same {
		t.Error("different ensemble seeds produced identical finals")
	}

	second, err := ens.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second ensemble run: %v", err)
	}
	for i := range first {
		x, y := first[i].Final.States["agents"].Data(), second[i].Final.States["agents"].Data()
		for j := range x {
			if x[j] != y[j] {
				t.Fatalf("ensemble run %d not reproducible at element %d", i, j)
			}
		}
	}
}

func TestEnsembleValidation(t *testing.T) {
	ok := func(seed uint64) (*Simulator, error) { return pairSim(t, 0, seed), nil }

	if _, err := NewEnsemble(nil, 3, 0); !errors.Is(err, swarm.ErrConfiguration) {
		t.Errorf("nil factory error = %v, want ErrConfiguration", err)
	}
	if _, err := NewEnsemble(ok, 0, 0); !errors.Is(err, swarm.ErrConfiguration) {
		t.Errorf("zero runs error = %v, want ErrConfiguration", err)
	}
}

func TestEnsembleFactoryError(t *testing.T) {
	errBoom := errors.New("boom")
	factory := func(seed uint64) (*Simulator, error) {
		if seed == 101 {
			return nil, fmt.Errorf("seed %d: %w", seed, errBoom)
		}
		return pairSim(t, 0, seed), nil
	}

	ens, err := NewEnsemble(factory, 3, 100)
	if err != nil {
		t.Fatalf("new ensemble: %v", err)
	}
	if _, err := ens.Run(context.Background(), Config{Duration: 0.5}); !errors.Is(err, errBoom) {
		t.Errorf("ensemble error = %v, want the factory failure", err)
	}
}
