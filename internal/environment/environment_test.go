package environment

import (
	"math"
	"testing"

	"github.com/san-kum/swarmlab/internal/population"
	"github.com/san-kum/swarmlab/internal/swarm"
)

func flatPop(t *testing.T, states []float64) *swarm.Population {
	t.Helper()
	dyn, err := population.NewBrownian(2)
	if err != nil {
		t.Fatal(err)
	}
	n := len(states) / 2
	m, err := swarm.NewMatrixFrom(n, 2, states)
	if err != nil {
		t.Fatal(err)
	}
	pop, err := swarm.NewPopulation("p", dyn, m, swarm.ParamSet{
		"mu":        swarm.Scalar(n, 0),
		"diffusion": swarm.Scalar(n, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	return pop
}

func secondOrderPop(t *testing.T, states []float64) *swarm.Population {
	t.Helper()
	dyn, err := population.NewDoubleIntegrator(2)
	if err != nil {
		t.Fatal(err)
	}
	n := len(states) / 4
	m, err := swarm.NewMatrixFrom(n, 4, states)
	if err != nil {
		t.Fatal(err)
	}
	pop, err := swarm.NewPopulation("p", dyn, m, swarm.ParamSet{
		"damping": swarm.Scalar(n, 0),
		"sigma":   swarm.Scalar(n, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	return pop
}

func TestNew_Validation(t *testing.T) {
	if _, err := New([]float64{10, -5}, BoundaryNone); err == nil {
		t.Error("negative extent accepted")
	}
	if _, err := New([]float64{10, 10}, "wrap"); err == nil {
		t.Error("unknown boundary accepted")
	}

	e, err := New([]float64{10, 10}, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e.Policy() != BoundaryNone {
		t.Errorf("empty policy = %q, want none", e.Policy())
	}
}

func TestEnforce_None(t *testing.T) {
	e, _ := New([]float64{10, 10}, BoundaryNone)
	pop := flatPop(t, []float64{100, -100})

	if e.Enforce(pop) {
		t.Fatal("none policy terminated")
	}
	if pop.State().At(0, 0) != 100 {
		t.Error("none policy moved an agent")
	}
}

func TestEnforce_Clamp(t *testing.T) {
	e, _ := New([]float64{10, 10}, BoundaryClamp)
	pop := flatPop(t, []float64{7, -9, 1, 2})

	e.Enforce(pop)

	if pop.State().At(0, 0) != 5 || pop.State().At(0, 1) != -5 {
		t.Errorf("clamped agent = %v, want [5 -5]", pop.State().Row(0))
	}
	if pop.State().At(1, 0) != 1 || pop.State().At(1, 1) != 2 {
		t.Errorf("inside agent moved: %v", pop.State().Row(1))
	}
}

func TestEnforce_Reflect(t *testing.T) {
	e, _ := New([]float64{10, 10}, BoundaryReflect)
	pop := flatPop(t, []float64{6, 0})

	e.Enforce(pop)

	// 6 folds over the +5 edge to 4.
	if pop.State().At(0, 0) != 4 {
		t.Errorf("reflected x = %v, want 4", pop.State().At(0, 0))
	}
}

func TestEnforce_ReflectFlipsVelocity(t *testing.T) {
	e, _ := New([]float64{10, 10}, BoundaryReflect)
	// position (6, 0), velocity (2, 3): x is out of bounds.
	pop := secondOrderPop(t, []float64{6, 0, 2, 3})

	e.Enforce(pop)

	st := pop.State()
	if st.At(0, 0) != 4 {
		t.Errorf("reflected x = %v, want 4", st.At(0, 0))
	}
	if st.At(0, 2) != -2 {
		t.Errorf("x-velocity = %v, want -2 (flipped)", st.At(0, 2))
	}
	if st.At(0, 3) != 3 {
		t.Errorf("y-velocity = %v, want 3 (untouched)", st.At(0, 3))
	}
}

func TestEnforce_Terminate(t *testing.T) {
	e, _ := New([]float64{10, 10}, BoundaryTerminate)

	inside := flatPop(t, []float64{1, 1})
	if e.Enforce(inside) {
		t.Error("terminated with all agents inside")
	}

	outside := flatPop(t, []float64{1, 1, 11, 0})
	if !e.Enforce(outside) {
		t.Error("did not terminate with an agent outside")
	}
}

func TestEnforce_PopulationBoundsOverride(t *testing.T) {
	e, _ := New([]float64{10, 10}, BoundaryClamp)

	pop := flatPop(t, []float64{3, 0})
	if err := pop.SetBounds([]float64{-1, -1}, []float64{1, 1}); err != nil {
		t.Fatal(err)
	}

	e.Enforce(pop)
	if pop.State().At(0, 0) != 1 {
		t.Errorf("population bound not applied: %v", pop.State().At(0, 0))
	}
}

func TestGoal_Static(t *testing.T) {
	e, _ := New([]float64{50, 50}, BoundaryNone)

	if _, _, ok := e.Goal(); ok {
		t.Error("goal reported before SetGoal")
	}

	if err := e.SetGoal(Goal{Center: []float64{1, 2}, Radius: 3}); err != nil {
		t.Fatalf("SetGoal: %v", err)
	}
	center, radius, ok := e.Goal()
	if !ok || radius != 3 || center[0] != 1 || center[1] != 2 {
		t.Errorf("Goal() = %v, %v, %v", center, radius, ok)
	}

	e.Update(0)
	center, _, _ = e.Goal()
	if center[0] != 1 {
		t.Error("static goal moved")
	}
}

func TestGoal_Drift(t *testing.T) {
	e, _ := New([]float64{50, 50}, BoundaryNone)
	err := e.SetGoal(Goal{
		Center:      []float64{0, 0},
		Radius:      2,
		FinalCenter: []float64{10, 0},
		StartStep:   5,
		Steps:       10,
	})
	if err != nil {
		t.Fatalf("SetGoal: %v", err)
	}

	for step := 0; step < 5; step++ {
		e.Update(step)
	}
	center, _, _ := e.Goal()
	if center[0] != 0 {
		t.Errorf("goal moved before start step: %v", center[0])
	}

	for step := 5; step < 15; step++ {
		e.Update(step)
	}
	center, _, _ = e.Goal()
	if math.Abs(center[0]-10) > 1e-9 {
		t.Errorf("goal x = %v after drift window, want 10", center[0])
	}

	e.Update(20)
	center, _, _ = e.Goal()
	if math.Abs(center[0]-10) > 1e-9 {
		t.Error("goal kept moving after its window")
	}

	e.Reset()
	center, _, _ = e.Goal()
	if center[0] != 0 {
		t.Errorf("goal x = %v after reset, want 0", center[0])
	}
}

func TestSetGoal_Validation(t *testing.T) {
	e, _ := New([]float64{10, 10}, BoundaryNone)

	if err := e.SetGoal(Goal{Center: []float64{0, 0}, Radius: 0}); err == nil {
		t.Error("zero radius accepted")
	}
	if err := e.SetGoal(Goal{Center: []float64{0, 0}, Radius: 1, FinalCenter: []float64{1}}); err == nil {
		t.Error("mismatched final center accepted")
	}
	if err := e.SetGoal(Goal{Center: []float64{0, 0}, Radius: 1, FinalCenter: []float64{1, 1}}); err == nil {
		t.Error("drifting goal without steps accepted")
	}
}
