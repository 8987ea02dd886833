package interaction

import (
	"math"
	"testing"

	"github.com/san-kum/swarmlab/internal/swarm"
)

type flatDynamics struct{ dim int }

func (d *flatDynamics) StateDim() int { return d.dim }
func (d *flatDynamics) InputDim() int { return d.dim }

func (d *flatDynamics) Drift(dst, x, input *swarm.Matrix, p swarm.ParamSet) { dst.Zero() }
func (d *flatDynamics) Diffusion(dst, x *swarm.Matrix, p swarm.ParamSet)    { dst.Zero() }

func testPopulation(t *testing.T, id string, states []float64, dim int) *swarm.Population {
	t.Helper()
	m, err := swarm.NewMatrixFrom(len(states)/dim, dim, states)
	if err != nil {
		t.Fatal(err)
	}
	pop, err := swarm.NewPopulation(id, &flatDynamics{dim: dim}, m, nil)
	if err != nil {
		t.Fatal(err)
	}
	return pop
}

func TestHarmonic_TwoAgents(t *testing.T) {
	// Two agents one unit apart with strength 1 and cutoff 2 push each
	// other with force magnitude exactly 1.
	a := testPopulation(t, "a", []float64{0, 0}, 2)
	b := testPopulation(t, "b", []float64{1, 0}, 2)

	h, err := NewHarmonic(0, 1, 1.0, 2.0)
	if err != nil {
		t.Fatalf("NewHarmonic: %v", err)
	}

	fa := swarm.NewMatrix(1, 2)
	h.Force(fa, a, b, swarm.NewStream(1))
	if fa.At(0, 0) != -1 || fa.At(0, 1) != 0 {
		t.Errorf("force on a = [%v %v], want [-1 0]", fa.At(0, 0), fa.At(0, 1))
	}

	fb := swarm.NewMatrix(1, 2)
	h.Force(fb, b, a, swarm.NewStream(1))
	if fb.At(0, 0) != 1 || fb.At(0, 1) != 0 {
		t.Errorf("force on b = [%v %v], want [1 0]", fb.At(0, 0), fb.At(0, 1))
	}
}

func TestHarmonic_CutoffExact(t *testing.T) {
	h, _ := NewHarmonic(0, 1, 3.0, 2.0)

	tests := []struct {
		name string
		x    float64
		zero bool
	}{
		{"inside", 1.9, false},
		{"at cutoff", 2.0, true},
		{"beyond", 2.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testPopulation(t, "a", []float64{0, 0}, 2)
			b := testPopulation(t, "b", []float64{tt.x, 0}, 2)

			dst := swarm.NewMatrix(1, 2)
			h.Force(dst, a, b, swarm.NewStream(1))
			if dst.IsZero() != tt.zero {
				t.Errorf("separation %v: zero force = %v, want %v", tt.x, dst.IsZero(), tt.zero)
			}
		})
	}
}

func TestHarmonic_Symmetry(t *testing.T) {
	a := testPopulation(t, "a", []float64{0.3, -0.7}, 2)
	b := testPopulation(t, "b", []float64{1.1, 0.4}, 2)

	h, _ := NewHarmonic(0, 1, 2.5, 4.0)

	fa := swarm.NewMatrix(1, 2)
	fb := swarm.NewMatrix(1, 2)
	h.Force(fa, a, b, swarm.NewStream(1))
	h.Force(fb, b, a, swarm.NewStream(1))

	for c := 0; c < 2; c++ {
		if math.Abs(fa.At(0, c)+fb.At(0, c)) > 1e-12 {
			t.Errorf("component %d: %v vs %v, want opposite", c, fa.At(0, c), fb.At(0, c))
		}
	}
}

func TestHarmonic_CoincidentAgents(t *testing.T) {
	a := testPopulation(t, "a", []float64{1, 1}, 2)
	b := testPopulation(t, "b", []float64{1, 1}, 2)

	h, _ := NewHarmonic(0, 1, 2.0, 3.0)
	dst := swarm.NewMatrix(1, 2)
	h.Force(dst, a, b, swarm.NewStream(1))

	if !dst.IsFinite() {
		t.Fatal("coincident pair produced non-finite force")
	}
	if !dst.IsZero() {
		t.Errorf("coincident pair force = %v, want zero", dst.Data())
	}
}

func TestHarmonic_SelfInteractionSkipsSelf(t *testing.T) {
	// Three agents on a line. The middle one is pushed equally from both
	// sides; the self pair must not contribute.
	pop := testPopulation(t, "p", []float64{0, 0, 1, 0, 2, 0}, 2)

	h, _ := NewHarmonic(0, 0, 1.0, 5.0)
	dst := swarm.NewMatrix(3, 2)
	h.Force(dst, pop, pop, swarm.NewStream(1))

	if math.Abs(dst.At(1, 0)) > 1e-12 || math.Abs(dst.At(1, 1)) > 1e-12 {
		t.Errorf("middle agent force = %v, want zero", dst.Row(1))
	}
	if dst.At(0, 0) >= 0 {
		t.Errorf("left agent force = %v, want negative (pushed left)", dst.At(0, 0))
	}
	if dst.At(2, 0) <= 0 {
		t.Errorf("right agent force = %v, want positive (pushed right)", dst.At(2, 0))
	}
}

func TestHarmonic_AccumulatesIntoDst(t *testing.T) {
	a := testPopulation(t, "a", []float64{0, 0}, 2)
	b := testPopulation(t, "b", []float64{1, 0}, 2)

	h, _ := NewHarmonic(0, 1, 1.0, 2.0)
	dst := swarm.NewMatrix(1, 2)
	dst.Set(0, 0, 10)

	h.Force(dst, a, b, swarm.NewStream(1))
	if dst.At(0, 0) != 9 {
		t.Errorf("dst not accumulated: %v, want 9", dst.At(0, 0))
	}
}

func TestNewHarmonic_Validation(t *testing.T) {
	if _, err := NewHarmonic(0, 1, 1.0, 0); err == nil {
		t.Error("zero cutoff accepted")
	}
	if _, err := NewHarmonic(0, 1, -1.0, 2.0); err == nil {
		t.Error("negative strength accepted")
	}
}
