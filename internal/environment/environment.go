// Package environment provides the spatial domain populations move in:
// rectangular extents centered on the origin, a boundary policy enforced
// after every committed tick, and an optional goal region that can drift
// toward a final position during the run.
package environment

import (
	"fmt"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Boundary selects what happens to agents that leave the domain.
type Boundary string

const (
	// BoundaryNone leaves agents free to wander outside the extents.
	BoundaryNone Boundary = "none"

	// BoundaryClamp pins outgoing agents to the domain edge.
	BoundaryClamp Boundary = "clamp"

	// BoundaryReflect folds outgoing agents back inside and flips their
	// velocity component when the dynamics carries one.
	BoundaryReflect Boundary = "reflect"

	// BoundaryTerminate stops the run when any agent leaves the domain.
	BoundaryTerminate Boundary = "terminate"
)

// Goal is a circular region agents may be driven toward. When FinalCenter
// is set the goal drifts linearly from Center to FinalCenter over Steps
// ticks, starting at StartStep.
type Goal struct {
	Center      []float64
	Radius      float64
	FinalCenter []float64
	StartStep   int
	Steps       int
}

// Environment is the shared spatial domain. Extents are full widths per
// spatial dimension; the domain spans -extent/2 to +extent/2 around the
// origin.
type Environment struct {
	extents  []float64
	boundary Boundary

	goal      *Goal
	goalPos   []float64
	goalDelta []float64
}

func New(extents []float64, boundary Boundary) (*Environment, error) {
	for i, w := range extents {
		if w <= 0 {
			return nil, fmt.Errorf("%w: extent %d is %v", swarm.ErrConfiguration, i, w)
		}
	}
	switch boundary {
	case BoundaryNone, BoundaryClamp, BoundaryReflect, BoundaryTerminate:
	case "":
		boundary = BoundaryNone
	default:
		return nil, fmt.Errorf("%w: unknown boundary policy %q", swarm.ErrConfiguration, boundary)
	}
	return &Environment{extents: extents, boundary: boundary}, nil
}

func (e *Environment) Extents() []float64 { return e.extents }
func (e *Environment) Policy() Boundary   { return e.boundary }

// SetGoal installs the goal region. A drifting goal needs a final center of
// the same dimension and a positive step count.
func (e *Environment) SetGoal(g Goal) error {
	if g.Radius <= 0 {
		return fmt.Errorf("%w: goal radius %v", swarm.ErrConfiguration, g.Radius)
	}
	if len(g.Center) == 0 {
		return fmt.Errorf("%w: goal center is empty", swarm.ErrConfiguration)
	}
	e.goal = &g
	e.goalPos = append([]float64(nil), g.Center...)
	e.goalDelta = nil

	if g.FinalCenter != nil {
		if len(g.FinalCenter) != len(g.Center) {
			return fmt.Errorf("%w: goal final center has %d values, want %d",
				swarm.ErrConfiguration, len(g.FinalCenter), len(g.Center))
		}
		if g.Steps <= 0 {
			return fmt.Errorf("%w: drifting goal needs steps > 0, got %d",
				swarm.ErrConfiguration, g.Steps)
		}
		e.goalDelta = make([]float64, len(g.Center))
		for i := range e.goalDelta {
			e.goalDelta[i] = (g.FinalCenter[i] - g.Center[i]) / float64(g.Steps)
		}
	}
	return nil
}

// Goal returns the current goal center and radius. The returned slice is
// live; callers must not modify it.
func (e *Environment) Goal() (center []float64, radius float64, ok bool) {
	if e.goal == nil {
		return nil, 0, false
	}
	return e.goalPos, e.goal.Radius, true
}

// Reset returns the drifting goal to its starting center.
func (e *Environment) Reset() {
	if e.goal != nil {
		copy(e.goalPos, e.goal.Center)
	}
}

// Update advances the drifting goal. Called once per committed tick.
func (e *Environment) Update(step int) {
	if e.goalDelta == nil {
		return
	}
	if step >= e.goal.StartStep && step < e.goal.StartStep+e.goal.Steps {
		for i := range e.goalPos {
			e.goalPos[i] += e.goalDelta[i]
		}
	}
}

// Enforce applies the boundary policy to a population's committed state and
// reports whether the run must stop. Population bounds, when set, override
// the domain extents dimension by dimension.
func (e *Environment) Enforce(pop *swarm.Population) (terminate bool) {
	if e.boundary == BoundaryNone {
		return false
	}

	x := pop.State()
	velStart, velWidth := -1, 0
	if v, ok := pop.Dynamics().(swarm.Velocities); ok {
		velStart, velWidth = v.VelocityBlock()
	}

	for i := 0; i < x.Rows(); i++ {
		for c := 0; c < x.Cols(); c++ {
			lo, hi, bounded := e.limits(pop, c)
			if !bounded {
				continue
			}
			v := x.At(i, c)
			if v >= lo && v <= hi {
				continue
			}

			switch e.boundary {
			case BoundaryTerminate:
				return true
			case BoundaryClamp:
				if v < lo {
					x.Set(i, c, lo)
				} else {
					x.Set(i, c, hi)
				}
			case BoundaryReflect:
				for v < lo || v > hi {
					if v < lo {
						v = 2*lo - v
					} else {
						v = 2*hi - v
					}
				}
				x.Set(i, c, v)
				if velStart >= 0 && c < velWidth {
					x.Set(i, velStart+c, -x.At(i, velStart+c))
				}
			}
		}
	}
	return false
}

// limits resolves the bounds for state column c: population bounds first,
// then domain extents on the spatial columns, otherwise unbounded.
func (e *Environment) limits(pop *swarm.Population, c int) (lo, hi float64, ok bool) {
	lower, upper := pop.Bounds()
	if lower != nil && upper != nil {
		return lower[c], upper[c], true
	}
	if c < len(e.extents) && c < pop.InputDim() {
		half := e.extents[c] / 2
		return -half, half, true
	}
	return 0, 0, false
}
