package metrics

import (
	"fmt"

	"github.com/san-kum/swarmlab/internal/environment"
	"github.com/san-kum/swarmlab/internal/swarm"
)

// GoalFraction measures herding progress: the fraction of a population's
// agents inside the environment's goal region, read against the goal's
// current (possibly drifting) center.
type GoalFraction struct {
	series
	population string
	env        *environment.Environment
}

func NewGoalFraction(population string, env *environment.Environment) (*GoalFraction, error) {
	if population == "" {
		return nil, fmt.Errorf("%w: goal fraction needs a population id", swarm.ErrConfiguration)
	}
	if env == nil {
		return nil, fmt.Errorf("%w: goal fraction needs an environment", swarm.ErrConfiguration)
	}
	if _, _, ok := env.Goal(); !ok {
		return nil, fmt.Errorf("%w: goal fraction needs an environment goal", swarm.ErrConfiguration)
	}
	return &GoalFraction{
		series:     series{name: "goal_fraction_" + population},
		population: population,
		env:        env,
	}, nil
}

func (m *GoalFraction) Observe(s swarm.Snapshot) {
	x, ok := s.States[m.population]
	if !ok {
		return
	}
	center, radius, ok := m.env.Goal()
	if !ok {
		return
	}

	k := len(center)
	if c := x.Cols(); c < k {
		k = c
	}
	r2 := radius * radius

	inside := 0
	for i := 0; i < x.Rows(); i++ {
		row := x.Row(i)
		d2 := 0.0
		for j := 0; j < k; j++ {
			d := row[j] - center[j]
			d2 += d * d
		}
		if d2 <= r2 {
			inside++
		}
	}
	m.vals = append(m.vals, float64(inside)/float64(x.Rows()))
}
