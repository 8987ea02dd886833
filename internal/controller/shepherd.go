package controller

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmlab/internal/environment"
	"github.com/san-kum/swarmlab/internal/swarm"
)

// Shepherd implements the herder control law for shepherding tasks. Each
// herder considers the targets it senses within radius Xi and for which it
// is the closest herder, chases the one farthest from the goal by aiming at
// a point Delta behind it, and otherwise returns toward the goal at speed
// Vh, idling once inside the goal region.
type Shepherd struct {
	Xi    float64
	Vh    float64
	Alpha float64
	Delta float64

	handle  int
	targets int
	env     *environment.Environment

	out *swarm.Matrix
}

func NewShepherd(handle, targets int, env *environment.Environment, xi, vh, alpha, delta float64) (*Shepherd, error) {
	if _, _, ok := env.Goal(); !ok {
		return nil, fmt.Errorf("%w: shepherd controller needs an environment goal region",
			swarm.ErrConfiguration)
	}
	if xi <= 0 {
		return nil, fmt.Errorf("%w: shepherd sensing radius %v", swarm.ErrConfiguration, xi)
	}
	return &Shepherd{
		Xi:      xi,
		Vh:      vh,
		Alpha:   alpha,
		Delta:   delta,
		handle:  handle,
		targets: targets,
		env:     env,
	}, nil
}

func (s *Shepherd) Handle() int { return s.handle }

func (s *Shepherd) Reset() { s.out = nil }

func (s *Shepherd) Control(t float64, pops []*swarm.Population, rng *swarm.Stream) *swarm.Matrix {
	herders := pops[s.handle]
	targets := pops[s.targets]
	goal, radius, _ := s.env.Goal()

	n, m := herders.N(), targets.N()
	if s.out == nil {
		s.out = swarm.NewMatrix(n, herders.InputDim())
	}
	s.out.Zero()

	hx, tx := herders.State(), targets.State()

	// Closest herder per target.
	closest := make([]int, m)
	for j := 0; j < m; j++ {
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			d := planarDist(hx, i, tx, j)
			if d < best {
				best = d
				closest[j] = i
			}
		}
	}

	for i := 0; i < n; i++ {
		// Among sensed targets owned by this herder, chase the one
		// farthest from the goal.
		selected := -1
		farthest := math.Inf(-1)
		for j := 0; j < m; j++ {
			if closest[j] != i || planarDist(hx, i, tx, j) >= s.Xi {
				continue
			}
			gd := math.Hypot(tx.At(j, 0)-goal[0], tx.At(j, 1)-goal[1])
			if gd > farthest {
				farthest = gd
				selected = j
			}
		}

		if selected >= 0 {
			// Aim Delta behind the target along its outward direction
			// from the goal.
			ux, uy := unitFrom(goal, tx.At(selected, 0), tx.At(selected, 1))
			chaseX := tx.At(selected, 0) + s.Delta*ux
			chaseY := tx.At(selected, 1) + s.Delta*uy
			s.out.Set(i, 0, -s.Alpha*(hx.At(i, 0)-chaseX))
			s.out.Set(i, 1, -s.Alpha*(hx.At(i, 1)-chaseY))
			continue
		}

		// No target to chase: return toward the goal unless already
		// inside the goal region.
		gd := math.Hypot(hx.At(i, 0)-goal[0], hx.At(i, 1)-goal[1])
		if gd >= radius {
			ux, uy := unitFrom(goal, hx.At(i, 0), hx.At(i, 1))
			s.out.Set(i, 0, -s.Vh*ux)
			s.out.Set(i, 1, -s.Vh*uy)
		}
	}
	return s.out
}

func planarDist(a *swarm.Matrix, i int, b *swarm.Matrix, j int) float64 {
	return math.Hypot(a.At(i, 0)-b.At(j, 0), a.At(i, 1)-b.At(j, 1))
}

// unitFrom returns the unit vector pointing from origin o to (x, y), or
// zero when the two coincide.
func unitFrom(o []float64, x, y float64) (float64, float64) {
	dx, dy := x-o[0], y-o[1]
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 0, 0
	}
	return dx / d, dy / d
}
