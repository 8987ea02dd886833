package integrator

import (
	"fmt"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Euler advances a population one deterministic step x' = x + drift*dt,
// ignoring diffusion. Useful as a noiseless reference for the same dynamics.
type Euler struct {
	dt   float64
	pool *swarm.MatrixPool
}

func NewEuler(dt float64) (*Euler, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: time step %v", swarm.ErrConfiguration, dt)
	}
	return &Euler{dt: dt, pool: swarm.NewMatrixPool()}, nil
}

func (e *Euler) Dt() float64 { return e.dt }

func (e *Euler) Step(dst *swarm.Matrix, pop *swarm.Population, input *swarm.Matrix, rng *swarm.Stream) {
	x := pop.State()

	drift := e.pool.Get(x.Rows(), x.Cols())
	defer e.pool.Put(drift)

	pop.Dynamics().Drift(drift, x, input, pop.Params())

	dst.CopyFrom(x)
	dst.AddScaled(e.dt, drift)
}
