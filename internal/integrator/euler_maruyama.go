package integrator

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// EulerMaruyama advances a population one step of the stochastic update
// x' = x + drift*dt + diffusion*sqrt(dt)*xi, drawing one standard normal per
// state entry. When the diffusion matrix is identically zero the noise term
// is skipped entirely and no randomness is consumed.
type EulerMaruyama struct {
	dt   float64
	pool *swarm.MatrixPool
}

func NewEulerMaruyama(dt float64) (*EulerMaruyama, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: time step %v", swarm.ErrConfiguration, dt)
	}
	return &EulerMaruyama{dt: dt, pool: swarm.NewMatrixPool()}, nil
}

func (e *EulerMaruyama) Dt() float64 { return e.dt }

func (e *EulerMaruyama) Step(dst *swarm.Matrix, pop *swarm.Population, input *swarm.Matrix, rng *swarm.Stream) {
	x := pop.State()
	n, d := x.Rows(), x.Cols()

	drift := e.pool.Get(n, d)
	diffusion := e.pool.Get(n, d)
	defer e.pool.Put(drift)
	defer e.pool.Put(diffusion)

	dyn := pop.Dynamics()
	dyn.Drift(drift, x, input, pop.Params())
	dyn.Diffusion(diffusion, x, pop.Params())

	dst.CopyFrom(x)
	dst.AddScaled(e.dt, drift)

	if diffusion.IsZero() {
		return
	}

	sqrtDt := math.Sqrt(e.dt)
	out := dst.Data()
	noise := diffusion.Data()
	for i := range out {
		out[i] += noise[i] * sqrtDt * rng.NormFloat64()
	}
}
