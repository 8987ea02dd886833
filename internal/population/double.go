package population

import (
	"fmt"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// DoubleIntegrator implements damped second-order dynamics. The state row is
// (position | velocity), each block spaceDim wide. External input acts as
// acceleration: d(pos) = vel, d(vel) = -damping*vel + input. Noise of
// intensity "sigma" acts on the velocity block only.
//
// Parameters: "damping" (scalar per agent), "sigma" (scalar per agent).
type DoubleIntegrator struct {
	spaceDim int
}

func NewDoubleIntegrator(spaceDim int) (*DoubleIntegrator, error) {
	if spaceDim < 1 {
		return nil, fmt.Errorf("%w: double integrator space dimension %d", swarm.ErrConfiguration, spaceDim)
	}
	return &DoubleIntegrator{spaceDim: spaceDim}, nil
}

func (d *DoubleIntegrator) StateDim() int { return 2 * d.spaceDim }
func (d *DoubleIntegrator) InputDim() int { return d.spaceDim }

// VelocityBlock reports where the velocity components live inside the state
// row, so boundary reflection can flip them.
func (d *DoubleIntegrator) VelocityBlock() (start, width int) {
	return d.spaceDim, d.spaceDim
}

func (d *DoubleIntegrator) Validate(n int, p swarm.ParamSet) error {
	return p.Require(n, "damping", "sigma")
}

func (d *DoubleIntegrator) Drift(dst, x, input *swarm.Matrix, p swarm.ParamSet) {
	damping := p["damping"]
	for i := 0; i < dst.Rows(); i++ {
		g := damping.At(i)
		for j := 0; j < d.spaceDim; j++ {
			vel := x.At(i, d.spaceDim+j)
			dst.Set(i, j, vel)
			dst.Set(i, d.spaceDim+j, -g*vel+input.At(i, j))
		}
	}
}

func (d *DoubleIntegrator) Diffusion(dst, x *swarm.Matrix, p swarm.ParamSet) {
	sigma := p["sigma"]
	for i := 0; i < dst.Rows(); i++ {
		s := sigma.At(i)
		for j := 0; j < d.spaceDim; j++ {
			dst.Set(i, j, 0)
			dst.Set(i, d.spaceDim+j, s)
		}
	}
}
