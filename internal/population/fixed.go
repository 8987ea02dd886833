package population

import (
	"fmt"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Fixed implements inert agents: zero drift and zero diffusion no matter
// what forces or inputs target them. Useful as obstacles or landmarks.
type Fixed struct {
	dim int
}

func NewFixed(dim int) (*Fixed, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: fixed population dimension %d", swarm.ErrConfiguration, dim)
	}
	return &Fixed{dim: dim}, nil
}

func (f *Fixed) StateDim() int { return f.dim }
func (f *Fixed) InputDim() int { return f.dim }

func (f *Fixed) Drift(dst, x, input *swarm.Matrix, p swarm.ParamSet) {
	dst.Zero()
}

func (f *Fixed) Diffusion(dst, x *swarm.Matrix, p swarm.ParamSet) {
	dst.Zero()
}
