package population

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// SimpleIntegrator implements noiseless first-order integrators: the drift
// is the aggregated input itself, rescaled so its norm never exceeds a
// per-agent "vmax" parameter when one is configured. Rescaling keeps the
// heading; agents without input stand still.
type SimpleIntegrator struct {
	dim int
}

func NewSimpleIntegrator(dim int) (*SimpleIntegrator, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: simple integrator dimension %d", swarm.ErrConfiguration, dim)
	}
	return &SimpleIntegrator{dim: dim}, nil
}

func (s *SimpleIntegrator) StateDim() int { return s.dim }
func (s *SimpleIntegrator) InputDim() int { return s.dim }

func (s *SimpleIntegrator) Drift(dst, x, input *swarm.Matrix, p swarm.ParamSet) {
	vmax, clamp := p["vmax"], p.Has("vmax")
	for i := 0; i < dst.Rows(); i++ {
		in := input.Row(i)
		scale := 1.0
		if clamp {
			if norm := floats.Norm(in, 2); norm > vmax.At(i) && norm > 0 {
				scale = vmax.At(i) / norm
			}
		}
		out := dst.Row(i)
		for j, v := range in {
			out[j] = v * scale
		}
	}
}

func (s *SimpleIntegrator) Diffusion(dst, x *swarm.Matrix, p swarm.ParamSet) {
	dst.Zero()
}
