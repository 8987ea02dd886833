package population

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Brownian implements biased Brownian motion: the drift is a per-agent mean
// velocity mu plus the aggregated external input, the diffusion is
// sqrt(2*diffusion) along every state dimension.
//
// Parameters: "mu" (scalar or one column per dimension), "diffusion"
// (scalar or one column per dimension).
type Brownian struct {
	dim int
}

func NewBrownian(dim int) (*Brownian, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: brownian dimension %d", swarm.ErrConfiguration, dim)
	}
	return &Brownian{dim: dim}, nil
}

func (b *Brownian) StateDim() int { return b.dim }
func (b *Brownian) InputDim() int { return b.dim }

func (b *Brownian) Validate(n int, p swarm.ParamSet) error {
	return p.Require(n, "mu", "diffusion")
}

func (b *Brownian) Drift(dst, x, input *swarm.Matrix, p swarm.ParamSet) {
	mu := p["mu"]
	for i := 0; i < dst.Rows(); i++ {
		for j := 0; j < b.dim; j++ {
			dst.Set(i, j, paramAt(mu, i, j)+input.At(i, j))
		}
	}
}

func (b *Brownian) Diffusion(dst, x *swarm.Matrix, p swarm.ParamSet) {
	d := p["diffusion"]
	for i := 0; i < dst.Rows(); i++ {
		for j := 0; j < b.dim; j++ {
			dst.Set(i, j, math.Sqrt(2*paramAt(d, i, j)))
		}
	}
}

// paramAt reads column j of row i, broadcasting single-column parameters
// across every dimension.
func paramAt(p swarm.Param, i, j int) float64 {
	if p.Cols == 1 {
		return p.At(i)
	}
	return p.AtCol(i, j)
}
