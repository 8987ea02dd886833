package interaction

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// PowerLaw applies a force of magnitude strength/d^p between agents closer
// than cutoff, directed along the separation vector. The sign selects
// repulsion (away from the source) or attraction (toward it).
type PowerLaw struct {
	target int
	source int

	strength float64
	cutoff   float64
	exponent float64
	sign     float64

	diff []float64
}

func NewPowerLawRepulsion(target, source int, strength, cutoff, exponent float64) (*PowerLaw, error) {
	return newPowerLaw(target, source, strength, cutoff, exponent, 1)
}

func NewPowerLawAttraction(target, source int, strength, cutoff, exponent float64) (*PowerLaw, error) {
	return newPowerLaw(target, source, strength, cutoff, exponent, -1)
}

func newPowerLaw(target, source int, strength, cutoff, exponent, sign float64) (*PowerLaw, error) {
	if cutoff <= 0 {
		return nil, fmt.Errorf("%w: power-law cutoff %v", swarm.ErrConfiguration, cutoff)
	}
	if strength < 0 {
		return nil, fmt.Errorf("%w: power-law strength %v", swarm.ErrConfiguration, strength)
	}
	if exponent <= 0 {
		return nil, fmt.Errorf("%w: power-law exponent %v", swarm.ErrConfiguration, exponent)
	}
	return &PowerLaw{
		target:   target,
		source:   source,
		strength: strength,
		cutoff:   cutoff,
		exponent: exponent,
		sign:     sign,
	}, nil
}

func (p *PowerLaw) Pair() (target, source int) { return p.target, p.source }

func (p *PowerLaw) Force(dst *swarm.Matrix, target, source *swarm.Population, rng *swarm.Stream) {
	k := spatialWidth(target, source)
	if len(p.diff) < k {
		p.diff = make([]float64, k)
	}

	xt, xs := target.State(), source.State()
	for i := 0; i < xt.Rows(); i++ {
		row := dst.Row(i)
		for j := 0; j < xs.Rows(); j++ {
			if target == source && i == j {
				continue
			}
			d2 := 0.0
			for c := 0; c < k; c++ {
				delta := xt.At(i, c) - xs.At(j, c)
				p.diff[c] = delta
				d2 += delta * delta
			}
			d := math.Sqrt(d2)
			if d == 0 || d >= p.cutoff {
				continue
			}
			mag := p.sign * p.strength / math.Pow(d, p.exponent) / d
			for c := 0; c < k; c++ {
				row[c] += mag * p.diff[c]
			}
		}
	}
}
