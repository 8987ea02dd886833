package interaction

import (
	"fmt"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// LennardJones applies the classic 12-6 force between agents: strongly
// repulsive below the equilibrium distance, weakly attractive beyond it.
// The well depth epsilon and length scale sigma are per-target-agent
// parameters, so a heterogeneous population mixes softer and harder agents.
type LennardJones struct {
	target int
	source int

	epsilon swarm.Param
	sigma   swarm.Param

	diff []float64
}

// NewLennardJones builds the interaction for a target population of nTarget
// agents. epsilon and sigma must carry one row per target agent.
func NewLennardJones(target, source, nTarget int, epsilon, sigma swarm.Param) (*LennardJones, error) {
	if epsilon.Rows() != nTarget {
		return nil, fmt.Errorf("%w: lennard-jones epsilon has %d rows, want %d",
			swarm.ErrConfiguration, epsilon.Rows(), nTarget)
	}
	if sigma.Rows() != nTarget {
		return nil, fmt.Errorf("%w: lennard-jones sigma has %d rows, want %d",
			swarm.ErrConfiguration, sigma.Rows(), nTarget)
	}
	for i := 0; i < nTarget; i++ {
		if sigma.At(i) <= 0 {
			return nil, fmt.Errorf("%w: lennard-jones sigma[%d] = %v",
				swarm.ErrConfiguration, i, sigma.At(i))
		}
	}
	return &LennardJones{target: target, source: source, epsilon: epsilon, sigma: sigma}, nil
}

func (l *LennardJones) Pair() (target, source int) { return l.target, l.source }

func (l *LennardJones) Force(dst *swarm.Matrix, target, source *swarm.Population, rng *swarm.Stream) {
	k := spatialWidth(target, source)
	if len(l.diff) < k {
		l.diff = make([]float64, k)
	}

	xt, xs := target.State(), source.State()
	for i := 0; i < xt.Rows(); i++ {
		row := dst.Row(i)
		eps := l.epsilon.At(i)
		sig := l.sigma.At(i)
		for j := 0; j < xs.Rows(); j++ {
			if target == source && i == j {
				continue
			}
			d2 := 0.0
			for c := 0; c < k; c++ {
				delta := xt.At(i, c) - xs.At(j, c)
				l.diff[c] = delta
				d2 += delta * delta
			}
			if d2 == 0 {
				continue
			}
			sr2 := sig * sig / d2
			sr6 := sr2 * sr2 * sr2
			// 24*eps*(2*(sigma/d)^12 - (sigma/d)^6)/d^2 along the separation.
			mag := 24 * eps * (2*sr6*sr6 - sr6) / d2
			for c := 0; c < k; c++ {
				row[c] += mag * l.diff[c]
			}
		}
	}
}
