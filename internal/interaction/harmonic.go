package interaction

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Harmonic is a finite-range linear repulsion: each source agent closer than
// cutoff pushes the target agent away with magnitude strength*(cutoff - d),
// directed along the separation vector. At and beyond cutoff the force is
// exactly zero.
type Harmonic struct {
	target int
	source int

	strength float64
	cutoff   float64

	diff []float64
}

func NewHarmonic(target, source int, strength, cutoff float64) (*Harmonic, error) {
	if cutoff <= 0 {
		return nil, fmt.Errorf("%w: harmonic cutoff %v", swarm.ErrConfiguration, cutoff)
	}
	if strength < 0 {
		return nil, fmt.Errorf("%w: harmonic strength %v", swarm.ErrConfiguration, strength)
	}
	return &Harmonic{target: target, source: source, strength: strength, cutoff: cutoff}, nil
}

func (h *Harmonic) Pair() (target, source int) { return h.target, h.source }

func (h *Harmonic) Force(dst *swarm.Matrix, target, source *swarm.Population, rng *swarm.Stream) {
	k := spatialWidth(target, source)
	if len(h.diff) < k {
		h.diff = make([]float64, k)
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
				h.diff[c] = delta
				d2 += delta * delta
			}
			d := math.Sqrt(d2)
			if d == 0 || d >= h.cutoff {
				continue
			}
			mag := h.strength * (h.cutoff - d) / d
			for c := 0; c < k; c++ {
				row[c] += mag * h.diff[c]
			}
		}
	}
}
