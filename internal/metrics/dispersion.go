package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Dispersion measures how spread out a population is: the root mean squared
// distance of its agents from their centroid (the radius of gyration).
type Dispersion struct {
	series
	population string
	dims       int

	centroid []float64
}

// NewDispersion builds a dispersion metric over the leading dims state
// columns of the named population. dims <= 0 means the full state row.
func NewDispersion(population string, dims int) (*Dispersion, error) {
	if population == "" {
		return nil, fmt.Errorf("%w: dispersion needs a population id", swarm.ErrConfiguration)
	}
	return &Dispersion{
		series:     series{name: "dispersion_" + population},
		population: population,
		dims:       dims,
	}, nil
}

func (m *Dispersion) Observe(s swarm.Snapshot) {
	x, ok := s.States[m.population]
	if !ok {
		return
	}
	k := width(m.dims, x.Cols())
	if len(m.centroid) < k {
		m.centroid = make([]float64, k)
	}
	c := m.centroid[:k]
	for i := range c {
		c[i] = 0
	}

	n := x.Rows()
	for i := 0; i < n; i++ {
		floats.Add(c, x.Row(i)[:k])
	}
	floats.Scale(1/float64(n), c)

	sum := 0.0
	for i := 0; i < n; i++ {
		row := x.Row(i)
		for j := 0; j < k; j++ {
			d := row[j] - c[j]
			sum += d * d
		}
	}
	m.vals = append(m.vals, math.Sqrt(sum/float64(n)))
}
