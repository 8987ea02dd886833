package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// MeanSquaredDisplacement measures diffusive motion: the mean over agents of
// the squared distance from where each agent was at the first snapshot the
// metric observed. For Brownian agents it grows linearly in time with slope
// 2 * dimension * diffusion.
type MeanSquaredDisplacement struct {
	series
	population string
	dims       int

	ref *swarm.Matrix
}

func NewMeanSquaredDisplacement(population string, dims int) (*MeanSquaredDisplacement, error) {
	if population == "" {
		return nil, fmt.Errorf("%w: displacement metric needs a population id", swarm.ErrConfiguration)
	}
	return &MeanSquaredDisplacement{
		series:     series{name: "msd_" + population},
		population: population,
		dims:       dims,
	}, nil
}

func (m *MeanSquaredDisplacement) Observe(s swarm.Snapshot) {
	x, ok := s.States[m.population]
	if !ok {
		return
	}
	if m.ref == nil {
		m.ref = x.Clone()
		m.vals = append(m.vals, 0)
		return
	}

	k := width(m.dims, x.Cols())
	sum := 0.0
	for i := 0; i < x.Rows(); i++ {
		row, ref := x.Row(i), m.ref.Row(i)
		for j := 0; j < k; j++ {
			d := row[j] - ref[j]
			sum += d * d
		}
	}
	m.vals = append(m.vals, sum/float64(x.Rows()))
}

func (m *MeanSquaredDisplacement) Reset() {
	m.series.Reset()
	m.ref = nil
}

// PathLength measures actuation: the mean distance traveled per agent,
// accumulated tick over tick. For driven first-order agents this is the
// integrated magnitude of the applied input.
type PathLength struct {
	series
	population string
	dims       int

	prev  *swarm.Matrix
	total float64
}

func NewPathLength(population string, dims int) (*PathLength, error) {
	if population == "" {
		return nil, fmt.Errorf("%w: path length metric needs a population id", swarm.ErrConfiguration)
	}
	return &PathLength{
		series:     series{name: "path_length_" + population},
		population: population,
		dims:       dims,
	}, nil
}

func (m *PathLength) Observe(s swarm.Snapshot) {
	x, ok := s.States[m.population]
	if !ok {
		return
	}
	if m.prev == nil {
		m.prev = x.Clone()
		m.vals = append(m.vals, 0)
		return
	}

	k := width(m.dims, x.Cols())
	sum := 0.0
	for i := 0; i < x.Rows(); i++ {
		row, prev := x.Row(i), m.prev.Row(i)
		d2 := 0.0
		for j := 0; j < k; j++ {
			d := row[j] - prev[j]
			d2 += d * d
		}
		sum += math.Sqrt(d2)
	}
	m.total += sum / float64(x.Rows())
	m.prev.CopyFrom(x)
	m.vals = append(m.vals, m.total)
}

func (m *PathLength) Reset() {
	m.series.Reset()
	m.prev = nil
	m.total = 0
}
