package metrics

import "github.com/san-kum/swarmlab/internal/swarm"

// SeriesMetric is a metric that also exposes its full per-tick history.
// Every metric in this package implements it.
type SeriesMetric interface {
	swarm.Metric
	Series() []float64
}

// series accumulates one value per observed tick.
type series struct {
	name string
	vals []float64
}

func (s *series) Name() string { return s.name }

// Value returns the most recent observation, or zero before the first tick.
func (s *series) Value() float64 {
	if len(s.vals) == 0 {
		return 0
	}
	return s.vals[len(s.vals)-1]
}

// Series returns the per-tick values observed so far. The slice is live;
// callers read it after the run.
func (s *series) Series() []float64 { return s.vals }

func (s *series) Reset() { s.vals = s.vals[:0] }

// width resolves the number of leading state columns a metric reads: dims
// when positive, the full state width otherwise.
func width(dims, cols int) int {
	if dims <= 0 || dims > cols {
		return cols
	}
	return dims
}
