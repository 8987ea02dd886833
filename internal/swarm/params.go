package swarm

import "fmt"

// Param is a per-agent parameter array: one row per agent, Cols values per
// row. Scalar parameters have Cols == 1. Parameters are sampled or loaded at
// population construction and never change during a run.
type Param struct {
	Data []float64
	Cols int
}

// Scalar builds a one-column parameter holding v for every agent.
func Scalar(n int, v float64) Param {
	d := make([]float64, n)
	for i := range d {
		d[i] = v
	}
	return Param{Data: d, Cols: 1}
}

func (p Param) Rows() int {
	if p.Cols == 0 {
		return 0
	}
	return len(p.Data) / p.Cols
}

// At returns the first (or only) column of row i.
func (p Param) At(i int) float64 { return p.Data[i*p.Cols] }

// AtCol returns column j of row i.
func (p Param) AtCol(i, j int) float64 { return p.Data[i*p.Cols+j] }

// ParamSet maps parameter names to per-agent arrays.
type ParamSet map[string]Param

// Require verifies that every named parameter exists and carries exactly n
// rows.
func (ps ParamSet) Require(n int, names ...string) error {
	for _, name := range names {
		p, ok := ps[name]
		if !ok {
			return fmt.Errorf("%w: missing parameter %q", ErrConfiguration, name)
		}
		if p.Rows() != n {
			return fmt.Errorf("%w: parameter %q has %d rows, want %d",
				ErrConfiguration, name, p.Rows(), n)
		}
	}
	return nil
}

// Has reports whether the named parameter is present.
func (ps ParamSet) Has(name string) bool {
	_, ok := ps[name]
	return ok
}
