package population

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// InitSpec describes how an initial state matrix is sampled.
type InitSpec struct {
	// Shape selects the spatial distribution: "box" or "circle".
	Shape string

	// Lower and Upper bound every dimension for box sampling.
	Lower []float64
	Upper []float64

	// MinRadius and MaxRadius bound the annulus for circle sampling, which
	// covers the first two dimensions with uniform area density.
	MinRadius float64
	MaxRadius float64

	// MinDist, when positive, enforces a minimum pairwise distance by
	// rejection: each agent is redrawn until it clears everyone already
	// placed. Short-range repulsive interactions need this to avoid huge
	// forces from overlapping starts.
	MinDist float64

	// OtherLower and OtherUpper bound the dimensions beyond the first two
	// for circle sampling. Nil means zero.
	OtherLower []float64
	OtherUpper []float64
}

// SampleInitial draws an n x dim initial state matrix from spec.
func SampleInitial(n, dim int, spec InitSpec, rng *swarm.Stream) (*swarm.Matrix, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: agent count %d", swarm.ErrConfiguration, n)
	}
	switch spec.Shape {
	case "box":
		return sampleBox(n, dim, spec, rng)
	case "circle":
		return sampleCircle(n, dim, spec, rng)
	default:
		return nil, fmt.Errorf("%w: unknown initial shape %q (box or circle)",
			swarm.ErrConfiguration, spec.Shape)
	}
}

func sampleBox(n, dim int, spec InitSpec, rng *swarm.Stream) (*swarm.Matrix, error) {
	if len(spec.Lower) != dim || len(spec.Upper) != dim {
		return nil, fmt.Errorf("%w: box bounds have %d/%d values, want %d",
			swarm.ErrConfiguration, len(spec.Lower), len(spec.Upper), dim)
	}
	for j := 0; j < dim; j++ {
		if spec.Lower[j] > spec.Upper[j] {
			return nil, fmt.Errorf("%w: box bound %d inverted (%v > %v)",
				swarm.ErrConfiguration, j, spec.Lower[j], spec.Upper[j])
		}
	}

	return place(n, dim, spec.MinDist, func(row []float64) {
		for j := 0; j < dim; j++ {
			row[j] = distuv.Uniform{Min: spec.Lower[j], Max: spec.Upper[j], Src: rng}.Rand()
		}
	})
}

func sampleCircle(n, dim int, spec InitSpec, rng *swarm.Stream) (*swarm.Matrix, error) {
	if dim < 2 {
		return nil, fmt.Errorf("%w: circle sampling needs at least 2 dimensions, got %d",
			swarm.ErrConfiguration, dim)
	}
	if spec.MinRadius < 0 || spec.MaxRadius < spec.MinRadius {
		return nil, fmt.Errorf("%w: circle radii [%v, %v]",
			swarm.ErrConfiguration, spec.MinRadius, spec.MaxRadius)
	}

	lower, upper := spec.OtherLower, spec.OtherUpper
	if dim > 2 {
		if lower == nil {
			lower = make([]float64, dim-2)
		}
		if upper == nil {
			upper = make([]float64, dim-2)
		}
		if len(lower) != dim-2 || len(upper) != dim-2 {
			return nil, fmt.Errorf("%w: circle extra-dimension bounds have %d/%d values, want %d",
				swarm.ErrConfiguration, len(lower), len(upper), dim-2)
		}
	}

	angle := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng}
	// Uniform area density: r = sqrt(U(min^2, max^2)).
	r2 := distuv.Uniform{Min: spec.MinRadius * spec.MinRadius, Max: spec.MaxRadius * spec.MaxRadius, Src: rng}

	return place(n, dim, spec.MinDist, func(row []float64) {
		theta := angle.Rand()
		r := math.Sqrt(r2.Rand())
		row[0] = r * math.Cos(theta)
		row[1] = r * math.Sin(theta)
		for j := 2; j < dim; j++ {
			row[j] = distuv.Uniform{Min: lower[j-2], Max: upper[j-2], Src: rng}.Rand()
		}
	})
}

// maxPlaceTries bounds the rejection loop per agent. Hitting it means the
// domain is too crowded for the requested spacing.
const maxPlaceTries = 1000

// place fills an n x dim matrix from draw, redrawing any candidate that
// lands closer than minDist to an already placed agent.
func place(n, dim int, minDist float64, draw func(row []float64)) (*swarm.Matrix, error) {
	m := swarm.NewMatrix(n, dim)
	min2 := minDist * minDist
	for i := 0; i < n; i++ {
		row := m.Row(i)
		for try := 0; ; try++ {
			draw(row)
			if minDist <= 0 || clears(m, i, row, min2) {
				break
			}
			if try == maxPlaceTries {
				return nil, fmt.Errorf("%w: no room for agent %d with min_dist %v after %d attempts",
					swarm.ErrConfiguration, i, minDist, maxPlaceTries)
			}
		}
	}
	return m, nil
}

func clears(m *swarm.Matrix, placed int, row []float64, min2 float64) bool {
	for i := 0; i < placed; i++ {
		prev := m.Row(i)
		d2 := 0.0
		for j := range row {
			d := row[j] - prev[j]
			d2 += d * d
		}
		if d2 < min2 {
			return false
		}
	}
	return true
}

// LoadInitial reads an initial state matrix from a headerless CSV file with
// exactly n rows and dim columns.
func LoadInitial(path string, n, dim int) (*swarm.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("initial states: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("initial states %s: %w", path, err)
	}
	if len(records) != n {
		return nil, fmt.Errorf("%w: %s has %d rows, want %d agents",
			swarm.ErrConfiguration, path, len(records), n)
	}

	m := swarm.NewMatrix(n, dim)
	for i, rec := range records {
		if len(rec) != dim {
			return nil, fmt.Errorf("%w: %s row %d has %d columns, want %d",
				swarm.ErrConfiguration, path, i, len(rec), dim)
		}
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s row %d column %d: %v",
					swarm.ErrConfiguration, path, i, j, err)
			}
			m.Set(i, j, v)
		}
	}
	return m, nil
}
