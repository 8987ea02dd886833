package population

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// ParamSpec describes one per-agent parameter to sample. A spec without a
// sampler tag holds the same constant for every agent.
type ParamSpec struct {
	Name    string
	Sampler string
	Args    map[string]float64
	Const   float64

	// Cols is the number of values per agent, default 1.
	Cols int

	// Homogeneous draws one value shared by all agents instead of an
	// independent draw per agent.
	Homogeneous bool
}

// SampleParams draws every spec in order and returns the assembled set.
// Callers must pass specs in a fixed order to keep runs reproducible.
func SampleParams(n int, specs []ParamSpec, rng *swarm.Stream) (swarm.ParamSet, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: agent count %d", swarm.ErrConfiguration, n)
	}

	ps := swarm.ParamSet{}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: parameter spec without a name", swarm.ErrConfiguration)
		}
		cols := spec.Cols
		if cols == 0 {
			cols = 1
		}
		if cols < 1 {
			return nil, fmt.Errorf("%w: parameter %q has %d columns",
				swarm.ErrConfiguration, spec.Name, cols)
		}

		data := make([]float64, n*cols)
		switch {
		case spec.Sampler == "":
			for i := range data {
				data[i] = spec.Const
			}
		case spec.Homogeneous:
			draw, err := newSampler(spec.Sampler, spec.Args, rng)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", spec.Name, err)
			}
			row := make([]float64, cols)
			for j := range row {
				row[j] = draw()
			}
			for i := 0; i < n; i++ {
				copy(data[i*cols:(i+1)*cols], row)
			}
		default:
			draw, err := newSampler(spec.Sampler, spec.Args, rng)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", spec.Name, err)
			}
			for i := range data {
				data[i] = draw()
			}
		}
		ps[spec.Name] = swarm.Param{Data: data, Cols: cols}
	}
	return ps, nil
}

// samplerKinds lists every distribution tag newSampler accepts.
var samplerKinds = []string{
	"beta", "exponential", "gamma", "laplace", "lognormal",
	"normal", "pareto", "poisson", "uniform", "weibull",
}

// SamplerKinds returns the supported distribution tags, sorted.
func SamplerKinds() []string {
	kinds := make([]string, len(samplerKinds))
	copy(kinds, samplerKinds)
	return kinds
}

// KnownSampler reports whether kind names a supported distribution.
func KnownSampler(kind string) bool {
	for _, k := range samplerKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// newSampler builds a draw function for a distribution tag backed by the
// shared stream.
func newSampler(kind string, args map[string]float64, rng *swarm.Stream) (func() float64, error) {
	arg := func(name string) (float64, error) {
		v, ok := args[name]
		if !ok {
			return 0, fmt.Errorf("%w: sampler %q missing argument %q",
				swarm.ErrConfiguration, kind, name)
		}
		return v, nil
	}

	switch kind {
	case "uniform":
		min, err := arg("min")
		if err != nil {
			return nil, err
		}
		max, err := arg("max")
		if err != nil {
			return nil, err
		}
		return distuv.Uniform{Min: min, Max: max, Src: rng}.Rand, nil
	case "normal":
		mean, err := arg("mean")
		if err != nil {
			return nil, err
		}
		std, err := arg("std")
		if err != nil {
			return nil, err
		}
		return distuv.Normal{Mu: mean, Sigma: std, Src: rng}.Rand, nil
	case "lognormal":
		mu, err := arg("mu")
		if err != nil {
			return nil, err
		}
		sigma, err := arg("sigma")
		if err != nil {
			return nil, err
		}
		return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: rng}.Rand, nil
	case "exponential":
		rate, err := arg("rate")
		if err != nil {
			return nil, err
		}
		return distuv.Exponential{Rate: rate, Src: rng}.Rand, nil
	case "gamma":
		alpha, err := arg("alpha")
		if err != nil {
			return nil, err
		}
		beta, err := arg("beta")
		if err != nil {
			return nil, err
		}
		return distuv.Gamma{Alpha: alpha, Beta: beta, Src: rng}.Rand, nil
	case "beta":
		alpha, err := arg("alpha")
		if err != nil {
			return nil, err
		}
		beta, err := arg("beta")
		if err != nil {
			return nil, err
		}
		return distuv.Beta{Alpha: alpha, Beta: beta, Src: rng}.Rand, nil
	case "weibull":
		k, err := arg("k")
		if err != nil {
			return nil, err
		}
		lambda, err := arg("lambda")
		if err != nil {
			return nil, err
		}
		return distuv.Weibull{K: k, Lambda: lambda, Src: rng}.Rand, nil
	case "pareto":
		xm, err := arg("xm")
		if err != nil {
			return nil, err
		}
		alpha, err := arg("alpha")
		if err != nil {
			return nil, err
		}
		return distuv.Pareto{Xm: xm, Alpha: alpha, Src: rng}.Rand, nil
	case "laplace":
		mu, err := arg("mu")
		if err != nil {
			return nil, err
		}
		scale, err := arg("scale")
		if err != nil {
			return nil, err
		}
		return distuv.Laplace{Mu: mu, Scale: scale, Src: rng}.Rand, nil
	case "poisson":
		lambda, err := arg("lambda")
		if err != nil {
			return nil, err
		}
		return distuv.Poisson{Lambda: lambda, Src: rng}.Rand, nil
	default:
		return nil, fmt.Errorf("%w: unknown sampler %q", swarm.ErrConfiguration, kind)
	}
}

// LoadParams reads per-agent parameters from a CSV file whose header row
// names the parameters. Files with fewer rows than n repeat from the top,
// files with more rows truncate; both log a warning.
func LoadParams(path string, n int) (swarm.ParamSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parameters %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", swarm.ErrConfiguration, path)
	}

	header := records[0]
	rows := records[1:]
	switch {
	case len(rows) < n:
		slog.Warn("parameter file has fewer rows than agents, repeating from the top",
			"path", path, "rows", len(rows), "agents", n)
	case len(rows) > n:
		slog.Warn("parameter file has more rows than agents, truncating",
			"path", path, "rows", len(rows), "agents", n)
	}

	ps := swarm.ParamSet{}
	for col, name := range header {
		data := make([]float64, n)
		for i := 0; i < n; i++ {
			rec := rows[i%len(rows)]
			if col >= len(rec) {
				return nil, fmt.Errorf("%w: %s row %d has no column %q",
					swarm.ErrConfiguration, path, i%len(rows)+1, name)
			}
			v, err := strconv.ParseFloat(rec[col], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s column %q row %d: %v",
					swarm.ErrConfiguration, path, name, i%len(rows)+1, err)
			}
			data[i] = v
		}
		ps[name] = swarm.Param{Data: data, Cols: 1}
	}
	return ps, nil
}
