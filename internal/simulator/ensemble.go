package simulator

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Factory assembles a fresh, independent simulator for one realization.
// Implementations must not share mutable state between the simulators they
// return; each run gets its own populations and randomness stream.
type Factory func(seed uint64) (*Simulator, error)

// Ensemble runs independent realizations of one setup in parallel, each
// with its own seed. Realization i uses seed seedStart+i.
type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart uint64
}

func NewEnsemble(build Factory, numRuns int, seedStart uint64) (*Ensemble, error) {
	if build == nil {
		return nil, fmt.Errorf("%w: ensemble needs a factory", swarm.ErrConfiguration)
	}
	if numRuns <= 0 {
		return nil, fmt.Errorf("%w: ensemble needs at least one run, got %d", swarm.ErrConfiguration, numRuns)
	}
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}, nil
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sim, err := e.build(e.seedStart + uint64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
