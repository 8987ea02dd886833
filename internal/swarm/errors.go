package swarm

import (
	"errors"
	"fmt"
)

// Domain errors for simulation construction and execution.
var (
	// ErrConfiguration indicates a missing or malformed parameter, shape,
	// sampler or kind tag. Raised at construction, before any tick runs.
	ErrConfiguration = errors.New("swarm: invalid configuration")

	// ErrUnknownPopulation indicates a reference to a population id that is
	// not registered with the simulator.
	ErrUnknownPopulation = errors.New("swarm: unknown population")

	// ErrDimension indicates a force or control input whose shape does not
	// match the receiving population.
	ErrDimension = errors.New("swarm: dimension mismatch")

	// ErrUnstable indicates a non-finite state value after integration.
	ErrUnstable = errors.New("swarm: numerical instability")

	// ErrNotRunning indicates an operation requested outside the lifecycle
	// phase that allows it, such as ticking an idle simulator.
	ErrNotRunning = errors.New("swarm: simulator not running")
)

// InstabilityError reports the first non-finite value produced by a tick.
// The tick that produced it is discarded, so the simulator state still holds
// the last finite values.
type InstabilityError struct {
	Step       int
	Time       float64
	Population string
	Agent      int
	Value      float64
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): population %q agent %d diverged (%v)",
		e.Step, e.Time, e.Population, e.Agent, e.Value)
}

func (e *InstabilityError) Unwrap() error { return ErrUnstable }

// DimensionError reports a force or control matrix shaped differently from
// the population input block it targets.
type DimensionError struct {
	Population string
	WantRows   int
	WantCols   int
	Rows       int
	Cols       int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("population %q expects %dx%d input, got %dx%d",
		e.Population, e.WantRows, e.WantCols, e.Rows, e.Cols)
}

func (e *DimensionError) Unwrap() error { return ErrDimension }
