package swarm

import "fmt"

// Population is a group of agents sharing one dynamics law. The state matrix
// has one row per agent and Dynamics.StateDim columns. Agent count and
// parameter arrays are fixed at construction; only the state values change,
// and only through the simulator's tick commit.
type Population struct {
	id     string
	dyn    Dynamics
	params ParamSet
	state  *Matrix

	lower []float64
	upper []float64
}

// NewPopulation builds a population from an initial state matrix. The state
// column count must match the dynamics state dimension.
func NewPopulation(id string, dyn Dynamics, state *Matrix, params ParamSet) (*Population, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: population id must not be empty", ErrConfiguration)
	}
	if state.Rows() <= 0 {
		return nil, fmt.Errorf("%w: population %q has %d agents", ErrConfiguration, id, state.Rows())
	}
	if state.Cols() != dyn.StateDim() {
		return nil, fmt.Errorf("%w: population %q state has %d columns, dynamics wants %d",
			ErrConfiguration, id, state.Cols(), dyn.StateDim())
	}
	if dyn.InputDim() <= 0 || dyn.InputDim() > dyn.StateDim() {
		return nil, fmt.Errorf("%w: population %q input dimension %d outside 1..%d",
			ErrConfiguration, id, dyn.InputDim(), dyn.StateDim())
	}
	if params == nil {
		params = ParamSet{}
	}
	for name, p := range params {
		if p.Rows() != state.Rows() {
			return nil, fmt.Errorf("%w: population %q parameter %q has %d rows, want %d",
				ErrConfiguration, id, name, p.Rows(), state.Rows())
		}
	}
	if v, ok := dyn.(interface {
		Validate(n int, p ParamSet) error
	}); ok {
		if err := v.Validate(state.Rows(), params); err != nil {
			return nil, fmt.Errorf("population %q: %w", id, err)
		}
	}
	return &Population{id: id, dyn: dyn, params: params, state: state}, nil
}

func (p *Population) ID() string        { return p.id }
func (p *Population) N() int            { return p.state.Rows() }
func (p *Population) Dim() int          { return p.state.Cols() }
func (p *Population) InputDim() int     { return p.dyn.InputDim() }
func (p *Population) Dynamics() Dynamics { return p.dyn }
func (p *Population) Params() ParamSet  { return p.params }

// State returns the live state matrix. Callers outside the tick commit must
// treat it as read-only; snapshot consumers receive clones instead.
func (p *Population) State() *Matrix { return p.state }

// SetBounds installs optional per-dimension position bounds that override
// the environment extents for this population. Slices may be nil.
func (p *Population) SetBounds(lower, upper []float64) error {
	if lower != nil && len(lower) != p.Dim() {
		return fmt.Errorf("%w: population %q lower bounds have %d values, want %d",
			ErrConfiguration, p.id, len(lower), p.Dim())
	}
	if upper != nil && len(upper) != p.Dim() {
		return fmt.Errorf("%w: population %q upper bounds have %d values, want %d",
			ErrConfiguration, p.id, len(upper), p.Dim())
	}
	p.lower, p.upper = lower, upper
	return nil
}

// Bounds returns the per-dimension position bounds, or nil slices when the
// population follows the environment extents.
func (p *Population) Bounds() (lower, upper []float64) { return p.lower, p.upper }
