package swarm

// Dynamics defines the stochastic law of motion of one population:
// dx = Drift(x, input) dt + Diffusion(x) dW.
type Dynamics interface {
	// StateDim is the number of state columns per agent.
	StateDim() int

	// InputDim is the number of leading state columns that receive external
	// forces and control inputs. For first-order dynamics it equals
	// StateDim; for second-order dynamics it is the velocity block width.
	InputDim() int

	// Drift writes the deterministic rate of change into dst (N x StateDim).
	// input is the aggregated force matrix (N x InputDim), never nil.
	Drift(dst, x, input *Matrix, p ParamSet)

	// Diffusion writes the noise intensity into dst (N x StateDim). A
	// dst left identically zero makes the step fully deterministic and
	// consumes no randomness.
	Diffusion(dst, x *Matrix, p ParamSet)
}

// Velocities is implemented by dynamics whose state carries a velocity
// block, so boundary reflection can flip it.
type Velocities interface {
	// VelocityBlock returns the first column and width of the velocity
	// components inside the state row.
	VelocityBlock() (start, width int)
}

// Interaction produces the force one population exerts on another.
type Interaction interface {
	// Pair returns the (target, source) population handles this interaction
	// couples. Handles index the simulator's registration order.
	Pair() (target, source int)

	// Force accumulates the force on each target agent into dst
	// (N_target x InputDim_target). Implementations must add into dst, not
	// overwrite it. Both populations are read at their pre-tick state.
	Force(dst *Matrix, target, source *Population, rng *Stream)
}

// Controller computes an external input for one population from the
// pre-tick states of all populations.
type Controller interface {
	// Handle returns the controlled population's registration index.
	Handle() int

	// Control returns the control input (N x InputDim) for the controlled
	// population. The returned matrix is owned by the controller and valid
	// until the next call.
	Control(t float64, pops []*Population, rng *Stream) *Matrix

	// Reset clears internal controller memory (integral terms, held
	// outputs) so a fresh run starts from a clean controller.
	Reset()
}

// Integrator advances one population by a fixed time step.
type Integrator interface {
	// Dt returns the fixed step size. It never changes during a run.
	Dt() float64

	// Step writes the post-step state into dst (same shape as the
	// population state) without mutating the population.
	Step(dst *Matrix, pop *Population, input *Matrix, rng *Stream)
}

// Snapshot is the read-only view of a committed tick handed to observers
// and metrics. State matrices are clones; consumers may retain them.
type Snapshot struct {
	Time   float64
	Step   int
	States map[string]*Matrix
}

// Observer receives a snapshot after every committed tick.
type Observer interface {
	OnTick(s Snapshot)
}

// Metric is a named scalar observable accumulated over a run.
type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}
