// Package swarm provides the core vocabulary for multi-population
// stochastic simulations.
//
// The central types are:
//
//   - [Matrix]: a dense row-major N x D block of agent states or forces
//   - [Population]: an agent group with its state, parameters and dynamics
//   - [Stream]: the shared, seedable randomness handle
//   - [ParamSet]: per-agent parameter arrays sampled at construction
//
// Behavior plugs in through small interfaces: [Dynamics] defines drift and
// diffusion of a population, [Interaction] produces pairwise forces between
// two populations, [Controller] injects external inputs, and [Integrator]
// advances a population by one time step. [Observer] and [Metric] consume
// read-only [Snapshot] values after each committed tick.
//
// All randomness flows through a single [Stream] so that a run is fully
// reproducible from its seed. Components never keep their own sources.
package swarm
