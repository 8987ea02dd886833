// Package simulator orchestrates multi-population runs: it owns the clock,
// drives the per-tick pipeline and guards its invariants.
//
// A tick is synchronous and strictly ordered: controllers compute inputs
// from the pre-tick states, interactions accumulate pairwise forces, the
// integrator advances every population into staged buffers, the staged
// states pass a finiteness check and commit atomically, the environment
// enforces its boundary policy, and a read-only [swarm.Snapshot] of the
// committed tick goes to observers and metrics. A tick either commits fully
// or leaves every population untouched.
//
// The simulator is a three-state machine: Idle until started, Running while
// ticking, Stopped after an explicit stop, an environment termination, a
// stop condition or a numerical error. Reset returns it to Idle with the
// initial states, the randomness stream, controllers, metrics and the
// environment all rewound, so a re-run reproduces the original trajectory
// draw for draw.
//
// [Ensemble] runs independent replicates of the same scenario on separate
// goroutines; replicas share nothing but the factory that builds them.
package simulator
