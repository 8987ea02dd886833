// Package interaction provides pairwise force laws between populations.
//
// Every law implements [swarm.Interaction]: it couples an ordered (target,
// source) pair of populations and accumulates the force each source agent
// exerts on each target agent into the target's input matrix. Pair geometry
// uses the leading spatial columns shared by both populations; an agent
// never interacts with itself, and exactly coincident pairs contribute
// nothing.
//
//   - [Harmonic]: linear spring-like repulsion with a hard cutoff
//   - [PowerLaw]: strength/d^p repulsion or attraction with a hard cutoff
//   - [LennardJones]: 12-6 potential with per-agent well depth and length
package interaction
