// Package population provides the dynamics laws agent groups evolve under
// and the sampling utilities that build their initial states and parameters.
//
// Dynamics variants, each implementing [swarm.Dynamics]:
//
//   - [Brownian]: biased Brownian motion, drift mu plus external input
//   - [SimpleIntegrator]: first-order integrator of its input, optional
//     velocity clamp
//   - [DoubleIntegrator]: damped second-order integrator, state (pos | vel),
//     noise on the velocity block
//   - [Fixed]: inert agents that never move
//
// Initial states are sampled with [SampleInitial] (box or uniform-area
// circle) or loaded with [LoadInitial]. Per-agent parameters come from
// [SampleParams] backed by gonum distuv distributions, or from CSV files via
// [LoadParams].
package population
