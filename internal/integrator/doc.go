// Package integrator provides fixed-step schemes that advance population
// states, implementing [swarm.Integrator].
//
//   - [EulerMaruyama]: the stochastic workhorse,
//     x' = x + drift*dt + diffusion*sqrt(dt)*xi with xi ~ N(0,1)
//   - [Euler]: the deterministic reference, x' = x + drift*dt
//
// The step size belongs to the integrator and never changes during a run;
// advancing with a different dt means constructing a new integrator. When a
// population's diffusion is identically zero, Euler-Maruyama reduces to the
// plain Euler update and consumes no randomness at all, so deterministic
// populations do not disturb the draw sequence of stochastic ones.
package integrator
