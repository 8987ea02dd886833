// Package controller provides control laws that inject external inputs into
// populations, implementing [swarm.Controller].
//
//   - [PID]: per-agent vector PID steering every agent toward a set point
//   - [Shepherd]: the herder law for shepherding tasks, chasing the sensed
//     target farthest from the goal and idling inside the goal region
//   - [Field]: an analytic radial Gaussian force field
//
// [WithPeriod] wraps any controller with a sampling period: the wrapped law
// recomputes every k-th tick and holds its last output in between.
package controller
