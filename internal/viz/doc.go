// Package viz renders a running simulation in the terminal.
//
// The view is a Bubble Tea program: [Model] drives the simulator a few steps
// per frame and scatters every population onto a braille [Canvas], with the
// goal region as a ring and metric series as sparklines. Populations render
// in distinct colors; the frame loop never reorders randomness, so the live
// trajectory matches a headless run of the same seed.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset and replay the same trajectory
//	+/-   - Speed up / slow down
//	M     - Cycle the plotted metric
//	Q     - Quit
package viz
