package controller

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// hold recomputes its inner controller every interval-th tick and replays
// the last output in between (zero-order hold).
type hold struct {
	inner    swarm.Controller
	interval int

	calls int
	held  *swarm.Matrix
}

// WithPeriod wraps a controller so it only recomputes every period time
// units, holding its previous output between updates. dt is the simulation
// step; a period at or below dt returns the controller unchanged.
func WithPeriod(inner swarm.Controller, period, dt float64) (swarm.Controller, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: controller period %v", swarm.ErrConfiguration, period)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: controller period needs dt > 0, got %v", swarm.ErrConfiguration, dt)
	}
	interval := int(math.Round(period / dt))
	if interval <= 1 {
		return inner, nil
	}
	return &hold{inner: inner, interval: interval}, nil
}

func (h *hold) Handle() int { return h.inner.Handle() }

func (h *hold) Reset() {
	h.calls = 0
	h.held = nil
	h.inner.Reset()
}

func (h *hold) Control(t float64, pops []*swarm.Population, rng *swarm.Stream) *swarm.Matrix {
	if h.held == nil || h.calls%h.interval == 0 {
		h.held = h.inner.Control(t, pops, rng)
	}
	h.calls++
	return h.held
}
