package controller

import (
	"fmt"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// PID steers every agent of one population toward a fixed set point with a
// per-agent vector PID law. Integral and derivative memory live in the
// controller and are cleared by Reset.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	handle int
	target []float64

	integral *swarm.Matrix
	prevErr  *swarm.Matrix
	out      *swarm.Matrix
	prevT    float64
	first    bool
}

func NewPID(handle int, target []float64, kp, ki, kd float64) (*PID, error) {
	if len(target) == 0 {
		return nil, fmt.Errorf("%w: pid controller needs a target point", swarm.ErrConfiguration)
	}
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		handle: handle,
		target: target,
		first:  true,
	}, nil
}

func (p *PID) Handle() int { return p.handle }

func (p *PID) Reset() {
	p.integral = nil
	p.prevErr = nil
	p.out = nil
	p.first = true
}

func (p *PID) Control(t float64, pops []*swarm.Population, rng *swarm.Stream) *swarm.Matrix {
	pop := pops[p.handle]
	n, width := pop.N(), pop.InputDim()
	k := width
	if len(p.target) < k {
		k = len(p.target)
	}

	if p.out == nil {
		p.integral = swarm.NewMatrix(n, k)
		p.prevErr = swarm.NewMatrix(n, k)
		p.out = swarm.NewMatrix(n, width)
	}
	p.out.Zero()

	x := pop.State()
	dt := t - p.prevT

	for i := 0; i < n; i++ {
		for c := 0; c < k; c++ {
			err := p.target[c] - x.At(i, c)

			u := p.Kp * err
			if !p.first && dt > 0 {
				p.integral.Set(i, c, p.integral.At(i, c)+err*dt)
				derivative := (err - p.prevErr.At(i, c)) / dt
				u += p.Ki*p.integral.At(i, c) + p.Kd*derivative
			}
			p.prevErr.Set(i, c, err)
			p.out.Set(i, c, u)
		}
	}

	p.prevT = t
	p.first = false
	return p.out
}
