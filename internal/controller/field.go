package controller

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmlab/internal/swarm"
)

// Field applies an analytic radial Gaussian force around a center point:
// magnitude strength*exp(-d^2/(2*width^2)) directed away from the center.
// A negative strength attracts instead.
type Field struct {
	Strength float64
	Width    float64

	handle int
	center []float64

	out *swarm.Matrix
}

func NewField(handle int, center []float64, strength, width float64) (*Field, error) {
	if len(center) == 0 {
		return nil, fmt.Errorf("%w: field controller needs a center point", swarm.ErrConfiguration)
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: field width %v", swarm.ErrConfiguration, width)
	}
	return &Field{Strength: strength, Width: width, handle: handle, center: center}, nil
}

func (f *Field) Handle() int { return f.handle }

func (f *Field) Reset() { f.out = nil }

func (f *Field) Control(t float64, pops []*swarm.Population, rng *swarm.Stream) *swarm.Matrix {
	pop := pops[f.handle]
	n, width := pop.N(), pop.InputDim()
	k := width
	if len(f.center) < k {
		k = len(f.center)
	}

	if f.out == nil {
		f.out = swarm.NewMatrix(n, width)
	}
	f.out.Zero()

	x := pop.State()
	twoW2 := 2 * f.Width * f.Width
	for i := 0; i < n; i++ {
		d2 := 0.0
		for c := 0; c < k; c++ {
			delta := x.At(i, c) - f.center[c]
			d2 += delta * delta
		}
		d := math.Sqrt(d2)
		if d == 0 {
			continue
		}
		mag := f.Strength * math.Exp(-d2/twoW2) / d
		for c := 0; c < k; c++ {
			f.out.Set(i, c, mag*(x.At(i, c)-f.center[c]))
		}
	}
	return f.out
}
