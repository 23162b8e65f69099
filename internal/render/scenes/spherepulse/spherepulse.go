// Package spherepulse expands rings of light outward from a few LEDs.
package spherepulse

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/render"
)

const Name = "sphere_pulse"

type Effect struct {
	render.Base
	speed   float64 // pulses per second
	width   float64 // ring width as a fraction of the tree diagonal
	maxDist float64
	origins []r3.Vector
	dist    [][]float64 // per pulse, distance from origin to every LED
}

// New picks pulses origin LEDs with a source seeded from p.Seed, so a given
// seed always lights the same spots.
func New(p render.Params, pulses int) (*Effect, error) {
	if p.Tree == nil {
		return nil, render.ErrNeedsTree
	}
	if pulses <= 0 {
		pulses = 3
	}
	tr := p.Tree
	e := &Effect{
		Base:    render.NewBase(p),
		speed:   p.SpeedOr(0.5),
		width:   0.1,
		maxDist: tr.Diagonal(),
	}
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	for k := 0; k < pulses && tr.Len() > 0; k++ {
		o := tr.Position(rng.IntN(tr.Len()))
		e.origins = append(e.origins, o)
		e.dist = append(e.dist, tr.Distances(o))
	}
	return e, nil
}

func (e *Effect) Name() string { return Name }

// Origins returns the pulse centres.
func (e *Effect) Origins() []r3.Vector { return e.origins }

func (e *Effect) Update(float64) {
	e.Clear()
	if e.maxDist <= 0 {
		return
	}
	base := e.Cycle(e.speed)
	px := e.Pixels()
	for k, dist := range e.dist {
		phase := float64(k) / float64(len(e.dist))
		radius := math.Mod(base+phase, 1) * e.maxDist
		for i, d := range dist {
			v := render.Falloff(math.Abs(d-radius)/e.maxDist, e.width)
			if v == 0 {
				continue
			}
			px[i] = px[i].Add(colors.HSV(phase, 1, v))
		}
	}
}
