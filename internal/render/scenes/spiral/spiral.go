// Package spiral draws a helix around the tree's vertical axis and turns it.
package spiral

import (
	"math"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/render"
	"github.com/coreman2200/treelights/internal/spatial"
)

const Name = "spiral"

type Effect struct {
	render.Base
	speed     float64 // turns per second
	rotations float64 // turns from bottom to top
	width     float64 // band width as a fraction of π
	heights   []float64
	angles    []float64
}

func New(p render.Params) (*Effect, error) {
	if p.Tree == nil {
		return nil, render.ErrNeedsTree
	}
	return &Effect{
		Base:      render.NewBase(p),
		speed:     p.SpeedOr(0.2),
		rotations: 3,
		width:     0.15,
		heights:   p.Tree.Heights(),
		angles:    p.Tree.Angles(),
	}, nil
}

func (e *Effect) Name() string { return Name }

func (e *Effect) Update(float64) {
	turn := e.Cycle(e.speed) * 2 * math.Pi
	for i, h := range e.heights {
		want := h*e.rotations*2*math.Pi + turn
		d := spatial.AngleDiff(e.angles[i], want) / math.Pi
		e.SetPixel(i, colors.HSV(h, 1, render.Falloff(d, e.width)))
	}
}
