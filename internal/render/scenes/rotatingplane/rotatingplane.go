// Package rotatingplane sweeps a vertical half-plane of light around the tree.
package rotatingplane

import (
	"math"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/render"
	"github.com/coreman2200/treelights/internal/spatial"
)

const Name = "rotating_plane"

type Effect struct {
	render.Base
	speed     float64 // turns per second
	thickness float64 // radians
	heights   []float64
	angles    []float64
}

func New(p render.Params) (*Effect, error) {
	if p.Tree == nil {
		return nil, render.ErrNeedsTree
	}
	return &Effect{
		Base:      render.NewBase(p),
		speed:     p.SpeedOr(0.3),
		thickness: 0.15,
		heights:   p.Tree.Heights(),
		angles:    p.Tree.Angles(),
	}, nil
}

func (e *Effect) Name() string { return Name }

func (e *Effect) Update(float64) {
	plane := e.Cycle(e.speed) * 2 * math.Pi
	for i, a := range e.angles {
		v := render.Falloff(spatial.AngleDiff(a, plane), e.thickness)
		e.SetPixel(i, colors.HSV(e.heights[i], 1, v))
	}
}
