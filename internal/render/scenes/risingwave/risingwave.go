// Package risingwave sends a band of light up the tree on a loop.
package risingwave

import (
	"math"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/render"
)

const Name = "rising_wave"

type Effect struct {
	render.Base
	speed   float64 // waves per second
	width   float64 // half-height of the band, in normalized height
	hue     float64
	heights []float64
}

func New(p render.Params) (*Effect, error) {
	if p.Tree == nil {
		return nil, render.ErrNeedsTree
	}
	return &Effect{
		Base:    render.NewBase(p),
		speed:   p.SpeedOr(0.3),
		width:   0.2,
		hue:     0.5,
		heights: p.Tree.Heights(),
	}, nil
}

func (e *Effect) Name() string { return Name }

func (e *Effect) Update(float64) {
	pos := e.Cycle(e.speed)
	for i, h := range e.heights {
		v := render.Falloff(math.Abs(h-pos), e.width)
		e.SetPixel(i, colors.HSV(e.hue, 1, v))
	}
}
