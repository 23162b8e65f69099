// Package heightgradient colors the tree bottom to top, optionally scrolling
// the gradient upward over time.
package heightgradient

import (
	"math"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/render"
)

const Name = "height_gradient"

// HueSpan is the share of the hue circle the trunk-to-tip gradient covers.
// Keeping it under 1 stops the top from wrapping back to the bottom's red.
const HueSpan = 0.8

type Effect struct {
	render.Base
	speed   float64
	stops   []colors.RGB
	heights []float64
}

func New(p render.Params) (*Effect, error) {
	if p.Tree == nil {
		return nil, render.ErrNeedsTree
	}
	return &Effect{
		Base:    render.NewBase(p),
		speed:   p.SpeedOr(0.2),
		stops:   p.Palette,
		heights: p.Tree.Heights(),
	}, nil
}

func (e *Effect) Name() string { return Name }

func (e *Effect) Update(float64) {
	off := e.Cycle(e.speed)
	for i, h := range e.heights {
		if len(e.stops) > 0 {
			e.SetPixel(i, Gradient(e.stops, math.Mod(h+off, 1)))
			continue
		}
		e.SetPixel(i, colors.HSV(h*HueSpan+off, 1, 1))
	}
}

// Gradient interpolates evenly spaced color stops at pos in [0,1].
func Gradient(stops []colors.RGB, pos float64) colors.RGB {
	switch len(stops) {
	case 0:
		return colors.Black
	case 1:
		return stops[0]
	}
	seg := 1 / float64(len(stops)-1)
	i := int(pos / seg)
	if i > len(stops)-2 {
		i = len(stops) - 2
	}
	if i < 0 {
		i = 0
	}
	return colors.Blend(stops[i], stops[i+1], (pos-float64(i)*seg)/seg)
}
