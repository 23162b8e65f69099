// Package rainbow scrolls the color wheel along LED index order. It needs no
// tree, so it also works on strings with no coordinate file.
package rainbow

import (
	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/render"
)

const Name = "rainbow"

// wheelStepsPerSecond is how many of the wheel's 256 steps scroll by each
// second at speed 1.
const wheelStepsPerSecond = 50

type Effect struct {
	render.Base
	speed float64
}

func New(p render.Params) (*Effect, error) {
	return &Effect{Base: render.NewBase(p), speed: p.SpeedOr(1)}, nil
}

func (e *Effect) Name() string { return Name }

func (e *Effect) Update(float64) {
	n := e.Len()
	if n == 0 {
		return
	}
	off := e.Cycle(e.speed*wheelStepsPerSecond/256) * 256
	for i := 0; i < n; i++ {
		pos := int(float64(i)*256/float64(n)+off) % 256
		e.SetPixel(i, colors.Wheel(uint8(pos)))
	}
}
