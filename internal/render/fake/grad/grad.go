package grad

import (
	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/render"
)

// Grad writes a red ramp across LED indices whose green channel counts
// frames, so every frame it produces is distinguishable.
type Grad struct {
	render.Base
	name string
}

func New(name string, p render.Params) *Grad { return &Grad{Base: render.NewBase(p), name: name} }

func Factory(name string) render.Factory {
	return func(p render.Params) (render.Effect, error) { return New(name, p), nil }
}

func (g *Grad) Name() string { return g.name }

func (g *Grad) Update(float64) {
	n := g.Len()
	for i := 0; i < n; i++ {
		r := 0
		if n > 1 {
			r = i * 255 / (n - 1)
		}
		g.SetPixel(i, colors.RGB{R: uint8(r), G: uint8(g.Frame()), B: 0})
	}
}
