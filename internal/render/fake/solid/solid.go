package solid

import (
	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/render"
)

// Solid is a tiny effect that fills every LED with one color.
// PanicAt > 0 panics on that frame so callers can exercise failure paths.
type Solid struct {
	render.Base
	name    string
	c       colors.RGB
	PanicAt uint64
}

func New(name string, c colors.RGB, p render.Params) *Solid {
	return &Solid{Base: render.NewBase(p), name: name, c: c}
}

// Factory registers a Solid of color c under name.
func Factory(name string, c colors.RGB) render.Factory {
	return func(p render.Params) (render.Effect, error) { return New(name, c, p), nil }
}

func (s *Solid) Name() string { return s.name }

func (s *Solid) Update(float64) {
	if s.PanicAt > 0 && s.Frame() == s.PanicAt {
		panic("solid: injected failure")
	}
	s.SetAll(s.c)
}
