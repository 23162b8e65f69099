// Package scenes registers every built-in effect.
package scenes

import (
	"github.com/coreman2200/treelights/internal/render"
	"github.com/coreman2200/treelights/internal/render/scenes/calib"
	"github.com/coreman2200/treelights/internal/render/scenes/heightgradient"
	"github.com/coreman2200/treelights/internal/render/scenes/rainbow"
	"github.com/coreman2200/treelights/internal/render/scenes/risingwave"
	"github.com/coreman2200/treelights/internal/render/scenes/rotatingplane"
	"github.com/coreman2200/treelights/internal/render/scenes/spherepulse"
	"github.com/coreman2200/treelights/internal/render/scenes/spiral"
)

// Pulses is how many sphere pulse origins are drawn.
const Pulses = 3

// Show lists the six animated effects in their default cycle order.
var Show = []string{
	heightgradient.Name,
	risingwave.Name,
	spiral.Name,
	spherepulse.Name,
	rotatingplane.Name,
	rainbow.Name,
}

// Register adds the animated effects and the calibration patterns to reg.
func Register(reg *render.Registry) {
	reg.Register(heightgradient.Name, func(p render.Params) (render.Effect, error) { return heightgradient.New(p) })
	reg.Register(risingwave.Name, func(p render.Params) (render.Effect, error) { return risingwave.New(p) })
	reg.Register(spiral.Name, func(p render.Params) (render.Effect, error) { return spiral.New(p) })
	reg.Register(spherepulse.Name, func(p render.Params) (render.Effect, error) { return spherepulse.New(p, Pulses) })
	reg.Register(rotatingplane.Name, func(p render.Params) (render.Effect, error) { return rotatingplane.New(p) })
	reg.Register(rainbow.Name, func(p render.Params) (render.Effect, error) { return rainbow.New(p) })
	for _, k := range calib.Kinds {
		reg.Register(string(k), calib.Factory(k))
	}
}

// Registry returns a registry with every built-in effect.
func Registry() *render.Registry {
	reg := render.NewRegistry()
	Register(reg)
	return reg
}
