// Package calib holds the wiring test patterns: light one LED at a time in
// index order, flash the whole string through R, G and B, and climb the tree
// in height slices. Index and height sweeps complete themselves when done.
package calib

import (
	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/render"
)

type Kind string

const (
	IndexSweep  Kind = "index_sweep"
	RGBChannels Kind = "rgb_channels"
	HeightSweep Kind = "height_sweep"
)

// Kinds lists the patterns in registration order.
var Kinds = []Kind{IndexSweep, RGBChannels, HeightSweep}

// HeightSlices is how many bands the height sweep divides the tree into.
const HeightSlices = 10

type Effect struct {
	render.Base
	kind    Kind
	rate    float64 // steps per second
	heights []float64
}

// New builds a pattern. Speed is steps per second; the index sweep defaults to
// one LED per frame, the others to two steps per second.
func New(kind Kind, p render.Params) (*Effect, error) {
	e := &Effect{Base: render.NewBase(p), kind: kind}
	switch kind {
	case IndexSweep:
		e.rate = p.SpeedOr(float64(e.FPS()))
	case RGBChannels:
		e.rate = p.SpeedOr(2)
	case HeightSweep:
		if p.Tree == nil {
			return nil, render.ErrNeedsTree
		}
		e.heights = p.Tree.Heights()
		e.rate = p.SpeedOr(2)
	default:
		return nil, render.ErrUnknownEffect
	}
	return e, nil
}

// Factory adapts New to the registry.
func Factory(kind Kind) render.Factory {
	return func(p render.Params) (render.Effect, error) { return New(kind, p) }
}

func (e *Effect) Name() string { return string(e.kind) }

// step is the pattern position for the current time.
func (e *Effect) step() int { return int(e.Time()*e.rate + 1e-9) }

// Update fills the buffer for the current step and completes the effect once
// a one-shot pattern has run out.
func (e *Effect) Update(float64) {
	e.Clear()
	n := e.Len()
	s := e.step()

	switch e.kind {
	case IndexSweep:
		if s >= n {
			e.Complete()
			return
		}
		e.SetPixel(s, colors.White)
	case RGBChannels:
		e.SetAll([]colors.RGB{colors.Red, colors.Green, colors.Blue}[s%3])
	case HeightSweep:
		if s >= HeightSlices {
			e.Complete()
			return
		}
		lo := float64(s) / HeightSlices
		hi := float64(s+1) / HeightSlices
		for i, h := range e.heights {
			if h >= lo && (h < hi || (s == HeightSlices-1 && h <= hi)) {
				e.SetPixel(i, colors.RGB{G: 255, B: 255}) // cyan
			}
		}
	}
}
