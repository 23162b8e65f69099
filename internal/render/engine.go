package render

import (
	"errors"
	"time"
)

// Engine advances the active effect (and, during a crossfade, the armed next
// effect), mixes them, applies post-processing and packs RGB bytes in LED
// index order.
type Engine struct {
	N      int
	Reg    *Registry
	Params Params

	// active + next effect
	Active Effect
	Next   Effect

	// framebuffers
	bufA []Color // active
	bufB []Color // next (during crossfade)
	out  []Color // mixed + post
	rgb  []byte

	// crossfade
	alpha  float64 // 0..1
	fading bool

	post PostPipeline

	// Last holds wall-clock timings of the most recent frame in ms.
	Last struct {
		RenderMS float64
		PostMS   float64
	}
}

// NewEngine allocates buffers for p.LEDCount LEDs. active may be nil and set
// later with SetEffect.
func NewEngine(reg *Registry, p Params, active Effect) (*Engine, error) {
	if p.LEDCount <= 0 {
		return nil, errors.New("invalid led count")
	}
	if reg == nil {
		return nil, errors.New("registry is nil")
	}
	n := p.LEDCount
	e := &Engine{
		N:      n,
		Reg:    reg,
		Params: p,
		bufA:   make([]Color, n),
		bufB:   make([]Color, n),
		out:    make([]Color, n),
		rgb:    make([]byte, n*3),
	}
	if active != nil {
		active.Start()
		e.Active = active
	}
	return e, nil
}

func (e *Engine) SetPost(p PostPipeline) { e.post = p }

// ActiveName is the active effect's name, or "" when none is set.
func (e *Engine) ActiveName() string {
	if e.Active == nil {
		return ""
	}
	return e.Active.Name()
}

// Fading reports whether a crossfade is in progress.
func (e *Engine) Fading() bool { return e.fading && e.Next != nil }

// RenderFrame advances effects by dt seconds and returns the packed frame.
// The returned slice is reused by the next call. An effect panic is returned
// as *EffectError.
func (e *Engine) RenderFrame(dt float64) ([]byte, error) {
	start := time.Now()

	if err := Step(e.Active, dt); err != nil {
		return nil, err
	}
	load(e.bufA, e.Active)

	if e.Fading() {
		if err := Step(e.Next, dt); err != nil {
			return nil, err
		}
		load(e.bufB, e.Next)
		Mix(e.out, e.bufA, e.bufB, e.alpha)
	} else {
		copy(e.out, e.bufA)
	}

	postStart := time.Now()
	e.post.apply(e.out)
	e.Last.PostMS = float64(time.Since(postStart).Microseconds()) / 1000.0

	for i, c := range e.out {
		e.rgb[i*3+0] = toByte(c.R)
		e.rgb[i*3+1] = toByte(c.G)
		e.rgb[i*3+2] = toByte(c.B)
	}

	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0
	return e.rgb, nil
}

// Black returns an all-zero frame of the engine's size.
func (e *Engine) Black() []byte { return make([]byte, e.N*3) }

func load(dst []Color, eff Effect) {
	if eff == nil {
		for i := range dst {
			dst[i] = Color{}
		}
		return
	}
	px := eff.Pixels()
	for i := range dst {
		if i < len(px) {
			dst[i] = fromRGB(px[i])
		} else {
			dst[i] = Color{}
		}
	}
}

// ---- Hooks that match Sequencer expectations ----

// SetEffect builds and starts the named effect and makes it active
// immediately, stopping the previous one and dropping any crossfade.
func (e *Engine) SetEffect(name string) error {
	eff, err := e.Reg.New(name, e.Params)
	if err != nil {
		return err
	}
	eff.Start()
	if e.Active != nil {
		e.Active.Stop()
	}
	if e.Next != nil {
		e.Next.Stop()
		e.Next = nil
	}
	e.Active = eff
	e.fading = false
	e.alpha = 0
	return nil
}

// ArmNext builds and starts the effect to crossfade into.
func (e *Engine) ArmNext(name string) error {
	eff, err := e.Reg.New(name, e.Params)
	if err != nil {
		return err
	}
	eff.Start()
	if e.Next != nil {
		e.Next.Stop()
	}
	e.Next = eff
	e.fading = true
	return nil
}

// SetCrossfade sets mix alpha 0..1. Reaching 1 promotes next to active.
func (e *Engine) SetCrossfade(alpha float64) {
	if alpha <= 0 {
		e.alpha = 0
		e.fading = false
	} else if alpha >= 1 {
		e.alpha = 0
		e.fading = false
		// promote next -> active
		if e.Next != nil {
			if e.Active != nil {
				e.Active.Stop()
			}
			e.Active = e.Next
		}
		e.Next = nil
	} else {
		e.alpha = alpha
		e.fading = true
	}
}

// Finish ends the run: the active effect is marked Completed when the run
// reached its duration and Stopped otherwise.
func (e *Engine) Finish(completed bool) {
	if e.Next != nil {
		e.Next.Stop()
	}
	if e.Active == nil {
		return
	}
	if completed {
		e.Active.Complete()
	} else {
		e.Active.Stop()
	}
}

// Mix blends two framebuffers (a,b) into dst using alpha (0..1).
// Channels are linear; no gamma assumed.
func Mix(dst, a, b []Color, alpha float64) {
	if alpha <= 0 {
		copy(dst, a)
		return
	}
	if alpha >= 1 {
		copy(dst, b)
		return
	}
	af := float32(1.0 - alpha)
	bf := float32(alpha)
	for i := range dst {
		dst[i].R = a[i].R*af + b[i].R*bf
		dst[i].G = a[i].G*af + b[i].G*bf
		dst[i].B = a[i].B*af + b[i].B*bf
	}
}
