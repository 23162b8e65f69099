package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/layout"
)

// Color is the linear working color used while mixing and post-processing.
// Channels are 0..1.
type Color struct{ R, G, B float32 }

func fromRGB(c colors.RGB) Color {
	return Color{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255}
}

func toByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

// State is an effect's lifecycle position.
type State int

const (
	Created State = iota
	Running
	Stopped
	Completed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Effect is one per-frame color rule. Concrete effects embed Base, which
// supplies everything except Name and Update.
type Effect interface {
	Name() string
	// Update recomputes Pixels for the current Time. Callers go through Step,
	// which skips effects that are not running.
	Update(dt float64)

	Advance(dt float64)
	Pixels() []colors.RGB
	State() State
	Start()
	Stop()
	Complete()
}

// Params are the construction inputs shared by every effect.
type Params struct {
	LEDCount int
	FPS      int
	// Tree is shared read-only; may be nil for index-only effects.
	Tree *layout.Tree
	// Seed feeds effects that own a random source.
	Seed uint64
	// Speed overrides the effect's default speed when non-zero.
	Speed float64
	// Palette, when set, replaces an effect's built-in hue rule.
	Palette []colors.RGB
}

// SpeedOr returns p.Speed, or def when unset.
func (p Params) SpeedOr(def float64) float64 {
	if p.Speed != 0 {
		return p.Speed
	}
	return def
}

// Factory constructs an effect instance.
type Factory func(Params) (Effect, error)

var ErrUnknownEffect = errors.New("unknown effect")

// ErrNeedsTree is returned by factories of spatial effects given no tree.
var ErrNeedsTree = errors.New("effect requires a tree model")

type Registry struct{ m map[string]Factory }

func NewRegistry() *Registry { return &Registry{m: map[string]Factory{}} }

func (r *Registry) Register(name string, f Factory) {
	if f == nil || name == "" {
		return
	}
	r.m[name] = f
}

func (r *Registry) Has(name string) bool { _, ok := r.m[name]; return ok }

// New builds the named effect. Unknown names wrap ErrUnknownEffect and list
// what is available.
func (r *Registry) New(name string, p Params) (Effect, error) {
	f, ok := r.m[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownEffect, name, strings.Join(r.List(), ", "))
	}
	e, err := f(p)
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", name, err)
	}
	return e, nil
}

// List returns registered names in sorted order.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EffectError is a panic recovered from an effect's Update.
type EffectError struct {
	Effect string
	Frame  uint64
	Value  any
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("effect %s failed on frame %d: %v", e.Effect, e.Frame, e.Value)
}

// Step advances e by dt and runs its Update, converting a panic into an
// *EffectError. Effects that are not running are left untouched.
func Step(e Effect, dt float64) (err error) {
	if e == nil || e.State() != Running {
		return nil
	}
	defer func() {
		if v := recover(); v != nil {
			var frame uint64
			if f, ok := e.(interface{ Frame() uint64 }); ok {
				frame = f.Frame()
			}
			err = &EffectError{Effect: e.Name(), Frame: frame, Value: v}
		}
	}()
	e.Advance(dt)
	e.Update(dt)
	return nil
}
