package render

import (
	"errors"
	"testing"

	"github.com/coreman2200/treelights/internal/colors"
)

// fakeEffect writes a constant color for testing.
type fakeEffect struct {
	Base
	name    string
	c       colors.RGB
	updates int
	boom    bool
}

func (f *fakeEffect) Name() string { return f.name }
func (f *fakeEffect) Update(float64) {
	if f.boom {
		panic("boom")
	}
	f.updates++
	f.SetAll(f.c)
}

func fakeFactory(name string, c colors.RGB) Factory {
	return func(p Params) (Effect, error) {
		return &fakeEffect{Base: NewBase(p), name: name, c: c}, nil
	}
}

func TestMixAlpha(t *testing.T) {
	n := 10
	a := make([]Color, n)
	b := make([]Color, n)
	dst := make([]Color, n)
	for i := 0; i < n; i++ {
		a[i] = Color{1, 0, 0} // red
		b[i] = Color{0, 0, 1} // blue
	}
	Mix(dst, a, b, 0.5)
	if dst[0].R < 0.49 || dst[0].R > 0.51 || dst[0].B < 0.49 || dst[0].B > 0.51 {
		t.Fatalf("expected ~purple at alpha=0.5, got %#v", dst[0])
	}
}

func TestEngineRenderFrameAndCrossfade(t *testing.T) {
	reg := NewRegistry()
	reg.Register("A", fakeFactory("A", colors.Red))
	reg.Register("B", fakeFactory("B", colors.Blue))

	e, err := NewEngine(reg, Params{LEDCount: 1}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if err := e.SetEffect("A"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Active A, render once
	rgb, err := e.RenderFrame(0)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rgb[0] != 255 || rgb[2] != 0 {
		t.Fatalf("expected red frame, got %v", rgb)
	}

	// Arm B and fade to 50%
	if err := e.ArmNext("B"); err != nil {
		t.Fatalf("arm: %v", err)
	}
	e.SetCrossfade(0.5)
	rgb, err = e.RenderFrame(0.1)
	if err != nil {
		t.Fatalf("render 2: %v", err)
	}
	if rgb[0] < 126 || rgb[0] > 129 || rgb[2] < 126 || rgb[2] > 129 {
		t.Fatalf("expected purple during fade, got %v", rgb)
	}

	// Complete fade
	a := e.Active
	e.SetCrossfade(1.0)
	rgb, err = e.RenderFrame(0.1)
	if err != nil {
		t.Fatalf("render 3: %v", err)
	}
	if rgb[2] != 255 || rgb[0] != 0 {
		t.Fatalf("expected blue frame after complete fade, got %v", rgb)
	}
	if e.ActiveName() != "B" || a.State() != Stopped {
		t.Fatalf("expected B promoted and A stopped, got %s / %s", e.ActiveName(), a.State())
	}
}

func TestEngineUnknownEffect(t *testing.T) {
	reg := NewRegistry()
	reg.Register("spiral", fakeFactory("spiral", colors.Red))
	e, err := NewEngine(reg, Params{LEDCount: 3}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	err = e.SetEffect("sparkle")
	if !errors.Is(err, ErrUnknownEffect) {
		t.Fatalf("expected ErrUnknownEffect, got %v", err)
	}
}

func TestEnginePanicBecomesEffectError(t *testing.T) {
	reg := NewRegistry()
	eff := &fakeEffect{Base: NewBase(Params{LEDCount: 2}), name: "bad", boom: true}
	e, err := NewEngine(reg, Params{LEDCount: 2}, eff)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	_, err = e.RenderFrame(0.1)
	var ee *EffectError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EffectError, got %v", err)
	}
	if ee.Effect != "bad" || ee.Frame != 1 {
		t.Fatalf("unexpected error detail: %+v", ee)
	}
}

func TestEngineSkipsStoppedEffect(t *testing.T) {
	reg := NewRegistry()
	eff := &fakeEffect{Base: NewBase(Params{LEDCount: 2}), name: "a", c: colors.Green}
	e, _ := NewEngine(reg, Params{LEDCount: 2}, eff)
	if _, err := e.RenderFrame(0); err != nil {
		t.Fatalf("render: %v", err)
	}
	e.Finish(true)
	if eff.State() != Completed {
		t.Fatalf("expected completed, got %s", eff.State())
	}
	if _, err := e.RenderFrame(0.5); err != nil {
		t.Fatalf("render: %v", err)
	}
	if eff.updates != 1 || eff.Time() != 0 {
		t.Fatalf("update ran on a finished effect: updates=%d t=%v", eff.updates, eff.Time())
	}
}

func TestEnginePostBrightness(t *testing.T) {
	reg := NewRegistry()
	eff := &fakeEffect{Base: NewBase(Params{LEDCount: 1}), name: "w", c: colors.White}
	e, _ := NewEngine(reg, Params{LEDCount: 1}, eff)
	e.SetPost(PostPipeline{Scale: ScaleBrightness(0.5)})
	rgb, err := e.RenderFrame(0)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rgb[0] != 128 || rgb[1] != 128 || rgb[2] != 128 {
		t.Fatalf("expected half white, got %v", rgb)
	}
}

func TestRegistryListSorted(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"spiral", "rainbow", "height_gradient"} {
		reg.Register(n, fakeFactory(n, colors.Red))
	}
	got := reg.List()
	want := []string{"height_gradient", "rainbow", "spiral"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() = %v, want %v", got, want)
		}
	}
}
