package sequence

import (
	"fmt"
	"testing"
)

func TestEnvelopeEval(t *testing.T) {
	env := Envelope{Keys: []Keyframe{
		{T: 0, V: 0, Ease: "linear"},
		{T: 10, V: 10, Ease: "linear"},
	}}
	if v := env.Eval(-1); v != 0 {
		t.Fatalf("expected 0 before start, got %v", v)
	}
	if v := env.Eval(0); v != 0 {
		t.Fatalf("expected 0 at t=0, got %v", v)
	}
	if v := env.Eval(5); v != 5 {
		t.Fatalf("expected 5 at t=5, got %v", v)
	}
	if v := env.Eval(10); v != 10 {
		t.Fatalf("expected 10 at t=10, got %v", v)
	}
	if v := env.Eval(11); v != 10 {
		t.Fatalf("expected 10 after end, got %v", v)
	}
}

func TestRampEase(t *testing.T) {
	if v := Ramp(2, 4, "smooth").Eval(3); v != 0.5 {
		t.Fatalf("smooth midpoint: got %v", v)
	}
	if v := Ramp(2, 4, "smooth").Eval(2.5); v >= 0.25 {
		t.Fatalf("smooth should start slower than linear, got %v", v)
	}
	if v := Ramp(2, 4, "cubic").Eval(4); v != 1 {
		t.Fatalf("cubic end: got %v", v)
	}
}

type recorder struct {
	log    []string
	alphas []float64
	fail   map[string]bool
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		SetEffect: func(name string) error {
			r.log = append(r.log, "Set:"+name)
			if r.fail[name] {
				return fmt.Errorf("cannot build %s", name)
			}
			return nil
		},
		ArmNext: func(name string) error {
			r.log = append(r.log, "Arm:"+name)
			return nil
		},
		SetCrossfade: func(a float64) { r.alphas = append(r.alphas, a) },
		Promoted:     func(name string) { r.log = append(r.log, "Promoted:"+name) },
	}
}

func TestSequencerCrossfade(t *testing.T) {
	r := &recorder{}
	p := NewPlayer(r.hooks())
	prog := Program{
		Clips: []Clip{
			{Effect: "spiral", DurationS: 4, XFadeS: 2},
			{Effect: "rainbow", DurationS: 4},
		},
	}
	if err := p.Load(prog); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, dt := range []float64{1.75, 0.5, 0.75, 1.0} {
		if err := p.Tick(dt); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}

	// B was promoted by the crossfade, so it is reported but not built a second time.
	want := []string{"Set:spiral", "Arm:rainbow", "Promoted:rainbow"}
	if fmt.Sprint(r.log) != fmt.Sprint(want) {
		t.Fatalf("unexpected log order: %#v", r.log)
	}
	if last := r.alphas[len(r.alphas)-1]; last != 1 {
		t.Fatalf("crossfade should end at 1, got %v", last)
	}
	if p.Current() != "rainbow" {
		t.Fatalf("current = %q, want rainbow", p.Current())
	}
	for i := 1; i < len(r.alphas); i++ {
		if r.alphas[i] < r.alphas[i-1] && r.alphas[i] != 0 {
			t.Fatalf("alpha went backwards: %v", r.alphas)
		}
	}
}

func TestPlaylistLoops(t *testing.T) {
	r := &recorder{}
	p := NewPlayer(r.hooks())
	if err := p.Load(Playlist([]string{"a", "b"}, 1, 0, "")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := p.Tick(1); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	want := []string{"Set:a", "Set:b", "Set:a", "Set:b", "Set:a"}
	if fmt.Sprint(r.log) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", r.log, want)
	}
	if p.State != Running {
		t.Fatalf("looping program stopped: %v", p.State)
	}
}

func TestPlaylistCapsCrossfade(t *testing.T) {
	prog := Playlist([]string{"a", "b"}, 2, 5, "smooth")
	if prog.Clips[0].XFadeS != 1 {
		t.Fatalf("xfade = %v, want 1", prog.Clips[0].XFadeS)
	}
	if one := Playlist([]string{"a"}, 2, 1, ""); one.Clips[0].XFadeS != 0 {
		t.Fatalf("single clip should not crossfade")
	}
	if err := prog.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestProgramEndsWithoutLoop(t *testing.T) {
	r := &recorder{}
	p := NewPlayer(r.hooks())
	if err := p.Load(Program{Clips: []Clip{{Effect: "a", DurationS: 1}}}); err != nil {
		t.Fatalf("load: %v", err)
	}
	_ = p.Start()
	_ = p.Tick(1.5)
	if p.State != Idle {
		t.Fatalf("state = %v, want idle", p.State)
	}
}

func TestHookErrorReturned(t *testing.T) {
	r := &recorder{fail: map[string]bool{"b": true}}
	p := NewPlayer(r.hooks())
	if err := p.Load(Playlist([]string{"a", "b"}, 1, 0, "")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Tick(1); err == nil {
		t.Fatalf("expected error building b")
	}
}

func TestValidate(t *testing.T) {
	bad := []Program{
		{},
		{Clips: []Clip{{Effect: "", DurationS: 1}}},
		{Clips: []Clip{{Effect: "a", DurationS: 0}}},
		{Clips: []Clip{{Effect: "a", DurationS: 1, XFadeS: 2}}},
		{Clips: []Clip{{Effect: "a", DurationS: 1, Ease: "bounce"}}},
	}
	for i, prog := range bad {
		if err := prog.Validate(); err == nil {
			t.Fatalf("program %d: expected error", i)
		}
	}
}

func TestSeek(t *testing.T) {
	r := &recorder{}
	p := NewPlayer(r.hooks())
	_ = p.Load(Playlist([]string{"a", "b", "c"}, 2, 0, ""))
	if err := p.Seek(4.5); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if p.Current() != "c" {
		t.Fatalf("current = %q, want c", p.Current())
	}
}
