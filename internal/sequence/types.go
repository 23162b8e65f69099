package sequence

// Keyframe represents a value at time T (seconds) with an easing function
// that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `yaml:"t"`
	V    float64 `yaml:"v"`
	Ease string  `yaml:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
type Envelope struct {
	Keys []Keyframe `yaml:"keys"`
}

// Clip is one segment of a show: the effect to run, how long it holds and
// how long it crossfades into the NEXT clip.
type Clip struct {
	Effect    string  `yaml:"effect"`
	DurationS float64 `yaml:"duration_s"`
	XFadeS    float64 `yaml:"xfade_s,omitempty"`
	Ease      string  `yaml:"ease,omitempty"` // crossfade curve
}

// Program is a full sequence of clips.
type Program struct {
	Loop  bool   `yaml:"loop,omitempty"`
	Clips []Clip `yaml:"clips"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into the render engine.
type Hooks struct {
	// Build and activate an effect immediately.
	SetEffect func(name string) error
	// Prepare the next effect for crossfade.
	ArmNext      func(name string) error
	SetCrossfade func(alpha float64) // 0..1 mix between active and armed
	// Promoted reports that a finished crossfade made the armed effect
	// active. SetEffect is not called for it.
	Promoted func(name string)
}

// Player owns the current Program timeline and uses Hooks to drive the engine.
type Player struct {
	State PlayerState

	prog      Program
	nowS      float64 // position within program
	clipStart float64 // program time the current clip began
	idx       int     // current clip index

	// crossfade bookkeeping
	armedIndex int  // which clip is armed next (-1 means none)
	armed      bool // whether next is armed
	lastAlpha  float64

	hooks Hooks
}
