package sequence

import (
	"errors"
	"fmt"
	"math"
)

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{
		State:      Idle,
		hooks:      h,
		armedIndex: -1,
	}
}

// Playlist builds a looping program that holds each effect for intervalS
// seconds and crossfades for xfadeS into the next. The crossfade is capped
// below the hold time so every clip is shown on its own for a moment.
func Playlist(effects []string, intervalS, xfadeS float64, ease string) Program {
	if xfadeS < 0 || len(effects) < 2 {
		xfadeS = 0
	}
	if xfadeS >= intervalS {
		xfadeS = intervalS / 2
	}
	prog := Program{Loop: true}
	for _, name := range effects {
		prog.Clips = append(prog.Clips, Clip{Effect: name, DurationS: intervalS, XFadeS: xfadeS, Ease: ease})
	}
	return prog
}

// Validate checks clip durations and crossfades.
func (prog Program) Validate() error {
	if len(prog.Clips) == 0 {
		return errors.New("program has no clips")
	}
	for i, c := range prog.Clips {
		switch {
		case c.Effect == "":
			return fmt.Errorf("clip %d: no effect", i)
		case c.DurationS <= 0:
			return fmt.Errorf("clip %d (%s): duration must be positive", i, c.Effect)
		case c.XFadeS < 0 || c.XFadeS > c.DurationS:
			return fmt.Errorf("clip %d (%s): crossfade must be within [0, duration]", i, c.Effect)
		case !ValidEase(c.Ease):
			return fmt.Errorf("clip %d (%s): unknown ease %q", i, c.Effect, c.Ease)
		}
	}
	return nil
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	p.prog = prog
	p.nowS = 0
	p.clipStart = 0
	p.idx = 0
	p.State = Idle
	p.disarm()
	return nil
}

// Current is the effect name of the clip playing now.
func (p *Player) Current() string {
	if len(p.prog.Clips) == 0 {
		return ""
	}
	return p.prog.Clips[p.idx].Effect
}

// Start moves to Running and activates the first clip's effect.
func (p *Player) Start() error {
	if p.State == Running {
		return nil
	}
	if len(p.prog.Clips) == 0 {
		return errors.New("no program loaded")
	}
	p.State = Running
	return p.enter(p.idx)
}

// Pause pauses playback.
func (p *Player) Pause() { p.State = Paused }

// Resume resumes playback.
func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to start.
func (p *Player) Stop() {
	p.State = Idle
	p.nowS = 0
	p.clipStart = 0
	p.idx = 0
	p.disarm()
	p.crossfade(0)
}

// Seek jumps to absolute program time t. Clamps into [0, totalDur).
func (p *Player) Seek(t float64) error {
	if len(p.prog.Clips) == 0 {
		return nil
	}
	if t < 0 {
		t = 0
	}
	total := p.totalDuration()
	if t >= total {
		t = math.Nextafter(total, -1)
	}
	acc := 0.0
	idx := 0
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.nowS = t
	p.clipStart = acc
	return p.enter(idx)
}

// Tick advances the sequencer by dt seconds and emits control hooks. The
// first hook error is returned; playback state still advances.
func (p *Player) Tick(dt float64) error {
	if p.State != Running || len(p.prog.Clips) == 0 || dt <= 0 {
		return nil
	}
	p.nowS += dt
	clip := p.prog.Clips[p.idx]
	localT := p.nowS - p.clipStart

	var err error
	if clip.XFadeS > 0 {
		remain := clip.DurationS - localT
		if remain <= clip.XFadeS {
			// Arm next once
			nextIdx := p.nextIndex()
			if !p.armed && nextIdx != -1 && p.hooks.ArmNext != nil {
				if err = p.hooks.ArmNext(p.prog.Clips[nextIdx].Effect); err == nil {
					p.armed = true
					p.armedIndex = nextIdx
				}
			}
			if p.armed {
				alpha := Ramp(clip.DurationS-clip.XFadeS, clip.DurationS, clip.Ease).Eval(localT)
				if alpha != p.lastAlpha {
					p.crossfade(alpha)
					p.lastAlpha = alpha
				}
			}
		}
	}

	if localT >= clip.DurationS {
		if aerr := p.advanceClip(); err == nil {
			err = aerr
		}
	}
	return err
}

func (p *Player) totalDuration() float64 {
	total := 0.0
	for _, c := range p.prog.Clips {
		total += c.DurationS
	}
	return total
}

func (p *Player) nextIndex() int {
	if len(p.prog.Clips) == 0 {
		return -1
	}
	ni := p.idx + 1
	if ni >= len(p.prog.Clips) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advanceClip() error {
	next := p.nextIndex()
	if next == -1 {
		// End of program
		p.State = Idle
		p.crossfade(0)
		return nil
	}
	p.clipStart += p.prog.Clips[p.idx].DurationS
	// A completed crossfade already promoted the armed effect.
	if p.armed && p.armedIndex == next && p.lastAlpha >= 1 {
		p.idx = next
		p.disarm()
		if p.hooks.Promoted != nil {
			p.hooks.Promoted(p.prog.Clips[next].Effect)
		}
		return nil
	}
	return p.enter(next)
}

// enter snaps the engine to clip i and resets any crossfade.
func (p *Player) enter(i int) error {
	p.idx = i
	p.disarm()
	p.crossfade(0)
	if p.hooks.SetEffect == nil {
		return nil
	}
	return p.hooks.SetEffect(p.prog.Clips[i].Effect)
}

func (p *Player) disarm() {
	p.armed = false
	p.armedIndex = -1
	p.lastAlpha = 0
}

func (p *Player) crossfade(a float64) {
	if p.hooks.SetCrossfade != nil {
		p.hooks.SetCrossfade(a)
	}
}
