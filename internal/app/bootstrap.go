// Package app wires configuration, the tree model, effects and the output
// sink together and runs the frame loop.
package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/coreman2200/treelights/internal/config"
	diag "github.com/coreman2200/treelights/internal/diagnostics"
	"github.com/coreman2200/treelights/internal/layout"
	"github.com/coreman2200/treelights/internal/render"
	"github.com/coreman2200/treelights/internal/render/post"
	"github.com/coreman2200/treelights/internal/render/scenes"
	"github.com/coreman2200/treelights/internal/sequence"
)

type Core struct {
	Cfg  *config.Config
	Tree *layout.Tree
	Eng  *render.Engine
	Reg  *render.Registry
	// Seq is nil unless effects cycle automatically.
	Seq *sequence.Player
}

// Options are the command-line overrides applied over the config.
type Options struct {
	CoordsPath string
	// Effect pins a single effect and turns auto-cycling off.
	Effect string
	Logger zerolog.Logger
	Diag   diag.Publisher
	// OnEffect is told whenever a new effect becomes active.
	OnEffect func(name string)
}

// LoadTree reads the coordinate file and reconciles its row count with
// leds.count. With no file the LEDs are placed on a vertical line.
func LoadTree(cfg *config.Config, path string, log zerolog.Logger, d diag.Publisher) (*layout.Tree, error) {
	opt := layout.Options{Normalize: cfg.LEDs.Normalize}
	if path == "" {
		dg := diag.LinearLayout(cfg.LEDs.Count)
		diag.Log(log, dg)
		d.Publish(dg)
		return layout.New(layout.Linear(cfg.LEDs.Count), opt), nil
	}
	pts, err := layout.Load(path)
	if err != nil {
		return nil, err
	}
	policy, err := layout.ParsePolicy(cfg.LEDs.CountMismatch)
	if err != nil {
		return nil, &config.Error{Key: "leds.count_mismatch", Msg: err.Error()}
	}
	if len(pts) != cfg.LEDs.Count {
		dg := diag.CountMismatch(len(pts), cfg.LEDs.Count, string(policy))
		diag.Log(log, dg)
		d.Publish(dg)
	}
	pts, err = layout.Fit(pts, cfg.LEDs.Count, policy)
	if err != nil {
		return nil, err
	}
	tree := layout.New(pts, opt)
	log.Info().Str("path", path).Int("leds", tree.Len()).Msg("tree model loaded")
	return tree, nil
}

// InitCore builds tree -> registry -> engine (+post) -> sequence player.
// The output driver name selects the post pipeline.
func InitCore(cfg *config.Config, o Options) (*Core, error) {
	if o.Diag == nil {
		o.Diag = diag.Discard
	}
	log := o.Logger

	tree, err := LoadTree(cfg, o.CoordsPath, log, o.Diag)
	if err != nil {
		return nil, err
	}

	reg := scenes.Registry()
	params := render.Params{
		LEDCount: tree.Len(),
		FPS:      cfg.LEDs.FPS,
		Tree:     tree,
		Seed:     cfg.Effects.Seed,
		Speed:    cfg.Effects.Speed,
	}
	eng, err := render.NewEngine(reg, params, nil)
	if err != nil {
		return nil, err
	}
	eng.SetPost(post.For(cfg.Output.Driver, post.Options{
		Brightness: cfg.Brightness01(),
		Gamma:      cfg.LEDs.Gamma,
		Limiter: render.LimiterConfig{
			WhiteCap: cfg.LEDs.WhiteCap,
			ChanMA:   cfg.LEDs.ChanMA,
			BudgetMA: cfg.LEDs.BudgetMA,
		},
	}))

	report := func(name string) {
		log.Info().Str("effect", name).Msg("effect active")
		o.Diag.Publish(diag.EffectActive(name))
		if o.OnEffect != nil {
			o.OnEffect(name)
		}
	}
	activate := func(name string) error {
		if err := eng.SetEffect(name); err != nil {
			return err
		}
		report(name)
		return nil
	}

	core := &Core{Cfg: cfg, Tree: tree, Eng: eng, Reg: reg}

	if o.Effect == "" && cfg.Effects.AutoCycle {
		names := cfg.Effects.Playlist
		if len(names) == 0 {
			names = scenes.Show
		}
		for _, n := range names {
			if !reg.Has(n) {
				return nil, unknownEffect("effects.playlist", n, reg)
			}
		}
		seq := sequence.NewPlayer(sequence.Hooks{
			SetEffect:    activate,
			ArmNext:      eng.ArmNext,
			SetCrossfade: eng.SetCrossfade,
			Promoted:     report,
		})
		prog := sequence.Playlist(names, cfg.Effects.AutoCycleInterval, cfg.Transition(), cfg.Effects.TransitionEase)
		if err := seq.Load(prog); err != nil {
			return nil, &config.Error{Key: "effects.playlist", Msg: err.Error()}
		}
		if err := seq.Start(); err != nil {
			return nil, err
		}
		core.Seq = seq
		log.Info().Strs("playlist", names).Float64("interval_s", cfg.Effects.AutoCycleInterval).
			Float64("transition_s", cfg.Transition()).Msg("auto-cycling effects")
		return core, nil
	}

	name, key := cfg.Effects.Default, "effects.default"
	if o.Effect != "" {
		name, key = o.Effect, "effect"
	}
	if !reg.Has(name) {
		return nil, unknownEffect(key, name, reg)
	}
	if err := activate(name); err != nil {
		return nil, err
	}
	return core, nil
}

func unknownEffect(key, name string, reg *render.Registry) error {
	return &config.Error{Key: key, Msg: fmt.Sprintf("unknown effect %q (available: %s)", name, strings.Join(reg.List(), ", "))}
}
