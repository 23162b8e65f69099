package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/coreman2200/treelights/internal/render/scenes"
	"github.com/coreman2200/treelights/internal/sequence"
)

// scheduleAction steps a player over the configured playlist at the
// configured frame rate without rendering, and tabulates its hook calls.
func scheduleAction(c *cli.Context) error {
	cfg, err := loadConfig(c.String(flagConfig))
	if err != nil {
		return exitErr(err)
	}
	names := cfg.Effects.Playlist
	if len(names) == 0 {
		names = scenes.Show
	}
	prog := sequence.Playlist(names, cfg.Effects.AutoCycleInterval, cfg.Transition(), cfg.Effects.TransitionEase)

	seconds := cfg.Effects.AutoCycleInterval * float64(len(names))
	if c.IsSet(flagSeconds) {
		seconds = c.Float64(flagSeconds)
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"T (s)", "Event", "Effect"})
	now := 0.0
	fading := false
	var armed string
	p := sequence.NewPlayer(sequence.Hooks{
		SetEffect: func(name string) error {
			t.AppendRow(table.Row{fmt.Sprintf("%.2f", now), "switch", name})
			return nil
		},
		ArmNext: func(name string) error {
			armed = name
			return nil
		},
		SetCrossfade: func(a float64) {
			switch {
			case a > 0 && a < 1 && !fading:
				fading = true
				t.AppendRow(table.Row{fmt.Sprintf("%.2f", now), "crossfade", armed})
			case a >= 1 && fading:
				fading = false
				t.AppendRow(table.Row{fmt.Sprintf("%.2f", now), "promote", armed})
			case a <= 0:
				fading = false
			}
		},
	})
	if err := p.Load(prog); err != nil {
		return exitErr(err)
	}
	if err := p.Start(); err != nil {
		return exitErr(err)
	}
	dt := 1 / float64(cfg.LEDs.FPS)
	for now < seconds && p.State == sequence.Running {
		now += dt
		if err := p.Tick(dt); err != nil {
			return exitErr(err)
		}
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%.2f", now), "end", p.Current()})
	t.Render()
	return nil
}
