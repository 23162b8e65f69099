package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/config"
	"github.com/coreman2200/treelights/internal/layout"
	"github.com/coreman2200/treelights/internal/render/scenes"
	"github.com/coreman2200/treelights/internal/wled"
)

func effectsAction(c *cli.Context) error {
	inShow := map[string]bool{}
	for _, n := range scenes.Show {
		inShow[n] = true
	}
	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Effect", "Auto-cycle"})
	for _, n := range scenes.Registry().List() {
		mark := ""
		if inShow[n] {
			mark = "yes"
		}
		t.AppendRow(table.Row{n, mark})
	}
	t.Render()
	return nil
}

func coordsAction(c *cli.Context) error {
	path := c.String(flagCoords)
	if path == "" {
		path = c.Args().First()
	}
	if path == "" {
		return exitErr(errors.New("coords: no coordinate file given"))
	}
	pts, err := layout.Load(path)
	if err != nil {
		return exitErr(err)
	}
	if n := c.Int(flagCount); n > 0 && n != len(pts) {
		fmt.Fprintf(c.App.Writer, "warning: %d rows, expected %d\n", len(pts), n)
	}
	raw := layout.New(pts, layout.Options{})
	norm := layout.New(pts, layout.Options{Normalize: true})
	st := norm.Stats()
	b := raw.Bounds()

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.SetTitle(fmt.Sprintf("%s: %d LEDs", path, st.Count))
	t.AppendHeader(table.Row{"Feature", "Min", "Max", "Mean", "StdDev"})
	for _, r := range []struct {
		name string
		s    layout.Summary
	}{{"height", st.Height}, {"radius", st.Radius}, {"angle", st.Angle}} {
		t.AppendRow(table.Row{r.name, f3(r.s.Min), f3(r.s.Max), f3(r.s.Mean), f3(r.s.StdDev)})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"raw x", f3(b.Min.X), f3(b.Max.X), "", ""})
	t.AppendRow(table.Row{"raw y", f3(b.Min.Y), f3(b.Max.Y), "", ""})
	t.AppendRow(table.Row{"raw z", f3(b.Min.Z), f3(b.Max.Z), "", ""})
	t.AppendFooter(table.Row{"duplicates", st.Duplicates, "mean gap", f3(st.MeanGap), ""})
	t.Render()
	return nil
}

func f3(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

// listenAction reassembles DDP frames and logs one line per pushed frame.
func listenAction(c *cli.Context) error {
	lc := config.Logging{Level: "info", Format: "console"}
	if c.IsSet(flagLogLevel) {
		lc.Level = c.String(flagLogLevel)
	}
	log, err := newLogger(c.App.Writer, lc)
	if err != nil {
		return exitErr(err)
	}
	conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", c.Int(flagPort)))
	if err != nil {
		return exitErr(err)
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	log.Info().Str("addr", conn.LocalAddr().String()).Msg("listening for DDP")

	buf := make([]byte, 65535)
	var pending []wled.Packet
	frames := 0
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Int("frames", frames).Msg("listener stopped")
				return nil
			}
			return exitErr(err)
		}
		p, err := wled.ParsePacket(buf[:n])
		if err != nil {
			log.Warn().Err(err).Str("from", from.String()).Msg("bad packet")
			continue
		}
		p.Data = append([]byte(nil), p.Data...)
		pending = append(pending, p)
		if !p.Push() {
			continue
		}
		rgb, err := wled.Reassemble(pending)
		pending = pending[:0]
		if err != nil {
			log.Warn().Err(err).Msg("dropped frame")
			continue
		}
		frames++
		ev := log.Info().Int("frame", frames).Uint8("seq", p.Seq).Int("leds", len(rgb)/3)
		if len(rgb) >= 3 {
			ev = ev.Str("first", colors.RGB{R: rgb[0], G: rgb[1], B: rgb[2]}.Hex())
		}
		ev.Msg("frame")
	}
}

func configAction(c *cli.Context) error {
	if path := c.String(flagWrite); path != "" {
		if err := config.Save(path, config.Default()); err != nil {
			return exitErr(err)
		}
		fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
		return nil
	}
	cfg, err := loadConfig(c.String(flagConfig))
	if err != nil {
		return exitErr(err)
	}
	keys := config.Keys()
	if k := c.Args().First(); k != "" {
		keys = []string{k}
	}
	for _, k := range keys {
		v, ok := cfg.Lookup(k)
		if !ok {
			return exitErr(&config.Error{Key: k, Msg: "unknown key"})
		}
		fmt.Fprintf(c.App.Writer, "%s = %v\n", k, v)
	}
	return nil
}
