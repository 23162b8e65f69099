package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/treelights/internal/app"
	"github.com/coreman2200/treelights/internal/config"
	diag "github.com/coreman2200/treelights/internal/diagnostics"
	"github.com/coreman2200/treelights/internal/led"
	"github.com/coreman2200/treelights/internal/preview"
)

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c.String(flagConfig))
	if err != nil {
		return exitErr(err)
	}
	if c.IsSet(flagLogLevel) {
		cfg.Logging.Level = c.String(flagLogLevel)
	}
	log, err := newLogger(c.App.Writer, cfg.Logging)
	if err != nil {
		return exitErr(err)
	}
	log = log.With().Str("run_id", uuid.NewString()).Logger()

	duration := app.Forever
	if c.IsSet(flagDuration) {
		s := c.Float64(flagDuration)
		if s < 0 {
			return exitErr(&config.Error{Key: flagDuration, Msg: "must be >= 0"})
		}
		duration = time.Duration(s * float64(time.Second))
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pv *preview.Server
	core, err := app.InitCore(cfg, app.Options{
		CoordsPath: c.String(flagCoords),
		Effect:     c.String(flagEffect),
		Logger:     log.With().Str("component", "core").Logger(),
		OnEffect: func(name string) {
			if pv != nil {
				pv.SetEffect(name)
			}
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return exitErr(err)
	}

	sink, err := app.OpenSink(ctx, cfg, core.Tree.Len(), log.With().Str("component", "sink").Logger())
	if err != nil {
		log.Error().Err(err).Msg("output open failed")
		return exitErr(err)
	}
	defer func() {
		rctx, cancel := context.WithTimeout(context.Background(), cfg.WLED.Timeout)
		defer cancel()
		if err := sink.Release(rctx); err != nil {
			log.Warn().Err(err).Msg("realtime release failed")
		}
		if err := sink.Close(); err != nil {
			log.Warn().Err(err).Msg("output close failed")
		}
	}()

	var out led.Driver = sink
	var pub diag.Publisher = diag.Discard
	if cfg.Preview.Addr != "" {
		pv = preview.New(core.Tree, cfg.LEDs.FPS, 0, log)
		pv.SetEffect(core.Eng.ActiveName())
		out = led.Join(sink, pv)
		pub = pv
		defer pv.Close()
	}

	runner := &app.Runner{
		Eng:  core.Eng,
		Seq:  core.Seq,
		Sink: out,
		Log:  log.With().Str("component", "loop").Logger(),
		Diag: pub,
		Opts: app.RunOptions{
			FPS:              cfg.LEDs.FPS,
			Duration:         duration,
			FailureThreshold: cfg.WLED.FailureThreshold,
			ClearOnExit:      cfg.Output.ClearOnExit,
		},
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	var st app.Stats
	g.Go(func() error {
		defer cancel()
		var err error
		st, err = runner.Run(gctx)
		return err
	})
	if pv != nil {
		g.Go(func() error { return pv.Serve(gctx, cfg.Preview.Addr) })
	}
	err = g.Wait()

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Int("frames", st.Frames).Int("sent", st.Sent).Int("failures", st.Failures).
		Dur("elapsed", st.Elapsed).Str("state", core.Eng.Active.State().String()).Msg("run finished")

	if err != nil {
		// an effect failure has already cleared the display
		return exitErr(err)
	}
	return nil
}
