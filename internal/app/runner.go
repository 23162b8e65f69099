package app

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	diag "github.com/coreman2200/treelights/internal/diagnostics"
	"github.com/coreman2200/treelights/internal/led"
	"github.com/coreman2200/treelights/internal/render"
	"github.com/coreman2200/treelights/internal/sequence"
)

// Forever runs until interrupted.
const Forever time.Duration = -1

type RunOptions struct {
	FPS int
	// Duration stops the run once this much time has passed since the first
	// frame. Zero renders exactly one frame; Forever never stops on time.
	Duration time.Duration
	// MaxFrames stops after this many frames when > 0.
	MaxFrames int
	// FailureThreshold is the consecutive sink failure count that escalates
	// from warnings to an error and a diagnostic.
	FailureThreshold int
	ClearOnExit      bool
}

type Stats struct {
	Frames   int // frames rendered and handed to the sink
	Sent     int // frames the sink accepted
	Failures int
	Elapsed  time.Duration
}

// Runner is the fixed-rate frame loop.
type Runner struct {
	Eng   *render.Engine
	Seq   *sequence.Player // optional
	Sink  led.Driver
	Clock clock.Clock
	Log   zerolog.Logger
	Diag  diag.Publisher
	Opts  RunOptions
}

func (r *Runner) defaults() {
	if r.Clock == nil {
		r.Clock = clock.New()
	}
	if r.Diag == nil {
		r.Diag = diag.Discard
	}
	if r.Opts.FPS <= 0 {
		r.Opts.FPS = 30
	}
	if r.Opts.FailureThreshold <= 0 {
		r.Opts.FailureThreshold = 30
	}
}

// Run renders and sends frames until the duration or frame limit is reached,
// a single effect (no sequence) completes on its own, or ctx is cancelled. Sink errors
// never stop the loop. An effect panic clears the display and is returned
// as *render.EffectError.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	r.defaults()
	clk := r.Clock
	interval := time.Second / time.Duration(r.Opts.FPS)

	var (
		st       Stats
		streak   int
		warnings *rate.Sometimes
		prev     time.Time
	)
	start := clk.Now()
	completed := false

	r.Log.Info().Int("fps", r.Opts.FPS).Dur("duration", r.Opts.Duration).Str("effect", r.Eng.ActiveName()).Msg("frame loop starting")

loop:
	for {
		if ctx.Err() != nil {
			break
		}
		frameStart := clk.Now()
		dt := 0.0
		if !prev.IsZero() {
			dt = frameStart.Sub(prev).Seconds()
		}
		prev = frameStart

		frame, err := r.Eng.RenderFrame(dt)
		if err != nil {
			return r.fail(st, start, err)
		}
		r.Log.Debug().Int("frame", st.Frames+1).Float64("dt", dt).
			Float64("render_ms", r.Eng.Last.RenderMS).Float64("post_ms", r.Eng.Last.PostMS).Msg("frame rendered")
		if r.Seq != nil {
			if err := r.Seq.Tick(dt); err != nil {
				r.Log.Error().Err(err).Msg("sequence step failed")
			}
		}

		st.Frames++
		frameNo := uint64(st.Frames)
		if werr := r.Sink.Write(frame); werr != nil {
			st.Failures++
			streak++
			if streak == 1 {
				warnings = &rate.Sometimes{First: 5, Interval: 5 * time.Second}
			}
			warnings.Do(func() {
				r.Log.Warn().Err(werr).Uint64("frame", frameNo).Int("streak", streak).Msg("frame send failed")
			})
			if streak == r.Opts.FailureThreshold {
				d := diag.SinkFailing(frameNo, streak, werr)
				diag.Log(r.Log, d)
				r.Diag.Publish(d)
			}
		} else {
			st.Sent++
			if streak >= r.Opts.FailureThreshold {
				d := diag.SinkRecovered(frameNo, streak)
				diag.Log(r.Log, d)
				r.Diag.Publish(d)
			}
			streak = 0
		}

		switch {
		case r.Opts.MaxFrames > 0 && st.Frames >= r.Opts.MaxFrames:
			completed = true
			break loop
		case r.Opts.Duration >= 0 && clk.Since(start) >= r.Opts.Duration:
			completed = true
			break loop
		case r.Seq == nil && r.Eng.Active != nil && r.Eng.Active.State() == render.Completed:
			completed = true
			break loop
		}

		if wait := interval - clk.Since(frameStart); wait > 0 {
			t := clk.Timer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				break loop
			case <-t.C:
			}
		}
	}

	r.Eng.Finish(completed)
	st.Elapsed = clk.Since(start)
	if r.Opts.ClearOnExit {
		if err := r.Sink.Write(r.Eng.Black()); err != nil {
			r.Log.Warn().Err(err).Msg("clear on exit failed")
		}
	}
	r.Log.Info().Int("frames", st.Frames).Int("failures", st.Failures).Dur("elapsed", st.Elapsed).
		Bool("completed", completed).Msg("frame loop stopped")
	return st, nil
}

func (r *Runner) fail(st Stats, start time.Time, err error) (Stats, error) {
	st.Elapsed = r.Clock.Since(start)
	r.Eng.Finish(false)
	if cerr := r.Sink.Write(r.Eng.Black()); cerr != nil {
		r.Log.Warn().Err(cerr).Msg("clear after effect failure")
	}
	d := diag.EffectFailed(err)
	diag.Log(r.Log, d)
	r.Diag.Publish(d)
	return st, err
}
