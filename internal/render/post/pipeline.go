// Package post assembles the render post pipeline for an output kind.
package post

import "github.com/coreman2200/treelights/internal/render"

// Options are the LED-facing post settings from config.
type Options struct {
	Brightness float64 // 0..1
	Gamma      float64
	Limiter    render.LimiterConfig
}

// ForWLED skips the brightness scale: WLED applies "bri" in hardware, and
// scaling twice would square it. Gamma and limiter still apply.
func ForWLED(o Options) render.PostPipeline {
	return render.PostPipeline{
		ToneMap: render.GammaToneMap(o.Gamma),
		Limiter: limiter(o.Limiter),
	}
}

// ForLED does Brightness -> Gamma -> Limiter for directly driven strips,
// where nothing downstream dims the frame.
func ForLED(o Options) render.PostPipeline {
	p := ForWLED(o)
	if o.Brightness < 1 {
		p.Scale = render.ScaleBrightness(clamp01(o.Brightness))
	}
	return p
}

// ForPreview applies brightness only, so a browser sees roughly what the
// tree shows without current limiting.
func ForPreview(o Options) render.PostPipeline {
	if o.Brightness >= 1 {
		return render.PostPipeline{}
	}
	return render.PostPipeline{Scale: render.ScaleBrightness(clamp01(o.Brightness))}
}

// For selects the pipeline for an output driver name.
func For(driver string, o Options) render.PostPipeline {
	switch driver {
	case "wled", "":
		return ForWLED(o)
	case "sim":
		return ForPreview(o)
	default:
		return ForLED(o)
	}
}

func limiter(c render.LimiterConfig) func([]render.Color) {
	if (c.WhiteCap <= 0 || c.WhiteCap >= 3) && c.BudgetMA <= 0 {
		return nil
	}
	return func(buf []render.Color) { render.DefaultLimiter(buf, c) }
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
