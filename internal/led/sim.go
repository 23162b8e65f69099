package led

import (
	"github.com/rs/zerolog"
)

// Sim logs a compact summary of every Nth frame (average and first LED),
// useful for headless runs with no hardware attached.
type Sim struct {
	Count int
	Every int
	log   zerolog.Logger
}

func NewSim(log zerolog.Logger, every int) *Sim {
	if every <= 0 {
		every = 30
	}
	return &Sim{Every: every, log: log.With().Str("component", "sim").Logger()}
}

func (d *Sim) Write(rgb []byte) error {
	d.Count++
	if d.Count%d.Every != 1 && d.Every != 1 {
		return nil
	}
	var r, g, b float64
	n := len(rgb) / 3
	for i := 0; i < n; i++ {
		r += float64(rgb[i*3])
		g += float64(rgb[i*3+1])
		b += float64(rgb[i*3+2])
	}
	ev := d.log.Info().Int("frame", d.Count).Int("leds", n)
	if n > 0 {
		ev = ev.Floats64("avg", []float64{r / float64(n), g / float64(n), b / float64(n)}).
			Hex("first", rgb[:3])
	}
	ev.Msg("frame")
	return nil
}

func (d *Sim) Close() error { return nil }
