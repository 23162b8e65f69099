package post

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/treelights/internal/render"
)

func TestForWLEDSkipsBrightness(t *testing.T) {
	p := For("wled", Options{Brightness: 0.5})
	assert.Nil(t, p.Scale)
	assert.Nil(t, p.ToneMap)
	assert.Nil(t, p.Limiter)
}

func TestForLEDScalesAndLimits(t *testing.T) {
	p := For("spi", Options{Brightness: 0.5, Limiter: render.LimiterConfig{WhiteCap: 1.5}})
	buf := []render.Color{{R: 1, G: 1, B: 1}}
	p.Scale(buf)
	p.Limiter(buf)
	assert.InDelta(t, 1.5, float64(buf[0].R+buf[0].G+buf[0].B), 1e-6)
}

func TestForPreview(t *testing.T) {
	assert.Nil(t, For("sim", Options{Brightness: 1}).Scale)
	assert.NotNil(t, For("sim", Options{Brightness: 0.2}).Scale)
}
