package scenes

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/layout"
	"github.com/coreman2200/treelights/internal/render"
	"github.com/coreman2200/treelights/internal/render/scenes/heightgradient"
	"github.com/coreman2200/treelights/internal/render/scenes/rainbow"
	"github.com/coreman2200/treelights/internal/render/scenes/risingwave"
	"github.com/coreman2200/treelights/internal/render/scenes/rotatingplane"
	"github.com/coreman2200/treelights/internal/render/scenes/spherepulse"
	"github.com/coreman2200/treelights/internal/render/scenes/spiral"
)

func cone(n int) *layout.Tree {
	pts := make([]r3.Vector, n)
	for i := range pts {
		h := float64(i) / float64(n-1)
		r := 1 - h
		a := float64(i) * 2.399963 // golden angle
		pts[i] = r3.Vector{X: r * math.Cos(a), Y: r * math.Sin(a), Z: h * 2}
	}
	return layout.New(pts, layout.Options{Normalize: true})
}

func TestRegistryNames(t *testing.T) {
	reg := Registry()
	for _, n := range Show {
		assert.True(t, reg.Has(n), n)
	}
	assert.Equal(t, []string{
		"height_gradient", "height_sweep", "index_sweep", "rainbow", "rgb_channels",
		"rising_wave", "rotating_plane", "sphere_pulse", "spiral",
	}, reg.List())
}

func hue(c colors.RGB) float64 {
	h, _, _ := c.Colorful().Hsv()
	return h
}

func TestHeightGradientFivePointsMonotonic(t *testing.T) {
	pts := []r3.Vector{{}, {Z: 1}, {Z: 2}, {Z: 3}, {Z: 4}}
	tr := layout.New(pts, layout.Options{Normalize: true})
	e, err := Registry().New(heightgradient.Name, render.Params{LEDCount: 5, Tree: tr})
	require.NoError(t, err)
	e.Start()
	require.NoError(t, render.Step(e, 0))

	px := e.Pixels()
	for i := 1; i < len(px); i++ {
		assert.GreaterOrEqual(t, hue(px[i]), hue(px[i-1]), "hue must not decrease at index %d", i)
	}
	assert.Equal(t, colors.Red, px[0])
}

func TestHeightGradientPalette(t *testing.T) {
	tr := layout.New(layout.Linear(3), layout.Options{})
	e, err := heightgradient.New(render.Params{Tree: tr, Palette: []colors.RGB{colors.Red, colors.Blue}})
	require.NoError(t, err)
	e.Start()
	require.NoError(t, render.Step(e, 0))
	assert.Equal(t, colors.Red, e.Pixels()[0])
	assert.Equal(t, colors.Blue, e.Pixels()[2])
	assert.Equal(t, colors.RGB{R: 128, B: 128}, e.Pixels()[1])
}

func TestGradientStops(t *testing.T) {
	assert.Equal(t, colors.Black, heightgradient.Gradient(nil, 0.5))
	assert.Equal(t, colors.Green, heightgradient.Gradient([]colors.RGB{colors.Green}, 0.5))
	stops := []colors.RGB{colors.Red, colors.Green, colors.Blue}
	assert.Equal(t, colors.Green, heightgradient.Gradient(stops, 0.5))
	assert.Equal(t, colors.Blue, heightgradient.Gradient(stops, 1))
}

func TestSpatialEffectsNeedTree(t *testing.T) {
	reg := Registry()
	for _, n := range []string{heightgradient.Name, risingwave.Name, spiral.Name, spherepulse.Name, rotatingplane.Name} {
		_, err := reg.New(n, render.Params{LEDCount: 10})
		assert.ErrorIs(t, err, render.ErrNeedsTree, n)
	}
	_, err := reg.New(rainbow.Name, render.Params{LEDCount: 10})
	assert.NoError(t, err)
}

// Every animated effect is periodic in time and deterministic for a given tree.
func TestEffectsDeterministicAndSized(t *testing.T) {
	tr := cone(120)
	reg := Registry()
	for _, n := range Show {
		t.Run(n, func(t *testing.T) {
			p := render.Params{LEDCount: tr.Len(), FPS: 30, Tree: tr, Seed: 7}
			a, err := reg.New(n, p)
			require.NoError(t, err)
			b, err := reg.New(n, p)
			require.NoError(t, err)
			a.Start()
			b.Start()
			for i := 0; i < 8; i++ {
				require.NoError(t, render.Step(a, 0.125))
			}
			require.NoError(t, render.Step(b, 1))
			require.Len(t, a.Pixels(), tr.Len())
			assert.Equal(t, a.Pixels(), b.Pixels(), "same elapsed time, same frame")
		})
	}
}

func TestRisingWaveBand(t *testing.T) {
	tr := layout.New(layout.Linear(11), layout.Options{})
	e, err := risingwave.New(render.Params{Tree: tr, Speed: 0.5})
	require.NoError(t, err)
	e.Start()
	// wave position is 0.5 after one second at 0.5 waves/s
	require.NoError(t, render.Step(e, 1))
	px := e.Pixels()
	assert.Greater(t, maxChan(px[5]), maxChan(px[4]))
	assert.Greater(t, maxChan(px[4]), maxChan(px[3]))
	assert.Equal(t, colors.Black, px[0])
	assert.Equal(t, colors.Black, px[10])
}

func TestRotatingPlaneLightsFacingLED(t *testing.T) {
	pts := []r3.Vector{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}}
	tr := layout.New(pts, layout.Options{})
	e, err := rotatingplane.New(render.Params{Tree: tr, Speed: 0.25})
	require.NoError(t, err)
	e.Start()
	require.NoError(t, render.Step(e, 1)) // a quarter turn: plane at π/2
	px := e.Pixels()
	assert.NotEqual(t, colors.Black, px[1])
	assert.Equal(t, colors.Black, px[0])
	assert.Equal(t, colors.Black, px[2])
	assert.Equal(t, colors.Black, px[3])
}

func TestSpherePulseSeeded(t *testing.T) {
	tr := cone(60)
	a, err := spherepulse.New(render.Params{Tree: tr, Seed: 42}, 3)
	require.NoError(t, err)
	b, err := spherepulse.New(render.Params{Tree: tr, Seed: 42}, 3)
	require.NoError(t, err)
	assert.Equal(t, a.Origins(), b.Origins())
	assert.Len(t, a.Origins(), 3)
}

func TestRainbowWraps(t *testing.T) {
	e, err := rainbow.New(render.Params{LEDCount: 4})
	require.NoError(t, err)
	e.Start()
	require.NoError(t, render.Step(e, 0))
	assert.Equal(t, colors.Wheel(0), e.Pixels()[0])
	assert.Equal(t, colors.Wheel(64), e.Pixels()[1])
	// one full wheel period later the frame repeats
	first := append([]colors.RGB(nil), e.Pixels()...)
	require.NoError(t, render.Step(e, 256.0/50))
	assert.Equal(t, first, e.Pixels())
}

func maxChan(c colors.RGB) uint8 {
	m := c.R
	if c.G > m {
		m = c.G
	}
	if c.B > m {
		m = c.B
	}
	return m
}
