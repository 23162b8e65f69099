package render

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/layout"
)

func startedBase(n int) *Base {
	b := NewBase(Params{LEDCount: n})
	b.Start()
	return &b
}

func TestLifecycle(t *testing.T) {
	b := NewBase(Params{LEDCount: 3})
	assert.Equal(t, Created, b.State())
	b.Advance(1)
	assert.Zero(t, b.Time(), "advance before start is ignored")

	b.Start()
	assert.Equal(t, Running, b.State())
	b.Advance(0.25)
	b.Advance(0.5)
	assert.InDelta(t, 0.75, b.Time(), 1e-12)
	assert.Equal(t, uint64(2), b.Frame())

	b.Complete()
	assert.Equal(t, Completed, b.State())
	b.Stop()
	assert.Equal(t, Completed, b.State(), "terminal states do not change")
	b.Start()
	assert.Equal(t, Completed, b.State())
}

func TestProgressIsPeriodic(t *testing.T) {
	for _, d := range []float64{0.3, 1, 2.5, 60} {
		for _, ts := range []float64{0, 0.1, 1.7, 12.34} {
			a := startedBase(1)
			a.Advance(ts)
			b := startedBase(1)
			b.Advance(ts + d)
			pa, pb := a.Progress(d), b.Progress(d)
			assert.GreaterOrEqual(t, pa, 0.0)
			assert.Less(t, pa, 1.0)
			if pb > 1-1e-9 {
				pb = 0
			}
			assert.InDelta(t, pa, pb, 1e-9, "d=%v t=%v", d, ts)
		}
	}
	assert.Zero(t, startedBase(1).Progress(0))
}

func TestPixelHelpers(t *testing.T) {
	b := startedBase(4)
	b.SetPixel(-1, colors.Red)
	b.SetPixel(4, colors.Red)
	b.SetPixel(1, colors.Red)
	assert.Equal(t, []colors.RGB{{}, colors.Red, {}, {}}, b.Pixels())

	b.SetAll(colors.RGB{R: 200, G: 100, B: 10})
	b.FadeToBlack(0.5)
	assert.Equal(t, colors.RGB{R: 100, G: 50, B: 5}, b.Pixels()[3])

	b.Clear()
	for _, p := range b.Pixels() {
		assert.Equal(t, colors.Black, p)
	}
}

func TestBlurIndexNeighbours(t *testing.T) {
	b := startedBase(5)
	b.SetPixel(2, colors.RGB{R: 200})
	b.Blur(1)
	got := b.Pixels()
	assert.Equal(t, uint8(0), got[0].R, "ends are left alone")
	assert.Equal(t, uint8(50), got[1].R)
	assert.Equal(t, uint8(100), got[2].R)
	assert.Equal(t, uint8(50), got[3].R)

	b.Clear()
	b.SetPixel(2, colors.RGB{R: 200})
	b.Blur(0)
	assert.Equal(t, uint8(200), b.Pixels()[2].R)
}

func TestBlurTreeNeighbours(t *testing.T) {
	pts := []r3.Vector{{}, {Z: 1}, {Z: 10}}
	tr := layout.New(pts, layout.Options{NeighborK: 1})
	b := NewBase(Params{Tree: tr})
	b.Start()
	assert.Equal(t, 3, b.Len())
	b.SetPixel(0, colors.RGB{G: 200})
	b.Blur(1)
	// 1's nearest neighbour is 0, 0's is 1.
	assert.Equal(t, uint8(100), b.Pixels()[0].G)
	assert.Equal(t, uint8(100), b.Pixels()[1].G)
	assert.Equal(t, uint8(0), b.Pixels()[2].G)
}
