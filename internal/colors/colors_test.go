package colors

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHSVPrimaries(t *testing.T) {
	assert.Equal(t, Red, HSV(0, 1, 1))
	assert.Equal(t, Green, HSV(1.0/3, 1, 1))
	assert.Equal(t, Blue, HSV(2.0/3, 1, 1))
	assert.Equal(t, Red, HSV(1, 1, 1), "hue wraps")
	assert.Equal(t, Red, HSV(-1, 1, 1), "negative hue wraps")
	assert.Equal(t, Black, HSV(0.3, 1, 0))
}

func TestWheelEndpoints(t *testing.T) {
	assert.Equal(t, RGB{255, 0, 0}, Wheel(0))
	assert.Equal(t, RGB{0, 255, 0}, Wheel(85))
	assert.Equal(t, RGB{0, 0, 255}, Wheel(170))
}

func TestBlendAndDim(t *testing.T) {
	assert.Equal(t, Red, Blend(Red, Blue, 0))
	assert.Equal(t, Blue, Blend(Red, Blue, 1))
	mid := Blend(Black, White, 0.5)
	assert.InDelta(t, 128, int(mid.R), 1)
	assert.Equal(t, RGB{50, 100, 0}, Dim(RGB{100, 200, 0}, 0.5))
	assert.Equal(t, Black, Dim(White, -1))
}

func TestAddSaturates(t *testing.T) {
	assert.Equal(t, RGB{255, 20, 0}, RGB{200, 10, 0}.Add(RGB{100, 10, 0}))
}

func TestKelvin(t *testing.T) {
	warm := Kelvin(2700)
	assert.Equal(t, uint8(255), warm.R)
	assert.Less(t, warm.B, warm.G)
	cool := Kelvin(10000)
	assert.Equal(t, uint8(255), cool.B)
	assert.Equal(t, uint8(0), Kelvin(1500).B)
}

func TestRandomIsSeeded(t *testing.T) {
	a := Random(rand.New(rand.NewPCG(1, 2)))
	b := Random(rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, a, b)
}

func TestHex(t *testing.T) {
	assert.Equal(t, "FF0A00", RGB{255, 10, 0}.Hex())
}
