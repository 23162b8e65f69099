// Package colors converts between color spaces and produces 8-bit RGB pixels.
package colors

import (
	"fmt"
	"math"
	"math/rand/v2"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is one 8-bit-per-channel pixel.
type RGB struct{ R, G, B uint8 }

var (
	Black = RGB{}
	White = RGB{255, 255, 255}
	Red   = RGB{R: 255}
	Green = RGB{G: 255}
	Blue  = RGB{B: 255}
)

// Hex formats c as RRGGBB, the form WLED expects in segment arrays.
func (c RGB) Hex() string { return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B) }

// Add is a per-channel saturating add.
func (c RGB) Add(o RGB) RGB {
	return RGB{sat(int(c.R) + int(o.R)), sat(int(c.G) + int(o.G)), sat(int(c.B) + int(o.B))}
}

// Colorful converts c to a go-colorful color in [0,1].
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// FromColorful clamps and quantizes a go-colorful color.
func FromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

// HSV maps hue, saturation and value, each in [0,1], to RGB. Hue wraps.
func HSV(h, s, v float64) RGB {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	return FromColorful(colorful.Hsv(h*360, clamp01(s), clamp01(v)))
}

// Wheel walks a 256-step red -> green -> blue rainbow.
func Wheel(pos uint8) RGB {
	p := 255 - int(pos)
	switch {
	case p < 85:
		return RGB{uint8(255 - p*3), 0, uint8(p * 3)}
	case p < 170:
		p -= 85
		return RGB{0, uint8(p * 3), uint8(255 - p*3)}
	default:
		p -= 170
		return RGB{uint8(p * 3), uint8(255 - p*3), 0}
	}
}

// Blend mixes a toward b; ratio 0 is all a, 1 is all b. Linear in sRGB.
func Blend(a, b RGB, ratio float64) RGB {
	ratio = clamp01(ratio)
	return FromColorful(a.Colorful().BlendRgb(b.Colorful(), ratio))
}

// Dim scales every channel by factor (clamped to [0,1]), truncating.
func Dim(c RGB, factor float64) RGB {
	f := clamp01(factor)
	return RGB{uint8(float64(c.R) * f), uint8(float64(c.G) * f), uint8(float64(c.B) * f)}
}

// Kelvin approximates the color of a black body at the given temperature,
// valid for roughly 1000K to 40000K.
func Kelvin(k float64) RGB {
	t := k / 100
	var r, g, b float64
	if t <= 66 {
		r = 255
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}
	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	}
	return RGB{clampByte(r), clampByte(g), clampByte(b)}
}

// Random draws a uniformly random color from src.
func Random(src *rand.Rand) RGB {
	v := src.Uint32()
	return RGB{uint8(v), uint8(v >> 8), uint8(v >> 16)}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampByte(x float64) uint8 {
	if x <= 0 || math.IsNaN(x) {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x)
}

func sat(v int) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
