package render

import (
	"math"

	"github.com/coreman2200/treelights/internal/colors"
	"github.com/coreman2200/treelights/internal/layout"
)

// Base carries the state every effect shares: the pixel buffer, the time
// accumulator and the lifecycle. Embed it and implement Name and Update.
type Base struct {
	pixels  []colors.RGB
	scratch []colors.RGB
	tree    *layout.Tree
	fps     int

	elapsed float64
	frame   uint64
	state   State
}

// NewBase sizes the pixel buffer from p.LEDCount, or from the tree when the
// count is unset.
func NewBase(p Params) Base {
	n := p.LEDCount
	if n <= 0 && p.Tree != nil {
		n = p.Tree.Len()
	}
	fps := p.FPS
	if fps <= 0 {
		fps = 30
	}
	return Base{
		pixels:  make([]colors.RGB, n),
		scratch: make([]colors.RGB, n),
		tree:    p.Tree,
		fps:     fps,
	}
}

func (b *Base) Len() int             { return len(b.pixels) }
func (b *Base) Tree() *layout.Tree   { return b.tree }
func (b *Base) FPS() int             { return b.fps }
func (b *Base) Pixels() []colors.RGB { return b.pixels }
func (b *Base) State() State         { return b.state }
func (b *Base) Running() bool        { return b.state == Running }

// Time is seconds accumulated since Start.
func (b *Base) Time() float64 { return b.elapsed }

// Frame counts Advance calls since Start.
func (b *Base) Frame() uint64 { return b.frame }

// Progress returns (Time mod d)/d in [0,1). d <= 0 yields 0.
func (b *Base) Progress(d float64) float64 {
	if d <= 0 {
		return 0
	}
	p := math.Mod(b.elapsed, d) / d
	if p < 0 {
		p++
	}
	if p >= 1 {
		p = 0
	}
	return p
}

// Cycle is how far through its current cycle a motion running at rate cycles
// per second is, in [0,1). A negative rate runs backwards; zero holds at 0.
func (b *Base) Cycle(rate float64) float64 {
	if rate == 0 {
		return 0
	}
	p := b.Progress(1 / math.Abs(rate))
	if rate < 0 && p > 0 {
		p = 1 - p
	}
	return p
}

// Start resets time and moves a created effect to Running.
func (b *Base) Start() {
	if b.state != Created {
		return
	}
	b.elapsed = 0
	b.frame = 0
	b.state = Running
}

// Stop ends a running effect on interrupt.
func (b *Base) Stop() {
	if b.state == Running {
		b.state = Stopped
	}
}

// Complete ends a running effect on duration expiry.
func (b *Base) Complete() {
	if b.state == Running {
		b.state = Completed
	}
}

// Advance moves the accumulator forward by dt seconds. Negative dt is ignored.
func (b *Base) Advance(dt float64) {
	if b.state != Running {
		return
	}
	if dt > 0 {
		b.elapsed += dt
	}
	b.frame++
}

// SetPixel ignores out-of-range indices.
func (b *Base) SetPixel(i int, c colors.RGB) {
	if i >= 0 && i < len(b.pixels) {
		b.pixels[i] = c
	}
}

func (b *Base) SetAll(c colors.RGB) {
	for i := range b.pixels {
		b.pixels[i] = c
	}
}

func (b *Base) Clear() { b.SetAll(colors.Black) }

// FadeToBlack scales every pixel by 1-f.
func (b *Base) FadeToBlack(f float64) {
	for i, c := range b.pixels {
		b.pixels[i] = colors.Dim(c, 1-f)
	}
}

// Blur smooths each pixel with its neighbours and mixes the result back in by
// amount. With a tree attached the neighbours are its spatial adjacency
// (centre weight 1/2, neighbours share the rest); otherwise they are the
// previous and next index with weights 1/4, 1/2, 1/4 and the ends unchanged.
func (b *Base) Blur(amount float64) {
	if amount <= 0 || len(b.pixels) < 2 {
		return
	}
	if amount > 1 {
		amount = 1
	}
	src := b.scratch
	copy(src, b.pixels)
	useTree := b.tree != nil && b.tree.Len() == len(b.pixels)
	for i := range src {
		var r, g, bl float64
		if useTree {
			adj := b.tree.Neighbors(i)
			if len(adj) == 0 {
				continue
			}
			r, g, bl = 0.5*float64(src[i].R), 0.5*float64(src[i].G), 0.5*float64(src[i].B)
			w := 0.5 / float64(len(adj))
			for _, j := range adj {
				r += w * float64(src[j].R)
				g += w * float64(src[j].G)
				bl += w * float64(src[j].B)
			}
		} else {
			if i == 0 || i == len(src)-1 {
				continue
			}
			p, c, n := src[i-1], src[i], src[i+1]
			r = 0.25*float64(p.R) + 0.5*float64(c.R) + 0.25*float64(n.R)
			g = 0.25*float64(p.G) + 0.5*float64(c.G) + 0.25*float64(n.G)
			bl = 0.25*float64(p.B) + 0.5*float64(c.B) + 0.25*float64(n.B)
		}
		c := src[i]
		b.pixels[i] = colors.RGB{
			R: mixByte(c.R, r, amount),
			G: mixByte(c.G, g, amount),
			B: mixByte(c.B, bl, amount),
		}
	}
}

func mixByte(orig uint8, blurred, amount float64) uint8 {
	v := float64(orig)*(1-amount) + blurred*amount
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}

// Falloff is a squared linear ramp: 1 at d=0 falling to 0 at d=width.
func Falloff(d, width float64) float64 {
	if width <= 0 || d >= width {
		return 0
	}
	v := 1 - d/width
	return v * v
}
