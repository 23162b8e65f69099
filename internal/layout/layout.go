// Package layout models the physical LED arrangement: an ordered point cloud
// with derived per-LED features and spatial queries. A Tree is read-only once
// built and may be shared freely.
package layout

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"

	"github.com/coreman2200/treelights/internal/spatial"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct{ Min, Max r3.Vector }

// Size returns the extent along each axis.
func (b Bounds) Size() r3.Vector { return b.Max.Sub(b.Min) }

// Options control how New derives features.
type Options struct {
	// Normalize rescales positions with Normalize before deriving features.
	Normalize bool
	// NeighborK is the adjacency size used by Neighbors (default 6).
	NeighborK int
}

// Tree is the LED point cloud plus precomputed features.
type Tree struct {
	raw     []r3.Vector
	pos     []r3.Vector
	bounds  Bounds
	center  r3.Vector
	heights []float64
	radii   []float64
	angles  []float64

	index     *index
	neighbors [][]int
}

// New builds a Tree from pts (index = LED index). pts is not retained.
func New(pts []r3.Vector, opt Options) *Tree {
	if opt.NeighborK <= 0 {
		opt.NeighborK = 6
	}
	t := &Tree{raw: append([]r3.Vector(nil), pts...)}
	if opt.Normalize {
		t.pos = Normalize(pts)
	} else {
		t.pos = append([]r3.Vector(nil), pts...)
	}
	t.bounds = boundsOf(t.pos)
	t.center = r3.Vector{
		X: (t.bounds.Min.X + t.bounds.Max.X) / 2,
		Y: (t.bounds.Min.Y + t.bounds.Max.Y) / 2,
	}

	n := len(t.pos)
	t.heights = make([]float64, n)
	t.radii = make([]float64, n)
	t.angles = make([]float64, n)
	zmin, zspan := t.bounds.Min.Z, t.bounds.Max.Z-t.bounds.Min.Z
	for i, p := range t.pos {
		if zspan > 0 {
			t.heights[i] = (p.Z - zmin) / zspan
		}
		dx, dy := p.X-t.center.X, p.Y-t.center.Y
		t.radii[i] = math.Hypot(dx, dy)
		a := math.Atan2(dy, dx)
		if a < 0 {
			a += 2 * math.Pi
		}
		t.angles[i] = a
	}

	t.index = newIndex(t.pos)
	k := opt.NeighborK
	if k > n-1 {
		k = n - 1
	}
	t.neighbors = make([][]int, n)
	for i, p := range t.pos {
		if k <= 0 {
			break
		}
		near := t.index.nearest(p, k+1)
		adj := make([]int, 0, k)
		for _, j := range near {
			if j != i && len(adj) < k {
				adj = append(adj, j)
			}
		}
		t.neighbors[i] = adj
	}
	return t
}

// Linear returns n points on a vertical unit line, used when no coordinate
// file is available.
func Linear(n int) []r3.Vector {
	out := make([]r3.Vector, n)
	for i := range out {
		if n > 1 {
			out[i].Z = float64(i) / float64(n-1)
		}
	}
	return out
}

// Normalize centers pts on the X/Y bounding-box centre, shifts the lowest
// point to Z=0 and scales uniformly so the largest bounding-box extent is 1.
// Z is the vertical axis. Applying it twice is a no-op.
func Normalize(pts []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(pts))
	if len(pts) == 0 {
		return out
	}
	b := boundsOf(pts)
	shift := r3.Vector{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: b.Min.Z,
	}
	size := b.Size()
	ext := math.Max(size.X, math.Max(size.Y, size.Z))
	scale := 1.0
	if ext > 0 {
		scale = 1 / ext
	}
	for i, p := range pts {
		out[i] = p.Sub(shift).Mul(scale)
	}
	return out
}

func boundsOf(pts []r3.Vector) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min = r3.Vector{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
		b.Max = r3.Vector{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	}
	return b
}

func (t *Tree) Len() int                { return len(t.pos) }
func (t *Tree) Position(i int) r3.Vector { return t.pos[i] }
func (t *Tree) Raw(i int) r3.Vector      { return t.raw[i] }
func (t *Tree) Bounds() Bounds           { return t.bounds }

// Center is the point on the vertical axis at Z=0 that radius and angle are
// measured around.
func (t *Tree) Center() r3.Vector { return t.center }

// Diagonal is the length of the bounding-box diagonal.
func (t *Tree) Diagonal() float64 { return t.bounds.Size().Norm() }

// The slice accessors return shared backing arrays; callers must not modify them.
func (t *Tree) Positions() []r3.Vector { return t.pos }
func (t *Tree) Heights() []float64     { return t.heights }
func (t *Tree) Radii() []float64       { return t.radii }
func (t *Tree) Angles() []float64      { return t.angles }

// Neighbors returns the precomputed nearest neighbours of LED i, closest first.
func (t *Tree) Neighbors(i int) []int {
	if i < 0 || i >= len(t.neighbors) {
		return nil
	}
	return t.neighbors[i]
}

// Distances returns the distance from p to every LED.
func (t *Tree) Distances(p r3.Vector) []float64 {
	out := make([]float64, len(t.pos))
	for i, q := range t.pos {
		out[i] = spatial.Distance(p, q)
	}
	return out
}

// Nearest returns the k LEDs closest to p by ascending distance, ties broken
// by ascending index. k is clamped to Len.
func (t *Tree) Nearest(p r3.Vector, k int) []int {
	return t.index.nearest(p, k)
}

// InSphere returns, in ascending index order, every LED within r of c.
func (t *Tree) InSphere(c r3.Vector, r float64) []int {
	var out []int
	r2 := r * r
	for i, p := range t.pos {
		if p.Sub(c).Norm2() <= r2 {
			out = append(out, i)
		}
	}
	return out
}

// InRange returns, in ascending index order, every LED whose coordinate on
// axis lies in [min, max].
func (t *Tree) InRange(axis spatial.Axis, min, max float64) []int {
	var out []int
	for i, p := range t.pos {
		if v := spatial.Component(p, axis); v >= min && v <= max {
			out = append(out, i)
		}
	}
	return out
}

// ByHeight returns LED indices sorted bottom to top, ties by index.
func (t *Tree) ByHeight() []int {
	idx := make([]int, len(t.pos))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return t.heights[idx[a]] < t.heights[idx[b]] })
	return idx
}
