// Package spatial holds stateless geometry helpers shared by the tree model and
// the effects. All points are r3.Vector in the tree's coordinate space.
package spatial

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// Axis selects one cartesian component.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// Component returns the value of p along a.
func Component(p r3.Vector, a Axis) float64 {
	switch a {
	case X:
		return p.X
	case Y:
		return p.Y
	default:
		return p.Z
	}
}

// Distance is the euclidean distance between two points.
func Distance(a, b r3.Vector) float64 {
	return a.Sub(b).Norm()
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func Normalize(v r3.Vector) r3.Vector {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Mul(1 / n)
}

// Rotate rotates p around axis (through the origin) by angle radians using
// Rodrigues' formula. axis need not be unit length.
func Rotate(p, axis r3.Vector, angle float64) r3.Vector {
	k := Normalize(axis)
	cos, sin := math.Cos(angle), math.Sin(angle)
	return p.Mul(cos).
		Add(k.Cross(p).Mul(sin)).
		Add(k.Mul(k.Dot(p) * (1 - cos)))
}

// PointLineDistance is the perpendicular distance from p to the infinite line
// through linePoint with direction dir.
func PointLineDistance(p, linePoint, dir r3.Vector) float64 {
	d := Normalize(dir)
	v := p.Sub(linePoint)
	return v.Sub(d.Mul(v.Dot(d))).Norm()
}

// FromSpherical converts radius r, azimuth theta (around Z) and polar angle phi
// (from +Z) to cartesian.
func FromSpherical(r, theta, phi float64) r3.Vector {
	return r3.Vector{
		X: r * math.Sin(phi) * math.Cos(theta),
		Y: r * math.Sin(phi) * math.Sin(theta),
		Z: r * math.Cos(phi),
	}
}

// ToSpherical is the inverse of FromSpherical. theta is in (-π, π].
func ToSpherical(p r3.Vector) (r, theta, phi float64) {
	r = p.Norm()
	theta = math.Atan2(p.Y, p.X)
	if r > 0 {
		phi = math.Acos(p.Z / r)
	}
	return r, theta, phi
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b r3.Vector, t float64) r3.Vector {
	return a.Add(b.Sub(a).Mul(t))
}

// NearestNeighbors returns up to k indices of pts closest to pts[index],
// excluding index itself, ordered by distance then index. It is a brute force
// scan intended for small sets and for cross-checking the tree index.
func NearestNeighbors(pts []r3.Vector, index, k int) []int {
	if index < 0 || index >= len(pts) {
		return nil
	}
	out := NearestTo(pts, pts[index], len(pts))
	res := make([]int, 0, k)
	for _, i := range out {
		if i == index {
			continue
		}
		if len(res) == k {
			break
		}
		res = append(res, i)
	}
	return res
}

// NearestTo returns the k indices of pts closest to q, ties broken by
// ascending index.
func NearestTo(pts []r3.Vector, q r3.Vector, k int) []int {
	if k > len(pts) {
		k = len(pts)
	}
	if k <= 0 {
		return nil
	}
	idx := make([]int, len(pts))
	d := make([]float64, len(pts))
	for i, p := range pts {
		idx[i] = i
		d[i] = p.Sub(q).Norm2()
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return d[idx[a]] < d[idx[b]]
	})
	return idx[:k]
}

// BoundingSphere returns the centroid of pts and the largest distance from it.
func BoundingSphere(pts []r3.Vector) (r3.Vector, float64) {
	if len(pts) == 0 {
		return r3.Vector{}, 0
	}
	var c r3.Vector
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Mul(1 / float64(len(pts)))
	var r float64
	for _, p := range pts {
		r = math.Max(r, p.Sub(c).Norm())
	}
	return c, r
}

// AngleDiff returns the absolute shortest angular distance between a and b,
// both in radians, as a value in [0, π].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
