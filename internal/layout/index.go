package layout

import (
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// ledPoint is a position tagged with its LED index so query results can be
// mapped back after the k-d tree reorders its input.
type ledPoint struct {
	p   r3.Vector
	idx int
}

func (a ledPoint) at(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return a.p.X
	case 1:
		return a.p.Y
	default:
		return a.p.Z
	}
}

func (a ledPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return a.at(d) - c.(ledPoint).at(d)
}
func (a ledPoint) Dims() int { return 3 }

// Distance is squared euclidean distance, as kdtree expects.
func (a ledPoint) Distance(c kdtree.Comparable) float64 {
	return a.p.Sub(c.(ledPoint).p).Norm2()
}

type ledPoints []ledPoint

func (p ledPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p ledPoints) Len() int                              { return len(p) }
func (p ledPoints) Pivot(d kdtree.Dim) int                { return plane{Dim: d, ledPoints: p}.Pivot() }
func (p ledPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type plane struct {
	kdtree.Dim
	ledPoints
}

func (p plane) Less(i, j int) bool { return p.ledPoints[i].at(p.Dim) < p.ledPoints[j].at(p.Dim) }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.ledPoints = p.ledPoints[start:end]
	return p
}
func (p plane) Swap(i, j int) { p.ledPoints[i], p.ledPoints[j] = p.ledPoints[j], p.ledPoints[i] }

type index struct {
	n    int
	tree *kdtree.Tree
}

func newIndex(pts []r3.Vector) *index {
	lp := make(ledPoints, len(pts))
	for i, p := range pts {
		lp[i] = ledPoint{p: p, idx: i}
	}
	return &index{n: len(pts), tree: kdtree.New(lp, false)}
}

// nearest finds the k-th smallest distance with an NKeeper, then collects every
// point at or inside that distance so equidistant candidates can be ordered by
// index rather than by tree traversal order.
func (x *index) nearest(q r3.Vector, k int) []int {
	if k > x.n {
		k = x.n
	}
	if k <= 0 {
		return nil
	}
	qp := ledPoint{p: q, idx: -1}

	nk := kdtree.NewNKeeper(k)
	x.tree.NearestSet(nk, qp)
	var radius float64
	for _, c := range nk.Heap {
		if c.Comparable != nil && c.Dist > radius {
			radius = c.Dist
		}
	}

	dk := kdtree.NewDistKeeper(radius)
	x.tree.NearestSet(dk, qp)
	found := make([]kdtree.ComparableDist, 0, len(dk.Heap))
	for _, c := range dk.Heap {
		if c.Comparable != nil {
			found = append(found, c)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Dist != found[j].Dist {
			return found[i].Dist < found[j].Dist
		}
		return found[i].Comparable.(ledPoint).idx < found[j].Comparable.(ledPoint).idx
	})
	if len(found) > k {
		found = found[:k]
	}
	out := make([]int, len(found))
	for i, c := range found {
		out[i] = c.Comparable.(ledPoint).idx
	}
	return out
}
