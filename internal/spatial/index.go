// Package spatial provides a 2D kd-tree index over point sets, used for
// nearest-site matching, nearest-sample fill and radius queries.
package spatial

import (
	"container/heap"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"stem-strain/pkg/geometry"
)

// Index is an immutable kd-tree over a point set. Query results refer to
// positions in the original set by index.
type Index struct {
	tree   *kdtree.Tree
	points geometry.PointSet
}

// NewIndex builds an index over a copy of the given points.
func NewIndex(points geometry.PointSet) *Index {
	pts := make(indexedPoints, len(points))
	for i, p := range points {
		pts[i] = indexedPoint{Point2D: p, index: i}
	}
	return &Index{tree: kdtree.New(pts, true), points: points.Clone()}
}

// Len returns the number of indexed points.
func (ix *Index) Len() int { return len(ix.points) }

// At returns the indexed point at position i.
func (ix *Index) At(i int) geometry.Point2D { return ix.points[i] }

// Nearest returns the index of the point closest to q and the squared
// distance to it.
func (ix *Index) Nearest(q geometry.Point2D) (int, float64) {
	got, dist := ix.tree.Nearest(indexedPoint{Point2D: q})
	return got.(indexedPoint).index, dist
}

// NearestLowestIndex returns the index of the point closest to q; among
// equidistant candidates the lowest index wins, so repeated runs agree.
func (ix *Index) NearestLowestIndex(q geometry.Point2D) int {
	query := indexedPoint{Point2D: q}
	got, dist := ix.tree.Nearest(query)
	best := got.(indexedPoint).index

	keeper := kdtree.NewDistKeeper(dist)
	ix.tree.NearestSet(keeper, query)
	for keeper.Len() > 0 {
		item := heap.Pop(keeper).(kdtree.ComparableDist)
		if item.Comparable == nil || item.Dist > dist {
			continue
		}
		if i := item.Comparable.(indexedPoint).index; i < best {
			best = i
		}
	}
	return best
}

// Within returns the indices of all points within radius of q, ascending.
func (ix *Index) Within(q geometry.Point2D, radius float64) []int {
	keeper := kdtree.NewDistKeeper(radius * radius)
	ix.tree.NearestSet(keeper, indexedPoint{Point2D: q})

	var out []int
	for keeper.Len() > 0 {
		item := heap.Pop(keeper).(kdtree.ComparableDist)
		if item.Comparable == nil {
			continue
		}
		out = append(out, item.Comparable.(indexedPoint).index)
	}
	sort.Ints(out)
	return out
}

// indexedPoint carries a point's position in the original set through the
// tree.
type indexedPoint struct {
	geometry.Point2D
	index int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	switch d {
	case 0:
		return p.X - q.X
	default:
		return p.Y - q.Y
	}
}

func (p indexedPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, which is monotone in the
// true distance and cheaper.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// indexedPoints satisfies kdtree.Interface.
type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p indexedPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{indexedPoints: p, Dim: d}, kdtree.MedianOfRandoms(pointPlane{indexedPoints: p, Dim: d}, 100))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer over one axis.
type pointPlane struct {
	indexedPoints
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.indexedPoints[i].X < p.indexedPoints[j].X
	default:
		return p.indexedPoints[i].Y < p.indexedPoints[j].Y
	}
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{indexedPoints: p.indexedPoints[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}
