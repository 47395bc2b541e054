package lattice

import (
	"math"
	"sort"

	"stem-strain/pkg/geometry"
)

// ZoneAxis is a lattice translation vector averaged over many neighbor pairs,
// with the number of pairs that voted for it.
type ZoneAxis struct {
	Vector geometry.Point2D
	Count  int
}

// Sublattice holds one family of atom columns and the translation vectors
// relating them.
type Sublattice struct {
	Positions  geometry.PointSet
	Separation float64
	ZoneAxes   []ZoneAxis
}

// NewSublattice builds a sublattice from detected positions and the lattice
// separation they were found with.
func NewSublattice(positions geometry.PointSet, separation float64) *Sublattice {
	return &Sublattice{Positions: positions.Clone(), Separation: separation}
}

// zone-axis clustering tolerances, relative to a cluster's running average.
const (
	zoneAxisAngleTol  = 0.15 // radians
	zoneAxisLengthTol = 0.20 // fraction of cluster vector length
)

// ConstructZoneAxes derives the dominant lattice translation vectors from
// nearest-neighbor offsets. Offsets are folded into a half plane so that v and
// -v vote for the same axis, clustered by direction and length, and ranked by
// vote count with shorter vectors first on ties. At least two axes are
// required; otherwise ErrInsufficientZoneAxes is returned.
func (s *Sublattice) ConstructZoneAxes() error {
	if len(s.Positions) < 4 {
		return ErrInsufficientZoneAxes
	}

	idx := newBucketIndex(s.Positions, s.Separation)
	maxDist := 1.5 * s.Separation

	type cluster struct {
		sum   geometry.Point2D
		count int
	}
	var clusters []cluster

	for i, p := range s.Positions {
		for _, j := range idx.near(p, maxDist) {
			if j <= i {
				continue
			}
			v := s.Positions[j].Sub(p)
			d := v.Norm()
			if d == 0 || d > maxDist {
				continue
			}
			// Fold to the half plane y > 0, or y == 0 and x > 0.
			if v.Y < 0 || (v.Y == 0 && v.X < 0) {
				v = v.Scale(-1)
			}

			matched := false
			for k := range clusters {
				c := &clusters[k]
				mean := c.sum.Scale(1 / float64(c.count))
				dAng := angleDiff(v.Angle(), mean.Angle())
				if dAng > zoneAxisAngleTol {
					continue
				}
				if math.Abs(v.Norm()-mean.Norm()) > zoneAxisLengthTol*mean.Norm() {
					continue
				}
				c.sum = c.sum.Add(v)
				c.count++
				matched = true
				break
			}
			if !matched {
				clusters = append(clusters, cluster{sum: v, count: 1})
			}
		}
	}

	axes := make([]ZoneAxis, 0, len(clusters))
	for _, c := range clusters {
		axes = append(axes, ZoneAxis{
			Vector: c.sum.Scale(1 / float64(c.count)),
			Count:  c.count,
		})
	}
	sort.SliceStable(axes, func(i, j int) bool {
		if axes[i].Count != axes[j].Count {
			return axes[i].Count > axes[j].Count
		}
		return axes[i].Vector.Norm() < axes[j].Vector.Norm()
	})

	if len(axes) < 2 {
		return ErrInsufficientZoneAxes
	}
	s.ZoneAxes = axes
	return nil
}

// IdealSecondLattice derives the ideal positions of the interstitial
// sublattice from the two dominant zone axes: for every position p where the
// unit-cell corners p, p+a, p+b and p+a+b are all occupied, the ideal site is
// the centroid of the four occupied corners as actually detected. Requires
// ConstructZoneAxes to have found at least two axes.
func (s *Sublattice) IdealSecondLattice() (geometry.PointSet, error) {
	if len(s.ZoneAxes) < 2 {
		return nil, ErrInsufficientZoneAxes
	}
	a := s.ZoneAxes[0].Vector
	b := s.ZoneAxes[1].Vector

	idx := newBucketIndex(s.Positions, s.Separation)
	tol := 0.25 * math.Min(a.Norm(), b.Norm())

	var ideal geometry.PointSet
	for _, p := range s.Positions {
		pa, ok := idx.match(p.Add(a), tol)
		if !ok {
			continue
		}
		pb, ok := idx.match(p.Add(b), tol)
		if !ok {
			continue
		}
		pab, ok := idx.match(p.Add(a).Add(b), tol)
		if !ok {
			continue
		}
		cell := geometry.PointSet{p, pa, pb, pab}
		ideal = append(ideal, cell.Centroid())
	}
	return ideal, nil
}

// angleDiff returns the absolute angular difference between two directions,
// wrapped to [0, pi].
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// bucketIndex is a uniform-grid spatial index over a point set. Cell size is
// tied to the lattice separation so neighbor queries touch a handful of cells.
type bucketIndex struct {
	cell    float64
	buckets map[[2]int][]int
	points  geometry.PointSet
}

func newBucketIndex(points geometry.PointSet, separation float64) *bucketIndex {
	if separation <= 0 {
		separation = 1
	}
	idx := &bucketIndex{
		cell:    separation,
		buckets: make(map[[2]int][]int),
		points:  points,
	}
	for i, p := range points {
		k := idx.key(p)
		idx.buckets[k] = append(idx.buckets[k], i)
	}
	return idx
}

func (idx *bucketIndex) key(p geometry.Point2D) [2]int {
	return [2]int{int(math.Floor(p.X / idx.cell)), int(math.Floor(p.Y / idx.cell))}
}

// near returns indices of all points within radius of q, in ascending index
// order within each bucket scan.
func (idx *bucketIndex) near(q geometry.Point2D, radius float64) []int {
	span := int(math.Ceil(radius / idx.cell))
	center := idx.key(q)
	r2 := radius * radius

	var out []int
	for by := center[1] - span; by <= center[1]+span; by++ {
		for bx := center[0] - span; bx <= center[0]+span; bx++ {
			for _, i := range idx.buckets[[2]int{bx, by}] {
				if q.DistanceSq(idx.points[i]) <= r2 {
					out = append(out, i)
				}
			}
		}
	}
	return out
}

// match finds the indexed point closest to q within tol and reports whether
// one exists.
func (idx *bucketIndex) match(q geometry.Point2D, tol float64) (geometry.Point2D, bool) {
	best := -1
	bestD := tol * tol
	for _, i := range idx.near(q, tol) {
		d := q.DistanceSq(idx.points[i])
		if d <= bestD {
			bestD = d
			best = i
		}
	}
	if best < 0 {
		return geometry.Point2D{}, false
	}
	return idx.points[best], true
}
