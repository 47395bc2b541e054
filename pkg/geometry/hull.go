package geometry

// ConvexHull computes the convex hull of a set of points using Graham scan.
// Returns the points forming the convex hull in counter-clockwise order.
// Fewer than 3 input points are returned as-is; collinear inputs collapse to
// a degenerate hull with fewer than 3 vertices.
func ConvexHull(points []Point2D) []Point2D {
	if len(points) < 3 {
		out := make([]Point2D, len(points))
		copy(out, points)
		return out
	}

	// Make a copy to avoid modifying the input
	pts := make([]Point2D, len(points))
	copy(pts, points)

	// Find the point with lowest y (and leftmost if tied)
	lowest := 0
	for i := 1; i < len(pts); i++ {
		if pts[i].Y < pts[lowest].Y ||
			(pts[i].Y == pts[lowest].Y && pts[i].X < pts[lowest].X) {
			lowest = i
		}
	}

	// Swap to front
	pts[0], pts[lowest] = pts[lowest], pts[0]
	pivot := pts[0]

	// Sort by polar angle with respect to pivot
	sorted := make([]Point2D, len(pts)-1)
	copy(sorted, pts[1:])

	for i := 0; i < len(sorted)-1; i++ {
		for j := i + 1; j < len(sorted); j++ {
			cross := crossProduct(pivot, sorted[i], sorted[j])
			if cross < 0 || (cross == 0 && pivot.DistanceSq(sorted[i]) > pivot.DistanceSq(sorted[j])) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}

	// Build hull
	hull := []Point2D{pivot}
	for _, p := range sorted {
		for len(hull) > 1 && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// All input collinear: the scan degenerates to an edge.
	if len(hull) < 3 {
		return hull
	}
	return hull
}

// ShrinkHull moves every hull vertex toward the hull centroid by the given
// margin fraction: v' = c + (1-margin)*(v-c). A margin of 0 leaves the hull
// unchanged; 1 collapses it to the centroid.
func ShrinkHull(hull []Point2D, margin float64) []Point2D {
	if margin <= 0 || len(hull) == 0 {
		out := make([]Point2D, len(hull))
		copy(out, hull)
		return out
	}
	c := PointSet(hull).Centroid()
	out := make([]Point2D, len(hull))
	for i, v := range hull {
		out[i] = c.Add(v.Sub(c).Scale(1 - margin))
	}
	return out
}

// HullRegion is a convex hull prepared for repeated containment tests. The
// hull is fanned into triangles around its centroid; Contains runs a
// barycentric test per triangle.
type HullRegion struct {
	apex     Point2D
	vertices []Point2D
}

// NewHullRegion builds a HullRegion from convex hull vertices in CCW order.
// Returns nil for degenerate hulls (fewer than 3 vertices).
func NewHullRegion(hull []Point2D) *HullRegion {
	if len(hull) < 3 {
		return nil
	}
	verts := make([]Point2D, len(hull))
	copy(verts, hull)
	return &HullRegion{apex: PointSet(hull).Centroid(), vertices: verts}
}

// Contains reports whether p lies inside the hull (boundary inclusive, up to
// a small tolerance so that grid samples on the hull edge count as valid).
func (h *HullRegion) Contains(p Point2D) bool {
	const eps = 1e-9
	n := len(h.vertices)
	for i := 0; i < n; i++ {
		a := h.vertices[i]
		b := h.vertices[(i+1)%n]
		if pointInTriangle(p, h.apex, a, b, eps) {
			return true
		}
	}
	return false
}

// pointInTriangle tests containment via barycentric coordinates.
func pointInTriangle(p, a, b, c Point2D, eps float64) bool {
	d := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if d == 0 {
		return false
	}
	l1 := ((b.Y-c.Y)*(p.X-c.X) + (c.X-b.X)*(p.Y-c.Y)) / d
	l2 := ((c.Y-a.Y)*(p.X-c.X) + (a.X-c.X)*(p.Y-c.Y)) / d
	l3 := 1 - l1 - l2
	return l1 >= -eps && l2 >= -eps && l3 >= -eps
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
