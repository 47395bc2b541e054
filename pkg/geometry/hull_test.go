package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvexHullSquare(t *testing.T) {
	points := []Point2D{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{5, 5}, {3, 7}, {6, 2}, // interior points must not appear
	}

	hull := ConvexHull(points)
	require.Len(t, hull, 4)
	for _, v := range hull {
		assert.True(t, v.X == 0 || v.X == 10)
		assert.True(t, v.Y == 0 || v.Y == 10)
	}
}

func TestConvexHullCollinear(t *testing.T) {
	points := []Point2D{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	hull := ConvexHull(points)
	assert.Less(t, len(hull), 3)
}

func TestShrinkHull(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	same := ShrinkHull(square, 0)
	assert.Equal(t, square, same)

	half := ShrinkHull(square, 0.5)
	// Centroid is (5,5); every vertex moves halfway toward it.
	assert.InDelta(t, 2.5, half[0].X, 1e-12)
	assert.InDelta(t, 2.5, half[0].Y, 1e-12)
	assert.InDelta(t, 7.5, half[2].X, 1e-12)
	assert.InDelta(t, 7.5, half[2].Y, 1e-12)
}

func TestHullRegionContains(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	region := NewHullRegion(ConvexHull(square))
	require.NotNil(t, region)

	assert.True(t, region.Contains(Point2D{5, 5}))
	assert.True(t, region.Contains(Point2D{0.001, 0.001}))
	assert.True(t, region.Contains(Point2D{5, 0})) // boundary counts as inside
	assert.False(t, region.Contains(Point2D{10.5, 5}))
	assert.False(t, region.Contains(Point2D{-0.5, -0.5}))
	assert.False(t, region.Contains(Point2D{5, 11}))
}

func TestHullRegionDegenerate(t *testing.T) {
	assert.Nil(t, NewHullRegion([]Point2D{{0, 0}, {1, 1}}))
}

func TestPointSetCentroidBounds(t *testing.T) {
	ps := PointSet{{0, 0}, {4, 0}, {4, 2}, {0, 2}}
	c := ps.Centroid()
	assert.Equal(t, Point2D{2, 1}, c)

	b := ps.Bounds()
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 4, Height: 2}, b)
	assert.True(t, b.Contains(Point2D{3, 1}))
	assert.False(t, b.Contains(Point2D{5, 1}))
}
