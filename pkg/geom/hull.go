// Package geom holds the plane geometry the renderer and layout lean on:
// convex hulls, hull padding, containment checks, and hit-test distances.
package geom

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// ConvexHull computes the convex hull of pts using the monotone-chain
// construction: O(n log n) for the sort, linear for the two chains. The
// result is in counter-clockwise order with no repeated first/last point.
// Fewer than three input points are returned as-is (sorted).
func ConvexHull(pts []r2.Vec) []r2.Vec {
	if len(pts) == 0 {
		return nil
	}

	sorted := make([]r2.Vec, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	if len(sorted) < 3 {
		return sorted
	}

	// Lower chain then upper chain; collinear points are dropped.
	hull := make([]r2.Vec, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && Cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && Cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// Cross returns the z component of (b-a) x (c-a). Positive means the turn
// a->b->c is counter-clockwise.
func Cross(a, b, c r2.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Centroid returns the arithmetic mean of pts, or the zero vector for an
// empty slice.
func Centroid(pts []r2.Vec) r2.Vec {
	if len(pts) == 0 {
		return r2.Vec{}
	}
	var c r2.Vec
	for _, p := range pts {
		c = r2.Add(c, p)
	}
	return r2.Scale(1/float64(len(pts)), c)
}

// ExpandFromCentroid moves every polygon vertex outward from the polygon's
// centroid by pad. Vertices coincident with the centroid are left in place.
func ExpandFromCentroid(poly []r2.Vec, pad float64) []r2.Vec {
	c := Centroid(poly)
	out := make([]r2.Vec, len(poly))
	for i, p := range poly {
		d := r2.Sub(p, c)
		n := r2.Norm(d)
		if n == 0 {
			out[i] = p
			continue
		}
		out[i] = r2.Add(p, r2.Scale(pad/n, d))
	}
	return out
}

// ContainsPoint reports whether p lies on or inside the convex polygon poly
// (counter-clockwise order). Degenerate polygons contain nothing.
func ContainsPoint(poly []r2.Vec, p r2.Vec) bool {
	if len(poly) < 3 {
		return false
	}
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		if Cross(a, b, p) < -1e-9 {
			return false
		}
	}
	return true
}

// DistSq returns the squared distance between two points. Hit testing
// compares it against squared radii to avoid the sqrt.
func DistSq(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}
