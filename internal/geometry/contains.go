package geometry

import (
	"slices"
)

// boundaryEpsilon is the distance within which a point counts as on an edge.
const boundaryEpsilon = 1e-9

// OnBoundary reports whether pt lies on one of the polygon's edges.
func (p Polygon) OnBoundary(pt Point) bool {
	n := len(p)
	for i := range n {
		if pointSegmentDistance(pt, p[i], p[(i+1)%n]) <= boundaryEpsilon {
			return true
		}
	}
	return false
}

// ContainsPoint reports whether pt lies strictly inside the polygon (even-odd rule).
func (p Polygon) ContainsPoint(pt Point) bool {
	n := len(p)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// CoversPoint reports whether pt lies inside or on the boundary of the polygon.
func (p Polygon) CoversPoint(pt Point) bool {
	if len(p) < 3 {
		return false
	}
	return p.OnBoundary(pt) || p.ContainsPoint(pt)
}

// Covers reports whether every point of the polyline lies inside or on the
// boundary of the polygon. Each segment is split at its crossings with the
// polygon edges and every piece is tested at its midpoint.
func (p Polygon) Covers(l Polyline) bool {
	if len(p) < 3 || len(l) == 0 {
		return false
	}
	for _, pt := range l {
		if !p.CoversPoint(pt) {
			return false
		}
	}
	n := len(p)
	for i := 1; i < len(l); i++ {
		a, b := l[i-1], l[i]
		ts := []float64{0, 1}
		for j := range n {
			ts = append(ts, segmentIntersectionParams(a, b, p[j], p[(j+1)%n])...)
		}
		slices.Sort(ts)
		for k := 1; k < len(ts); k++ {
			if ts[k]-ts[k-1] <= 1e-12 {
				continue
			}
			t := (ts[k] + ts[k-1]) / 2
			mid := Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
			if !p.CoversPoint(mid) {
				return false
			}
		}
	}
	return true
}

// CoversPolygon reports whether the ring o lies inside or on the boundary of p.
func (p Polygon) CoversPolygon(o Polygon) bool {
	if len(o) == 0 {
		return false
	}
	closed := append(Polyline(o.Clone()), o[0])
	return p.Covers(closed)
}

// Intersects reports whether the polyline touches or enters the polygon.
func (p Polygon) Intersects(l Polyline) bool {
	if len(p) < 3 || len(l) == 0 {
		return false
	}
	for _, pt := range l {
		if p.CoversPoint(pt) {
			return true
		}
	}
	n := len(p)
	for i := 1; i < len(l); i++ {
		for j := range n {
			if segmentsIntersect(l[i-1], l[i], p[j], p[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}
