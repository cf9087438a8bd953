package geometry

import "math"

// Distance returns the Euclidean distance between two polygons. Overlapping,
// touching and nested polygons are at distance 0.
func Distance(p, o Polygon) float64 {
	d, _, _ := boundaryDistance(p, o)
	return d
}

// boundaryDistance returns the polygon distance together with the nearest
// pair of points. Ties keep the first edge pair in vertex order.
func boundaryDistance(p, o Polygon) (float64, Point, Point) {
	if len(p) == 0 || len(o) == 0 {
		return math.Inf(1), Point{}, Point{}
	}
	if len(o) >= 3 && o.CoversPoint(p[0]) {
		return 0, p[0], p[0]
	}
	if len(p) >= 3 && p.CoversPoint(o[0]) {
		return 0, o[0], o[0]
	}
	best := math.Inf(1)
	var pa, pb Point
	n, m := len(p), len(o)
	for i := range n {
		a, b := p[i], p[(i+1)%n]
		for j := range m {
			d, x, y := segmentDistance(a, b, o[j], o[(j+1)%m])
			if d < best {
				best, pa, pb = d, x, y
				if d == 0 {
					return 0, pa, pb
				}
			}
		}
	}
	return best, pa, pb
}
