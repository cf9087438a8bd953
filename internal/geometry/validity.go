package geometry

import "math"

// areaEpsilon is the area below which a ring is treated as degenerate.
const areaEpsilon = 1e-9

// IsValid reports whether the polygon is a simple ring with positive area:
// at least three distinct vertices, no crossing or touching between
// non-adjacent edges and no spikes folding adjacent edges back onto each other.
func (p Polygon) IsValid() bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for i := range n {
		if p[i] == p[(i+1)%n] {
			return false
		}
	}
	if p.Area() <= areaEpsilon {
		return false
	}
	for i := range n {
		a, b := p[i], p[(i+1)%n]
		// adjacent edge: only a collinear fold-back is invalid
		c := p[(i+2)%n]
		if orientation(a, b, c) == 0 && (c.X-b.X)*(a.X-b.X)+(c.Y-b.Y)*(a.Y-b.Y) > 0 {
			return false
		}
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsIntersect(a, b, p[j], p[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}

// MinimumClearance returns the smallest distance between a vertex and any edge
// not incident to it. Valid rings with large clearance are robust to rounding.
func (p Polygon) MinimumClearance() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	best := math.Inf(1)
	for i := range n {
		v := p[i]
		for j := range n {
			if j == i || (j+1)%n == i {
				continue
			}
			d := pointSegmentDistance(v, p[j], p[(j+1)%n])
			if d < best {
				best = d
			}
		}
	}
	return best
}
