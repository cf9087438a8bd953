package geometry

import "math"

// orientation returns the sign of the turn a->b->c: 1 left, -1 right, 0 collinear.
func orientation(a, b, c Point) int {
	v := cross(a, b, c)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether p, known to be collinear with ab, lies within its extent.
func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// segmentsIntersect reports whether closed segments ab and cd share any point.
func segmentsIntersect(a, b, c, d Point) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)
	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(a, b, c) {
		return true
	}
	if o2 == 0 && onSegment(a, b, d) {
		return true
	}
	if o3 == 0 && onSegment(c, d, a) {
		return true
	}
	if o4 == 0 && onSegment(c, d, b) {
		return true
	}
	return false
}

// segmentIntersectionParams returns the parameters along ab where cd meets it.
// Collinear overlaps contribute the overlap end points.
func segmentIntersectionParams(a, b, c, d Point) []float64 {
	rx, ry := b.X-a.X, b.Y-a.Y
	sx, sy := d.X-c.X, d.Y-c.Y
	denom := rx*sy - ry*sx
	qx, qy := c.X-a.X, c.Y-a.Y
	if denom == 0 {
		if qx*ry-qy*rx != 0 {
			return nil
		}
		rr := rx*rx + ry*ry
		if rr == 0 {
			return nil
		}
		t0 := (qx*rx + qy*ry) / rr
		t1 := ((d.X-a.X)*rx + (d.Y-a.Y)*ry) / rr
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		lo, hi := math.Max(0, t0), math.Min(1, t1)
		if lo > hi {
			return nil
		}
		return []float64{lo, hi}
	}
	t := (qx*sy - qy*sx) / denom
	u := (qx*ry - qy*rx) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return nil
	}
	return []float64{t}
}

// closestOnSegment returns the point of segment ab nearest to p.
func closestOnSegment(p, a, b Point) Point {
	vx, vy := b.X-a.X, b.Y-a.Y
	l2 := vx*vx + vy*vy
	if l2 == 0 {
		return a
	}
	t := ((p.X-a.X)*vx + (p.Y-a.Y)*vy) / l2
	t = math.Max(0, math.Min(1, t))
	return Point{X: a.X + t*vx, Y: a.Y + t*vy}
}

// pointSegmentDistance returns the Euclidean distance from p to segment ab.
func pointSegmentDistance(p, a, b Point) float64 {
	return dist(p, closestOnSegment(p, a, b))
}

// perpendicularDistance is the distance from p to the infinite line through ab.
func perpendicularDistance(p, a, b Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	if vx == 0 && vy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	num := math.Abs((p.X-a.X)*vy - (p.Y-a.Y)*vx)
	return num / math.Hypot(vx, vy)
}

// segmentDistance returns the distance between ab and cd and the nearest pair
// of points, the first on ab and the second on cd.
func segmentDistance(a, b, c, d Point) (float64, Point, Point) {
	if segmentsIntersect(a, b, c, d) {
		if ts := segmentIntersectionParams(a, b, c, d); len(ts) > 0 {
			p := Point{X: a.X + ts[0]*(b.X-a.X), Y: a.Y + ts[0]*(b.Y-a.Y)}
			return 0, p, p
		}
	}
	best := math.Inf(1)
	var pa, pb Point
	try := func(d float64, x, y Point) {
		if d < best {
			best, pa, pb = d, x, y
		}
	}
	q := closestOnSegment(a, c, d)
	try(dist(a, q), a, q)
	q = closestOnSegment(b, c, d)
	try(dist(b, q), b, q)
	q = closestOnSegment(c, a, b)
	try(dist(c, q), q, c)
	q = closestOnSegment(d, a, b)
	try(dist(d, q), q, d)
	return best, pa, pb
}
