package geometry

import (
	"cmp"
	"math"
	"slices"
)

// SimplifyRing reduces the number of vertices of a closed ring using the
// Douglas–Peucker algorithm with the given tolerance. The ring is split at its
// first vertex and the vertex farthest from it, and each chain is simplified
// separately. The result never has fewer than three vertices.
func SimplifyRing(ring Polygon, tolerance float64) Polygon {
	out, _ := simplifyRing(ring, tolerance)
	return out
}

// simplifyRing also returns the smallest tolerance that would change the
// result, or +Inf when no larger tolerance can drop another vertex.
func simplifyRing(ring Polygon, tolerance float64) (Polygon, float64) {
	n := len(ring)
	if n <= 3 || tolerance <= 0 {
		return ring.Clone(), math.Inf(1)
	}
	far := 0
	farDist := -1.0
	for i := 1; i < n; i++ {
		if d := dist(ring[0], ring[i]); d > farDist {
			far, farDist = i, d
		}
	}
	if farDist == 0 {
		return ring.Clone(), math.Inf(1)
	}

	// closed index space: position n is ring[0] again
	at := func(i int) Point { return ring[i%n] }
	keep := make([]bool, n+1)
	keep[0], keep[far], keep[n] = true, true, true
	next := math.Inf(1)
	dpSimplify(at, 0, far, tolerance, keep, &next)
	dpSimplify(at, far, n, tolerance, keep, &next)

	out := make(Polygon, 0, n)
	for i := range n {
		if keep[i] {
			out = append(out, ring[i])
		}
	}
	if len(out) >= 3 {
		return out, next
	}

	// restore the vertex farthest from the anchor chord
	extra := -1
	extraDist := -1.0
	for i := 1; i < n; i++ {
		if i == far {
			continue
		}
		if d := perpendicularDistance(ring[i], ring[0], ring[far]); d > extraDist {
			extra, extraDist = i, d
		}
	}
	out = out[:0]
	for i := range n {
		if i == 0 || i == far || i == extra {
			out = append(out, ring[i])
		}
	}
	return out, math.Inf(1)
}

// dpSimplify marks kept vertices between start and end and lowers next to the
// smallest distance that kept a vertex.
func dpSimplify(at func(int) Point, start, end int, eps float64, keep []bool, next *float64) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	index := -1
	a := at(start)
	b := at(end)
	for i := start + 1; i < end; i++ {
		d := perpendicularDistance(at(i), a, b)
		if d > maxDist {
			maxDist = d
			index = i
		}
	}
	if maxDist > eps {
		if maxDist < *next {
			*next = maxDist
		}
		dpSimplify(at, start, index, eps, keep, next)
		keep[index] = true
		dpSimplify(at, index, end, eps, keep, next)
	}
}

// ConvexHull computes the convex hull of a set of points using the
// monotone chain algorithm. Returns the hull without duplicating the first
// point at the end.
func ConvexHull(pts []Point) Polygon {
	n := len(pts)
	if n <= 1 {
		return append(Polygon(nil), pts...)
	}
	p := make([]Point, n)
	copy(p, pts)
	sortPoints(p)
	p = removeDuplicatePoints(p)
	if len(p) <= 2 {
		return append(Polygon(nil), p...)
	}
	lower := buildHalfHull(p, 1)
	upper := buildHalfHull(p, -1)
	hull := make(Polygon, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

func removeDuplicatePoints(p []Point) []Point {
	q := p[:0]
	for i, pt := range p {
		if i == 0 || pt != q[len(q)-1] {
			q = append(q, pt)
		}
	}
	return q
}

// buildHalfHull walks forwards (step 1) for the lower hull and backwards (-1)
// for the upper hull.
func buildHalfHull(p []Point, step int) []Point {
	half := make([]Point, 0, len(p))
	i, end := 0, len(p)
	if step < 0 {
		i, end = len(p)-1, -1
	}
	for ; i != end; i += step {
		pt := p[i]
		for len(half) >= 2 && cross(half[len(half)-2], half[len(half)-1], pt) <= 0 {
			half = half[:len(half)-1]
		}
		half = append(half, pt)
	}
	return half
}

func sortPoints(p []Point) {
	slices.SortFunc(p, func(a, b Point) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})
}
