package geometry

import (
	"math"

	"github.com/tidwall/rtree"
)

// Prepared is a polygon enlarged by a margin and indexed for repeated
// containment queries. A point is inside the enlarged polygon when it lies in
// the polygon or within margin of its boundary.
type Prepared struct {
	poly   Polygon
	margin float64
	bounds Box
	edges  rtree.RTreeG[int]
}

// Prepare indexes the polygon edges for queries with the given margin.
func Prepare(p Polygon, margin float64) *Prepared {
	pp := &Prepared{poly: p, margin: margin}
	b := p.Bounds()
	pp.bounds = Box{MinX: b.MinX - margin, MinY: b.MinY - margin, MaxX: b.MaxX + margin, MaxY: b.MaxY + margin}
	n := len(p)
	for i := range n {
		eb := BoundingBox([]Point{p[i], p[(i+1)%n]})
		pp.edges.Insert([2]float64{eb.MinX, eb.MinY}, [2]float64{eb.MaxX, eb.MaxY}, i)
	}
	return pp
}

// Polygon returns the prepared polygon without margin.
func (pp *Prepared) Polygon() Polygon { return pp.poly }

// Bounds returns the bounding box of the enlarged polygon.
func (pp *Prepared) Bounds() Box { return pp.bounds }

// CoversPoint reports whether pt lies in the enlarged polygon.
func (pp *Prepared) CoversPoint(pt Point) bool {
	if !pp.bounds.Contains(pt) {
		return false
	}
	if pp.poly.CoversPoint(pt) {
		return true
	}
	if pp.margin <= 0 {
		return false
	}
	n := len(pp.poly)
	near := false
	m := pp.margin
	pp.edges.Search([2]float64{pt.X - m, pt.Y - m}, [2]float64{pt.X + m, pt.Y + m},
		func(_, _ [2]float64, i int) bool {
			if pointSegmentDistance(pt, pp.poly[i], pp.poly[(i+1)%n]) <= m {
				near = true
				return false
			}
			return true
		})
	return near
}

// ContainsPolygon reports whether the ring o lies completely in the enlarged
// polygon. The ring is sampled along its edges at most one pixel apart.
func (pp *Prepared) ContainsPolygon(o Polygon) bool {
	if len(o) == 0 || len(pp.poly) < 3 {
		return false
	}
	ob := o.Bounds()
	if !pp.bounds.Contains(Point{X: ob.MinX, Y: ob.MinY}) || !pp.bounds.Contains(Point{X: ob.MaxX, Y: ob.MaxY}) {
		return false
	}
	n := len(o)
	for i := range n {
		a, b := o[i], o[(i+1)%n]
		steps := max(1, int(math.Ceil(dist(a, b))))
		for s := range steps {
			t := float64(s) / float64(steps)
			if !pp.CoversPoint(Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}) {
				return false
			}
		}
	}
	return true
}
