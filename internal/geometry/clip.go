package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
)

// ClipPolygon clips the ring to the box. Polygons inside the box are returned
// unchanged; a polygon entirely outside yields nil.
func ClipPolygon(p Polygon, b Box) Polygon {
	if len(p) == 0 {
		return nil
	}
	pb := p.Bounds()
	if b.Contains(Point{X: pb.MinX, Y: pb.MinY}) && b.Contains(Point{X: pb.MaxX, Y: pb.MaxY}) {
		return p
	}
	ring := make(orb.Ring, 0, len(p)+1)
	for _, pt := range p {
		ring = append(ring, orb.Point{pt.X, pt.Y})
	}
	ring = append(ring, ring[0])
	clipped := clip.Ring(toBound(b), ring)
	out := make(Polygon, 0, len(clipped))
	for _, pt := range clipped {
		out = append(out, Point{X: pt[0], Y: pt[1]})
	}
	out = dedupe(out)
	if len(out) < 3 {
		return nil
	}
	return out
}

// ClipPolyline clips the polyline to the box and keeps the longest surviving
// piece. A polyline entirely outside yields nil.
func ClipPolyline(l Polyline, b Box) Polyline {
	if len(l) == 0 {
		return nil
	}
	lb := l.Bounds()
	if b.Contains(Point{X: lb.MinX, Y: lb.MinY}) && b.Contains(Point{X: lb.MaxX, Y: lb.MaxY}) {
		return l
	}
	ls := make(orb.LineString, 0, len(l))
	for _, pt := range l {
		ls = append(ls, orb.Point{pt.X, pt.Y})
	}
	var best Polyline
	bestLen := -1.0
	for _, piece := range clip.LineString(toBound(b), ls) {
		pl := make(Polyline, 0, len(piece))
		for _, pt := range piece {
			pl = append(pl, Point{X: pt[0], Y: pt[1]})
		}
		if length := pl.Length(); len(pl) >= 2 && length > bestLen {
			best, bestLen = pl, length
		}
	}
	return best
}

func toBound(b Box) orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinX, b.MinY}, Max: orb.Point{b.MaxX, b.MaxY}}
}
