package geometry

import "math"

// Direction is a reading direction of a line or region.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

func (d Direction) String() string {
	if d == RightToLeft {
		return "right-to-left"
	}
	return "left-to-right"
}

// WritingDirection infers the direction from the baseline's end points.
func (l Polyline) WritingDirection() Direction {
	if len(l) >= 2 && l[len(l)-1].X < l[0].X {
		return RightToLeft
	}
	return LeftToRight
}

// OneSidedBuffer returns one quadrilateral per baseline segment, offset by
// distance towards the writer's left for left-to-right text and towards the
// writer's right otherwise. With y pointing down both land above the baseline.
// Zero-length segments are skipped.
func OneSidedBuffer(l Polyline, distance float64) MultiPolygon {
	rtl := l.WritingDirection() == RightToLeft
	quads := make(MultiPolygon, 0, len(l))
	for i := 1; i < len(l); i++ {
		a, b := l[i-1], l[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := dy/length, -dx/length
		if rtl {
			nx, ny = -nx, -ny
		}
		off := Point{X: nx * distance, Y: ny * distance}
		quads = append(quads, Polygon{
			a,
			b,
			{X: b.X + off.X, Y: b.Y + off.Y},
			{X: a.X + off.X, Y: a.Y + off.Y},
		})
	}
	return quads
}
