package geometry

import (
	"math"
)

// Point represents a 2D coordinate in the page frame.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Polygon is an implicitly closed ring of points. The closing point is not
// repeated.
type Polygon []Point

// Polyline is an open sequence of points such as a baseline.
type Polyline []Point

// Box represents an axis-aligned bounding box in float coordinates.
type Box struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewBox constructs a Box from min/max coordinates ensuring ordering.
func NewBox(x1, y1, x2, y2 float64) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Box{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Polygon returns the box as a four-vertex ring.
func (b Box) Polygon() Polygon {
	return Polygon{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Union returns the smallest box covering both boxes.
func (b Box) Union(o Box) Box {
	return Box{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// BoundingBox computes the axis-aligned bounding box of points.
func BoundingBox(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Bounds returns the bounding box of the polygon.
func (p Polygon) Bounds() Box { return BoundingBox(p) }

// Bounds returns the bounding box of the polyline.
func (l Polyline) Bounds() Box { return BoundingBox(l) }

// Clone returns a copy of the polygon.
func (p Polygon) Clone() Polygon { return append(Polygon(nil), p...) }

// Clone returns a copy of the polyline.
func (l Polyline) Clone() Polyline { return append(Polyline(nil), l...) }

// Equal reports whether both polygons have identical vertices in the same order.
func (p Polygon) Equal(o Polygon) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Length returns the total length of the polyline.
func (l Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(l); i++ {
		total += dist(l[i-1], l[i])
	}
	return total
}

// SignedArea returns the shoelace area. The sign depends on vertex order.
func (p Polygon) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := range n {
		a := p[i]
		b := p[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Area returns the absolute shoelace area.
func (p Polygon) Area() float64 { return math.Abs(p.SignedArea()) }

// Round snaps all vertices to integer pixel coordinates.
func (p Polygon) Round() Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = Point{X: math.Round(pt.X), Y: math.Round(pt.Y)}
	}
	return out
}

// Round snaps all points to integer pixel coordinates.
func (l Polyline) Round() Polyline {
	return Polyline(Polygon(l).Round())
}

// dedupe drops consecutive duplicates, including a repeated closing point.
func dedupe(p Polygon) Polygon {
	out := make(Polygon, 0, len(p))
	for _, pt := range p {
		if len(out) > 0 && out[len(out)-1] == pt {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// Frame maps coordinates of a cropped and resampled image back to the page.
// Page coordinates are image coordinates divided by Zoom plus the offset.
type Frame struct {
	OffsetX float64
	OffsetY float64
	Zoom    float64
}

// IdentityFrame is the frame of an uncropped page image at its native size.
var IdentityFrame = Frame{Zoom: 1}

// ToPage converts a point from the image frame to the page frame.
func (f Frame) ToPage(p Point) Point {
	z := f.Zoom
	if z == 0 {
		z = 1
	}
	return Point{X: p.X/z + f.OffsetX, Y: p.Y/z + f.OffsetY}
}

// PolygonToPage converts and rounds a polygon into the page frame.
func (f Frame) PolygonToPage(p Polygon) Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = f.ToPage(pt)
	}
	return out.Round()
}

// PolylineToPage converts and rounds a polyline into the page frame.
func (f Frame) PolylineToPage(l Polyline) Polyline {
	return Polyline(f.PolygonToPage(Polygon(l)))
}

func dist(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
