package geometry

import (
	"errors"
	"fmt"
	"math"
	"slices"

	polyclip "github.com/ctessum/polyclip-go"
)

// capsuleSegments is the number of segments per half circle of a bridge end.
// Two segments give the same coarse caps as a buffer of resolution one.
const capsuleSegments = 2

var errInvalidRing = errors.New("merged ring is not simple")

// capsule approximates the points within r of segment ab. A zero-length
// segment yields a diamond around a.
func capsule(a, b Point, r float64) Polygon {
	dx, dy := b.X-a.X, b.Y-a.Y
	ux, uy := 1.0, 0.0
	if length := math.Hypot(dx, dy); length > 0 {
		ux, uy = dx/length, dy/length
	}
	vx, vy := -uy, ux
	ring := make(Polygon, 0, 2*capsuleSegments+2)
	arc := func(c Point, sign float64) {
		for k := 0; k <= capsuleSegments; k++ {
			sin, cos := math.Sincos(float64(k) * math.Pi / capsuleSegments)
			ring = append(ring, Point{
				X: c.X + sign*r*(vx*cos+ux*sin),
				Y: c.Y + sign*r*(vy*cos+uy*sin),
			})
		}
	}
	arc(b, 1)
	arc(a, -1)
	return dedupe(ring)
}

func toPolyclip(p Polygon) polyclip.Polygon {
	c := make(polyclip.Contour, len(p))
	for i, pt := range p {
		c[i] = polyclip.Point{X: pt.X, Y: pt.Y}
	}
	return polyclip.Polygon{c}
}

// vectorUnion merges parts and bridge capsules by polygon clipping and
// returns the outer ring of the result. Holes are dropped.
func vectorUnion(parts []Polygon, bridges [][2]Point, radius float64) (Polygon, error) {
	inputs := make([]Polygon, 0, len(parts)+len(bridges))
	inputs = append(inputs, parts...)
	for _, b := range bridges {
		inputs = append(inputs, capsule(b[0], b[1], radius))
	}

	merged := toPolyclip(inputs[0])
	for _, p := range inputs[1:] {
		merged = merged.Construct(polyclip.UNION, toPolyclip(p))
	}

	rings := make([]Polygon, 0, len(merged))
	for _, c := range merged {
		ring := make(Polygon, len(c))
		for i, pt := range c {
			ring[i] = Point{X: pt.X, Y: pt.Y}
		}
		if ring = dedupe(ring); len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	outer := outerRings(rings)
	if len(outer) != 1 {
		return nil, fmt.Errorf("%w: %d components", ErrUnionDisconnected, len(outer))
	}
	if !outer[0].IsValid() {
		return nil, errInvalidRing
	}
	return outer[0], nil
}

// outerRings returns the rings not enclosed by a larger ring, largest first.
func outerRings(rings []Polygon) []Polygon {
	sorted := slices.Clone(rings)
	slices.SortStableFunc(sorted, func(a, b Polygon) int {
		switch aa, ba := a.Area(), b.Area(); {
		case aa > ba:
			return -1
		case aa < ba:
			return 1
		}
		return 0
	})
	var outer []Polygon
	for _, r := range sorted {
		enclosed := false
		for _, o := range outer {
			if o.CoversPolygon(r) {
				enclosed = true
				break
			}
		}
		if !enclosed {
			outer = append(outer, r)
		}
	}
	return outer
}
