package geometry

import (
	"log/slog"
	"math"
)

// Repair turns a possibly self-intersecting ring into a valid simple polygon of
// comparable extent.
//
// Cyclic rotations of the starting vertex are tried first: the first
// rotation that becomes valid when simplified with a tolerance equal to the
// polygon area (taken from its convex hull) is kept. That rotation is then
// simplified with integer tolerances from 1 up to the area and the first
// valid result is returned. Rings with (near-)zero area are returned
// unchanged apart from duplicate removal.
func Repair(p Polygon) (Polygon, error) {
	ring := dedupe(p)
	hullArea := 0.0
	if len(ring) >= 3 {
		hullArea = ConvexHull(ring).Area()
	}
	if hullArea <= areaEpsilon {
		return ring, nil
	}
	if ring.IsValid() {
		return ring, nil
	}

	// shoelace area cancels out on self-intersecting rings
	area := math.Max(hullArea, 1)
	chosen := ring
	for r := range len(ring) {
		rot := rotate(ring, r)
		if SimplifyRing(rot, area).IsValid() {
			chosen = rot
			break
		}
	}

	maxTol := math.Ceil(area)
	for tol := 1.0; tol <= maxTol; {
		cand, next := simplifyRing(chosen, tol)
		if cand.IsValid() {
			slog.Debug("Repaired polygon", "vertices_in", len(p), "vertices_out", len(cand), "tolerance", tol)
			return cand, nil
		}
		if math.IsInf(next, 1) {
			break
		}
		// results are identical for every tolerance below next
		tol = math.Max(tol+1, math.Ceil(next))
	}
	return nil, newGeometryError("repair", ErrRepairExhausted)
}

func rotate(p Polygon, r int) Polygon {
	n := len(p)
	out := make(Polygon, n)
	for i := range n {
		out[i] = p[(i+r)%n]
	}
	return out
}
