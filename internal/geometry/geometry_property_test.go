package geometry

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genGridPoint generates a point with integer pixel coordinates.
func genGridPoint() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
	).Map(func(vals []interface{}) Point {
		return Point{X: float64(vals[0].(int)), Y: float64(vals[1].(int))}
	})
}

// genRect generates an axis-aligned rectangle with integer corners.
func genRect() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 60),
		gen.IntRange(0, 60),
		gen.IntRange(1, 12),
		gen.IntRange(1, 12),
	).Map(func(vals []interface{}) Polygon {
		x, y := float64(vals[0].(int)), float64(vals[1].(int))
		w, h := float64(vals[2].(int)), float64(vals[3].(int))
		return Polygon{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	})
}

// TestRepair_OutputValidOrError verifies repair never returns an invalid
// polygon of positive extent.
func TestRepair_OutputValidOrError(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("repair yields a valid polygon, a degenerate ring or an error", prop.ForAll(
		func(points []Point) bool {
			out, err := Repair(Polygon(points))
			if err != nil {
				return IsGeometryError(err)
			}
			if out.IsValid() {
				return true
			}
			return len(out) < 3 || ConvexHull(out).Area() <= areaEpsilon
		},
		gen.SliceOfN(6, genGridPoint()),
	))

	properties.TestingRun(t)
}

// TestUnion_SingleConnectedPolygon verifies union output covers every input.
func TestUnion_SingleConnectedPolygon(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("union is valid, covers its inputs and is at least as large", prop.ForAll(
		func(rects []Polygon, scale int) bool {
			out, err := Union(rects, float64(scale))
			if err != nil || !out.IsValid() {
				return false
			}
			for _, r := range rects {
				if out.Area() < r.Area() || !out.CoversPolygon(r) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(3, genRect()),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}

// TestUnion_Idempotent verifies a single input comes back unchanged.
func TestUnion_Idempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("union of one polygon is that polygon", prop.ForAll(
		func(r Polygon, scale int) bool {
			out, err := Union([]Polygon{r}, float64(scale))
			return err == nil && out.Equal(r)
		},
		genRect(),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}
