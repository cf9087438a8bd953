package segment

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
)

// TestDeriver_ContainmentProperty verifies the returned boundary always
// covers the returned baseline.
func TestDeriver_ContainmentProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("derived boundary covers derived baseline", prop.ForAll(
		func(x0, y0, w, h, bx0, by0, bx1, by1 int) bool {
			boundary := rect(float64(x0), float64(y0), float64(x0+w), float64(y0+h))
			baseline := geometry.Polyline{
				{X: float64(bx0), Y: float64(by0)},
				{X: float64(bx1), Y: float64(by1)},
			}
			gotBoundary, gotBaseline, err := newTestDeriver().Derive(boundary, baseline)
			if err != nil {
				t.Logf("derive failed: %v", err)
				return false
			}
			return gotBoundary.Covers(gotBaseline)
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.IntRange(5, 80),
		gen.IntRange(5, 60),
		gen.IntRange(0, 190),
		gen.IntRange(0, 190),
		gen.IntRange(0, 190),
		gen.IntRange(0, 190),
	))

	properties.TestingRun(t)
}

// TestAssign_OrderIndependenceProperty verifies that for disjoint regions
// the line to region mapping does not depend on region order.
func TestAssign_OrderIndependenceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	const regionCount = 4
	regions := make([]oracle.RegionResult, regionCount)
	for i := range regionCount {
		x := float64(i * 200)
		regions[i] = oracle.RegionResult{Type: "text", Boundary: rect(x, 0, x+100, 100)}
	}
	reversed := make([]oracle.RegionResult, regionCount)
	for i, r := range regions {
		reversed[regionCount-1-i] = r
	}

	mapping := func(a *Assignment, order []oracle.RegionResult) map[int]float64 {
		out := make(map[int]float64)
		for _, r := range a.Regions {
			key := -1.0
			if !r.Synthesized {
				key = order[r.Index].Boundary[0].X
			}
			for _, li := range r.Lines {
				out[li] = key
			}
		}
		return out
	}

	properties.Property("assignment set is independent of region order", prop.ForAll(
		func(xs []int) bool {
			lines := make([]geometry.Polygon, 0, len(xs))
			for i, x := range xs {
				y := float64((i * 17) % 80)
				lines = append(lines, rect(float64(x), y, float64(x+30), y+15))
			}
			assigner := NewAssigner(DefaultRegionMargin, 1, nil)
			forward := mapping(assigner.Assign(regions, lines), regions)
			backward := mapping(assigner.Assign(reversed, lines), reversed)
			if len(forward) != len(lines) || len(backward) != len(lines) {
				return false
			}
			for li, key := range forward {
				if backward[li] != key {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.IntRange(0, 780)),
	))

	properties.TestingRun(t)
}
