package segment

import (
	"log/slog"
	"math"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
)

// dummyBaselineRatio places a synthesized baseline at this fraction of the
// boundary height, measured from the top.
const dummyBaselineRatio = 0.2

// minBaselineExtent is the horizontal extent a baseline must exceed to be used.
const minBaselineExtent = 1.0

// Deriver produces a boundary and baseline pair for a text line such that the
// boundary covers the baseline and both lie on the page.
type Deriver struct {
	PageBox geometry.Box
	// Scale is the page-wide line scale, see EstimateScale.
	Scale float64
	Union geometry.UnionOptions
}

// NewDeriver creates a deriver for one page.
func NewDeriver(pageBox geometry.Box, scale float64, opts geometry.UnionOptions) *Deriver {
	return &Deriver{PageBox: pageBox, Scale: scale, Union: opts}
}

// Derive repairs the boundary, replaces a missing, degenerate or
// non-intersecting baseline by a dummy one, grows the boundary over a
// protruding baseline and clips both to the page.
func (d *Deriver) Derive(boundary geometry.Polygon, baseline geometry.Polyline) (geometry.Polygon, geometry.Polyline, error) {
	if len(boundary) < 3 {
		return nil, nil, &geometry.GeometryError{Op: "derive", Err: geometry.ErrEmptyGeometry}
	}
	boundary, err := geometry.Repair(boundary)
	if err != nil {
		return nil, nil, err
	}

	if !usableBaseline(baseline) || !boundary.Intersects(baseline) {
		baseline = DummyBaseline(boundary)
	}

	if !boundary.Covers(baseline) {
		grown, err := d.growOver(boundary, baseline)
		if err != nil {
			return nil, nil, err
		}
		boundary = grown
	}

	boundary, baseline, err = d.clip(boundary, baseline)
	if err != nil {
		return nil, nil, err
	}
	if !boundary.Covers(baseline) {
		return nil, nil, &geometry.GeometryError{Op: "derive", Err: geometry.ErrNotContained}
	}
	return boundary, baseline, nil
}

// DummyBaseline is a horizontal segment across the boundary's bounding box
// at a fifth of its height from the top.
func DummyBaseline(boundary geometry.Polygon) geometry.Polyline {
	b := boundary.Bounds()
	y := b.MinY + dummyBaselineRatio*b.Height()
	return geometry.Polyline{{X: b.MinX, Y: y}, {X: b.MaxX, Y: y}}
}

func usableBaseline(l geometry.Polyline) bool {
	if len(l) < 2 {
		return false
	}
	return math.Abs(l[len(l)-1].X-l[0].X) > minBaselineExtent
}

func (d *Deriver) growOver(boundary geometry.Polygon, baseline geometry.Polyline) (geometry.Polygon, error) {
	scale := max(d.Scale, 1)
	parts := []geometry.MultiPolygon{{boundary}, geometry.OneSidedBuffer(baseline, scale)}
	slog.Debug("Growing line boundary over baseline",
		"baseline_points", len(baseline),
		"direction", baseline.WritingDirection().String(),
		"offset", scale)
	return d.Union.UnionMulti(parts, scale)
}

// clip cuts boundary and baseline to the page. A baseline left outside the
// page is replaced by a dummy one, and a baseline no longer covered by the
// clipped boundary is grown over once more.
func (d *Deriver) clip(boundary geometry.Polygon, baseline geometry.Polyline) (geometry.Polygon, geometry.Polyline, error) {
	clipped, err := d.clipBoundary(boundary)
	if err != nil {
		return nil, nil, err
	}
	line := geometry.ClipPolyline(baseline, d.PageBox)
	if !usableBaseline(line) {
		line = DummyBaseline(clipped)
	}
	if clipped.Covers(line) {
		return clipped, line, nil
	}
	grown, err := d.growOver(clipped, line)
	if err != nil {
		return nil, nil, err
	}
	if clipped, err = d.clipBoundary(grown); err != nil {
		return nil, nil, err
	}
	return clipped, line, nil
}

// clipBoundary cuts the boundary to the page and repairs the remainder.
// Slivers without area are rejected.
func (d *Deriver) clipBoundary(boundary geometry.Polygon) (geometry.Polygon, error) {
	clipped := geometry.ClipPolygon(boundary, d.PageBox)
	if clipped == nil {
		return nil, &geometry.GeometryError{Op: "clip", Err: geometry.ErrEmptyGeometry}
	}
	if clipped.IsValid() {
		return clipped, nil
	}
	repaired, err := geometry.Repair(clipped)
	if err != nil {
		return nil, err
	}
	if !repaired.IsValid() {
		return nil, &geometry.GeometryError{Op: "clip", Err: geometry.ErrEmptyGeometry}
	}
	return repaired, nil
}
