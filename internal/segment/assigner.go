package segment

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tidwall/rtree"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/metrics"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
)

// DefaultRegionMargin is the tolerance, in pixels of the segmented image, by
// which a line may protrude past its region.
const DefaultRegionMargin = 20.0

// SynthesizedRegionType is the type given to regions wrapping unassigned lines.
const SynthesizedRegionType = "text"

// AssignmentWarning reports a line that no region contained. The line was
// wrapped in a synthesized region.
type AssignmentWarning struct {
	LineIndex int
}

func (w *AssignmentWarning) Error() string {
	return fmt.Sprintf("line %d is not contained in any text region", w.LineIndex)
}

// AssignedRegion is one output region with the input indices of its lines.
type AssignedRegion struct {
	// Index is the position in the input region list, -1 for synthesized regions.
	Index       int
	Type        string
	Boundary    geometry.Polygon
	Text        bool
	Synthesized bool
	Lines       []int
}

// Assignment is the result of Assign.
type Assignment struct {
	Regions []AssignedRegion
	// Lines holds the repaired line boundaries by input index; nil for lines
	// that failed repair.
	Lines    []geometry.Polygon
	Warnings []*AssignmentWarning
	// Errors collects geometry errors of skipped regions and lines.
	Errors []error
}

// Assigner attaches each line to exactly one text region.
type Assigner struct {
	// Margin enlarges every text region before containment tests.
	Margin float64
	// IsText decides which region types bear text. Nil means layout.IsTextType.
	IsText func(regionType string) bool
}

// NewAssigner creates an assigner whose margin is scaled back from a
// resampled image by 1/zoom. An empty type list falls back to
// layout.IsTextType.
func NewAssigner(margin, zoom float64, textTypes []string) *Assigner {
	if zoom <= 0 {
		zoom = 1
	}
	a := &Assigner{Margin: margin / zoom}
	if len(textTypes) > 0 {
		allowed := make(map[string]bool, len(textTypes))
		for _, t := range textTypes {
			allowed[strings.ToLower(t)] = true
		}
		a.IsText = func(regionType string) bool { return allowed[strings.ToLower(regionType)] }
	}
	return a
}

func (a *Assigner) isText(regionType string) bool {
	if a.IsText != nil {
		return a.IsText(regionType)
	}
	return layout.IsTextType(regionType)
}

// Assign processes regions and lines in input order. The first text region
// whose enlarged polygon contains a line's boundary receives it. Lines left
// over are wrapped in synthesized single-line regions, appended after the
// input regions in line order.
func (a *Assigner) Assign(regions []oracle.RegionResult, lines []geometry.Polygon) *Assignment {
	out := &Assignment{Lines: make([]geometry.Polygon, len(lines))}

	var index rtree.RTreeG[int]
	for i, l := range lines {
		repaired, err := geometry.Repair(l)
		if err == nil && len(repaired) < 3 {
			err = &geometry.GeometryError{Op: "repair", Err: geometry.ErrEmptyGeometry}
		}
		if err != nil {
			slog.Warn("Skipping line with invalid boundary", "line", i, "error", err)
			metrics.RecordGeometryError("repair")
			out.Errors = append(out.Errors, fmt.Errorf("line %d: %w", i, err))
			continue
		}
		out.Lines[i] = repaired
		b := repaired.Bounds()
		index.Insert([2]float64{b.MinX, b.MinY}, [2]float64{b.MaxX, b.MaxY}, i)
	}

	owner := make([]int, len(lines))
	for i := range owner {
		owner[i] = -1
	}

	for ri, r := range regions {
		text := a.isText(r.Type)
		boundary, err := geometry.Repair(r.Boundary)
		if err == nil && len(boundary) < 3 {
			err = &geometry.GeometryError{Op: "repair", Err: geometry.ErrEmptyGeometry}
		}
		if err != nil {
			slog.Warn("Skipping region with invalid boundary", "region", ri, "type", r.Type, "error", err)
			metrics.RecordGeometryError("repair")
			out.Errors = append(out.Errors, fmt.Errorf("region %d: %w", ri, err))
			continue
		}
		assigned := AssignedRegion{Index: ri, Type: r.Type, Boundary: boundary, Text: text}
		if text {
			assigned.Lines = a.collect(ri, geometry.Prepare(boundary, a.Margin), &index, out.Lines, owner)
		}
		out.Regions = append(out.Regions, assigned)
	}

	for i, l := range out.Lines {
		if l == nil || owner[i] >= 0 {
			continue
		}
		w := &AssignmentWarning{LineIndex: i}
		slog.Warn("Wrapping unassigned line in its own region", "line", i)
		metrics.RecordAssignmentWarning()
		out.Warnings = append(out.Warnings, w)
		out.Regions = append(out.Regions, AssignedRegion{
			Index:       -1,
			Type:        SynthesizedRegionType,
			Boundary:    l,
			Text:        true,
			Synthesized: true,
			Lines:       []int{i},
		})
	}
	return out
}

// collect returns, in ascending order, the unassigned lines contained in the
// prepared region and marks them as owned by region ri.
func (a *Assigner) collect(ri int, region *geometry.Prepared, index *rtree.RTreeG[int], lines []geometry.Polygon, owner []int) []int {
	b := region.Bounds()
	var candidates []int
	index.Search([2]float64{b.MinX, b.MinY}, [2]float64{b.MaxX, b.MaxY},
		func(_, _ [2]float64, i int) bool {
			candidates = append(candidates, i)
			return true
		})
	slices.Sort(candidates)

	var got []int
	for _, i := range candidates {
		if !region.ContainsPolygon(lines[i]) {
			continue
		}
		if owner[i] >= 0 {
			slog.Debug("Line already assigned", "line", i, "region", owner[i], "discarded_region", ri)
			continue
		}
		owner[i] = ri
		got = append(got, i)
	}
	return got
}
