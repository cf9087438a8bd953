package segment

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/metrics"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/utils"
)

// Levels of operation.
const (
	LevelPage   = "page"
	LevelRegion = "region"
)

// Options configures a Processor.
type Options struct {
	LevelOfOperation string   `mapstructure:"level_of_operation" yaml:"level_of_operation" json:"level_of_operation"`
	TextDirection    string   `mapstructure:"text_direction" yaml:"text_direction" json:"text_direction"`
	RegionMargin     float64  `mapstructure:"region_margin" yaml:"region_margin" json:"region_margin"`
	Zoom             float64  `mapstructure:"zoom" yaml:"zoom" json:"zoom"`
	TextRegionTypes  []string `mapstructure:"text_region_types" yaml:"text_region_types" json:"text_region_types"`
}

// DefaultOptions returns page-level segmentation at native resolution.
func DefaultOptions() Options {
	return Options{
		LevelOfOperation: LevelPage,
		TextDirection:    "horizontal-lr",
		RegionMargin:     DefaultRegionMargin,
		Zoom:             1,
	}
}

// Result summarizes one Process call.
type Result struct {
	Regions  int
	Lines    int
	Warnings []*AssignmentWarning
	Errors   []error
}

// Processor replaces the layout of a page with the output of a segmenter.
type Processor struct {
	Segmenter oracle.Segmenter
	Options   Options
}

// NewProcessor creates a segmentation processor.
func NewProcessor(seg oracle.Segmenter, opts Options) *Processor {
	return &Processor{Segmenter: seg, Options: opts}
}

// Process segments the page image and attaches the result to page. At page
// level all existing regions are replaced; at region level every text region
// without sub-regions has its lines replaced.
func (p *Processor) Process(ctx context.Context, page *layout.Page, img image.Image) (*Result, error) {
	if p.Segmenter == nil {
		return nil, errors.New("segmenter not configured")
	}
	switch p.Options.LevelOfOperation {
	case "", LevelPage:
		return p.processPage(ctx, page, img)
	case LevelRegion:
		return p.processRegions(ctx, page, img)
	default:
		return nil, fmt.Errorf("invalid level of operation %q", p.Options.LevelOfOperation)
	}
}

func (p *Processor) zoom() float64 {
	if p.Options.Zoom <= 0 {
		return 1
	}
	return p.Options.Zoom
}

func (p *Processor) processPage(ctx context.Context, page *layout.Page, img image.Image) (*Result, error) {
	crop, frame, err := utils.CropToFrame(img, page.Box(), p.zoom())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare page image: %w", err)
	}
	seg, err := p.Segmenter.Segment(ctx, crop, nil)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}
	if seg == nil {
		seg = &oracle.Segmentation{}
	}

	regions := make([]oracle.RegionResult, len(seg.Regions))
	for i, r := range seg.Regions {
		regions[i] = oracle.RegionResult{Type: r.Type, Boundary: frame.PolygonToPage(r.Boundary)}
	}
	boundaries := make([]geometry.Polygon, len(seg.Lines))
	for i, l := range seg.Lines {
		boundaries[i] = frame.PolygonToPage(l.Boundary)
	}

	assigner := NewAssigner(p.regionMargin(), p.zoom(), p.Options.TextRegionTypes)
	assignment := assigner.Assign(regions, boundaries)

	// Build the new regions off-tree so a failure leaves the page untouched.
	type pending struct {
		region *layout.Element
		lines  []*layout.Element
	}
	built := make([]pending, 0, len(assignment.Regions))
	lineNo := 0
	for i, ar := range assignment.Regions {
		region := &layout.Element{
			ID:     fmt.Sprintf("region_%04d", i+1),
			Type:   ar.Type,
			Coords: ar.Boundary.Round(),
		}
		pr := pending{region: region}
		for _, li := range ar.Lines {
			lineNo++
			line := &layout.Element{
				ID:     fmt.Sprintf("line_%04d", lineNo),
				Coords: assignment.Lines[li].Round(),
				Tags:   seg.Lines[li].Tags,
			}
			if len(seg.Lines[li].Baseline) > 0 {
				line.Baseline = frame.PolylineToPage(seg.Lines[li].Baseline)
			}
			pr.lines = append(pr.lines, line)
		}
		built = append(built, pr)
	}

	page.ClearRegions()
	if dir := p.direction(seg); dir != layout.DirectionUnset {
		page.Direction = dir
	}
	order := &layout.OrderGroup{ID: "ro_0001", Ordered: true}
	for _, pr := range built {
		if err := page.AddRegion("", pr.region); err != nil {
			return nil, err
		}
		for _, l := range pr.lines {
			if err := page.AddLine(pr.region.ID, l); err != nil {
				return nil, err
			}
		}
		order.Items = append(order.Items, layout.OrderItem{RegionRef: pr.region.ID})
	}
	if len(order.Items) > 0 {
		page.ReadingOrder = order
	}

	slog.Info("Segmented page",
		"image", page.ImageFilename,
		"regions", len(built),
		"lines", lineNo,
		"unassigned_lines", len(assignment.Warnings))
	return &Result{
		Regions:  len(built),
		Lines:    lineNo,
		Warnings: assignment.Warnings,
		Errors:   assignment.Errors,
	}, nil
}

func (p *Processor) processRegions(ctx context.Context, page *layout.Page, img image.Image) (*Result, error) {
	res := &Result{}
	for _, region := range page.TextRegions() {
		if hasSubRegions(page, region.ID) {
			continue
		}
		if len(region.Coords) < 3 {
			slog.Warn("Skipping region without coordinates", "region", region.ID)
			continue
		}
		lines, errs, err := p.segmentRegion(ctx, region, img)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", region.ID, err)
		}
		res.Errors = append(res.Errors, errs...)
		page.ClearChildren(region.ID)
		for _, l := range lines {
			l.ID = page.UniqueID(l.ID)
			if err := page.AddLine(region.ID, l); err != nil {
				return nil, err
			}
		}
		res.Regions++
		res.Lines += len(lines)
		slog.Debug("Segmented region", "region", region.ID, "lines", len(lines))
	}
	slog.Info("Segmented regions", "image", page.ImageFilename, "regions", res.Regions, "lines", res.Lines)
	return res, nil
}

func hasSubRegions(page *layout.Page, id string) bool {
	for _, c := range page.Children(id) {
		if c.Kind == layout.KindRegion {
			return true
		}
	}
	return false
}

// segmentRegion returns the new lines of one region without touching the page.
func (p *Processor) segmentRegion(ctx context.Context, region *layout.Element, img image.Image) ([]*layout.Element, []error, error) {
	crop, frame, err := utils.CropToFrame(img, region.Coords.Bounds(), p.zoom())
	if err != nil {
		return nil, nil, err
	}
	mask := utils.PolygonMask(crop.Bounds(), region.Coords, frame)
	seg, err := p.Segmenter.Segment(ctx, crop, mask)
	if err != nil {
		return nil, nil, fmt.Errorf("segmentation failed: %w", err)
	}
	if seg == nil {
		return nil, nil, nil
	}

	var (
		lines []*layout.Element
		errs  []error
	)
	for i, l := range seg.Lines {
		boundary, err := geometry.Repair(frame.PolygonToPage(l.Boundary))
		if err == nil && len(boundary) < 3 {
			err = &geometry.GeometryError{Op: "repair", Err: geometry.ErrEmptyGeometry}
		}
		if err != nil {
			slog.Warn("Skipping line with invalid boundary", "region", region.ID, "line", i, "error", err)
			metrics.RecordGeometryError("repair")
			errs = append(errs, fmt.Errorf("region %s line %d: %w", region.ID, i, err))
			continue
		}
		line := &layout.Element{ID: fmt.Sprintf("%s_line_%04d", region.ID, i+1), Coords: boundary.Round(), Tags: l.Tags}
		if len(l.Baseline) > 0 {
			line.Baseline = frame.PolylineToPage(l.Baseline)
		}
		lines = append(lines, line)
	}
	return lines, errs, nil
}

func (p *Processor) regionMargin() float64 {
	if p.Options.RegionMargin < 0 {
		return 0
	}
	return p.Options.RegionMargin
}

// direction maps the segmenter's or the configured text direction to a page
// reading direction.
func (p *Processor) direction(seg *oracle.Segmentation) layout.ReadingDirection {
	td := seg.TextDirection
	if td == "" {
		td = p.Options.TextDirection
	}
	return ReadingDirection(td)
}

// ReadingDirection maps a segmenter text direction such as "horizontal-rl"
// to a reading direction.
func ReadingDirection(textDirection string) layout.ReadingDirection {
	switch textDirection {
	case "horizontal-lr":
		return layout.DirectionLeftToRight
	case "horizontal-rl":
		return layout.DirectionRightToLeft
	case "vertical-lr", "vertical-rl":
		return layout.DirectionTopToBottom
	default:
		return layout.DirectionUnset
	}
}
