package testutil

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
)

// Rect returns the axis-aligned rectangle polygon between two corners.
func Rect(x1, y1, x2, y2 float64) geometry.Polygon {
	return geometry.NewBox(x1, y1, x2, y2).Polygon()
}

// TextPage renders config and returns an empty page of the same size, the
// image and a segmentation with one text region around all rendered lines.
func TextPage(config TestImageConfig) (*layout.Page, *image.RGBA, *oracle.Segmentation) {
	img, lines := GenerateTextImage(config)
	page := layout.NewPage("page.png", config.Size.Width, config.Size.Height)

	seg := &oracle.Segmentation{TextDirection: "horizontal-lr"}
	var region geometry.Box
	for i, l := range lines {
		if i == 0 {
			region = l.Box
		} else {
			region = region.Union(l.Box)
		}
		seg.Lines = append(seg.Lines, oracle.LineResult{Boundary: l.Box.Polygon(), Baseline: l.Baseline})
	}
	if len(lines) > 0 {
		m := float64(config.LineSpacing) / 2
		region = geometry.NewBox(region.MinX-m, region.MinY-m, region.MaxX+m, region.MaxY+m)
		seg.Regions = []oracle.RegionResult{{Type: "text", Boundary: region.Polygon()}}
	}
	return page, img, seg
}

// RecordsFor returns one record per rendered line with evenly spaced cuts
// over the line box and a constant confidence.
func RecordsFor(config TestImageConfig, conf float64) []oracle.Record {
	_, lines := GenerateTextImage(config)
	out := make([]oracle.Record, 0, len(lines))
	for _, l := range lines {
		runes := []rune(l.Text)
		rec := oracle.Record{Prediction: l.Text}
		step := l.Box.Width() / float64(max(len(runes), 1))
		for i := range runes {
			x := l.Box.MinX + float64(i)*step
			rec.Cuts = append(rec.Cuts, Rect(x, l.Box.MinY, x+step, l.Box.MaxY))
			rec.Confidences = append(rec.Confidences, conf)
		}
		out = append(out, rec)
	}
	return out
}

// WritePage saves page as a YAML snapshot in dir.
func WritePage(t *testing.T, dir, name string, page *layout.Page) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, layout.SaveFile(path, page))
	return path
}

// WriteSegmentations writes segmentations in the replay file format.
func WriteSegmentations(t *testing.T, dir, name string, segs ...*oracle.Segmentation) string {
	t.Helper()

	var b strings.Builder
	for i, seg := range segs {
		if i > 0 {
			b.WriteString("---\n")
		}
		if seg.TextDirection != "" {
			fmt.Fprintf(&b, "text_direction: %s\n", seg.TextDirection)
		}
		b.WriteString("regions:\n")
		for _, r := range seg.Regions {
			fmt.Fprintf(&b, "  - type: %s\n    boundary: %q\n", r.Type, layout.FormatPoints(r.Boundary))
		}
		b.WriteString("lines:\n")
		for _, l := range seg.Lines {
			fmt.Fprintf(&b, "  - boundary: %q\n", layout.FormatPoints(l.Boundary))
			if len(l.Baseline) > 0 {
				fmt.Fprintf(&b, "    baseline: %q\n", layout.FormatPoints(l.Baseline))
			}
		}
	}
	return WriteFile(t, dir, name, b.String())
}

// WriteRecords writes records in the replay file format.
func WriteRecords(t *testing.T, dir, name string, records []oracle.Record) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("records:\n")
	for _, r := range records {
		fmt.Fprintf(&b, "  - prediction: %q\n    cuts:\n", r.Prediction)
		for _, c := range r.Cuts {
			fmt.Fprintf(&b, "      - %q\n", layout.FormatPoints(c))
		}
		b.WriteString("    confidences: [")
		for i, c := range r.Confidences {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g", c)
		}
		b.WriteString("]\n")
	}
	return WriteFile(t, dir, name, b.String())
}
