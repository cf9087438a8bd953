package pipeline

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/utils"
)

// Overlay colors.
var (
	RegionColor   = color.RGBA{R: 0, G: 160, B: 0, A: 255}
	LineColor     = color.RGBA{R: 220, G: 0, B: 0, A: 255}
	BaselineColor = color.RGBA{R: 0, G: 0, B: 220, A: 255}
)

// RenderOverlay draws region outlines, line outlines and baselines of page on
// a copy of img.
func RenderOverlay(img image.Image, page *layout.Page) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)

	for _, r := range page.Regions() {
		utils.DrawPolygon(out, r.Coords, RegionColor, 2)
	}
	for _, l := range page.Lines() {
		utils.DrawPolygon(out, l.Coords, LineColor, 1)
		if len(l.Baseline) > 1 {
			utils.DrawPolyline(out, l.Baseline, BaselineColor, 1)
		}
	}
	return out
}
