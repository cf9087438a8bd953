package utils

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
)

// BoxToRect converts a Box to an image.Rectangle, clamped to image bounds.
func BoxToRect(b geometry.Box, bounds image.Rectangle) image.Rectangle {
	x1 := clampInt(int(math.Floor(b.MinX)), bounds.Min.X, bounds.Max.X)
	y1 := clampInt(int(math.Floor(b.MinY)), bounds.Min.Y, bounds.Max.Y)
	x2 := clampInt(int(math.Ceil(b.MaxX)), bounds.Min.X, bounds.Max.X)
	y2 := clampInt(int(math.Ceil(b.MaxY)), bounds.Min.Y, bounds.Max.Y)
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return image.Rect(x1, y1, x2, y2)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CropImageRect crops an image to the given rectangle. The result starts at
// the origin.
func CropImageRect(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}

// CropToFrame crops the page image to box, resamples it by zoom and returns
// the frame that maps the result back to page coordinates.
func CropToFrame(page image.Image, box geometry.Box, zoom float64) (image.Image, geometry.Frame, error) {
	rect := BoxToRect(box, page.Bounds())
	cropped := CropImageRect(page, rect)
	if cropped.Bounds().Empty() {
		return cropped, geometry.Frame{OffsetX: float64(rect.Min.X), OffsetY: float64(rect.Min.Y), Zoom: zoom}, nil
	}
	scaled, err := Resample(cropped, zoom)
	if err != nil {
		return nil, geometry.Frame{}, err
	}
	frame := geometry.Frame{
		OffsetX: float64(rect.Min.X - page.Bounds().Min.X),
		OffsetY: float64(rect.Min.Y - page.Bounds().Min.Y),
		Zoom:    zoom,
	}
	return scaled, frame, nil
}

// PolygonMask rasterizes the polygon, given in the frame's page coordinates,
// onto a mask the size of bounds. Pixels whose centre lies inside are white.
func PolygonMask(bounds image.Rectangle, poly geometry.Polygon, frame geometry.Frame) *image.Gray {
	mask := image.NewGray(bounds)
	if len(poly) < 3 {
		return mask
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pt := frame.ToPage(geometry.Point{X: float64(x-bounds.Min.X) + 0.5, Y: float64(y-bounds.Min.Y) + 0.5})
			if poly.CoversPoint(pt) {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

// DrawPolygon draws connected line segments and closes the polygon.
func DrawPolygon(dst *image.RGBA, pts []geometry.Point, col color.Color, thickness int) {
	drawPath(dst, pts, col, thickness, true)
}

// DrawPolyline draws connected line segments without closing them.
func DrawPolyline(dst *image.RGBA, pts []geometry.Point, col color.Color, thickness int) {
	drawPath(dst, pts, col, thickness, false)
}

func drawPath(dst *image.RGBA, pts []geometry.Point, col color.Color, thickness int, closed bool) {
	if len(pts) < 2 {
		return
	}
	ip := make([]image.Point, len(pts))
	for i, p := range pts {
		ip[i] = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	}
	n := len(ip)
	if !closed {
		n--
	}
	for i := range n {
		drawLine(dst, ip[i], ip[(i+1)%len(ip)], col, thickness)
	}
}

// drawLine draws a line between two points using a simple Bresenham variant.
func drawLine(dst *image.RGBA, a, b image.Point, col color.Color, thickness int) {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		drawThickPoint(dst, x0, y0, col, thickness)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawThickPoint(dst *image.RGBA, x, y int, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r := (thickness - 1) / 2
	for yy := y - r; yy <= y+r; yy++ {
		for xx := x - r; xx <= x+r; xx++ {
			if image.Pt(xx, yy).In(dst.Bounds()) {
				dst.Set(xx, yy, col)
			}
		}
	}
}
