package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/utils"
)

// ImageSize represents image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common test image sizes.
	SmallSize  = ImageSize{320, 240}
	MediumSize = ImageSize{640, 480}
)

// TestImageConfig holds configuration for generating text page images.
type TestImageConfig struct {
	Lines       []string
	Size        ImageSize
	Background  color.Color
	Foreground  color.Color
	FontFace    font.Face
	Margin      int
	LineSpacing int
}

// DefaultTestImageConfig returns a two-line page on a small canvas.
func DefaultTestImageConfig() TestImageConfig {
	return TestImageConfig{
		Lines:       []string{"Sample Text", "second line"},
		Size:        SmallSize,
		Background:  color.White,
		Foreground:  color.Black,
		FontFace:    basicfont.Face7x13,
		Margin:      20,
		LineSpacing: 10,
	}
}

// TextLine is one rendered line of a generated image.
type TextLine struct {
	Text     string
	Box      geometry.Box
	Baseline geometry.Polyline
}

// GenerateTextImage renders the configured lines left-aligned from the top
// margin and returns the image with the box and baseline of every line.
func GenerateTextImage(config TestImageConfig) (*image.RGBA, []TextLine) {
	img := image.NewRGBA(image.Rect(0, 0, config.Size.Width, config.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: config.FontFace,
	}
	metrics := config.FontFace.Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()

	lines := make([]TextLine, 0, len(config.Lines))
	top := config.Margin
	for _, text := range config.Lines {
		baseY := top + ascent
		drawer.Dot = fixed.P(config.Margin, baseY)
		drawer.DrawString(text)

		width := font.MeasureString(config.FontFace, text).Ceil()
		x1, x2 := float64(config.Margin), float64(config.Margin+width)
		lines = append(lines, TextLine{
			Text:     text,
			Box:      geometry.NewBox(x1, float64(top), x2, float64(baseY+descent)),
			Baseline: geometry.Polyline{{X: x1, Y: float64(baseY)}, {X: x2, Y: float64(baseY)}},
		})
		top = baseY + descent + config.LineSpacing
	}
	return img, lines
}

// CreateTestImage creates a uniformly colored image.
func CreateTestImage(width, height int, background color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)
	return img
}

// SaveImage writes img as PNG to dir/name and returns the path.
func SaveImage(t *testing.T, img image.Image, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, utils.SavePNG(path, img), "Failed to save image %s", path)
	return path
}

// CompareImages reports whether two images of equal bounds differ on average
// by at most tolerance (0..1) of the maximum color distance.
func CompareImages(img1, img2 image.Image, tolerance float64) bool {
	bounds := img1.Bounds()
	if bounds != img2.Bounds() {
		return false
	}

	var totalDiff, pixelCount float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r1, g1, b1, a1 := img1.At(x, y).RGBA()
			r2, g2, b2, a2 := img2.At(x, y).RGBA()
			dr := float64(r1) - float64(r2)
			dg := float64(g1) - float64(g2)
			db := float64(b1) - float64(b2)
			da := float64(a1) - float64(a2)
			totalDiff += math.Sqrt(dr*dr + dg*dg + db*db + da*da)
			pixelCount++
		}
	}
	if pixelCount == 0 {
		return true
	}
	maxDiff := math.Sqrt(4 * 65535 * 65535)
	return totalDiff/pixelCount/maxDiff <= tolerance
}
