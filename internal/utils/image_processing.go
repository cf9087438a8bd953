package utils

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ErrSizeMismatch is returned when an oracle changes image dimensions.
var ErrSizeMismatch = errors.New("image dimensions changed")

// Resample scales img by zoom using Catmull-Rom interpolation. A zoom of 1
// returns img unchanged.
func Resample(img image.Image, zoom float64) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "resample", Err: errors.New("input image is nil")}
	}
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return nil, &ImageProcessingError{Operation: "resample", Err: fmt.Errorf("invalid zoom %v", zoom)}
	}
	if zoom == 1 {
		return img, nil
	}
	b := img.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*zoom)))
	h := max(1, int(math.Round(float64(b.Dy())*zoom)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// Grayscale returns a grayscale copy of img.
func Grayscale(img image.Image) image.Image {
	return imaging.Grayscale(img)
}

// CheckSameSize fails with ErrSizeMismatch when got and want differ in size.
func CheckSameSize(op string, want, got image.Image) error {
	if got == nil {
		return &ImageProcessingError{Operation: op, Err: errors.New("result image is nil")}
	}
	wb, gb := want.Bounds(), got.Bounds()
	if wb.Dx() != gb.Dx() || wb.Dy() != gb.Dy() {
		return &ImageProcessingError{
			Operation: op,
			Err:       fmt.Errorf("%w: %dx%d became %dx%d", ErrSizeMismatch, wb.Dx(), wb.Dy(), gb.Dx(), gb.Dy()),
		}
	}
	return nil
}
