// Package oracle defines the external binarization, segmentation and
// recognition engines consumed by the processors, together with replay
// implementations that answer from recorded output.
package oracle

import (
	"context"
	"image"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
)

// Binarizer turns an image into a grayscale image of the same dimensions.
type Binarizer interface {
	Binarize(ctx context.Context, img image.Image) (image.Image, error)
}

// Segmenter detects regions and text lines in an image. The mask, when not
// nil, restricts segmentation to its non-zero pixels.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image, mask image.Image) (*Segmentation, error)
}

// Recognizer transcribes the lines described by the descriptor. It returns
// one record per submitted line in submission order.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, desc Descriptor) ([]Record, error)
}

// RegionResult is one typed region polygon in image coordinates.
type RegionResult struct {
	Type     string
	Boundary geometry.Polygon
}

// LineResult is one detected text line in image coordinates.
type LineResult struct {
	Boundary geometry.Polygon
	Baseline geometry.Polyline
	Tags     map[string]string
}

// Segmentation is the segmenter output. Regions keep the order in which the
// segmenter reported them.
type Segmentation struct {
	TextDirection string
	Regions       []RegionResult
	Lines         []LineResult
}

// Empty reports whether the segmentation found nothing.
func (s *Segmentation) Empty() bool {
	return s == nil || (len(s.Regions) == 0 && len(s.Lines) == 0)
}

// DescriptorLine is one line submitted for recognition.
type DescriptorLine struct {
	ID       string
	Baseline geometry.Polyline
	Boundary geometry.Polygon
	Tags     map[string]string
}

// Descriptor is the segmentation handed to the recognizer.
type Descriptor struct {
	TextDirection string
	Lines         []DescriptorLine
}

// Record is the recognition result of one line: predicted text plus one cut
// polygon and one confidence per character of the prediction.
type Record struct {
	Prediction  string
	Cuts        []geometry.Polygon
	Confidences []float64
}
