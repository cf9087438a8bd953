package oracle

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/layout"
)

// ErrReplayExhausted is returned when a replay oracle has no recorded answer left.
var ErrReplayExhausted = errors.New("no recorded oracle output left")

type regionDoc struct {
	Type     string `yaml:"type"`
	Boundary string `yaml:"boundary"`
}

type lineDoc struct {
	Boundary string            `yaml:"boundary"`
	Baseline string            `yaml:"baseline,omitempty"`
	Tags     map[string]string `yaml:"tags,omitempty"`
}

type segmentationDoc struct {
	TextDirection string      `yaml:"text_direction,omitempty"`
	Regions       []regionDoc `yaml:"regions"`
	Lines         []lineDoc   `yaml:"lines"`
}

type recordDoc struct {
	Prediction  string    `yaml:"prediction"`
	Cuts        []string  `yaml:"cuts"`
	Confidences []float64 `yaml:"confidences"`
}

type recordsDoc struct {
	Records []recordDoc `yaml:"records"`
}

// DecodeSegmentations reads a stream of YAML documents, one segmentation per
// document.
func DecodeSegmentations(r io.Reader) ([]*Segmentation, error) {
	dec := yaml.NewDecoder(r)
	var out []*Segmentation
	for {
		var doc segmentationDoc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode segmentation %d: %w", len(out), err)
		}
		seg, err := doc.segmentation()
		if err != nil {
			return nil, fmt.Errorf("segmentation %d: %w", len(out), err)
		}
		out = append(out, seg)
	}
}

func (d segmentationDoc) segmentation() (*Segmentation, error) {
	seg := &Segmentation{TextDirection: d.TextDirection}
	for i, rd := range d.Regions {
		pts, err := layout.ParsePoints(rd.Boundary)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		seg.Regions = append(seg.Regions, RegionResult{Type: rd.Type, Boundary: geometry.Polygon(pts)})
	}
	for i, ld := range d.Lines {
		boundary, err := layout.ParsePoints(ld.Boundary)
		if err != nil {
			return nil, fmt.Errorf("line %d boundary: %w", i, err)
		}
		baseline, err := layout.ParsePoints(ld.Baseline)
		if err != nil {
			return nil, fmt.Errorf("line %d baseline: %w", i, err)
		}
		lr := LineResult{Boundary: geometry.Polygon(boundary), Tags: ld.Tags}
		if len(baseline) > 0 {
			lr.Baseline = geometry.Polyline(baseline)
		}
		seg.Lines = append(seg.Lines, lr)
	}
	return seg, nil
}

// DecodeRecords reads recorded recognition output.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var doc recordsDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	out := make([]Record, 0, len(doc.Records))
	for i, rd := range doc.Records {
		rec := Record{Prediction: rd.Prediction, Confidences: rd.Confidences}
		for j, c := range rd.Cuts {
			pts, err := layout.ParsePoints(c)
			if err != nil {
				return nil, fmt.Errorf("record %d cut %d: %w", i, j, err)
			}
			rec.Cuts = append(rec.Cuts, geometry.Polygon(pts))
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadSegmentations reads recorded segmenter output from a file.
func LoadSegmentations(path string) ([]*Segmentation, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open segmentation %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return DecodeSegmentations(f)
}

// LoadRecords reads recorded recognizer output from a file.
func LoadRecords(path string) ([]Record, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open records %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return DecodeRecords(f)
}

// ReplaySegmenter answers successive Segment calls with recorded results.
// Results registered for a page id are used for calls tagged with that id
// through WithPageID; all other calls consume the shared queue.
type ReplaySegmenter struct {
	mu     sync.Mutex
	shared []*Segmentation
	pages  map[string][]*Segmentation
}

// NewReplaySegmenter creates a segmenter replaying results in order.
func NewReplaySegmenter(results ...*Segmentation) *ReplaySegmenter {
	return &ReplaySegmenter{shared: results, pages: make(map[string][]*Segmentation)}
}

// ForPage registers results for calls made on behalf of page id.
func (s *ReplaySegmenter) ForPage(id string, results ...*Segmentation) *ReplaySegmenter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[id] = append(s.pages[id], results...)
	return s
}

// Segment returns the next recorded segmentation.
func (s *ReplaySegmenter) Segment(ctx context.Context, _ image.Image, _ image.Image) (*Segmentation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id := PageID(ctx); id != "" {
		if queue, ok := s.pages[id]; ok {
			if len(queue) == 0 {
				return nil, fmt.Errorf("page %s: %w", id, ErrReplayExhausted)
			}
			s.pages[id] = queue[1:]
			return queue[0], nil
		}
	}
	if len(s.shared) == 0 {
		return nil, ErrReplayExhausted
	}
	seg := s.shared[0]
	s.shared = s.shared[1:]
	return seg, nil
}

// ReplayRecognizer answers Recognize calls with recorded records: those of
// the calling page when registered in Pages, Records otherwise.
type ReplayRecognizer struct {
	Records []Record
	Pages   map[string][]Record
}

// Recognize returns the recorded records regardless of the descriptor.
func (r *ReplayRecognizer) Recognize(ctx context.Context, _ image.Image, _ Descriptor) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if recs, ok := r.Pages[PageID(ctx)]; ok {
		return append([]Record(nil), recs...), nil
	}
	return append([]Record(nil), r.Records...), nil
}

// PassthroughBinarizer treats its input as already binarized and only
// converts it to grayscale.
type PassthroughBinarizer struct{}

// Binarize returns a grayscale copy of img.
func (PassthroughBinarizer) Binarize(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.Grayscale(img), nil
}
