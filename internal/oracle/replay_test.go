package oracle

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
)

const segmentationYAML = `text_direction: horizontal-lr
regions:
  - type: text
    boundary: 0,0 100,0 100,50 0,50
  - type: image
    boundary: 0,60 100,60 100,90 0,90
  - type: text
    boundary: 0,100 100,100 100,150 0,150
lines:
  - boundary: 5,5 95,5 95,20 5,20
    baseline: 5,18 95,18
    tags: {type: default}
  - boundary: 5,105 95,105 95,120 5,120
---
regions: []
lines: []
`

func TestDecodeSegmentations(t *testing.T) {
	segs, err := DecodeSegmentations(strings.NewReader(segmentationYAML))
	require.NoError(t, err)
	require.Len(t, segs, 2)

	seg := segs[0]
	assert.Equal(t, "horizontal-lr", seg.TextDirection)
	require.Len(t, seg.Regions, 3)
	assert.Equal(t, "image", seg.Regions[1].Type)
	require.Len(t, seg.Lines, 2)
	assert.Equal(t, geometry.Polyline{{X: 5, Y: 18}, {X: 95, Y: 18}}, seg.Lines[0].Baseline)
	assert.Nil(t, seg.Lines[1].Baseline)
	assert.Equal(t, "default", seg.Lines[0].Tags["type"])

	assert.True(t, segs[1].Empty())
}

func TestDecodeRecords(t *testing.T) {
	src := `records:
  - prediction: "Hi"
    cuts: ["0,0 5,0 5,10 0,10", "5,0 10,0 10,10 5,10"]
    confidences: [0.9, 0.8]
`
	recs, err := DecodeRecords(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Hi", recs[0].Prediction)
	assert.Len(t, recs[0].Cuts, 2)
	assert.Equal(t, []float64{0.9, 0.8}, recs[0].Confidences)

	_, err = DecodeRecords(strings.NewReader("records:\n  - cuts: [\"1,2 x\"]\n"))
	assert.Error(t, err)
}

func TestReplaySegmenter(t *testing.T) {
	first := &Segmentation{}
	s := NewReplaySegmenter(first)
	ctx := context.Background()

	got, err := s.Segment(ctx, nil, nil)
	require.NoError(t, err)
	assert.Same(t, first, got)

	_, err = s.Segment(ctx, nil, nil)
	assert.True(t, errors.Is(err, ErrReplayExhausted))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewReplaySegmenter(first).Segment(cancelled, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplaySegmenter_PerPage(t *testing.T) {
	shared, a := &Segmentation{}, &Segmentation{TextDirection: "horizontal-rl"}
	s := NewReplaySegmenter(shared).ForPage("a", a)

	got, err := s.Segment(WithPageID(context.Background(), "a"), nil, nil)
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = s.Segment(WithPageID(context.Background(), "a"), nil, nil)
	assert.ErrorIs(t, err, ErrReplayExhausted)

	got, err = s.Segment(WithPageID(context.Background(), "b"), nil, nil)
	require.NoError(t, err)
	assert.Same(t, shared, got)
}

func TestReplayRecognizer(t *testing.T) {
	r := &ReplayRecognizer{
		Records: []Record{{Prediction: "shared"}},
		Pages:   map[string][]Record{"a": {{Prediction: "page a"}}},
	}
	recs, err := r.Recognize(context.Background(), nil, Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, "shared", recs[0].Prediction)

	recs, err = r.Recognize(WithPageID(context.Background(), "a"), nil, Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, "page a", recs[0].Prediction)
	assert.Equal(t, "a", PageID(WithPageID(context.Background(), "a")))
	assert.Equal(t, "", PageID(context.Background()))
}

func TestPassthroughBinarizer(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 7, 3))
	out, err := PassthroughBinarizer{}.Binarize(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, 7, out.Bounds().Dx())
	assert.Equal(t, 3, out.Bounds().Dy())
}
