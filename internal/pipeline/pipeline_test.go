package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/textequiv"
)

func box(x1, y1, x2, y2 float64) geometry.Polygon {
	return geometry.NewBox(x1, y1, x2, y2).Polygon()
}

// oneLine is a segmentation with one text region holding one line.
func oneLine() *oracle.Segmentation {
	return &oracle.Segmentation{
		TextDirection: "horizontal-lr",
		Regions:       []oracle.RegionResult{{Type: "text", Boundary: box(0, 0, 100, 50)}},
		Lines: []oracle.LineResult{{
			Boundary: box(10, 10, 90, 30),
			Baseline: geometry.Polyline{{X: 10, Y: 28}, {X: 90, Y: 28}},
		}},
	}
}

// hi is a recognition record for "Hi" inside the line of oneLine.
func hi() oracle.Record {
	return oracle.Record{
		Prediction:  "Hi",
		Cuts:        []geometry.Polygon{box(10, 10, 20, 30), box(20, 10, 30, 30)},
		Confidences: []float64{0.9, 0.7},
	}
}

func newPage(id string) *Page {
	return &Page{
		FileID: id,
		Layout: layout.NewPage(id+".png", 200, 200),
		Image:  image.NewRGBA(image.Rect(0, 0, 200, 200)),
	}
}

type failingBinarizer struct{}

func (failingBinarizer) Binarize(context.Context, image.Image) (image.Image, error) {
	return nil, errors.New("threshold failed")
}

func TestBuilder(t *testing.T) {
	_, err := NewBuilder().Build()
	require.Error(t, err)

	b := NewBuilder()
	assert.Same(t, b, b.WithMaxWorkers(3))
	assert.Equal(t, 3, b.Config().Parallel.MaxWorkers)
	b.WithMaxWorkers(0)
	assert.Equal(t, 3, b.Config().Parallel.MaxWorkers)

	p, err := b.
		WithAggregation(textequiv.DefaultOptions()).
		WithRecognizer(&oracle.ReplayRecognizer{}).
		WithSegmenter(oracle.NewReplaySegmenter()).
		WithBinarizer(oracle.PassthroughBinarizer{}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"binarize", "segment", "recognize", "aggregate"}, p.Stages())
}

func TestBuilder_WithConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segment.Zoom = 0.5
	p, err := NewBuilder().WithConfig(cfg).WithSegmenter(oracle.NewReplaySegmenter()).Build()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p.Config().Segment.Zoom, 1e-9)
	assert.Equal(t, []string{"segment"}, p.Stages())
}

func TestProcessPage_EndToEnd(t *testing.T) {
	p, err := NewBuilder().
		WithBinarizer(oracle.PassthroughBinarizer{}).
		WithSegmenter(oracle.NewReplaySegmenter(oneLine())).
		WithRecognizer(&oracle.ReplayRecognizer{Records: []oracle.Record{hi()}}).
		WithAggregation(textequiv.DefaultOptions()).
		Build()
	require.NoError(t, err)

	pg := newPage("p1")
	require.NoError(t, p.ProcessPage(context.Background(), pg))

	require.Len(t, pg.Binarized, 1)
	assert.Same(t, pg.Binarized[0].Image, pg.Image, "later stages see the binarized page")
	require.Len(t, pg.Layout.AlternativeImages, 1)

	require.NotNil(t, pg.Segmentation)
	assert.Equal(t, 1, pg.Segmentation.Regions)
	assert.Equal(t, 1, pg.Segmentation.Lines)

	require.NotNil(t, pg.Recognition)
	assert.Equal(t, 1, pg.Recognition.Recognized)

	region, ok := pg.Layout.Element("region_0001")
	require.True(t, ok)
	assert.Equal(t, "Hi", region.Text())
	assert.InDelta(t, 0.8, region.Conf(), 1e-9)
	assert.Positive(t, pg.Duration)
}

func TestProcessPage_Errors(t *testing.T) {
	p, err := NewBuilder().WithBinarizer(failingBinarizer{}).Build()
	require.NoError(t, err)

	err = p.ProcessPage(context.Background(), newPage("p"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binarize")

	pg := newPage("p")
	pg.Image = nil
	assert.Error(t, p.ProcessPage(context.Background(), pg))
	assert.Error(t, p.ProcessPage(context.Background(), &Page{FileID: "none"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.ProcessPage(ctx, newPage("p")), context.Canceled)
}

func TestProcessPage_AggregateOnly(t *testing.T) {
	p, err := NewBuilder().WithAggregation(textequiv.DefaultOptions()).Build()
	require.NoError(t, err)

	pg := &Page{FileID: "p", Layout: layout.NewPage("p.png", 10, 10)}
	require.NoError(t, pg.Layout.AddRegion("", &layout.Element{ID: "r"}))
	require.NoError(t, pg.Layout.AddLine("r", &layout.Element{ID: "l"}))
	require.NoError(t, pg.Layout.AddWord("l", &layout.Element{ID: "w"}))
	g := &layout.Element{ID: "g"}
	g.SetText("x", 1)
	require.NoError(t, pg.Layout.AddGlyph("w", g))

	require.NoError(t, p.ProcessPage(context.Background(), pg), "aggregation needs no image")
	assert.Equal(t, 3, pg.Updated)
	r, _ := pg.Layout.Element("r")
	assert.Equal(t, "x", r.Text())
}

func TestRenderOverlay(t *testing.T) {
	page := layout.NewPage("p.png", 50, 50)
	require.NoError(t, page.AddRegion("", &layout.Element{ID: "r", Coords: box(5, 5, 45, 45)}))
	require.NoError(t, page.AddLine("r", &layout.Element{
		ID:       "l",
		Coords:   box(10, 10, 40, 20),
		Baseline: geometry.Polyline{{X: 10, Y: 18}, {X: 40, Y: 18}},
	}))

	src := image.NewRGBA(image.Rect(0, 0, 50, 50))
	out := RenderOverlay(src, page)

	assert.Equal(t, color.RGBA{}, src.RGBAAt(5, 25), "source is not modified")
	assert.Equal(t, RegionColor, out.RGBAAt(5, 25))
	assert.Equal(t, LineColor, out.RGBAAt(25, 10))
	assert.Equal(t, BaselineColor, out.RGBAAt(25, 18))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(25, 30))
}
