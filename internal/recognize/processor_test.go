package recognize

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
)

func rect(x0, y0, x1, y1 float64) geometry.Polygon {
	return geometry.Polygon{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// recordingRecognizer returns fixed records and keeps the descriptor.
type recordingRecognizer struct {
	records []oracle.Record
	err     error
	desc    oracle.Descriptor
	calls   int
}

func (r *recordingRecognizer) Recognize(_ context.Context, _ image.Image, desc oracle.Descriptor) ([]oracle.Record, error) {
	r.calls++
	r.desc = desc
	return r.records, r.err
}

// record builds a record with one 10px wide cut per rune.
func record(text string, confs ...float64) oracle.Record {
	rec := oracle.Record{Prediction: text, Confidences: confs}
	x := 0.0
	for range []rune(text) {
		rec.Cuts = append(rec.Cuts, rect(x, 10, x+10, 30))
		x += 10
	}
	return rec
}

func twoLinePage(t *testing.T) *layout.Page {
	t.Helper()
	p := layout.NewPage("page.png", 200, 200)
	require.NoError(t, p.AddRegion("", &layout.Element{ID: "r"}))
	require.NoError(t, p.AddLine("r", &layout.Element{ID: "l1", Coords: rect(0, 10, 100, 30)}))
	require.NoError(t, p.AddLine("r", &layout.Element{ID: "l2", Coords: rect(0, 40, 100, 60)}))
	return p
}

func element(t *testing.T, p *layout.Page, id string) *layout.Element {
	t.Helper()
	e, ok := p.Element(id)
	require.True(t, ok, "element %s", id)
	return e
}

func TestProcess_BuildsWordsAndGlyphs(t *testing.T) {
	page := twoLinePage(t)
	rec := &recordingRecognizer{records: []oracle.Record{
		record("Hi !", 0.9, 0.8, 0.5, 1.0),
		record("ok", 1, 1),
	}}

	res, err := NewProcessor(rec, DefaultOptions()).Process(context.Background(), page, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Submitted)
	assert.Equal(t, 2, res.Recognized)
	assert.Empty(t, res.Warnings)

	require.Len(t, rec.desc.Lines, 2)
	assert.Equal(t, "horizontal-lr", rec.desc.TextDirection)
	assert.Equal(t, "l1", rec.desc.Lines[0].ID)
	assert.Equal(t, geometry.Polyline{{X: 0, Y: 14}, {X: 100, Y: 14}}, rec.desc.Lines[0].Baseline)

	words := page.Children("l1")
	require.Len(t, words, 2)
	assert.Equal(t, "l1_word0001", words[0].ID)
	assert.Equal(t, "Hi", words[0].Text())
	assert.InDelta(t, 0.85, words[0].Conf(), 1e-9)
	assert.True(t, words[0].Coords.Equal(rect(0, 10, 20, 30)))

	glyphs := page.Children(words[1].ID)
	require.Len(t, glyphs, 1)
	assert.Equal(t, "!", glyphs[0].Text())
	assert.True(t, glyphs[0].Coords.Equal(rect(30, 10, 40, 30)))

	assert.Equal(t, "Hi !", element(t, page, "l1").Text())
	assert.InDelta(t, 0.925, element(t, page, "l1").Conf(), 1e-9)
	assert.Equal(t, "Hi !\nok", element(t, page, "r").Text())
}

func TestProcess_MissingRecords(t *testing.T) {
	page := twoLinePage(t)
	require.NoError(t, page.AddWord("l2", &layout.Element{ID: "old_word"}))
	rec := &recordingRecognizer{records: []oracle.Record{record("a", 0.5)}}

	res, err := NewProcessor(rec, DefaultOptions()).Process(context.Background(), page, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Recognized)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "l2", res.Warnings[0].LineID)
	assert.Contains(t, res.Warnings[0].Error(), "l2")

	_, ok := page.Element("old_word")
	assert.True(t, ok, "skipped line keeps its words")
	assert.Equal(t, "a", element(t, page, "l1").Text())
}

func TestProcess_InconsistentRecord(t *testing.T) {
	page := twoLinePage(t)
	bad := record("abc", 1, 1)
	rec := &recordingRecognizer{records: []oracle.Record{bad, record("x", 1), record("surplus", 1, 1, 1, 1, 1, 1, 1)}}

	res, err := NewProcessor(rec, DefaultOptions()).Process(context.Background(), page, nil)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "l1", res.Warnings[0].LineID)
	assert.Empty(t, page.Children("l1"))
	assert.Equal(t, "x", element(t, page, "l2").Text())
}

func TestProcess_IDCollisionLeavesLineUntouched(t *testing.T) {
	page := twoLinePage(t)
	require.NoError(t, page.AddWord("l1", &layout.Element{ID: "old_word"}))
	glyph := &layout.Element{ID: "old_glyph"}
	glyph.SetText("q", 1)
	require.NoError(t, page.AddGlyph("old_word", glyph))
	require.NoError(t, page.AddWord("l2", &layout.Element{ID: "l1_word0001"}))
	rec := &recordingRecognizer{records: []oracle.Record{record("Hi", 1, 1), record("x", 1)}}

	res, err := NewProcessor(rec, DefaultOptions()).Process(context.Background(), page, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Recognized)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "l1", res.Warnings[0].LineID)
	assert.Contains(t, res.Warnings[0].Error(), "l1_word0001")

	l1 := element(t, page, "l1")
	assert.Equal(t, rect(0, 10, 100, 30), l1.Coords)
	assert.Nil(t, l1.Baseline)
	require.Len(t, page.Children("l1"), 1)
	assert.Equal(t, "old_word", page.Children("l1")[0].ID)
	assert.Equal(t, "q", l1.Text())
	assert.Equal(t, "x", element(t, page, "l2").Text())
}

func TestProcess_SkipsBrokenGeometry(t *testing.T) {
	page := twoLinePage(t)
	element(t, page, "l1").Coords = geometry.Polygon{{X: 0, Y: 0}, {X: 5, Y: 5}}
	rec := &recordingRecognizer{records: []oracle.Record{record("x", 1)}}

	res, err := NewProcessor(rec, DefaultOptions()).Process(context.Background(), page, nil)
	require.NoError(t, err)
	assert.Len(t, res.Errors, 1)
	assert.True(t, geometry.IsGeometryError(res.Errors[0]))
	require.Len(t, rec.desc.Lines, 1)
	assert.Equal(t, "l2", rec.desc.Lines[0].ID)
	assert.Equal(t, "x", element(t, page, "l2").Text())
}

func TestProcess_NormalizesNFC(t *testing.T) {
	page := twoLinePage(t)
	rec := &recordingRecognizer{records: []oracle.Record{record("e\u0301", 1, 1), record("")}}

	_, err := NewProcessor(rec, DefaultOptions()).Process(context.Background(), page, nil)
	require.NoError(t, err)
	assert.Equal(t, "\u00e9", element(t, page, "l1").Text())
	word := page.Children("l1")[0]
	assert.Equal(t, "\u00e9", word.Text())
	assert.Len(t, page.Children(word.ID), 2, "glyphs keep their code points")

	page = twoLinePage(t)
	opts := DefaultOptions()
	opts.NormalizeNFC = false
	_, err = NewProcessor(&recordingRecognizer{records: rec.records}, opts).Process(context.Background(), page, nil)
	require.NoError(t, err)
	assert.Equal(t, "e\u0301", element(t, page, "l1").Text())
}

func TestProcess_EmptyPredictionAndEmptyPage(t *testing.T) {
	page := twoLinePage(t)
	rec := &recordingRecognizer{records: []oracle.Record{record(""), record("")}}
	_, err := NewProcessor(rec, DefaultOptions()).Process(context.Background(), page, nil)
	require.NoError(t, err)
	assert.Equal(t, "", element(t, page, "l1").Text())
	assert.Equal(t, "\n", element(t, page, "r").Text())
	assert.Zero(t, element(t, page, "r").Conf())

	empty := layout.NewPage("page.png", 100, 100)
	rec = &recordingRecognizer{}
	res, err := NewProcessor(rec, DefaultOptions()).Process(context.Background(), empty, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Submitted)
	assert.Zero(t, rec.calls)
}

func TestProcess_Errors(t *testing.T) {
	page := twoLinePage(t)
	_, err := NewProcessor(&recordingRecognizer{err: errors.New("gpu lost")}, DefaultOptions()).
		Process(context.Background(), page, nil)
	assert.ErrorContains(t, err, "gpu lost")

	_, err = NewProcessor(nil, DefaultOptions()).Process(context.Background(), page, nil)
	assert.Error(t, err)
}

func TestProcess_RightToLeftDescriptor(t *testing.T) {
	page := twoLinePage(t)
	page.Direction = layout.DirectionRightToLeft
	rec := &recordingRecognizer{records: []oracle.Record{record("ab", 1, 1), record("c", 1)}}
	_, err := NewProcessor(rec, DefaultOptions()).Process(context.Background(), page, nil)
	require.NoError(t, err)
	assert.Equal(t, "horizontal-rl", rec.desc.TextDirection)
}
