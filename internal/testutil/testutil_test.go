package testutil

import (
	"context"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
)

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.True(t, FileExists(filepath.Join(root, "go.mod")))
	assert.Contains(t, GetTestDataDir(t), "testdata")
}

func TestEnsureDirAndWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	assert.False(t, FileExists(dir))

	path := WriteFile(t, dir, "sub/a.txt", "x")
	assert.True(t, FileExists(path))
	assert.False(t, FileExists("/non/existent/file"))
}

func TestGenerateTextImage(t *testing.T) {
	config := DefaultTestImageConfig()
	img, lines := GenerateTextImage(config)

	assert.Equal(t, SmallSize.Width, img.Bounds().Dx())
	require.Len(t, lines, 2)
	first := lines[0]
	assert.Equal(t, "Sample Text", first.Text)
	assert.InDelta(t, 20, first.Box.MinX, 1e-9)
	assert.InDelta(t, 20, first.Box.MinY, 1e-9)
	assert.InDelta(t, 11*7, first.Box.Width(), 1e-9, "basicfont glyphs are 7px wide")
	assert.Greater(t, lines[1].Box.MinY, first.Box.MaxY)
	assert.InDelta(t, first.Baseline[0].Y, first.Baseline[1].Y, 1e-9)

	inked := false
	for x := int(first.Box.MinX); x < int(first.Box.MaxX) && !inked; x++ {
		for y := int(first.Box.MinY); y < int(first.Box.MaxY); y++ {
			if img.RGBAAt(x, y) != (color.RGBA{255, 255, 255, 255}) {
				inked = true
				break
			}
		}
	}
	assert.True(t, inked, "text is drawn inside its box")
}

func TestCompareImages(t *testing.T) {
	white := CreateTestImage(10, 10, color.White)
	assert.True(t, CompareImages(white, CreateTestImage(10, 10, color.White), 0))
	assert.False(t, CompareImages(white, CreateTestImage(10, 10, color.Black), 0.1))
	assert.False(t, CompareImages(white, CreateTestImage(5, 10, color.White), 1))
}

func TestTextPageFixtures(t *testing.T) {
	config := DefaultTestImageConfig()
	page, img, seg := TextPage(config)
	assert.Equal(t, config.Size.Width, page.Width)
	assert.Equal(t, img.Bounds().Dy(), page.Height)
	require.Len(t, seg.Regions, 1)
	require.Len(t, seg.Lines, 2)
	for _, l := range seg.Lines {
		assert.True(t, seg.Regions[0].Boundary.CoversPolygon(l.Boundary))
	}

	recs := RecordsFor(config, 0.5)
	require.Len(t, recs, 2)
	assert.Len(t, recs[0].Cuts, len([]rune("Sample Text")))
	assert.Len(t, recs[0].Confidences, len(recs[0].Cuts))
}

func TestWriteReplayFiles(t *testing.T) {
	dir := t.TempDir()
	config := DefaultTestImageConfig()
	page, _, seg := TextPage(config)

	segPath := WriteSegmentations(t, dir, "seg.yaml", seg, &oracle.Segmentation{})
	segs, err := oracle.LoadSegmentations(segPath)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, seg.Lines[0].Boundary, segs[0].Lines[0].Boundary)
	assert.Equal(t, seg.Lines[1].Baseline, segs[0].Lines[1].Baseline)
	assert.True(t, segs[1].Empty())

	recPath := WriteRecords(t, dir, "rec.yaml", RecordsFor(config, 0.75))
	recs, err := oracle.LoadRecords(recPath)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "second line", recs[1].Prediction)
	assert.InDelta(t, 0.75, recs[1].Confidences[0], 1e-9)

	pagePath := WritePage(t, dir, "page.yaml", page)
	loaded, err := layout.LoadFile(pagePath)
	require.NoError(t, err)
	assert.Equal(t, page.Width, loaded.Width)

	got, err := oracle.NewReplaySegmenter(segs...).Segment(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, got.Regions, 1)
}
