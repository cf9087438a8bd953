package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notched = Polygon{{0, 0}, {10, 0}, {10, 10}, {7, 10}, {7, 3}, {3, 3}, {3, 10}, {0, 10}}

func TestCovers(t *testing.T) {
	tests := []struct {
		name     string
		poly     Polygon
		line     Polyline
		expected bool
	}{
		{"inside", square(0, 0, 10), Polyline{{1, 5}, {9, 5}}, true},
		{"along boundary", square(0, 0, 10), Polyline{{0, 0}, {10, 0}}, true},
		{"leaves polygon", square(0, 0, 10), Polyline{{5, 5}, {15, 5}}, false},
		{"crosses notch", notched, Polyline{{1, 8}, {9, 8}}, false},
		{"below notch", notched, Polyline{{1, 2}, {9, 2}}, true},
		{"empty line", square(0, 0, 10), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.poly.Covers(tt.line))
		})
	}
}

func TestIntersects(t *testing.T) {
	sq := square(0, 0, 10)
	assert.True(t, sq.Intersects(Polyline{{-5, 5}, {15, 5}}))
	assert.True(t, sq.Intersects(Polyline{{2, 2}, {3, 3}}))
	assert.True(t, sq.Intersects(Polyline{{10, -5}, {10, 0}}))
	assert.False(t, sq.Intersects(Polyline{{20, 0}, {20, 10}}))
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 9.0, Distance(square(0, 0, 1), square(10, 0, 1)), 1e-9)
	assert.Equal(t, 0.0, Distance(square(0, 0, 4), square(2, 2, 4)))
	assert.Equal(t, 0.0, Distance(square(0, 0, 10), square(3, 3, 1)))
}

func TestClipPolygon(t *testing.T) {
	page := Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	inside := square(1, 1, 2)
	assert.True(t, ClipPolygon(inside, page).Equal(inside))

	out := ClipPolygon(square(-5, -5, 10), page)
	require.NotNil(t, out)
	assert.InDelta(t, 25.0, out.Area(), 1e-9)
	bb := out.Bounds()
	assert.Equal(t, 0.0, bb.MinX)
	assert.Equal(t, 5.0, bb.MaxX)

	assert.Nil(t, ClipPolygon(square(20, 20, 2), page))
}

func TestClipPolyline(t *testing.T) {
	page := Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	out := ClipPolyline(Polyline{{-5, 5}, {15, 5}}, page)
	require.Len(t, out, 2)
	assert.InDelta(t, 10.0, out.Length(), 1e-9)

	assert.Nil(t, ClipPolyline(Polyline{{20, 5}, {30, 5}}, page))

	kept := Polyline{{1, 1}, {9, 9}}
	assert.Equal(t, kept, ClipPolyline(kept, page))
}

func TestPrepared(t *testing.T) {
	region := Prepare(square(0, 0, 100), 20)

	assert.True(t, region.CoversPoint(Point{50, 50}))
	assert.True(t, region.CoversPoint(Point{110, 50}))
	assert.False(t, region.CoversPoint(Point{130, 50}))

	protruding := Polygon{{-10, 10}, {50, 10}, {50, 20}, {-10, 20}}
	assert.True(t, region.ContainsPolygon(protruding))

	outside := Polygon{{-30, 10}, {50, 10}, {50, 20}, {-30, 20}}
	assert.False(t, region.ContainsPolygon(outside))

	strict := Prepare(square(0, 0, 100), 0)
	assert.False(t, strict.ContainsPolygon(protruding))
	assert.True(t, strict.ContainsPolygon(square(10, 10, 5)))
}

func TestOneSidedBuffer(t *testing.T) {
	ltr := OneSidedBuffer(Polyline{{0, 10}, {10, 10}}, 5)
	require.Len(t, ltr, 1)
	assert.True(t, ltr[0].Equal(Polygon{{0, 10}, {10, 10}, {10, 5}, {0, 5}}))

	rtl := OneSidedBuffer(Polyline{{10, 10}, {0, 10}}, 5)
	require.Len(t, rtl, 1)
	assert.True(t, rtl[0].Equal(Polygon{{10, 10}, {0, 10}, {0, 5}, {10, 5}}))

	assert.Empty(t, OneSidedBuffer(Polyline{{3, 3}, {3, 3}}, 5))
}

func TestFrame(t *testing.T) {
	f := Frame{OffsetX: 100, OffsetY: 50, Zoom: 2}
	assert.Equal(t, Point{105, 60}, f.ToPage(Point{10, 20}))
	assert.True(t, f.PolygonToPage(Polygon{{1, 1}, {3, 1}, {3, 3}}).Equal(Polygon{{101, 51}, {102, 51}, {102, 52}}))
}
