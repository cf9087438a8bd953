package geometry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float64) Polygon {
	return Polygon{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name         string
		in           Polygon
		expectedArea float64
		expectedLen  int
	}{
		{
			name:         "bow-tie becomes triangle",
			in:           Polygon{{0, 0}, {1, 1}, {1, 0}, {0, 1}},
			expectedArea: 0.5,
			expectedLen:  3,
		},
		{
			name:         "scaled bow-tie",
			in:           Polygon{{0, 0}, {10, 10}, {10, 0}, {0, 10}},
			expectedArea: 50,
			expectedLen:  3,
		},
		{
			name:         "valid square unchanged",
			in:           square(0, 0, 4),
			expectedArea: 16,
			expectedLen:  4,
		},
		{
			name:         "closing point dropped",
			in:           Polygon{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
			expectedArea: 16,
			expectedLen:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Repair(tt.in)
			require.NoError(t, err)
			assert.True(t, out.IsValid(), "repaired polygon must be valid: %v", out)
			assert.InDelta(t, tt.expectedArea, out.Area(), 1e-9)
			assert.Len(t, out, tt.expectedLen)
		})
	}
}

func TestRepair_Deterministic(t *testing.T) {
	in := Polygon{{0, 0}, {20, 20}, {20, 0}, {10, 30}, {0, 20}}
	first, err1 := Repair(in)
	second, err2 := Repair(in)
	require.Equal(t, err1, err2)
	assert.True(t, first.Equal(second))
}

func TestRepair_DegenerateAccepted(t *testing.T) {
	in := Polygon{{0, 0}, {1, 0}, {2, 0}}
	out, err := Repair(in)
	require.NoError(t, err)
	assert.True(t, out.Equal(in))
}

func TestRepair_SpikeRemoved(t *testing.T) {
	// square with an antenna folding back on itself along the top edge
	in := Polygon{{0, 0}, {10, 0}, {10, 10}, {5, 10}, {5, 20}, {5, 10}, {0, 10}}
	require.False(t, in.IsValid())
	out, err := Repair(in)
	if err != nil {
		assert.True(t, errors.Is(err, ErrRepairExhausted))
		return
	}
	assert.True(t, out.IsValid())
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		poly  Polygon
		valid bool
	}{
		{"triangle", Polygon{{0, 0}, {4, 0}, {0, 3}}, true},
		{"square", square(1, 1, 2), true},
		{"too few vertices", Polygon{{0, 0}, {1, 1}}, false},
		{"collinear", Polygon{{0, 0}, {1, 0}, {2, 0}}, false},
		{"bow-tie", Polygon{{0, 0}, {1, 1}, {1, 0}, {0, 1}}, false},
		{"repeated vertex", Polygon{{0, 0}, {0, 0}, {1, 0}, {0, 1}}, false},
		{"self-touching", Polygon{{0, 0}, {4, 0}, {2, 2}, {4, 4}, {0, 4}, {2, 2}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.poly.IsValid())
		})
	}
}

func TestSimplifyRing_KeepsThreeVertices(t *testing.T) {
	ring := Polygon{{0, 0}, {5, 0.1}, {10, 0}, {5, -0.1}}
	out := SimplifyRing(ring, 100)
	require.Len(t, out, 3)
	assert.Equal(t, Point{0, 0}, out[0])
}

func TestConvexHull(t *testing.T) {
	pts := []Point{{0, 0}, {2, 0}, {1, 1}, {2, 2}, {0, 2}, {1, 0}}
	hull := ConvexHull(pts)
	assert.Len(t, hull, 4)
	assert.InDelta(t, 4.0, hull.Area(), 1e-9)
}
