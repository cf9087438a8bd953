package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
)

func TestAssign_ContainedAndUnassigned(t *testing.T) {
	regions := []oracle.RegionResult{{Type: "text", Boundary: rect(0, 0, 100, 100)}}
	lines := []geometry.Polygon{
		rect(10, 10, 90, 30),
		rect(200, 200, 300, 220),
	}

	got := NewAssigner(DefaultRegionMargin, 1, nil).Assign(regions, lines)

	require.Len(t, got.Regions, 2)
	assert.Equal(t, 0, got.Regions[0].Index)
	assert.Equal(t, []int{0}, got.Regions[0].Lines)
	assert.False(t, got.Regions[0].Synthesized)

	synth := got.Regions[1]
	assert.True(t, synth.Synthesized)
	assert.Equal(t, -1, synth.Index)
	assert.Equal(t, []int{1}, synth.Lines)
	assert.True(t, synth.Boundary.Equal(lines[1]))

	require.Len(t, got.Warnings, 1)
	assert.Equal(t, 1, got.Warnings[0].LineIndex)
	assert.Contains(t, got.Warnings[0].Error(), "line 1")
	assert.Empty(t, got.Errors)
}

func TestAssign_Margin(t *testing.T) {
	regions := []oracle.RegionResult{{Type: "text", Boundary: rect(0, 0, 100, 100)}}
	lines := []geometry.Polygon{rect(10, 10, 110, 30)}

	got := NewAssigner(20, 1, nil).Assign(regions, lines)
	assert.Equal(t, []int{0}, got.Regions[0].Lines)

	got = NewAssigner(0, 1, nil).Assign(regions, lines)
	assert.Empty(t, got.Regions[0].Lines)
	assert.Len(t, got.Warnings, 1)

	// At zoom 4 the 20px tolerance shrinks to 5px on the page.
	got = NewAssigner(20, 4, nil).Assign(regions, lines)
	assert.Empty(t, got.Regions[0].Lines)
	assert.InDelta(t, 5, NewAssigner(20, 4, nil).Margin, 1e-9)
}

func TestAssign_FirstRegionWins(t *testing.T) {
	regions := []oracle.RegionResult{
		{Type: "text", Boundary: rect(0, 0, 100, 100)},
		{Type: "paragraph", Boundary: rect(0, 0, 120, 120)},
	}
	got := NewAssigner(DefaultRegionMargin, 1, nil).Assign(regions, []geometry.Polygon{rect(10, 10, 50, 20)})
	require.Len(t, got.Regions, 2)
	assert.Equal(t, []int{0}, got.Regions[0].Lines)
	assert.Empty(t, got.Regions[1].Lines)
}

func TestAssign_OverlapIsNotContainment(t *testing.T) {
	regions := []oracle.RegionResult{{Type: "text", Boundary: rect(0, 0, 100, 100)}}
	got := NewAssigner(DefaultRegionMargin, 1, nil).Assign(regions, []geometry.Polygon{rect(50, 50, 200, 70)})
	assert.Empty(t, got.Regions[0].Lines)
	require.Len(t, got.Regions, 2)
	assert.True(t, got.Regions[1].Synthesized)
}

func TestAssign_TextTypes(t *testing.T) {
	regions := []oracle.RegionResult{
		{Type: "image", Boundary: rect(0, 0, 100, 100)},
		{Type: "text", Boundary: rect(200, 0, 300, 100)},
	}
	lines := []geometry.Polygon{rect(10, 10, 90, 30), rect(210, 10, 290, 30)}

	got := NewAssigner(DefaultRegionMargin, 1, nil).Assign(regions, lines)
	require.Len(t, got.Regions, 3)
	assert.False(t, got.Regions[0].Text)
	assert.Empty(t, got.Regions[0].Lines)
	assert.Equal(t, []int{1}, got.Regions[1].Lines)
	assert.Equal(t, []int{0}, got.Regions[2].Lines)

	got = NewAssigner(DefaultRegionMargin, 1, []string{"Heading"}).Assign(regions, lines)
	assert.False(t, got.Regions[1].Text)
	assert.Len(t, got.Warnings, 2)
}

func TestAssign_Empty(t *testing.T) {
	got := NewAssigner(DefaultRegionMargin, 1, nil).Assign(nil, nil)
	assert.Empty(t, got.Regions)
	assert.Empty(t, got.Warnings)

	got = NewAssigner(DefaultRegionMargin, 1, nil).Assign(nil, []geometry.Polygon{rect(0, 0, 10, 10), rect(20, 0, 30, 10)})
	require.Len(t, got.Regions, 2)
	for i, r := range got.Regions {
		assert.True(t, r.Synthesized)
		assert.Equal(t, []int{i}, r.Lines)
	}
}

func TestAssign_SkipsBrokenGeometry(t *testing.T) {
	regions := []oracle.RegionResult{
		{Type: "text", Boundary: geometry.Polygon{{X: 0, Y: 0}}},
		{Type: "text", Boundary: rect(0, 0, 100, 100)},
	}
	lines := []geometry.Polygon{{{X: 1, Y: 1}, {X: 2, Y: 2}}, rect(10, 10, 20, 20)}

	got := NewAssigner(DefaultRegionMargin, 1, nil).Assign(regions, lines)
	assert.Len(t, got.Errors, 2)
	require.Len(t, got.Regions, 1)
	assert.Equal(t, 1, got.Regions[0].Index)
	assert.Equal(t, []int{1}, got.Regions[0].Lines)
	assert.Nil(t, got.Lines[0])
}
