package segment

import (
	"slices"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
)

// EstimateScale returns half the median bounding-box height of the line
// boundaries, or 0 when there are none.
func EstimateScale(boundaries []geometry.Polygon) float64 {
	heights := make([]float64, 0, len(boundaries))
	for _, b := range boundaries {
		if len(b) == 0 {
			continue
		}
		heights = append(heights, b.Bounds().Height())
	}
	if len(heights) == 0 {
		return 0
	}
	slices.Sort(heights)
	mid := len(heights) / 2
	median := heights[mid]
	if len(heights)%2 == 0 {
		median = (heights[mid-1] + heights[mid]) / 2
	}
	return median / 2
}
