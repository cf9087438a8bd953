package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/segment"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Named input polygons in definition order
	Names    []string
	Polygons map[string]geometry.Polygon

	// Result of the last geometry operation
	Result    geometry.Polygon
	LastError error

	// Text hierarchy under test
	Page *layout.Page

	// Line assignment inputs and output
	Regions     []oracle.RegionResult
	RegionNames []string
	Lines       []geometry.Polygon
	Assignment  *segment.Assignment
}

// NewTestContext creates an empty scenario context.
func NewTestContext() *TestContext {
	return &TestContext{Polygons: make(map[string]geometry.Polygon)}
}

// Reset clears all state left by a previous scenario.
func (testCtx *TestContext) Reset() {
	*testCtx = *NewTestContext()
}

// Register registers every step definition of the suite.
func (testCtx *TestContext) Register(sc *godog.ScenarioContext) {
	testCtx.RegisterGeometrySteps(sc)
	testCtx.RegisterTextSteps(sc)
	testCtx.RegisterAssignSteps(sc)
}

func parsePolygon(points string) (geometry.Polygon, error) {
	pts, err := layout.ParsePoints(strings.TrimSpace(points))
	if err != nil {
		return nil, fmt.Errorf("invalid points %q: %w", points, err)
	}
	return geometry.Polygon(pts), nil
}

func parsePoint(s string) (geometry.Point, error) {
	pts, err := layout.ParsePoints(strings.TrimSpace(s))
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	if len(pts) != 1 {
		return geometry.Point{}, fmt.Errorf("expected one point, got %d", len(pts))
	}
	return pts[0], nil
}

func almostEqual(a, b, tolerance float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
