package support

import (
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
)

const areaTolerance = 1e-6

// thePolygon defines a named input polygon.
func (testCtx *TestContext) thePolygon(name, points string) error {
	p, err := parsePolygon(points)
	if err != nil {
		return err
	}
	if _, exists := testCtx.Polygons[name]; !exists {
		testCtx.Names = append(testCtx.Names, name)
	}
	testCtx.Polygons[name] = p
	return nil
}

// iUnionThePolygonsAtScale merges all defined polygons in definition order.
func (testCtx *TestContext) iUnionThePolygonsAtScale(scale float64) error {
	polys := make([]geometry.Polygon, 0, len(testCtx.Names))
	for _, name := range testCtx.Names {
		polys = append(polys, testCtx.Polygons[name])
	}
	testCtx.Result, testCtx.LastError = geometry.Union(polys, scale)
	return nil
}

func (testCtx *TestContext) iRepairThePolygon(name string) error {
	p, ok := testCtx.Polygons[name]
	if !ok {
		return fmt.Errorf("polygon %q is not defined", name)
	}
	testCtx.Result, testCtx.LastError = geometry.Repair(p)
	return nil
}

func (testCtx *TestContext) theOperationShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("expected success, got: %w", testCtx.LastError)
	}
	return nil
}

func (testCtx *TestContext) theOperationShouldFailWithAGeometryError() error {
	if testCtx.LastError == nil {
		return errors.New("expected a geometry error, operation succeeded")
	}
	if !geometry.IsGeometryError(testCtx.LastError) {
		return fmt.Errorf("expected a geometry error, got: %w", testCtx.LastError)
	}
	return nil
}

func (testCtx *TestContext) theResultShouldBeAValidPolygon() error {
	if !testCtx.Result.IsValid() {
		return fmt.Errorf("result is not a valid polygon: %v", testCtx.Result)
	}
	return nil
}

func (testCtx *TestContext) theResultShouldCoverPolygon(name string) error {
	p, ok := testCtx.Polygons[name]
	if !ok {
		return fmt.Errorf("polygon %q is not defined", name)
	}
	if !testCtx.Result.CoversPolygon(p) {
		return fmt.Errorf("result %v does not cover polygon %q", testCtx.Result, name)
	}
	return nil
}

func (testCtx *TestContext) theResultShouldCoverThePoint(point string) error {
	pt, err := parsePoint(point)
	if err != nil {
		return err
	}
	if !testCtx.Result.CoversPoint(pt) {
		return fmt.Errorf("result does not cover %v", pt)
	}
	return nil
}

func (testCtx *TestContext) theResultShouldNotCoverThePoint(point string) error {
	pt, err := parsePoint(point)
	if err != nil {
		return err
	}
	if testCtx.Result.CoversPoint(pt) {
		return fmt.Errorf("result unexpectedly covers %v", pt)
	}
	return nil
}

func (testCtx *TestContext) theResultAreaShouldBeAbout(area float64) error {
	if got := testCtx.Result.Area(); !almostEqual(got, area, areaTolerance) {
		return fmt.Errorf("expected area %g, got %g", area, got)
	}
	return nil
}

func (testCtx *TestContext) theResultHeightShouldBeAbout(height float64) error {
	if got := testCtx.Result.Bounds().Height(); !almostEqual(got, height, areaTolerance) {
		return fmt.Errorf("expected height %g, got %g", height, got)
	}
	return nil
}

func (testCtx *TestContext) theResultShouldHaveVertices(n int) error {
	if len(testCtx.Result) != n {
		return fmt.Errorf("expected %d vertices, got %d: %v", n, len(testCtx.Result), testCtx.Result)
	}
	return nil
}

// RegisterGeometrySteps registers polygon repair and union steps.
func (testCtx *TestContext) RegisterGeometrySteps(sc *godog.ScenarioContext) {
	sc.Step(`^the polygon "([^"]*)" with points "([^"]*)"$`, testCtx.thePolygon)
	sc.Step(`^I union the polygons at scale (\d+(?:\.\d+)?)$`, testCtx.iUnionThePolygonsAtScale)
	sc.Step(`^I repair the polygon "([^"]*)"$`, testCtx.iRepairThePolygon)
	sc.Step(`^the operation should succeed$`, testCtx.theOperationShouldSucceed)
	sc.Step(`^the operation should fail with a geometry error$`, testCtx.theOperationShouldFailWithAGeometryError)
	sc.Step(`^the result should be a valid polygon$`, testCtx.theResultShouldBeAValidPolygon)
	sc.Step(`^the result should cover polygon "([^"]*)"$`, testCtx.theResultShouldCoverPolygon)
	sc.Step(`^the result should cover the point "([^"]*)"$`, testCtx.theResultShouldCoverThePoint)
	sc.Step(`^the result should not cover the point "([^"]*)"$`, testCtx.theResultShouldNotCoverThePoint)
	sc.Step(`^the result area should be about (-?\d+(?:\.\d+)?)$`, testCtx.theResultAreaShouldBeAbout)
	sc.Step(`^the result height should be about (-?\d+(?:\.\d+)?)$`, testCtx.theResultHeightShouldBeAbout)
	sc.Step(`^the result should have (\d+) vertices$`, testCtx.theResultShouldHaveVertices)
}
