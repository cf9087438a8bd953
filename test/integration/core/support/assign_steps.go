package support

import (
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/segment"
)

func (testCtx *TestContext) aRegionWithBoundary(regionType, name, points string) error {
	p, err := parsePolygon(points)
	if err != nil {
		return err
	}
	testCtx.Regions = append(testCtx.Regions, oracle.RegionResult{Type: regionType, Boundary: p})
	testCtx.RegionNames = append(testCtx.RegionNames, name)
	return nil
}

func (testCtx *TestContext) aLineWithBoundary(points string) error {
	p, err := parsePolygon(points)
	if err != nil {
		return err
	}
	testCtx.Lines = append(testCtx.Lines, p)
	return nil
}

func (testCtx *TestContext) iAssignTheLinesWithMargin(margin float64) error {
	testCtx.Assignment = segment.NewAssigner(margin, 1, nil).Assign(testCtx.Regions, testCtx.Lines)
	return nil
}

// owner returns the output region holding line i.
func (testCtx *TestContext) owner(line int) (*segment.AssignedRegion, error) {
	if testCtx.Assignment == nil {
		return nil, errors.New("lines have not been assigned")
	}
	var found *segment.AssignedRegion
	for i := range testCtx.Assignment.Regions {
		r := &testCtx.Assignment.Regions[i]
		for _, l := range r.Lines {
			if l != line {
				continue
			}
			if found != nil {
				return nil, fmt.Errorf("line %d is assigned to more than one region", line)
			}
			found = r
		}
	}
	if found == nil {
		return nil, fmt.Errorf("line %d is not assigned to any region", line)
	}
	return found, nil
}

func (testCtx *TestContext) lineShouldBelongToRegion(line int, name string) error {
	r, err := testCtx.owner(line)
	if err != nil {
		return err
	}
	if r.Synthesized {
		return fmt.Errorf("line %d landed in a synthesized region", line)
	}
	if got := testCtx.RegionNames[r.Index]; got != name {
		return fmt.Errorf("line %d: expected region %q, got %q", line, name, got)
	}
	return nil
}

func (testCtx *TestContext) lineShouldBelongToASynthesizedRegion(line int) error {
	r, err := testCtx.owner(line)
	if err != nil {
		return err
	}
	if !r.Synthesized {
		return fmt.Errorf("line %d: expected a synthesized region, got %q", line, testCtx.RegionNames[r.Index])
	}
	if len(r.Lines) != 1 {
		return fmt.Errorf("synthesized region holds %d lines", len(r.Lines))
	}
	if !r.Boundary.Equal(testCtx.Assignment.Lines[line]) {
		return fmt.Errorf("synthesized region %v differs from line boundary %v", r.Boundary, testCtx.Assignment.Lines[line])
	}
	return nil
}

func (testCtx *TestContext) thereShouldBeAssignmentWarnings(n int) error {
	if testCtx.Assignment == nil {
		return errors.New("lines have not been assigned")
	}
	if got := len(testCtx.Assignment.Warnings); got != n {
		return fmt.Errorf("expected %d warnings, got %d", n, got)
	}
	return nil
}

func (testCtx *TestContext) regionShouldHaveNoLines(name string) error {
	if testCtx.Assignment == nil {
		return errors.New("lines have not been assigned")
	}
	for _, r := range testCtx.Assignment.Regions {
		if r.Synthesized || testCtx.RegionNames[r.Index] != name {
			continue
		}
		if len(r.Lines) != 0 {
			return fmt.Errorf("region %q holds lines %v", name, r.Lines)
		}
		return nil
	}
	return fmt.Errorf("region %q not in the assignment", name)
}

// RegisterAssignSteps registers line to region assignment steps.
func (testCtx *TestContext) RegisterAssignSteps(sc *godog.ScenarioContext) {
	sc.Step(`^an? "([^"]*)" region "([^"]*)" with boundary "([^"]*)"$`, testCtx.aRegionWithBoundary)
	sc.Step(`^a line with boundary "([^"]*)"$`, testCtx.aLineWithBoundary)
	sc.Step(`^I assign the lines with margin (\d+(?:\.\d+)?)$`, testCtx.iAssignTheLinesWithMargin)
	sc.Step(`^line (\d+) should belong to region "([^"]*)"$`, testCtx.lineShouldBelongToRegion)
	sc.Step(`^line (\d+) should belong to a synthesized region equal to its boundary$`, testCtx.lineShouldBelongToASynthesizedRegion)
	sc.Step(`^there should be (\d+) assignment warnings?$`, testCtx.thereShouldBeAssignmentWarnings)
	sc.Step(`^region "([^"]*)" should hold no lines$`, testCtx.regionShouldHaveNoLines)
}
