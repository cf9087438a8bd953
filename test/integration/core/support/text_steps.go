package support

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/textequiv"
)

const confTolerance = 1e-9

func (testCtx *TestContext) aPageWithTextRegion(id string) error {
	testCtx.Page = layout.NewPage("page.png", 100, 100)
	return testCtx.Page.AddRegion("", &layout.Element{ID: id})
}

// aLineWithGlyphs adds a line holding one word whose glyphs are given as
// space separated text:confidence pairs.
func (testCtx *TestContext) aLineWithGlyphs(lineID, regionID, glyphs string) error {
	if testCtx.Page == nil {
		return errors.New("no page defined")
	}
	if err := testCtx.Page.AddLine(regionID, &layout.Element{ID: lineID}); err != nil {
		return err
	}
	wordID := lineID + "_w"
	if err := testCtx.Page.AddWord(lineID, &layout.Element{ID: wordID}); err != nil {
		return err
	}
	for i, pair := range strings.Fields(glyphs) {
		text, confStr, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("glyph %q is not text:confidence", pair)
		}
		conf, err := strconv.ParseFloat(confStr, 64)
		if err != nil {
			return fmt.Errorf("glyph %q: %w", pair, err)
		}
		g := &layout.Element{ID: fmt.Sprintf("%s_g%d", wordID, i)}
		g.SetText(text, conf)
		if err := testCtx.Page.AddGlyph(wordID, g); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) theDirectionOfElementIs(id, direction string) error {
	e, err := testCtx.element(id)
	if err != nil {
		return err
	}
	e.Direction = layout.ReadingDirection(direction)
	return nil
}

func (testCtx *TestContext) iAggregateTextFromLevel(level string) error {
	kind, err := layout.ParseKind(level)
	if err != nil {
		return err
	}
	if testCtx.Page == nil {
		return errors.New("no page defined")
	}
	textequiv.Update(testCtx.Page, textequiv.Options{Level: kind, Overwrite: true})
	return nil
}

// elementShouldHaveText compares against a Go-quoted string so that
// expected texts may contain \n.
func (testCtx *TestContext) elementShouldHaveText(id, quoted string) error {
	want, err := strconv.Unquote(`"` + quoted + `"`)
	if err != nil {
		return fmt.Errorf("invalid expected text %q: %w", quoted, err)
	}
	e, err := testCtx.element(id)
	if err != nil {
		return err
	}
	if got := e.Text(); got != want {
		return fmt.Errorf("element %s: expected text %q, got %q", id, want, got)
	}
	return nil
}

func (testCtx *TestContext) elementShouldHaveConfidence(id string, conf float64) error {
	e, err := testCtx.element(id)
	if err != nil {
		return err
	}
	if got := e.Conf(); !almostEqual(got, conf, confTolerance) {
		return fmt.Errorf("element %s: expected confidence %g, got %g", id, conf, got)
	}
	return nil
}

func (testCtx *TestContext) element(id string) (*layout.Element, error) {
	if testCtx.Page == nil {
		return nil, errors.New("no page defined")
	}
	e, ok := testCtx.Page.Element(id)
	if !ok {
		return nil, fmt.Errorf("element %q not found", id)
	}
	return e, nil
}

// RegisterTextSteps registers text aggregation steps.
func (testCtx *TestContext) RegisterTextSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a page with text region "([^"]*)"$`, testCtx.aPageWithTextRegion)
	sc.Step(`^a line "([^"]*)" in region "([^"]*)" with glyphs "([^"]*)"$`, testCtx.aLineWithGlyphs)
	sc.Step(`^the reading direction of "([^"]*)" is "([^"]*)"$`, testCtx.theDirectionOfElementIs)
	sc.Step(`^I aggregate text from (region|line|word|glyph) level$`, testCtx.iAggregateTextFromLevel)
	sc.Step(`^element "([^"]*)" should have text "((?:[^"\\]|\\.)*)"$`, testCtx.elementShouldHaveText)
	sc.Step(`^element "([^"]*)" should have confidence (-?\d+(?:\.\d+)?)$`, testCtx.elementShouldHaveConfidence)
}
