package layout

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
)

// Kind identifies the level of an element in the page hierarchy.
type Kind int

const (
	KindRegion Kind = iota
	KindLine
	KindWord
	KindGlyph
)

func (k Kind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindLine:
		return "line"
	case KindWord:
		return "word"
	case KindGlyph:
		return "glyph"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a level name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "region":
		return KindRegion, nil
	case "line":
		return KindLine, nil
	case "word":
		return KindWord, nil
	case "glyph":
		return KindGlyph, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}

// ReadingDirection is the optional reading-direction attribute of an element.
// The empty value means "inherit".
type ReadingDirection string

const (
	DirectionUnset       ReadingDirection = ""
	DirectionLeftToRight ReadingDirection = "left-to-right"
	DirectionRightToLeft ReadingDirection = "right-to-left"
	DirectionTopToBottom ReadingDirection = "top-to-bottom"
	DirectionBottomToTop ReadingDirection = "bottom-to-top"
)

// LineOrder is the optional order of lines within a region.
type LineOrder string

const (
	LineOrderUnset       LineOrder = ""
	LineOrderTopToBottom LineOrder = "top-to-bottom"
	LineOrderBottomToTop LineOrder = "bottom-to-top"
	LineOrderLeftToRight LineOrder = "left-to-right"
	LineOrderRightToLeft LineOrder = "right-to-left"
)

// TextEquiv is one ranked text alternative.
type TextEquiv struct {
	Text string  `yaml:"text" json:"text"`
	Conf float64 `yaml:"conf" json:"conf"`
}

// AlternativeImage references a derived image of an element, such as a
// binarized crop.
type AlternativeImage struct {
	Filename string `yaml:"filename" json:"filename"`
	Comments string `yaml:"comments,omitempty" json:"comments,omitempty"`
}

// Element is a node of the page tree: a region, text line, word or glyph.
// Children are owned by id through the page arena.
type Element struct {
	ID                string
	Kind              Kind
	Type              string
	Coords            geometry.Polygon
	Baseline          geometry.Polyline
	TextEquivs        []TextEquiv
	Direction         ReadingDirection
	LineOrder         LineOrder
	AlternativeImages []AlternativeImage
	Tags              map[string]string

	children []string
}

// Text returns the first text alternative, or an empty string.
func (e *Element) Text() string {
	if len(e.TextEquivs) == 0 {
		return ""
	}
	return e.TextEquivs[0].Text
}

// Conf returns the confidence of the first text alternative, or 0.
func (e *Element) Conf() float64 {
	if len(e.TextEquivs) == 0 {
		return 0
	}
	return e.TextEquivs[0].Conf
}

// SetText replaces all text alternatives with a single one.
func (e *Element) SetText(text string, conf float64) {
	e.TextEquivs = []TextEquiv{{Text: text, Conf: conf}}
}

// nonTextTypes are region types that never carry text.
var nonTextTypes = map[string]bool{
	"image":       true,
	"separator":   true,
	"graphic":     true,
	"chart":       true,
	"linedrawing": true,
	"noise":       true,
	"maths":       true,
	"chem":        true,
	"music":       true,
	"advert":      true,
}

// IsTextType reports whether a region of the given type carries text.
// Untyped regions and text subtypes such as "paragraph" or "heading" do.
func IsTextType(regionType string) bool {
	return !nonTextTypes[strings.ToLower(regionType)]
}

// IsText reports whether the element is a text-bearing region or any
// element below a region.
func (e *Element) IsText() bool {
	return e.Kind != KindRegion || IsTextType(e.Type)
}
