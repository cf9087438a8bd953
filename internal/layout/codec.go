package layout

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
)

// pageDoc is the YAML snapshot of a page.
type pageDoc struct {
	Image             string             `yaml:"image"`
	Width             int                `yaml:"width"`
	Height            int                `yaml:"height"`
	Direction         ReadingDirection   `yaml:"direction,omitempty"`
	LineOrder         LineOrder          `yaml:"line_order,omitempty"`
	AlternativeImages []AlternativeImage `yaml:"alternative_images,omitempty"`
	ReadingOrder      *OrderGroup        `yaml:"reading_order,omitempty"`
	Joins             []Join             `yaml:"joins,omitempty"`
	Regions           []elementDoc       `yaml:"regions,omitempty"`
}

// elementDoc is the YAML form of any element. Which child lists may be set
// depends on the element kind.
type elementDoc struct {
	ID                string             `yaml:"id"`
	Type              string             `yaml:"type,omitempty"`
	Coords            string             `yaml:"coords,omitempty"`
	Baseline          string             `yaml:"baseline,omitempty"`
	Direction         ReadingDirection   `yaml:"direction,omitempty"`
	LineOrder         LineOrder          `yaml:"line_order,omitempty"`
	TextEquivs        []TextEquiv        `yaml:"text_equivs,omitempty"`
	AlternativeImages []AlternativeImage `yaml:"alternative_images,omitempty"`
	Tags              map[string]string  `yaml:"tags,omitempty"`
	Regions           []elementDoc       `yaml:"regions,omitempty"`
	Lines             []elementDoc       `yaml:"lines,omitempty"`
	Words             []elementDoc       `yaml:"words,omitempty"`
	Glyphs            []elementDoc       `yaml:"glyphs,omitempty"`
}

// FormatPoints renders points as space-separated "x,y" pairs.
func FormatPoints(pts []geometry.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = strconv.FormatFloat(p.X, 'f', -1, 64) + "," + strconv.FormatFloat(p.Y, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

// ParsePoints parses space-separated "x,y" pairs.
func ParsePoints(s string) ([]geometry.Point, error) {
	fields := strings.Fields(s)
	pts := make([]geometry.Point, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("malformed point %q", f)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", f, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", f, err)
		}
		pts = append(pts, geometry.Point{X: x, Y: y})
	}
	return pts, nil
}

// Decode reads a page snapshot.
func Decode(r io.Reader) (*Page, error) {
	var doc pageDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	p := NewPage(doc.Image, doc.Width, doc.Height)
	p.Direction = doc.Direction
	p.LineOrder = doc.LineOrder
	p.AlternativeImages = doc.AlternativeImages
	p.ReadingOrder = doc.ReadingOrder
	for _, j := range doc.Joins {
		p.AddJoin(j.From, j.To)
	}
	for _, rd := range doc.Regions {
		if err := p.decodeElement("", KindRegion, rd); err != nil {
			return nil, err
		}
	}
	for _, ref := range p.RegionRefs() {
		if _, ok := p.nodes[ref]; !ok {
			slog.Warn("Reading order references unknown region", "region", ref)
		}
	}
	return p, nil
}

func (p *Page) decodeElement(parentID string, kind Kind, d elementDoc) error {
	coords, err := ParsePoints(d.Coords)
	if err != nil {
		return fmt.Errorf("%s %q coords: %w", kind, d.ID, err)
	}
	baseline, err := ParsePoints(d.Baseline)
	if err != nil {
		return fmt.Errorf("%s %q baseline: %w", kind, d.ID, err)
	}
	e := &Element{
		ID:                d.ID,
		Type:              d.Type,
		Coords:            geometry.Polygon(coords),
		Direction:         d.Direction,
		LineOrder:         d.LineOrder,
		TextEquivs:        d.TextEquivs,
		AlternativeImages: d.AlternativeImages,
		Tags:              d.Tags,
	}
	if len(baseline) > 0 {
		e.Baseline = geometry.Polyline(baseline)
	}

	switch kind {
	case KindRegion:
		err = p.AddRegion(parentID, e)
	case KindLine:
		err = p.AddLine(parentID, e)
	case KindWord:
		err = p.AddWord(parentID, e)
	case KindGlyph:
		err = p.AddGlyph(parentID, e)
	}
	if err != nil {
		return err
	}

	children := []struct {
		kind Kind
		docs []elementDoc
	}{
		{KindRegion, d.Regions},
		{KindLine, d.Lines},
		{KindWord, d.Words},
		{KindGlyph, d.Glyphs},
	}
	for _, c := range children {
		for _, cd := range c.docs {
			if err := p.decodeElement(e.ID, c.kind, cd); err != nil {
				return err
			}
		}
	}
	return nil
}

// Encode writes a page snapshot.
func Encode(w io.Writer, p *Page) error {
	doc := pageDoc{
		Image:             p.ImageFilename,
		Width:             p.Width,
		Height:            p.Height,
		Direction:         p.Direction,
		LineOrder:         p.LineOrder,
		AlternativeImages: p.AlternativeImages,
		ReadingOrder:      p.ReadingOrder,
		Joins:             p.Joins(),
	}
	visited := make(map[string]bool)
	for _, r := range p.TopRegions() {
		doc.Regions = append(doc.Regions, p.encodeElement(r, visited))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}
	return enc.Close()
}

func (p *Page) encodeElement(e *Element, visited map[string]bool) elementDoc {
	visited[e.ID] = true
	d := elementDoc{
		ID:                e.ID,
		Type:              e.Type,
		Coords:            FormatPoints(e.Coords),
		Baseline:          FormatPoints(e.Baseline),
		Direction:         e.Direction,
		LineOrder:         e.LineOrder,
		TextEquivs:        e.TextEquivs,
		AlternativeImages: e.AlternativeImages,
		Tags:              e.Tags,
	}
	for _, c := range p.Children(e.ID) {
		if visited[c.ID] {
			continue
		}
		cd := p.encodeElement(c, visited)
		switch c.Kind {
		case KindRegion:
			d.Regions = append(d.Regions, cd)
		case KindLine:
			d.Lines = append(d.Lines, cd)
		case KindWord:
			d.Words = append(d.Words, cd)
		case KindGlyph:
			d.Glyphs = append(d.Glyphs, cd)
		}
	}
	return d
}

// LoadFile reads a page snapshot from disk.
func LoadFile(path string) (*Page, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open page %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// SaveFile writes a page snapshot to disk.
func SaveFile(path string, p *Page) error {
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return fmt.Errorf("failed to create page %s: %w", path, err)
	}
	if err := Encode(f, p); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
