// Package recognize attaches recognition output to the text lines of a page
// and rebuilds the text of every level above the glyphs.
package recognize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
	"github.com/MeKo-Tech/pagealign/internal/layout"
	"github.com/MeKo-Tech/pagealign/internal/metrics"
	"github.com/MeKo-Tech/pagealign/internal/oracle"
	"github.com/MeKo-Tech/pagealign/internal/segment"
	"github.com/MeKo-Tech/pagealign/internal/textequiv"
)

// OracleMismatchWarning reports a line whose recognition output was missing
// or inconsistent. The line was left unchanged.
type OracleMismatchWarning struct {
	LineID string
	Reason string
}

func (w *OracleMismatchWarning) Error() string {
	return fmt.Sprintf("line %s: %s", w.LineID, w.Reason)
}

// Options configures a Processor.
type Options struct {
	OverwriteText bool `mapstructure:"overwrite_text" yaml:"overwrite_text" json:"overwrite_text"`
	NormalizeNFC  bool `mapstructure:"normalize_nfc" yaml:"normalize_nfc" json:"normalize_nfc"`
	Union         geometry.UnionOptions
}

// DefaultOptions overwrites existing text and normalizes to NFC.
func DefaultOptions() Options {
	return Options{OverwriteText: true, NormalizeNFC: true, Union: geometry.DefaultUnionOptions()}
}

// Result summarizes one Process call.
type Result struct {
	Submitted  int
	Recognized int
	Warnings   []*OracleMismatchWarning
	// Errors holds geometry errors of lines that could not be submitted.
	Errors []error
}

// Processor recognizes the lines of a page.
type Processor struct {
	Recognizer oracle.Recognizer
	Options    Options
}

// NewProcessor creates a recognition processor.
func NewProcessor(rec oracle.Recognizer, opts Options) *Processor {
	return &Processor{Recognizer: rec, Options: opts}
}

type submitted struct {
	line     *layout.Element
	boundary geometry.Polygon
	baseline geometry.Polyline
}

// Process derives a consistent boundary and baseline for every line, submits
// them to the recognizer and replaces each line's words and glyphs with the
// record of that line. Lines without a usable record keep their content.
func (p *Processor) Process(ctx context.Context, page *layout.Page, img image.Image) (*Result, error) {
	if p.Recognizer == nil {
		return nil, errors.New("recognizer not configured")
	}
	res := &Result{}
	lines := page.Lines()

	coords := make([]geometry.Polygon, 0, len(lines))
	for _, l := range lines {
		coords = append(coords, l.Coords)
	}
	deriver := segment.NewDeriver(page.Box(), segment.EstimateScale(coords), p.Options.Union)

	var (
		subs []submitted
		desc = oracle.Descriptor{TextDirection: textDirection(page.Direction)}
	)
	for _, l := range lines {
		boundary, baseline, err := deriver.Derive(l.Coords, l.Baseline)
		if err != nil {
			slog.Warn("Skipping line without consistent geometry", "line", l.ID, "error", err)
			var ge *geometry.GeometryError
			if errors.As(err, &ge) {
				metrics.RecordGeometryError(ge.Op)
			}
			res.Errors = append(res.Errors, fmt.Errorf("line %s: %w", l.ID, err))
			continue
		}
		subs = append(subs, submitted{line: l, boundary: boundary, baseline: baseline})
		desc.Lines = append(desc.Lines, oracle.DescriptorLine{
			ID:       l.ID,
			Baseline: baseline,
			Boundary: boundary,
			Tags:     l.Tags,
		})
	}
	res.Submitted = len(subs)

	if len(subs) > 0 {
		records, err := p.Recognizer.Recognize(ctx, img, desc)
		if err != nil {
			return nil, fmt.Errorf("recognition failed: %w", err)
		}
		if len(records) > len(subs) {
			slog.Warn("Ignoring surplus recognition records", "submitted", len(subs), "records", len(records))
		}
		for i, s := range subs {
			if i >= len(records) {
				res.Warnings = append(res.Warnings, mismatch(s.line.ID, "no recognition record"))
				continue
			}
			if w := p.attach(page, s, records[i]); w != nil {
				res.Warnings = append(res.Warnings, w)
				continue
			}
			res.Recognized++
		}
	}

	textequiv.Update(page, textequiv.Options{Level: layout.KindGlyph, Overwrite: p.Options.OverwriteText})
	if p.Options.NormalizeNFC {
		normalize(page)
	}

	slog.Info("Recognized page",
		"image", page.ImageFilename,
		"lines", len(lines),
		"recognized", res.Recognized,
		"skipped", len(lines)-res.Recognized)
	return res, nil
}

func mismatch(lineID, reason string) *OracleMismatchWarning {
	w := &OracleMismatchWarning{LineID: lineID, Reason: reason}
	slog.Warn("Recognition output does not match line", "line", lineID, "reason", reason)
	metrics.RecordOracleMismatch()
	return w
}

// attach replaces the words of the line with the record. The record is
// checked before the line is touched.
func (p *Processor) attach(page *layout.Page, s submitted, rec oracle.Record) *OracleMismatchWarning {
	n := utf8.RuneCountInString(rec.Prediction)
	if len(rec.Cuts) != n || len(rec.Confidences) != n {
		return mismatch(s.line.ID, fmt.Sprintf("%d characters but %d cuts and %d confidences",
			n, len(rec.Cuts), len(rec.Confidences)))
	}

	words := buildWords(s.line.ID, rec)
	if id, taken := idTaken(page, s.line.ID, words); taken {
		return mismatch(s.line.ID, fmt.Sprintf("id %q is used outside the line", id))
	}

	page.ClearChildren(s.line.ID)
	s.line.Coords = s.boundary.Round()
	s.line.Baseline = s.baseline.Round()
	s.line.SetText(rec.Prediction, mean(rec.Confidences))
	for _, w := range words {
		if err := page.AddWord(s.line.ID, w.word); err != nil {
			return mismatch(s.line.ID, err.Error())
		}
		for _, g := range w.glyphs {
			if err := page.AddGlyph(w.word.ID, g); err != nil {
				return mismatch(s.line.ID, err.Error())
			}
		}
	}
	return nil
}

// idTaken reports the first generated id that names an element outside the
// line. Ids of the line's current descendants are freed by clearing it.
func idTaken(page *layout.Page, lineID string, words []builtWord) (string, bool) {
	owned := func(id string) bool {
		if _, ok := page.Element(id); !ok {
			return true
		}
		for _, a := range page.Ancestors(id) {
			if a.ID == lineID {
				return true
			}
		}
		return false
	}
	for _, w := range words {
		if !owned(w.word.ID) {
			return w.word.ID, true
		}
		for _, g := range w.glyphs {
			if !owned(g.ID) {
				return g.ID, true
			}
		}
	}
	return "", false
}

type builtWord struct {
	word   *layout.Element
	glyphs []*layout.Element
}

// buildWords splits the prediction on whitespace. Every other rune becomes a
// glyph with the bounding box of its cut and its confidence.
func buildWords(lineID string, rec oracle.Record) []builtWord {
	var (
		words  []builtWord
		cur    *builtWord
		box    geometry.Box
		hasBox bool
	)
	flush := func() {
		if cur == nil {
			return
		}
		if hasBox {
			cur.word.Coords = box.Polygon().Round()
		}
		words = append(words, *cur)
		cur = nil
	}
	i := 0
	for _, r := range rec.Prediction {
		cut, conf := rec.Cuts[i], rec.Confidences[i]
		i++
		if unicode.IsSpace(r) {
			flush()
			continue
		}
		if cur == nil {
			cur = &builtWord{word: &layout.Element{ID: fmt.Sprintf("%s_word%04d", lineID, len(words)+1)}}
			hasBox = false
		}
		g := &layout.Element{ID: fmt.Sprintf("%s_glyph%04d", cur.word.ID, len(cur.glyphs)+1)}
		if len(cut) > 0 {
			cb := cut.Bounds()
			g.Coords = cb.Polygon().Round()
			if hasBox {
				box = box.Union(cb)
			} else {
				box, hasBox = cb, true
			}
		}
		g.SetText(string(r), conf)
		cur.glyphs = append(cur.glyphs, g)
	}
	flush()
	return words
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// normalize rewrites the text of every word, line and region in NFC. Glyphs
// keep the recognizer's code points.
func normalize(page *layout.Page) {
	page.Walk(func(e *layout.Element) bool {
		if e.Kind == layout.KindGlyph {
			return false
		}
		for i := range e.TextEquivs {
			e.TextEquivs[i].Text = norm.NFC.String(e.TextEquivs[i].Text)
		}
		return true
	})
}

func textDirection(d layout.ReadingDirection) string {
	switch d {
	case layout.DirectionRightToLeft:
		return "horizontal-rl"
	case layout.DirectionTopToBottom, layout.DirectionBottomToTop:
		return "vertical-lr"
	default:
		return "horizontal-lr"
	}
}
