// Package textequiv recomputes text and confidence of higher layout levels
// from the recognized text of lower ones.
package textequiv

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/MeKo-Tech/pagealign/internal/layout"
)

// Separators inserted between adjacent children of each level.
const (
	GlyphSeparator  = ""
	WordSeparator   = " "
	LineSeparator   = "\n"
	RegionSeparator = "\n"
)

// Options controls which levels are recomputed.
type Options struct {
	// Level is the finest level holding recognition output. It and every
	// finer level are read but never rewritten.
	Level layout.Kind
	// Overwrite replaces existing non-empty text. When false such text is kept
	// and used as-is by the parent level.
	Overwrite bool
}

// DefaultOptions aggregates from glyphs upwards, replacing existing text.
func DefaultOptions() Options {
	return Options{Level: layout.KindGlyph, Overwrite: true}
}

// Update recomputes word, line and region text of the page from the level
// named in opts upwards and returns the number of elements rewritten.
// Running it twice on unchanged source text gives identical results.
func Update(page *layout.Page, opts Options) int {
	a := &aggregator{page: page, opts: opts, visited: make(map[string]bool)}
	a.run()
	slog.Debug("Updated text hierarchy", "level", opts.Level.String(), "updated", a.updated)
	return a.updated
}

type aggregator struct {
	page    *layout.Page
	opts    Options
	visited map[string]bool
	updated int
}

// run visits regions in post-order so that sub-regions are final before
// their container is concatenated.
func (a *aggregator) run() {
	type frame struct {
		region   *layout.Element
		expanded bool
	}
	roots := a.page.TopRegions()
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{region: roots[i]})
	}
	for len(stack) > 0 {
		top := len(stack) - 1
		if stack[top].expanded {
			r := stack[top].region
			stack = stack[:top]
			a.updateRegion(r)
			continue
		}
		r := stack[top].region
		if a.visited[r.ID] {
			stack = stack[:top]
			continue
		}
		a.visited[r.ID] = true
		stack[top].expanded = true
		children := a.page.Children(r.ID)
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			if c.Kind == layout.KindRegion && !a.visited[c.ID] {
				stack = append(stack, frame{region: c})
			}
		}
	}
}

func (a *aggregator) updateRegion(r *layout.Element) {
	if !layout.IsTextType(r.Type) || a.opts.Level <= layout.KindRegion {
		return
	}
	var subs, lines []*layout.Element
	for _, c := range a.page.Children(r.ID) {
		switch {
		case c.Kind == layout.KindRegion && layout.IsTextType(c.Type):
			subs = append(subs, c)
		case c.Kind == layout.KindLine:
			lines = append(lines, c)
		}
	}
	if len(subs) > 0 {
		a.set(r, a.joinRegions(a.orderRegions(subs)))
		return
	}
	for _, l := range lines {
		a.updateLine(l)
	}
	if ResolveLineOrder(a.lineOrderChain(r)) == layout.LineOrderBottomToTop {
		slices.Reverse(lines)
	}
	a.set(r, a.joinLines(lines))
}

func (a *aggregator) updateLine(l *layout.Element) {
	if a.opts.Level <= layout.KindLine {
		return
	}
	words := a.page.Children(l.ID)
	for _, w := range words {
		a.updateWord(w)
	}
	if ResolveDirection(a.directionChain(l)) == layout.DirectionRightToLeft {
		slices.Reverse(words)
	}
	a.set(l, concat(words, WordSeparator))
}

func (a *aggregator) updateWord(w *layout.Element) {
	if a.opts.Level <= layout.KindWord {
		return
	}
	glyphs := a.page.Children(w.ID)
	if ResolveDirection(a.directionChain(w)) == layout.DirectionRightToLeft {
		slices.Reverse(glyphs)
	}
	a.set(w, concat(glyphs, GlyphSeparator))
}

func (a *aggregator) set(e *layout.Element, t textConf) {
	if !a.opts.Overwrite && e.Text() != "" {
		return
	}
	e.SetText(t.text, t.conf)
	a.updated++
}

// orderRegions sorts sub-regions by the reading order when all of them sit in
// one ordered group and keeps document order otherwise.
func (a *aggregator) orderRegions(subs []*layout.Element) []*layout.Element {
	ids := make([]string, len(subs))
	for i, s := range subs {
		ids[i] = s.ID
	}
	index, ok := a.page.OrderedIndex(ids)
	if !ok {
		return subs
	}
	out := slices.Clone(subs)
	slices.SortStableFunc(out, func(x, y *layout.Element) int {
		return index[x.ID] - index[y.ID]
	})
	return out
}

// joinLines concatenates lines with newlines unless the last word of one line
// is joined to the first word of the next.
func (a *aggregator) joinLines(lines []*layout.Element) textConf {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 && !a.linesJoined(lines[i-1], l) {
			b.WriteString(LineSeparator)
		}
		b.WriteString(l.Text())
	}
	return textConf{text: b.String(), conf: meanConf(lines)}
}

func (a *aggregator) linesJoined(prev, next *layout.Element) bool {
	pw := a.page.Children(prev.ID)
	nw := a.page.Children(next.ID)
	if len(pw) == 0 || len(nw) == 0 {
		return false
	}
	return a.page.IsJoined(pw[len(pw)-1].ID, nw[0].ID)
}

func (a *aggregator) joinRegions(subs []*layout.Element) textConf {
	var b strings.Builder
	for i, s := range subs {
		if i > 0 && !a.page.IsJoined(subs[i-1].ID, s.ID) {
			b.WriteString(RegionSeparator)
		}
		b.WriteString(s.Text())
	}
	return textConf{text: b.String(), conf: meanConf(subs)}
}

type textConf struct {
	text string
	conf float64
}

func concat(children []*layout.Element, sep string) textConf {
	texts := make([]string, len(children))
	for i, c := range children {
		texts[i] = c.Text()
	}
	return textConf{text: strings.Join(texts, sep), conf: meanConf(children)}
}

func meanConf(children []*layout.Element) float64 {
	if len(children) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range children {
		sum += c.Conf()
	}
	return sum / float64(len(children))
}
