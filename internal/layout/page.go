package layout

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/pagealign/internal/geometry"
)

var (
	// ErrDuplicateID is returned when an element id is already in use.
	ErrDuplicateID = errors.New("duplicate element id")
	// ErrUnknownParent is returned when the parent id is not in the page.
	ErrUnknownParent = errors.New("unknown parent element")
	// ErrInvalidNesting is returned when a child kind does not fit its parent.
	ErrInvalidNesting = errors.New("invalid nesting")
)

// Join is an ordered pair of element ids whose texts are concatenated
// without separator.
type Join struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Page is one document page. Elements live in an id-indexed arena; parents
// own ordered child id lists and a separate index maps each child to its
// parent. Reading order and join relations only reference ids.
type Page struct {
	ImageFilename     string
	Width             int
	Height            int
	Direction         ReadingDirection
	LineOrder         LineOrder
	ReadingOrder      *OrderGroup
	AlternativeImages []AlternativeImage

	nodes  map[string]*Element
	parent map[string]string
	roots  []string
	joins  map[Join]struct{}
}

// NewPage creates an empty page of the given size.
func NewPage(imageFilename string, width, height int) *Page {
	return &Page{
		ImageFilename: imageFilename,
		Width:         width,
		Height:        height,
		nodes:         make(map[string]*Element),
		parent:        make(map[string]string),
		joins:         make(map[Join]struct{}),
	}
}

// Box returns the page rectangle.
func (p *Page) Box() geometry.Box {
	return geometry.Box{MaxX: float64(p.Width), MaxY: float64(p.Height)}
}

// Element looks up an element by id.
func (p *Page) Element(id string) (*Element, bool) {
	e, ok := p.nodes[id]
	return e, ok
}

// Len returns the number of elements in the arena.
func (p *Page) Len() int { return len(p.nodes) }

// AddRegion attaches a region under parentID, or at top level when parentID
// is empty. A region may not receive sub-regions once it owns lines.
func (p *Page) AddRegion(parentID string, e *Element) error {
	e.Kind = KindRegion
	if parentID == "" {
		if err := p.register(e); err != nil {
			return err
		}
		p.roots = append(p.roots, e.ID)
		return nil
	}
	parent, err := p.checkParent(parentID, KindRegion)
	if err != nil {
		return err
	}
	if p.hasChildKind(parent, KindLine) {
		return fmt.Errorf("%w: region %q already owns lines", ErrInvalidNesting, parentID)
	}
	return p.attach(parent, e)
}

// AddLine attaches a text line to a region that owns no sub-regions.
func (p *Page) AddLine(regionID string, e *Element) error {
	e.Kind = KindLine
	parent, err := p.checkParent(regionID, KindRegion)
	if err != nil {
		return err
	}
	if p.hasChildKind(parent, KindRegion) {
		return fmt.Errorf("%w: region %q already owns sub-regions", ErrInvalidNesting, regionID)
	}
	return p.attach(parent, e)
}

// AddWord attaches a word to a text line.
func (p *Page) AddWord(lineID string, e *Element) error {
	e.Kind = KindWord
	parent, err := p.checkParent(lineID, KindLine)
	if err != nil {
		return err
	}
	return p.attach(parent, e)
}

// AddGlyph attaches a glyph to a word.
func (p *Page) AddGlyph(wordID string, e *Element) error {
	e.Kind = KindGlyph
	parent, err := p.checkParent(wordID, KindWord)
	if err != nil {
		return err
	}
	return p.attach(parent, e)
}

func (p *Page) checkParent(id string, kind Kind) (*Element, error) {
	parent, ok := p.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParent, id)
	}
	if parent.Kind != kind {
		return nil, fmt.Errorf("%w: %s %q cannot own this element", ErrInvalidNesting, parent.Kind, id)
	}
	return parent, nil
}

func (p *Page) hasChildKind(e *Element, kind Kind) bool {
	for _, id := range e.children {
		if c, ok := p.nodes[id]; ok && c.Kind == kind {
			return true
		}
	}
	return false
}

func (p *Page) register(e *Element) error {
	if e.ID == "" {
		return fmt.Errorf("%s without id", e.Kind)
	}
	if _, dup := p.nodes[e.ID]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateID, e.ID)
	}
	e.children = nil
	p.nodes[e.ID] = e
	return nil
}

func (p *Page) attach(parent, e *Element) error {
	if err := p.register(e); err != nil {
		return err
	}
	parent.children = append(parent.children, e.ID)
	p.parent[e.ID] = parent.ID
	return nil
}

// Children returns the owned children of id in order.
func (p *Page) Children(id string) []*Element {
	e, ok := p.nodes[id]
	if !ok {
		return nil
	}
	out := make([]*Element, 0, len(e.children))
	for _, cid := range e.children {
		if c, ok := p.nodes[cid]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Parent returns the owner of id. Top-level regions have no parent.
func (p *Page) Parent(id string) (*Element, bool) {
	pid, ok := p.parent[id]
	if !ok {
		return nil, false
	}
	e, ok := p.nodes[pid]
	return e, ok
}

// Ancestors returns the owners of id, nearest first. The walk stops on a
// repeated id.
func (p *Page) Ancestors(id string) []*Element {
	var chain []*Element
	seen := map[string]bool{id: true}
	for {
		parent, ok := p.Parent(id)
		if !ok || seen[parent.ID] {
			return chain
		}
		seen[parent.ID] = true
		chain = append(chain, parent)
		id = parent.ID
	}
}

// TopRegions returns the top-level regions in document order.
func (p *Page) TopRegions() []*Element {
	out := make([]*Element, 0, len(p.roots))
	for _, id := range p.roots {
		if e, ok := p.nodes[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Walk visits all elements depth-first in document order. Returning false
// from fn skips the element's subtree. Each id is visited at most once.
func (p *Page) Walk(fn func(e *Element) bool) {
	visited := make(map[string]bool, len(p.nodes))
	stack := slices.Clone(p.roots)
	slices.Reverse(stack)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		e, ok := p.nodes[id]
		if !ok || !fn(e) {
			continue
		}
		for i := len(e.children) - 1; i >= 0; i-- {
			stack = append(stack, e.children[i])
		}
	}
}

// Regions returns all regions at any depth in document order.
func (p *Page) Regions() []*Element {
	var out []*Element
	p.Walk(func(e *Element) bool {
		if e.Kind != KindRegion {
			return false
		}
		out = append(out, e)
		return true
	})
	return out
}

// TextRegions returns all text-bearing regions at any depth in document order.
func (p *Page) TextRegions() []*Element {
	var out []*Element
	for _, r := range p.Regions() {
		if IsTextType(r.Type) {
			out = append(out, r)
		}
	}
	return out
}

// Lines returns all text lines in document order.
func (p *Page) Lines() []*Element {
	var out []*Element
	p.Walk(func(e *Element) bool {
		switch e.Kind {
		case KindRegion:
			return true
		case KindLine:
			out = append(out, e)
		}
		return false
	})
	return out
}

// ClearChildren removes every descendant of id from the page.
func (p *Page) ClearChildren(id string) {
	e, ok := p.nodes[id]
	if !ok {
		return
	}
	for _, cid := range e.children {
		p.remove(cid)
	}
	e.children = nil
}

// ClearRegions removes all regions and the reading order.
func (p *Page) ClearRegions() {
	for _, id := range p.roots {
		p.remove(id)
	}
	p.roots = nil
	p.ReadingOrder = nil
}

func (p *Page) remove(id string) {
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e, ok := p.nodes[cur]
		if !ok {
			continue
		}
		stack = append(stack, e.children...)
		delete(p.nodes, cur)
		delete(p.parent, cur)
		for j := range p.joins {
			if j.From == cur || j.To == cur {
				delete(p.joins, j)
			}
		}
	}
}

// AddJoin registers that from and to are concatenated without separator.
func (p *Page) AddJoin(from, to string) {
	p.joins[Join{From: from, To: to}] = struct{}{}
}

// IsJoined reports whether the ordered pair is a registered join.
func (p *Page) IsJoined(from, to string) bool {
	_, ok := p.joins[Join{From: from, To: to}]
	return ok
}

// Joins returns all join relations sorted by ids.
func (p *Page) Joins() []Join {
	out := make([]Join, 0, len(p.joins))
	for j := range p.joins {
		out = append(out, j)
	}
	slices.SortFunc(out, func(a, b Join) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
	return out
}

// UniqueID returns base if it is unused, otherwise base with the smallest
// numeric suffix that is.
func (p *Page) UniqueID(base string) string {
	if _, used := p.nodes[base]; !used {
		return base
	}
	for i := 1; ; i++ {
		id := fmt.Sprintf("%s_%d", base, i)
		if _, used := p.nodes[id]; !used {
			return id
		}
	}
}
