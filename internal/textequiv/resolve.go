package textequiv

import "github.com/MeKo-Tech/pagealign/internal/layout"

// ResolveDirection returns the first declared direction of an ancestor chain
// ordered from the element itself up to the page, defaulting to
// left-to-right.
func ResolveDirection(chain []layout.ReadingDirection) layout.ReadingDirection {
	for _, d := range chain {
		if d != layout.DirectionUnset {
			return d
		}
	}
	return layout.DirectionLeftToRight
}

// ResolveLineOrder returns the first declared line order of a chain,
// defaulting to top-to-bottom.
func ResolveLineOrder(chain []layout.LineOrder) layout.LineOrder {
	for _, o := range chain {
		if o != layout.LineOrderUnset {
			return o
		}
	}
	return layout.LineOrderTopToBottom
}

func (a *aggregator) directionChain(e *layout.Element) []layout.ReadingDirection {
	ancestors := a.page.Ancestors(e.ID)
	chain := make([]layout.ReadingDirection, 0, len(ancestors)+2)
	chain = append(chain, e.Direction)
	for _, anc := range ancestors {
		chain = append(chain, anc.Direction)
	}
	return append(chain, a.page.Direction)
}

func (a *aggregator) lineOrderChain(e *layout.Element) []layout.LineOrder {
	ancestors := a.page.Ancestors(e.ID)
	chain := make([]layout.LineOrder, 0, len(ancestors)+2)
	chain = append(chain, e.LineOrder)
	for _, anc := range ancestors {
		chain = append(chain, anc.LineOrder)
	}
	return append(chain, a.page.LineOrder)
}
