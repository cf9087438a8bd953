package layout

// OrderGroup is a node of the reading-order tree. An ordered group lists its
// items in reading sequence; an unordered group only collects them.
type OrderGroup struct {
	ID        string      `yaml:"id" json:"id"`
	RegionRef string      `yaml:"region,omitempty" json:"region,omitempty"`
	Ordered   bool        `yaml:"ordered" json:"ordered"`
	Items     []OrderItem `yaml:"items,omitempty" json:"items,omitempty"`
}

// OrderItem is either a region reference or a nested group.
type OrderItem struct {
	RegionRef string      `yaml:"region,omitempty" json:"region,omitempty"`
	Group     *OrderGroup `yaml:"group,omitempty" json:"group,omitempty"`
}

// ref returns the region the item stands for, if any.
func (it OrderItem) ref() string {
	if it.Group != nil {
		return it.Group.RegionRef
	}
	return it.RegionRef
}

// OrderedIndex maps region ids to their position inside the ordered group
// that contains all of ids. It reports false unless every id is found as a
// direct item of one and the same ordered group.
func (p *Page) OrderedIndex(ids []string) (map[string]int, bool) {
	if p.ReadingOrder == nil || len(ids) == 0 {
		return nil, false
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	visited := make(map[*OrderGroup]bool)
	stack := []*OrderGroup{p.ReadingOrder}
	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if g == nil || visited[g] {
			continue
		}
		visited[g] = true
		if g.Ordered {
			index := make(map[string]int)
			for i, it := range g.Items {
				if r := it.ref(); want[r] {
					index[r] = i
				}
			}
			if len(index) == len(want) {
				return index, true
			}
		}
		for i := len(g.Items) - 1; i >= 0; i-- {
			if g.Items[i].Group != nil {
				stack = append(stack, g.Items[i].Group)
			}
		}
	}
	return nil, false
}

// RegionRefs returns every region id referenced by the reading order in
// traversal order.
func (p *Page) RegionRefs() []string {
	var out []string
	visited := make(map[*OrderGroup]bool)
	var walk func(g *OrderGroup)
	walk = func(g *OrderGroup) {
		if g == nil || visited[g] {
			return
		}
		visited[g] = true
		if g.RegionRef != "" {
			out = append(out, g.RegionRef)
		}
		for _, it := range g.Items {
			if it.Group != nil {
				walk(it.Group)
			} else if it.RegionRef != "" {
				out = append(out, it.RegionRef)
			}
		}
	}
	walk(p.ReadingOrder)
	return out
}
