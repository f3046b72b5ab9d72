package engine

// buildDescendants computes, for every node, the ordered list of all
// ids below it in the hierarchy: each child followed by its own
// descendants (pre-order). Leaves get an empty list. This is the only
// structure the engine caches; everything else is computed on demand.
func (e *Engine) buildDescendants() {
	e.descendants = make(map[string][]string, len(e.ids))
	for _, id := range e.ids {
		e.descendants[id] = e.collectDescendants(id)
	}
}

// collectDescendants walks root's subtree iteratively so arbitrarily
// deep hierarchies cannot exhaust the stack.
func (e *Engine) collectDescendants(root string) []string {
	out := []string{}
	var stack []string
	push := func(kids []string) {
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	push(e.children[root])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, id)
		push(e.children[id])
	}
	return out
}

// adoptDescendants installs a cached index verbatim. Nodes the cache
// does not mention keep an empty list.
func (e *Engine) adoptDescendants(index map[string][]string) {
	e.descendants = make(map[string][]string, len(e.ids))
	for _, id := range e.ids {
		e.descendants[id] = append([]string{}, index[id]...)
	}
}

// knowsAll reports whether every id the cached index mentions exists in
// the graph. An index that fails this came from a different document.
func (e *Engine) knowsAll(index map[string][]string) bool {
	for id, kids := range index {
		if _, ok := e.nodes[id]; !ok {
			return false
		}
		for _, kid := range kids {
			if _, ok := e.nodes[kid]; !ok {
				return false
			}
		}
	}
	return true
}

// Descendants returns a copy of id's pre-order descendant list.
func (e *Engine) Descendants(id string) []string {
	return append([]string(nil), e.descendants[id]...)
}

// DescendantIndex returns a deep copy of the full descendant index,
// suitable for persisting to a cache file.
func (e *Engine) DescendantIndex() map[string][]string {
	out := make(map[string][]string, len(e.descendants))
	for id, kids := range e.descendants {
		out[id] = append([]string{}, kids...)
	}
	return out
}
