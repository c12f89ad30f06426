package catalog

// Index is an id-indexed view over a category snapshot. It is built once per
// snapshot and is safe for concurrent reads.
type Index struct {
	nodes  map[string]CategoryNode
	faults []*ConfigError
}

// BuildIndex indexes categories in a single pass and records any malformed
// data found in the forest.
func BuildIndex(categories []CategoryNode) *Index {
	idx := &Index{nodes: make(map[string]CategoryNode, len(categories))}
	for _, c := range categories {
		if _, dup := idx.nodes[c.ID]; dup {
			idx.faults = append(idx.faults, &ConfigError{Kind: FaultDuplicateID, CategoryID: c.ID})
		}
		idx.nodes[c.ID] = c
	}
	idx.scan()
	return idx
}

// Len returns the number of indexed categories.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.nodes)
}

// Get returns the category with the given id.
func (idx *Index) Get(id string) (CategoryNode, bool) {
	if idx == nil {
		return CategoryNode{}, false
	}
	n, ok := idx.nodes[id]
	return n, ok
}

// Faults returns every data fault detected while building the index.
func (idx *Index) Faults() []*ConfigError {
	if idx == nil {
		return nil
	}
	return idx.faults
}

// Ancestors returns the ids from the immediate parent up to the root.
// Unknown ids and roots have no ancestors.
//
// On malformed data the chain is truncated where the fault was found and a
// *ConfigError is returned alongside it.
func (idx *Index) Ancestors(id string) ([]string, error) {
	node, ok := idx.Get(id)
	if !ok {
		return nil, nil
	}

	var chain []string
	visited := map[string]struct{}{id: {}}
	for node.ParentID != nil {
		parentID := *node.ParentID
		if _, seen := visited[parentID]; seen {
			return chain, &ConfigError{Kind: FaultCycle, CategoryID: id, Chain: chain}
		}
		parent, ok := idx.nodes[parentID]
		if !ok {
			return chain, &ConfigError{Kind: FaultDanglingParent, CategoryID: node.ID, Chain: chain}
		}
		visited[parentID] = struct{}{}
		chain = append(chain, parentID)
		node = parent
	}
	return chain, nil
}

// Chain returns the category itself together with its ancestors as a set.
// Faults truncate the set the same way Ancestors does.
func (idx *Index) Chain(id string) map[string]struct{} {
	ancestors, _ := idx.Ancestors(id)
	set := make(map[string]struct{}, len(ancestors)+1)
	set[id] = struct{}{}
	for _, a := range ancestors {
		set[a] = struct{}{}
	}
	return set
}

// scan walks every node once and records cycles and dangling parents.
// Each cycle is reported a single time, keyed by the first node that reaches it.
func (idx *Index) scan() {
	// 0 = unvisited, 1 = on current path, 2 = done
	state := make(map[string]uint8, len(idx.nodes))
	for id := range idx.nodes {
		if state[id] != 0 {
			continue
		}
		var path []string
		cur := id
		for {
			node, ok := idx.nodes[cur]
			if !ok {
				last := path[len(path)-1]
				idx.faults = append(idx.faults, &ConfigError{Kind: FaultDanglingParent, CategoryID: last})
				break
			}
			if state[cur] == 2 {
				break
			}
			if state[cur] == 1 {
				idx.faults = append(idx.faults, &ConfigError{Kind: FaultCycle, CategoryID: cur, Chain: append([]string(nil), path...)})
				break
			}
			state[cur] = 1
			path = append(path, cur)
			if node.ParentID == nil {
				break
			}
			cur = *node.ParentID
		}
		for _, p := range path {
			state[p] = 2
		}
	}
}
