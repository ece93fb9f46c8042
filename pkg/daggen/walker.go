package daggen

// ancestry is the per-entity product of the Tree Walker (C1): the ordered
// list of group names from root down to and including the entity itself.
type ancestry map[string][]string

// walkResult bundles C1's three artifacts.
type walkResult struct {
	// groupsIndex maps group name to group, excluding recursive-ref
	// groups — they share a template with the group they reference.
	groupsIndex map[string]*Group
	// opAncestry covers every op name, and also every recursive-ref
	// group's name (so downstream analyses can treat a recursive group
	// as a pseudo-leaf).
	opAncestry ancestry
	// groupAncestry covers every non-recursive-ref group name.
	groupAncestry ancestry
}

// walkTree is the Tree Walker (C1). It performs a single depth-first
// traversal of root, maintaining an explicit ancestor stack. Recursive
// sub-groups terminate the descent: their children are not re-walked.
func walkTree(root *Group) *walkResult {
	r := &walkResult{
		groupsIndex:   map[string]*Group{},
		opAncestry:    ancestry{},
		groupAncestry: ancestry{},
	}
	// groupsIndex includes root; groupAncestry intentionally does not —
	// root is the common ancestor of every entity, so it is always
	// stripped as the shared prefix in UncommonAncestors and never needs
	// its own ancestry entry (matches the reference compiler exactly).
	r.groupsIndex[root.Name] = root

	stack := []string{root.Name}
	var visit func(g *Group)
	visit = func(g *Group) {
		for _, sub := range g.Groups {
			if sub.IsRecursiveRef() {
				r.opAncestry[sub.Name] = append(append([]string(nil), stack...), sub.Name)
				continue
			}
			r.groupsIndex[sub.Name] = sub
			stack = append(stack, sub.Name)
			r.groupAncestry[sub.Name] = append([]string(nil), stack...)
			visit(sub)
			stack = stack[:len(stack)-1]
		}
		for _, op := range g.Ops {
			r.opAncestry[op.Name] = append(append([]string(nil), stack...), op.Name)
		}
	}
	visit(root)
	return r
}
