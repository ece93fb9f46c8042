package daggen

import "sort"

// dependencySet is the Dependency Lifter's (C5) result: downstream
// group/op name -> set of upstream sibling names it must follow. All
// dependencies are recorded between siblings in a shared parent group; no
// cross-scope dependency is ever emitted.
type dependencySet map[string]map[string]bool

func (d dependencySet) add(downstream, upstream string) {
	if d[downstream] == nil {
		d[downstream] = map[string]bool{}
	}
	d[downstream][upstream] = true
}

// sorted returns the dependencies of name, sorted by name.
func (d dependencySet) sorted(name string) []string {
	set := d[name]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// liftDependencies is the Dependency Lifter (C5).
//
// A dependency edge exists from consumer D to producer U when U is named
// by any of D's parameters' producer_op_name fields, any of D's
// guarded_by parameters, or D's explicit dependent_names. Recursive
// groups use their explicit Dependencies list unless they are themselves
// a recursive reference, in which case they use their parameters as for
// ops. For each edge, uncommonAncestors(U, D) is computed and an edge
// down[0] <- up[0] is recorded.
func liftDependencies(pipeline *Pipeline, w *walkResult, cond conditionParams) (dependencySet, error) {
	deps := dependencySet{}

	opNames := make([]string, 0, len(pipeline.Ops))
	for name := range pipeline.Ops {
		opNames = append(opNames, name)
	}
	sort.Strings(opNames)

	for _, name := range opNames {
		op := pipeline.Ops[name]
		upstream := map[string]bool{}
		for _, p := range op.Inputs {
			if p.ProducerOpName != "" {
				upstream[p.ProducerOpName] = true
			}
		}
		for _, p := range cond[op.Name] {
			if p.ProducerOpName != "" {
				upstream[p.ProducerOpName] = true
			}
		}
		for _, n := range op.DependentNames {
			upstream[n] = true
		}
		if err := resolveAndRecord(deps, pipeline, w, op.Name, upstream); err != nil {
			return nil, err
		}
	}

	if err := liftGroupDependencies(deps, pipeline, w, cond, pipeline.Root); err != nil {
		return nil, err
	}

	return deps, nil
}

func liftGroupDependencies(deps dependencySet, pipeline *Pipeline, w *walkResult, cond conditionParams, g *Group) error {
	upstream := map[string]bool{}
	if g.IsRecursiveRef() {
		for _, p := range g.Inputs {
			if p.ProducerOpName != "" {
				upstream[p.ProducerOpName] = true
			}
		}
		for _, p := range cond[g.Name] {
			if p.ProducerOpName != "" {
				upstream[p.ProducerOpName] = true
			}
		}
	} else {
		for _, n := range g.Dependencies {
			upstream[n] = true
		}
	}
	if err := resolveAndRecord(deps, pipeline, w, g.Name, upstream); err != nil {
		return err
	}
	for _, sub := range g.Groups {
		if err := liftGroupDependencies(deps, pipeline, w, cond, sub); err != nil {
			return err
		}
	}
	return nil
}

func resolveAndRecord(deps dependencySet, pipeline *Pipeline, w *walkResult, downstreamName string, upstreamNames map[string]bool) error {
	names := make([]string, 0, len(upstreamNames))
	for n := range upstreamNames {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, upstreamName := range names {
		if _, ok := pipeline.Ops[upstreamName]; !ok {
			if _, ok := w.groupsIndex[upstreamName]; !ok {
				return errUnknownDependency(upstreamName)
			}
		}
		up, down, err := uncommonAncestors(w, upstreamName, downstreamName)
		if err != nil {
			return err
		}
		if len(up) == 0 || len(down) == 0 {
			continue
		}
		deps.add(down[0], up[0])
	}
	return nil
}
