package daggen

import "sort"

// ioSet is the Input/Output Lifter's (C4) working set: group/op name ->
// full parameter name -> sibling marker. A nil marker means "my parent
// supplies it" (for inputs) or "the value comes from the entity itself"
// (for outputs, where the entity is an op).
type ioSet map[string]map[string]*string

func marker(name string) *string { return &name }

func markersEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s ioSet) add(group, fullName string, m *string) error {
	if s[group] == nil {
		s[group] = map[string]*string{}
	}
	if existing, ok := s[group][fullName]; ok {
		if !markersEqual(existing, m) {
			return errConflictingParameterSource(group, fullName)
		}
		return nil
	}
	s[group][fullName] = m
	return nil
}

// names returns the full names of this group's recorded parameters,
// sorted by name; their sibling markers are read from s directly.
func (s ioSet) names(group string) []string {
	entries := s[group]
	if len(entries) == 0 {
		return nil
	}
	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ioLift bundles the Input/Output Lifter's (C4) two outputs.
type ioLift struct {
	inputs  ioSet
	outputs ioSet
}

// liftIO is the Input/Output Lifter (C4). For every op, it walks the
// union of the op's declared inputs and its guarded_by set, lifting each
// non-immediate parameter's cross-scope reference into inputs/outputs
// entries on the groups that need to see it. The same procedure is then
// applied to every recursive group in the tree.
func liftIO(pipeline *Pipeline, w *walkResult, cond conditionParams) (*ioLift, error) {
	lift := &ioLift{inputs: ioSet{}, outputs: ioSet{}}

	opNames := make([]string, 0, len(pipeline.Ops))
	for name := range pipeline.Ops {
		opNames = append(opNames, name)
	}
	sort.Strings(opNames)

	for _, name := range opNames {
		op := pipeline.Ops[name]
		params := append(append([]Parameter(nil), op.Inputs...), cond[op.Name]...)
		for _, p := range params {
			if p.IsImmediate() {
				continue
			}
			if err := liftOne(lift, w, p, op.Name, op.IsExitHandler, false); err != nil {
				return nil, err
			}
		}
	}

	for _, rg := range collectRecursiveRefs(pipeline.Root) {
		for _, p := range rg.Inputs {
			if p.IsImmediate() {
				continue
			}
			if err := liftOne(lift, w, p, rg.Name, false, false); err != nil {
				return nil, err
			}
		}
		for _, p := range cond[rg.Name] {
			if p.IsImmediate() {
				continue
			}
			if err := liftOne(lift, w, p, rg.Name, false, true); err != nil {
				return nil, err
			}
		}
	}

	return lift, nil
}

// liftOne performs the per-parameter lift shared by ops and recursive
// groups. isConditionParam modifies the recursive-group case only: for a
// parameter with a producer, the input on the deepest downstream element
// is suppressed rather than threaded down as an explicit argument
// (recursive groups do not pass predicates down as explicit arguments);
// a predicate parameter with no producer is not lifted at all.
func liftOne(lift *ioLift, w *walkResult, p Parameter, consumerName string, consumerIsExitHandler, isConditionParam bool) error {
	fullName := p.FullName()

	if p.ProducerOpName == "" {
		if consumerIsExitHandler {
			return nil
		}
		if isConditionParam {
			return nil
		}
		ancestry, err := lookupAncestry(w, consumerName)
		if err != nil {
			return err
		}
		for _, g := range ancestry {
			if err := lift.inputs.add(g, fullName, nil); err != nil {
				return err
			}
		}
		return nil
	}

	up, down, err := uncommonAncestors(w, p.ProducerOpName, consumerName)
	if err != nil {
		return err
	}

	for i, g := range down {
		if i == 0 {
			if err := lift.inputs.add(g, fullName, marker(up[0])); err != nil {
				return err
			}
			continue
		}
		if isConditionParam && i == len(down)-1 {
			continue
		}
		if err := lift.inputs.add(g, fullName, nil); err != nil {
			return err
		}
	}

	for i, g := range up {
		if i == len(up)-1 {
			if err := lift.outputs.add(g, fullName, nil); err != nil {
				return err
			}
			continue
		}
		if err := lift.outputs.add(g, fullName, marker(up[i+1])); err != nil {
			return err
		}
	}

	return nil
}

// collectRecursiveRefs returns every recursive-ref group in the tree, in a
// stable (depth-first) order.
func collectRecursiveRefs(root *Group) []*Group {
	var out []*Group
	var visit func(g *Group)
	visit = func(g *Group) {
		for _, sub := range g.Groups {
			if sub.IsRecursiveRef() {
				out = append(out, sub)
				continue
			}
			visit(sub)
		}
	}
	visit(root)
	return out
}
