package daggen

// conditionParams is the Condition Propagator's (C3) result: for every op
// and recursive-ref group name, the ordered list of predicate parameters
// guarding it (its "guarded_by" set).
type conditionParams map[string][]Parameter

// propagateConditions is the Condition Propagator (C3). It walks the
// group tree depth-first, carrying an accumulated list of predicate
// parameters. Entering a ConditionKind group appends whichever of its two
// operands are parameter references (not literals) to the accumulator for
// that subtree. Reaching an op or a recursive-ref group records the
// accumulator as that entity's guarded_by set. Accumulators are
// copy-on-write: a parent's slice is never mutated by a child.
func propagateConditions(root *Group) conditionParams {
	result := conditionParams{}

	var visit func(g *Group, acc []Parameter)
	visit = func(g *Group, acc []Parameter) {
		current := acc
		if g.Kind == ConditionKind && g.Condition != nil {
			extended := append([]Parameter(nil), acc...)
			if g.Condition.Operand1.IsParam() {
				extended = append(extended, *g.Condition.Operand1.Param)
			}
			if g.Condition.Operand2.IsParam() {
				extended = append(extended, *g.Condition.Operand2.Param)
			}
			current = extended
		}

		for _, op := range g.Ops {
			result[op.Name] = append(result[op.Name], current...)
		}
		for _, sub := range g.Groups {
			if sub.IsRecursiveRef() {
				result[sub.Name] = append(result[sub.Name], current...)
				continue
			}
			visit(sub, current)
		}
	}
	visit(root, nil)
	return result
}
