package daggen

import (
	"fmt"
	"sort"
)

// groupToTemplate is the non-leaf half of the Template Synthesizer (C7):
// it renders a single Group into a DAG template given the already-lifted
// inputs/outputs/dependencies for the whole tree.
func groupToTemplate(g *Group, lift *ioLift, deps dependencySet) Template {
	t := Template{Name: g.Name}

	for _, fullName := range lift.inputs.names(g.Name) {
		t.Inputs = append(t.Inputs, TemplateParam{Name: fullName})
	}

	for _, fullName := range lift.outputs.names(g.Name) {
		m := lift.outputs[g.Name][fullName]
		sibling := ""
		if m != nil {
			sibling = *m
		}
		t.Outputs = append(t.Outputs, TemplateOutput{Name: fullName, SiblingTask: sibling})
	}

	var tasks []DAGTask
	for _, sub := range g.Groups {
		tasks = append(tasks, childTask(sub, lift, deps))
	}
	for _, op := range g.Ops {
		tasks = append(tasks, DAGTask{
			Name:         op.Name,
			TemplateName: op.Name,
			Dependencies: deps.sorted(op.Name),
			Arguments:    buildArguments(op.Name, false, nil, lift),
		})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	t.DAG = &DAGSpec{Tasks: tasks}
	return t
}

// childTask renders one dag.tasks[] entry for a child group. A recursive
// child's task and template names come from its RecursionRef rather than
// its own name.
func childTask(sub *Group, lift *ioLift, deps dependencySet) DAGTask {
	isRecursive := sub.IsRecursiveRef()
	name := sub.Name
	templateName := sub.Name
	if isRecursive {
		name = sub.RecursionRef.Name
		templateName = sub.RecursionRef.Name
	}

	task := DAGTask{
		Name:         name,
		TemplateName: templateName,
		Dependencies: deps.sorted(sub.Name),
		Arguments:    buildArguments(sub.Name, isRecursive, sub, lift),
	}

	if sub.Kind == ConditionKind && sub.Condition != nil {
		groupInputs := lift.inputs[sub.Name]
		task.When = fmt.Sprintf("%s %s %s",
			resolveOperand(sub.Condition.Operand1, groupInputs),
			sub.Condition.Operator,
			resolveOperand(sub.Condition.Operand2, groupInputs))
	}

	return task
}

// buildArguments renders the arguments.parameters list for one task. For
// a recursive child, the argument *name* is remapped through the
// recursion entry-point's own parameter list (matched positionally
// against the recursive group's declared Inputs), so the callee sees its
// own parameter names; the *value* always resolves against the caller's
// (sub's) lifted inputs.
func buildArguments(childName string, isRecursive bool, sub *Group, lift *ioLift) []TemplateParam {
	names := lift.inputs.names(childName)
	if len(names) == 0 {
		return nil
	}
	args := make([]TemplateParam, 0, len(names))
	for _, fullName := range names {
		m := lift.inputs[childName][fullName]
		var value string
		if m != nil {
			value = fmt.Sprintf("{{tasks.%s.outputs.parameters.%s}}", *m, fullName)
		} else {
			value = fmt.Sprintf("{{inputs.parameters.%s}}", fullName)
		}

		argName := fullName
		if isRecursive {
			if idx := indexOfFullName(sub.Inputs, fullName); idx >= 0 && idx < len(sub.RecursionRef.Inputs) {
				argName = sub.RecursionRef.Inputs[idx].FullName()
			}
		}
		args = append(args, TemplateParam{Name: argName, Value: value})
	}
	sort.Slice(args, func(i, j int) bool { return args[i].Name < args[j].Name })
	return args
}

func indexOfFullName(params []Parameter, fullName string) int {
	for i, p := range params {
		if p.FullName() == fullName {
			return i
		}
	}
	return -1
}

// createTemplates runs C1-C5 once over the tree, then renders every
// non-recursive group through groupToTemplate (C7's group half) and every
// op through the external OpTemplateHandler (C7's leaf half), returning
// the concatenated, unsorted template list.
func createTemplates(pipeline *Pipeline, handler OpTemplateHandler) ([]Template, error) {
	w := walkTree(pipeline.Root)
	cond := propagateConditions(pipeline.Root)

	lift, err := liftIO(pipeline, w, cond)
	if err != nil {
		return nil, err
	}
	deps, err := liftDependencies(pipeline, w, cond)
	if err != nil {
		return nil, err
	}

	groupNames := make([]string, 0, len(w.groupsIndex))
	for name := range w.groupsIndex {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	var templates []Template
	for _, name := range groupNames {
		templates = append(templates, groupToTemplate(w.groupsIndex[name], lift, deps))
	}

	opNames := make([]string, 0, len(pipeline.Ops))
	for name := range pipeline.Ops {
		opNames = append(opNames, name)
	}
	sort.Strings(opNames)

	for _, name := range opNames {
		rendered, err := handler.Render(pipeline.Ops[name])
		if err != nil {
			return nil, fmt.Errorf("op %s: %w", name, err)
		}
		templates = append(templates, rendered...)
	}

	return templates, nil
}
