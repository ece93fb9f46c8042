package daggen

import "fmt"

// resolveFullName is the Reference Resolver (C6) applied to a full
// parameter name already known to be one of a group's inputs (or absent
// from them, treated the same as "absent with a null marker").
//
//   - present with a non-nil sibling marker S: "{{tasks.S.outputs.parameters.FULLNAME}}"
//   - present with a nil marker, or absent: "{{inputs.parameters.FULLNAME}}"
func resolveFullName(fullName string, groupInputs map[string]*string) string {
	if m, ok := groupInputs[fullName]; ok && m != nil {
		return fmt.Sprintf("{{tasks.%s.outputs.parameters.%s}}", *m, fullName)
	}
	return fmt.Sprintf("{{inputs.parameters.%s}}", fullName)
}

// resolveOperand is the Reference Resolver (C6) applied to a condition
// operand: a parameter reference resolves as above, a literal renders as
// its string form verbatim.
func resolveOperand(operand ConditionOperand, groupInputs map[string]*string) string {
	if operand.IsParam() {
		return resolveFullName(operand.Param.FullName(), groupInputs)
	}
	return operand.Literal
}
