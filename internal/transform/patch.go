package transform

import (
	"fmt"

	"github.com/cppforlife/go-patch/patch"
	"github.com/wayneeseguin/daggen/pkg/daggen"
)

// PatchTransformer applies a list of go-patch operations to an op's
// Metadata map, letting a pipeline config attach cluster-specific
// overrides (extra labels, annotations, resource limits) without the
// pipeline description format needing to know about them up front.
type PatchTransformer struct {
	Ops patch.Ops
}

// NewPatchTransformer parses raw go-patch operation definitions into a
// PatchTransformer.
func NewPatchTransformer(defs []patch.OpDefinition) (PatchTransformer, error) {
	ops, err := patch.NewOpsFromDefinitions(defs)
	if err != nil {
		return PatchTransformer{}, fmt.Errorf("parsing patch definitions: %w", err)
	}
	return PatchTransformer{Ops: ops}, nil
}

// Transform implements daggen.OpTransformer.
func (t PatchTransformer) Transform(op *daggen.Operation) error {
	if len(t.Ops) == 0 {
		return nil
	}

	patched, err := t.Ops.Apply(interface{}(op.Metadata))
	if err != nil {
		return fmt.Errorf("applying patch to op %s: %w", op.Name, err)
	}

	m, ok := patched.(map[string]interface{})
	if !ok {
		return fmt.Errorf("applying patch to op %s: result is not a map", op.Name)
	}
	op.Metadata = m
	return nil
}
