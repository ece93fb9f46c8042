// Package transform ships daggen.OpTransformer implementations that run
// over every op before the core analyses see the tree.
package transform

import "github.com/wayneeseguin/daggen/pkg/daggen"

// PodEnvTransformer injects a fixed set of pod-level environment entries
// into every op's Metadata. The CLI installs it as the only transformer
// when the pipeline's config names none.
type PodEnvTransformer struct {
	// Env is merged into op.Metadata["env"] (created if absent). Existing
	// keys an op already set win over these defaults.
	Env map[string]string
}

// Transform implements daggen.OpTransformer.
func (t PodEnvTransformer) Transform(op *daggen.Operation) error {
	if op.Metadata == nil {
		op.Metadata = map[string]interface{}{}
	}

	existing, _ := op.Metadata["env"].(map[string]string)
	merged := make(map[string]string, len(t.Env)+len(existing))
	for k, v := range t.Env {
		merged[k] = v
	}
	for k, v := range existing {
		merged[k] = v
	}
	op.Metadata["env"] = merged
	return nil
}
