package daggen

// NameSanitizer normalizes an identifier to the target cluster's naming
// rules. It must be idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
//
// Name sanitization is, per SPEC_FULL.md §1, an external collaborator —
// the target cluster owns the rules. A reasonable k8s-DNS-label default
// ships in sanitize.go.
type NameSanitizer interface {
	Sanitize(name string) string
}

// Template is one entry of the emitted manifest: either a DAG template
// (synthesized from a Group by this package) or a leaf template (rendered
// from an Operation by an OpTemplateHandler).
type Template struct {
	Name   string
	Inputs []TemplateParam
	// Outputs maps each exposed output name to the sibling task name that
	// produces it. Group (DAG) templates get it from the I/O lifter; leaf
	// templates carry whatever their handler returns (ContainerHandler
	// names the op itself). The workflow assembler renders both kinds the
	// same way.
	Outputs []TemplateOutput
	DAG     *DAGSpec

	// Raw carries handler-specific leaf template content (container spec,
	// resource manifest, ...) opaque to this package. It is emitted
	// as-is by the workflow assembler.
	Raw map[string]interface{}
}

// TemplateParam is a {name[, value]} pair in a template's inputs or a
// task's arguments.
type TemplateParam struct {
	Name  string
	Value string // empty means "no default" for inputs.parameters entries
}

// TemplateOutput is one outputs.parameters entry: Name plus the
// {{tasks.SIBLING.outputs.parameters.NAME}} reference it resolves to.
type TemplateOutput struct {
	Name        string
	SiblingTask string
}

// DAGSpec is the dag.tasks section of a group template.
type DAGSpec struct {
	Tasks []DAGTask
}

// DAGTask is one dag.tasks[] entry.
type DAGTask struct {
	Name         string
	TemplateName string
	When         string
	Dependencies []string
	Arguments    []TemplateParam
}

// OpTemplateHandler renders a single Operation into one or more templates.
// It is invoked once per op by the Template Synthesizer (C7); its results
// are concatenated into the final template list. Rendering the container
// or resource body of an op is, per SPEC_FULL.md §1, an external
// collaborator — this package only needs the op's name to appear as a
// template name matching its task references.
type OpTemplateHandler interface {
	Render(op *Operation) ([]Template, error)
}

// OpTransformer mutates an Operation's Metadata before the core analyses
// run. Transformers must never alter the group tree — only Operation
// state. They run in the order given by PipelineConfig.OpTransformers,
// after a mandatory sanitization pass and before the Tree Walker (C1).
type OpTransformer interface {
	Transform(op *Operation) error
}

// ImagePullSecretResolver resolves PipelineConfig.ImagePullSecretRef (a
// secret-store path) to a concrete Kubernetes Secret name. Optional: when
// a pipeline's config carries no ImagePullSecretRef, it is never called.
type ImagePullSecretResolver interface {
	Resolve(ref string) (secretName string, err error)
}
