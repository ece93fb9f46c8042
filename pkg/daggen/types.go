package daggen

// GroupKind identifies the role a Group plays in the pipeline tree.
type GroupKind string

const (
	// RootKind is the single top-level group of a pipeline.
	RootKind GroupKind = "root"
	// ConditionKind guards its children with a when-predicate.
	ConditionKind GroupKind = "condition"
	// ExitHandlerKind wraps the pipeline's single exit op.
	ExitHandlerKind GroupKind = "exit_handler"
	// LoopKind iterates its children (rendered like any other group; the
	// iteration mechanics belong to the external DSL, not this compiler).
	LoopKind GroupKind = "loop"
	// RecursiveKind re-enters an earlier group in the tree.
	RecursiveKind GroupKind = "recursive"
)

// Parameter is a logical reference to a value flowing through the
// pipeline. It never carries a runtime value once a Value is set — that
// makes it immediate, and an immediate parameter is never surfaced as a
// group input or output.
type Parameter struct {
	Name           string
	ProducerOpName string
	Value          *string
}

// IsImmediate reports whether this parameter carries a literal value
// rather than referencing a producing op or a pipeline-level input.
func (p Parameter) IsImmediate() bool {
	return p.Value != nil
}

// FullName is producer + "-" + name if there is a producer, else the bare
// name.
func (p Parameter) FullName() string {
	if p.ProducerOpName != "" {
		return p.ProducerOpName + "-" + p.Name
	}
	return p.Name
}

// FileOutput projects a container's file-based output onto a named
// parameter (the ContainerOp variant).
type FileOutput struct {
	ParamName string
	Path      string
}

// AttributeOutput projects a Kubernetes resource's field onto a named
// parameter (the ResourceOp variant).
type AttributeOutput struct {
	ParamName     string
	AttributePath string
}

// Volume is an opaque, ordered k8s volume definition. Only Name is
// interpreted by the compiler (for dedup); the rest rides through to the
// manifest untouched.
type Volume struct {
	Name string
	Spec map[string]interface{}
}

// Operation is a leaf node: a single container or resource action.
type Operation struct {
	Name           string
	Inputs         []Parameter
	Outputs        map[string]Parameter
	OutputOrder    []string // insertion order of Outputs' keys, for determinism
	DependentNames []string
	IsExitHandler  bool
	Volumes        []Volume

	FileOutputs      []FileOutput
	AttributeOutputs []AttributeOutput

	// Metadata is free-form op state (pod labels/annotations/env-style
	// key-value data). The core analyses never read it; it exists purely
	// as a surface for OpTransformers to mutate before compilation.
	Metadata map[string]interface{}
}

// OrderedOutputs returns this op's outputs in stable declaration order.
func (o *Operation) OrderedOutputs() []Parameter {
	out := make([]Parameter, 0, len(o.OutputOrder))
	for _, name := range o.OutputOrder {
		out = append(out, o.Outputs[name])
	}
	return out
}

// Condition is the payload of a ConditionKind group.
type Condition struct {
	Operand1 ConditionOperand
	Operator string
	Operand2 ConditionOperand
}

// ConditionOperand is either a Parameter reference or a literal value.
type ConditionOperand struct {
	Param   *Parameter
	Literal string
}

// IsParam reports whether this operand is a parameter reference rather
// than a literal.
func (o ConditionOperand) IsParam() bool {
	return o.Param != nil
}

// Group is a node aggregating ops and/or subgroups.
type Group struct {
	Name         string
	Kind         GroupKind
	Groups       []*Group
	Ops          []*Operation
	Dependencies []string // names of sibling groups/ops this group must follow

	// ConditionKind payload.
	Condition *Condition

	// ExitHandlerKind payload.
	ExitOp *Operation

	// RecursiveKind payload: RecursionRef points at the group this one
	// re-enters; Inputs are this recursion's own declared parameter list,
	// named after RecursionRef's parameters positionally.
	RecursionRef *Group
	Inputs       []Parameter
}

// IsRecursiveRef reports whether this group is a recursive re-entry
// (as opposed to the group it re-enters).
func (g *Group) IsRecursiveRef() bool {
	return g.Kind == RecursiveKind && g.RecursionRef != nil
}

// PipelineConfig carries pipeline-wide, non-structural settings.
type PipelineConfig struct {
	ImagePullSecrets []string
	ArtifactLocation string
	TimeoutSeconds   int
	OpTransformers   []OpTransformer

	// ImagePullSecretRef, when non-empty, names a secret-store path to be
	// resolved into a concrete k8s Secret name by an ImagePullSecretResolver
	// before workflow assembly (see internal/secrets). Mutually additive
	// with ImagePullSecrets: resolved names are appended to it.
	ImagePullSecretRef string

	// ServiceAccountName overrides the manifest's spec.serviceAccountName.
	// Empty means assembleWorkflow falls back to defaultServiceAccount.
	ServiceAccountName string
}

// Pipeline is the root of a compiled unit: a root Group, a flat lookup of
// its operations by name, pipeline-level input parameters, and config.
type Pipeline struct {
	Name   string
	Root   *Group
	Ops    map[string]*Operation
	Inputs []PipelineInput
	Config PipelineConfig
}

// PipelineInput is one entry-point parameter of the pipeline, optionally
// carrying a default value.
type PipelineInput struct {
	Name    string
	Default *string
}
