package daggen

// Manifest is the root of an Argo Workflow v1alpha1 document, ready for
// YAML serialization by gopkg.in/yaml.v3 (the struct tags control field
// order in the emitted document).
type Manifest struct {
	APIVersion string           `yaml:"apiVersion"`
	Kind       string           `yaml:"kind"`
	Metadata   ManifestMetadata `yaml:"metadata"`
	Spec       WorkflowSpec     `yaml:"spec"`
}

// ManifestMetadata is the manifest's top-level metadata block.
type ManifestMetadata struct {
	GenerateName string `yaml:"generateName"`
}

// WorkflowSpec is the manifest's spec block.
type WorkflowSpec struct {
	Entrypoint            string                   `yaml:"entrypoint"`
	Templates             []ManifestTemplate       `yaml:"templates"`
	Arguments             ManifestArguments        `yaml:"arguments"`
	ServiceAccountName    string                   `yaml:"serviceAccountName"`
	ImagePullSecrets      []ManifestLocalObjectRef `yaml:"imagePullSecrets,omitempty"`
	ActiveDeadlineSeconds *int                     `yaml:"activeDeadlineSeconds,omitempty"`
	OnExit                string                   `yaml:"onExit,omitempty"`
	Volumes               []map[string]interface{} `yaml:"volumes,omitempty"`
}

// ManifestArguments is spec.arguments: the pipeline's entry parameters.
type ManifestArguments struct {
	Parameters []ManifestParamDefault `yaml:"parameters"`
}

// ManifestParamDefault is one spec.arguments.parameters[] entry. Value is
// only present when the pipeline input carries a default.
type ManifestParamDefault struct {
	Name  string  `yaml:"name"`
	Value *string `yaml:"value,omitempty"`
}

// ManifestLocalObjectRef names a Kubernetes Secret by name, as used by
// imagePullSecrets.
type ManifestLocalObjectRef struct {
	Name string `yaml:"name"`
}

// ManifestTemplate is one spec.templates[] entry.
type ManifestTemplate struct {
	Name    string                  `yaml:"name"`
	Inputs  *ManifestParams         `yaml:"inputs,omitempty"`
	Outputs *ManifestOutputs        `yaml:"outputs,omitempty"`
	DAG     *ManifestDAG            `yaml:"dag,omitempty"`
	Raw     map[string]interface{}  `yaml:",inline"`
}

// ManifestParams is a template's inputs.parameters (or a leaf template's
// own declared inputs, via Raw).
type ManifestParams struct {
	Parameters []ManifestParam `yaml:"parameters"`
}

// ManifestParam is one inputs.parameters[] entry: just a name.
type ManifestParam struct {
	Name string `yaml:"name"`
}

// ManifestOutputs is a template's outputs.parameters.
type ManifestOutputs struct {
	Parameters []ManifestOutputParam `yaml:"parameters"`
}

// ManifestOutputParam is one outputs.parameters[] entry.
type ManifestOutputParam struct {
	Name      string             `yaml:"name"`
	ValueFrom ManifestValueFrom `yaml:"valueFrom"`
}

// ManifestValueFrom wraps the templating reference an output resolves to.
type ManifestValueFrom struct {
	Parameter string `yaml:"parameter"`
}

// ManifestDAG is a template's dag.tasks.
type ManifestDAG struct {
	Tasks []ManifestTask `yaml:"tasks"`
}

// ManifestTask is one dag.tasks[] entry.
type ManifestTask struct {
	Name         string        `yaml:"name"`
	Template     string        `yaml:"template"`
	When         string        `yaml:"when,omitempty"`
	Dependencies []string      `yaml:"dependencies,omitempty"`
	Arguments    *ManifestArgs `yaml:"arguments,omitempty"`
}

// ManifestArgs is a task's arguments.parameters.
type ManifestArgs struct {
	Parameters []ManifestArgParam `yaml:"parameters"`
}

// ManifestArgParam is one arguments.parameters[] entry: a name-value pair.
type ManifestArgParam struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}
