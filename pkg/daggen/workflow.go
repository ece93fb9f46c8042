package daggen

import (
	"fmt"
	"sort"

	"github.com/mitchellh/hashstructure"
)

const defaultServiceAccount = "pipeline-runner"

// validateExitHandler is the exit-handler-validity pass named in
// SPEC_FULL.md §4.8: a pipeline may declare at most one group of kind
// ExitHandlerKind, and when one exists every op in the pipeline must be a
// descendant of it.
func validateExitHandler(pipeline *Pipeline, w *walkResult) error {
	var handlers []*Group
	var collect func(g *Group)
	collect = func(g *Group) {
		if g.Kind == ExitHandlerKind {
			handlers = append(handlers, g)
		}
		for _, sub := range g.Groups {
			collect(sub)
		}
	}
	collect(pipeline.Root)

	if len(handlers) > 1 {
		return errMultipleExitHandlers()
	}
	if len(handlers) == 0 {
		return nil
	}

	handler := handlers[0]
	for name := range pipeline.Ops {
		if handler.ExitOp != nil && name == handler.ExitOp.Name {
			continue
		}
		ancestry, err := lookupAncestry(w, name)
		if err != nil {
			return err
		}
		covered := false
		for _, a := range ancestry {
			if a == handler.Name {
				covered = true
				break
			}
		}
		if !covered {
			return errMultipleExitHandlers()
		}
	}
	return nil
}

// rootExitHandler returns the root's direct exit-handler child, iff root
// has exactly one, per the onExit rule in SPEC_FULL.md §4.8.
func rootExitHandler(root *Group) *Group {
	var found *Group
	count := 0
	for _, sub := range root.Groups {
		if sub.Kind == ExitHandlerKind {
			found = sub
			count++
		}
	}
	if count != 1 {
		return nil
	}
	return found
}

// collectVolumes unions every op's volumes, deduplicated by name. A second
// volume sharing a name with a different spec (detected by content hash,
// matching the corpus's own volume-dedup TODO) is dropped with a warning
// rather than silently overwriting the first; it never fails compilation.
func collectVolumes(pipeline *Pipeline) ([]map[string]interface{}, []WarningError) {
	opNames := make([]string, 0, len(pipeline.Ops))
	for name := range pipeline.Ops {
		opNames = append(opNames, name)
	}
	sort.Strings(opNames)

	seenHash := map[string]uint64{}
	var out []map[string]interface{}
	var warnings []WarningError

	for _, opName := range opNames {
		for _, v := range pipeline.Ops[opName].Volumes {
			h, err := hashstructure.Hash(v.Spec, nil)
			if err != nil {
				h = 0
			}
			if prior, ok := seenHash[v.Name]; ok {
				if prior != h {
					warnings = append(warnings, NewWarningError(
						"@y{volume %s declared with conflicting spec; keeping first occurrence}", v.Name))
				}
				continue
			}
			seenHash[v.Name] = h
			m := make(map[string]interface{}, len(v.Spec)+1)
			for k, val := range v.Spec {
				m[k] = val
			}
			m["name"] = v.Name
			out = append(out, m)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out, warnings
}

// templateToManifest converts the internal Template representation into
// its YAML-serializable shape.
func templateToManifest(t Template) ManifestTemplate {
	mt := ManifestTemplate{Name: t.Name, Raw: t.Raw}

	if len(t.Inputs) > 0 {
		params := make([]ManifestParam, len(t.Inputs))
		for i, p := range t.Inputs {
			params[i] = ManifestParam{Name: p.Name}
		}
		mt.Inputs = &ManifestParams{Parameters: params}
	}

	if len(t.Outputs) > 0 {
		params := make([]ManifestOutputParam, len(t.Outputs))
		for i, o := range t.Outputs {
			params[i] = ManifestOutputParam{
				Name:      o.Name,
				ValueFrom: ManifestValueFrom{Parameter: fmt.Sprintf("{{tasks.%s.outputs.parameters.%s}}", o.SiblingTask, o.Name)},
			}
		}
		mt.Outputs = &ManifestOutputs{Parameters: params}
	}

	if t.DAG != nil {
		tasks := make([]ManifestTask, len(t.DAG.Tasks))
		for i, task := range t.DAG.Tasks {
			mTask := ManifestTask{
				Name:         task.Name,
				Template:     task.TemplateName,
				When:         task.When,
				Dependencies: task.Dependencies,
			}
			if len(task.Arguments) > 0 {
				args := make([]ManifestArgParam, len(task.Arguments))
				for j, a := range task.Arguments {
					args[j] = ManifestArgParam{Name: a.Name, Value: a.Value}
				}
				mTask.Arguments = &ManifestArgs{Parameters: args}
			}
			tasks[i] = mTask
		}
		mt.DAG = &ManifestDAG{Tasks: tasks}
	}

	return mt
}

// assembleWorkflow is the Workflow Assembler (C8). It must run after
// createTemplates has produced the full template list for pipeline.
func assembleWorkflow(pipeline *Pipeline, w *walkResult, templates []Template) (*Manifest, []WarningError, error) {
	if err := validateExitHandler(pipeline, w); err != nil {
		return nil, nil, err
	}

	sorted := append([]Template(nil), templates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	manifestTemplates := make([]ManifestTemplate, len(sorted))
	for i, t := range sorted {
		manifestTemplates[i] = templateToManifest(t)
	}

	args := make([]ManifestParamDefault, len(pipeline.Inputs))
	for i, in := range pipeline.Inputs {
		args[i] = ManifestParamDefault{Name: in.Name, Value: in.Default}
	}

	volumes, warnings := collectVolumes(pipeline)

	serviceAccount := pipeline.Config.ServiceAccountName
	if serviceAccount == "" {
		serviceAccount = defaultServiceAccount
	}

	spec := WorkflowSpec{
		Entrypoint:         pipeline.Root.Name,
		Templates:          manifestTemplates,
		Arguments:          ManifestArguments{Parameters: args},
		ServiceAccountName: serviceAccount,
		Volumes:            volumes,
	}

	if handler := rootExitHandler(pipeline.Root); handler != nil && handler.ExitOp != nil {
		spec.OnExit = handler.ExitOp.Name
	}

	if pipeline.Config.TimeoutSeconds > 0 {
		secs := pipeline.Config.TimeoutSeconds
		spec.ActiveDeadlineSeconds = &secs
	}

	if len(pipeline.Config.ImagePullSecrets) > 0 {
		names := append([]string(nil), pipeline.Config.ImagePullSecrets...)
		sort.Strings(names)
		refs := make([]ManifestLocalObjectRef, len(names))
		for i, n := range names {
			refs[i] = ManifestLocalObjectRef{Name: n}
		}
		spec.ImagePullSecrets = refs
	}

	manifest := &Manifest{
		APIVersion: "argoproj.io/v1alpha1",
		Kind:       "Workflow",
		Metadata:   ManifestMetadata{GenerateName: pipeline.Name + "-"},
		Spec:       spec,
	}

	return manifest, warnings, nil
}
