package daggen

import "sort"

// ContainerHandler is the default OpTemplateHandler: it renders an
// Operation as a single container template, projecting Outputs,
// FileOutputs, and AttributeOutputs into outputs.parameters entries,
// copying Metadata (other than "image") into the template's Raw container
// map, and listing each of Volumes as a volumeMounts entry that carries
// only its name. A pipeline that needs ResourceOp-style
// templates, or any richer container spec than Metadata captures,
// supplies its own handler.
type ContainerHandler struct {
	// Image is used when an op's Metadata carries no "image" key.
	Image string
}

// Render implements OpTemplateHandler.
func (h ContainerHandler) Render(op *Operation) ([]Template, error) {
	t := Template{Name: op.Name}

	names := make([]string, 0, len(op.Outputs)+len(op.FileOutputs)+len(op.AttributeOutputs))
	for name := range op.Outputs {
		names = append(names, name)
	}
	for _, fo := range op.FileOutputs {
		names = append(names, fo.ParamName)
	}
	for _, ao := range op.AttributeOutputs {
		names = append(names, ao.ParamName)
	}
	sort.Strings(names)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		fullName := Parameter{Name: name, ProducerOpName: op.Name}.FullName()
		if p, ok := op.Outputs[name]; ok {
			fullName = p.FullName()
		}
		t.Outputs = append(t.Outputs, TemplateOutput{Name: fullName, SiblingTask: op.Name})
	}

	container := map[string]interface{}{}
	image := h.Image
	if v, ok := op.Metadata["image"]; ok {
		if s, ok := v.(string); ok {
			image = s
		}
	}
	if image != "" {
		container["image"] = image
	}
	if len(op.Metadata) > 0 {
		for k, v := range op.Metadata {
			if k == "image" {
				continue
			}
			container[k] = v
		}
	}

	raw := map[string]interface{}{"container": container}
	if len(op.Volumes) > 0 {
		mounts := make([]map[string]interface{}, len(op.Volumes))
		for i, v := range op.Volumes {
			mounts[i] = map[string]interface{}{"name": v.Name}
		}
		raw["volumeMounts"] = mounts
	}
	t.Raw = raw

	return []Template{t}, nil
}
