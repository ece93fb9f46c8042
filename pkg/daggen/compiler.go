package daggen

import "sort"

// typeCheckEnabled is the single process-wide flag named in SPEC_FULL.md
// §5. It is changed only through WithTypeChecking, which restores its
// prior value on return. No analysis in this package reads it: Compile
// behaves the same whichever value it holds.
var typeCheckEnabled = true

// WithTypeChecking scopes a change to the type-checking flag to the
// duration of fn, restoring the previous value before returning, also
// when fn returns an error.
func WithTypeChecking(enabled bool, fn func() error) error {
	prior := typeCheckEnabled
	typeCheckEnabled = enabled
	defer func() { typeCheckEnabled = prior }()
	return fn()
}

// Result is everything Compile produces besides an error: the manifest
// plus any non-fatal warnings collected while assembling it.
type Result struct {
	Manifest *Manifest
	Warnings []WarningError
}

// Compile normalizes pipeline in place, then runs the full C1-C8 pipeline
// once, returning the assembled manifest.
//
// Normalization order: sanitize every name the target cluster will see,
// run every configured OpTransformer over every op (the CLI installs the
// pod-env transformer when the pipeline's config names none), then
// validate and compile.
func Compile(pipeline *Pipeline, sanitizer NameSanitizer, handler OpTemplateHandler, secretResolver ImagePullSecretResolver) (*Result, error) {
	if sanitizer == nil {
		sanitizer = DNSLabelSanitizer{}
	}

	sanitizeNames(pipeline, sanitizer)

	if err := applyTransformers(pipeline); err != nil {
		return nil, err
	}

	if err := resolveImagePullSecret(pipeline, secretResolver); err != nil {
		return nil, err
	}

	templates, err := createTemplates(pipeline, handler)
	if err != nil {
		return nil, err
	}

	w := walkTree(pipeline.Root)
	manifest, warnings, err := assembleWorkflow(pipeline, w, templates)
	if err != nil {
		return nil, err
	}

	return &Result{Manifest: manifest, Warnings: warnings}, nil
}

// sanitizeNames rewrites every op name, group name, parameter name,
// producer reference, dependency name, and file-/attribute-output key in
// the tree through sanitizer. It runs before any analysis, so every
// downstream lookup (ancestry, dependencies, templating references) sees
// only sanitized names.
func sanitizeNames(pipeline *Pipeline, sanitizer NameSanitizer) {
	renamed := map[string]*Operation{}
	for name, op := range pipeline.Ops {
		op.Name = sanitizer.Sanitize(name)
		renamed[op.Name] = op
	}
	pipeline.Ops = renamed

	for i := range pipeline.Inputs {
		pipeline.Inputs[i].Name = sanitizer.Sanitize(pipeline.Inputs[i].Name)
	}

	sanitizeParam := func(p *Parameter) {
		p.Name = sanitizer.Sanitize(p.Name)
		if p.ProducerOpName != "" {
			p.ProducerOpName = sanitizer.Sanitize(p.ProducerOpName)
		}
	}
	sanitizeParams := func(params []Parameter) {
		for i := range params {
			sanitizeParam(&params[i])
		}
	}
	sanitizeOutputs := func(op *Operation) {
		renamed := make(map[string]Parameter, len(op.Outputs))
		for i, name := range op.OutputOrder {
			p := op.Outputs[name]
			sanitizeParam(&p)
			op.OutputOrder[i] = p.Name
			renamed[p.Name] = p
		}
		op.Outputs = renamed
		for i := range op.FileOutputs {
			op.FileOutputs[i].ParamName = sanitizer.Sanitize(op.FileOutputs[i].ParamName)
		}
		for i := range op.AttributeOutputs {
			op.AttributeOutputs[i].ParamName = sanitizer.Sanitize(op.AttributeOutputs[i].ParamName)
		}
	}
	sanitizeOperand := func(o *ConditionOperand) {
		if o.Param != nil {
			sanitizeParam(o.Param)
		}
	}

	var visit func(g *Group)
	visit = func(g *Group) {
		g.Name = sanitizer.Sanitize(g.Name)
		for i, d := range g.Dependencies {
			g.Dependencies[i] = sanitizer.Sanitize(d)
		}
		sanitizeParams(g.Inputs)
		if g.Condition != nil {
			sanitizeOperand(&g.Condition.Operand1)
			sanitizeOperand(&g.Condition.Operand2)
		}
		for _, op := range g.Ops {
			for i, d := range op.DependentNames {
				op.DependentNames[i] = sanitizer.Sanitize(d)
			}
			sanitizeParams(op.Inputs)
			sanitizeOutputs(op)
		}
		if g.ExitOp != nil {
			g.ExitOp.Name = sanitizer.Sanitize(g.ExitOp.Name)
			for i, d := range g.ExitOp.DependentNames {
				g.ExitOp.DependentNames[i] = sanitizer.Sanitize(d)
			}
			sanitizeParams(g.ExitOp.Inputs)
			sanitizeOutputs(g.ExitOp)
		}
		for _, sub := range g.Groups {
			visit(sub)
		}
	}
	visit(pipeline.Root)
}

// applyTransformers runs the pipeline's configured transformers over every
// op in declaration order. The CLI sets PipelineConfig.OpTransformers to
// the pod-env transformer before Compile is called when the pipeline
// description configures no transformer of its own.
func applyTransformers(pipeline *Pipeline) error {
	opNames := make([]string, 0, len(pipeline.Ops))
	for name := range pipeline.Ops {
		opNames = append(opNames, name)
	}
	sort.Strings(opNames)

	for _, name := range opNames {
		op := pipeline.Ops[name]
		for _, t := range pipeline.Config.OpTransformers {
			if err := t.Transform(op); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveImagePullSecret resolves PipelineConfig.ImagePullSecretRef, if
// present, into a concrete secret name appended to ImagePullSecrets.
func resolveImagePullSecret(pipeline *Pipeline, resolver ImagePullSecretResolver) error {
	if pipeline.Config.ImagePullSecretRef == "" || resolver == nil {
		return nil
	}
	name, err := resolver.Resolve(pipeline.Config.ImagePullSecretRef)
	if err != nil {
		return err
	}
	pipeline.Config.ImagePullSecrets = append(pipeline.Config.ImagePullSecrets, name)
	return nil
}
