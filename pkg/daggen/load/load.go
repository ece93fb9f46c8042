// Package load parses a declarative YAML pipeline description into a
// daggen.Pipeline, standing in for the embedded pipeline-building DSL the
// core compiler treats as out of scope.
package load

import (
	"fmt"
	"os"

	"github.com/geofffranks/simpleyaml"
	"github.com/wayneeseguin/daggen/pkg/daggen"
)

// File parses the pipeline description at path.
func File(path string) (*daggen.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline description %s: %w", path, err)
	}
	return Bytes(data)
}

// Bytes parses a pipeline description already in memory.
func Bytes(data []byte) (*daggen.Pipeline, error) {
	y, err := simpleyaml.NewYaml(data)
	if err != nil {
		return nil, fmt.Errorf("parsing pipeline description: %w", err)
	}
	return parsePipeline(y)
}

func parsePipeline(y *simpleyaml.Yaml) (*daggen.Pipeline, error) {
	name := y.Get("name").MustString("pipeline")

	root, ops, err := parseGroup(y.Get("root"), map[string]*daggen.Operation{})
	if err != nil {
		return nil, fmt.Errorf("parsing root group: %w", err)
	}
	if err := resolveRecursionRefs(root); err != nil {
		return nil, err
	}

	inputs, err := parseInputs(y.Get("inputs"))
	if err != nil {
		return nil, fmt.Errorf("parsing pipeline inputs: %w", err)
	}

	config, err := parseConfig(y.Get("config"))
	if err != nil {
		return nil, fmt.Errorf("parsing pipeline config: %w", err)
	}

	return &daggen.Pipeline{
		Name:   name,
		Root:   root,
		Ops:    ops,
		Inputs: inputs,
		Config: config,
	}, nil
}

// resolveRecursionRefs rewrites each recursive group's placeholder
// RecursionRef (built from the bare name string in the description) into
// the actual pointer of the group it names, so a later rename of that
// group (sanitization) is visible through every reference to it.
func resolveRecursionRefs(root *daggen.Group) error {
	byName := map[string]*daggen.Group{}
	var index func(g *daggen.Group)
	index = func(g *daggen.Group) {
		byName[g.Name] = g
		for _, sub := range g.Groups {
			index(sub)
		}
	}
	index(root)

	var fix func(g *daggen.Group) error
	fix = func(g *daggen.Group) error {
		if g.IsRecursiveRef() {
			target, ok := byName[g.RecursionRef.Name]
			if !ok {
				return fmt.Errorf("recursive group %s references unknown group %s", g.Name, g.RecursionRef.Name)
			}
			g.RecursionRef = target
		}
		for _, sub := range g.Groups {
			if err := fix(sub); err != nil {
				return err
			}
		}
		return nil
	}
	return fix(root)
}

func parseInputs(y *simpleyaml.Yaml) ([]daggen.PipelineInput, error) {
	arr, err := y.Array()
	if err != nil {
		return nil, nil
	}
	out := make([]daggen.PipelineInput, 0, len(arr))
	for i := range arr {
		entry := y.GetIndex(i)
		in := daggen.PipelineInput{Name: entry.Get("name").MustString("")}
		if d, err := entry.Get("default").String(); err == nil {
			in.Default = &d
		}
		out = append(out, in)
	}
	return out, nil
}

func parseConfig(y *simpleyaml.Yaml) (daggen.PipelineConfig, error) {
	cfg := daggen.PipelineConfig{
		ArtifactLocation:   y.Get("artifact_location").MustString(""),
		TimeoutSeconds:     y.Get("timeout_seconds").MustInt(0),
		ImagePullSecretRef: y.Get("image_pull_secret_ref").MustString(""),
	}
	if arr, err := y.Get("image_pull_secrets").Array(); err == nil {
		for i := range arr {
			cfg.ImagePullSecrets = append(cfg.ImagePullSecrets, y.Get("image_pull_secrets").GetIndex(i).MustString(""))
		}
	}
	return cfg, nil
}

// parseGroup recursively parses a group node, accumulating every op it
// (transitively) owns into ops, keyed by name.
func parseGroup(y *simpleyaml.Yaml, ops map[string]*daggen.Operation) (*daggen.Group, error) {
	g := &daggen.Group{
		Name: y.Get("name").MustString(""),
		Kind: daggen.GroupKind(y.Get("kind").MustString(string(daggen.RootKind))),
	}

	if arr, err := y.Get("dependencies").Array(); err == nil {
		for i := range arr {
			g.Dependencies = append(g.Dependencies, y.Get("dependencies").GetIndex(i).MustString(""))
		}
	}

	if g.Kind == daggen.ConditionKind {
		cond, err := parseCondition(y.Get("condition"))
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Name, err)
		}
		g.Condition = cond
	}

	if g.Kind == daggen.ExitHandlerKind {
		if _, err := y.Get("exit_op").Map(); err == nil {
			op, err := parseOp(y.Get("exit_op"))
			if err != nil {
				return nil, fmt.Errorf("group %s exit_op: %w", g.Name, err)
			}
			op.IsExitHandler = true
			g.ExitOp = op
			ops[op.Name] = op
		}
	}

	if g.Kind == daggen.RecursiveKind {
		if ref := y.Get("recursion_ref").MustString(""); ref != "" {
			g.RecursionRef = &daggen.Group{Name: ref}
		}
		params, err := parseParams(y.Get("inputs"))
		if err != nil {
			return nil, fmt.Errorf("group %s inputs: %w", g.Name, err)
		}
		g.Inputs = params
	}

	if arr, err := y.Get("ops").Array(); err == nil {
		for i := range arr {
			op, err := parseOp(y.Get("ops").GetIndex(i))
			if err != nil {
				return nil, fmt.Errorf("group %s op %d: %w", g.Name, i, err)
			}
			g.Ops = append(g.Ops, op)
			ops[op.Name] = op
		}
	}

	if arr, err := y.Get("groups").Array(); err == nil {
		for i := range arr {
			sub, err := parseGroup(y.Get("groups").GetIndex(i), ops)
			if err != nil {
				return nil, err
			}
			g.Groups = append(g.Groups, sub)
		}
	}

	return g, nil
}

func parseOp(y *simpleyaml.Yaml) (*daggen.Operation, error) {
	op := &daggen.Operation{
		Name:    y.Get("name").MustString(""),
		Outputs: map[string]daggen.Parameter{},
		Metadata: toStringMap(y.Get("metadata").MustMap(nil)),
	}

	inputs, err := parseParams(y.Get("inputs"))
	if err != nil {
		return nil, fmt.Errorf("op %s inputs: %w", op.Name, err)
	}
	op.Inputs = inputs

	if arr, err := y.Get("outputs").Array(); err == nil {
		for i := range arr {
			entry := y.Get("outputs").GetIndex(i)
			name := entry.Get("name").MustString("")
			p := daggen.Parameter{Name: name, ProducerOpName: op.Name}
			op.Outputs[name] = p
			op.OutputOrder = append(op.OutputOrder, name)
		}
	}

	if arr, err := y.Get("file_outputs").Array(); err == nil {
		for i := range arr {
			entry := y.Get("file_outputs").GetIndex(i)
			op.FileOutputs = append(op.FileOutputs, daggen.FileOutput{
				ParamName: entry.Get("param_name").MustString(""),
				Path:      entry.Get("path").MustString(""),
			})
		}
	}

	if arr, err := y.Get("attribute_outputs").Array(); err == nil {
		for i := range arr {
			entry := y.Get("attribute_outputs").GetIndex(i)
			op.AttributeOutputs = append(op.AttributeOutputs, daggen.AttributeOutput{
				ParamName:     entry.Get("param_name").MustString(""),
				AttributePath: entry.Get("attribute_path").MustString(""),
			})
		}
	}

	if arr, err := y.Get("dependent_names").Array(); err == nil {
		for i := range arr {
			op.DependentNames = append(op.DependentNames, y.Get("dependent_names").GetIndex(i).MustString(""))
		}
	}

	if arr, err := y.Get("volumes").Array(); err == nil {
		for i := range arr {
			entry := y.Get("volumes").GetIndex(i)
			op.Volumes = append(op.Volumes, daggen.Volume{
				Name: entry.Get("name").MustString(""),
				Spec: toStringMap(entry.Get("spec").MustMap(nil)),
			})
		}
	}

	return op, nil
}

func parseParams(y *simpleyaml.Yaml) ([]daggen.Parameter, error) {
	arr, err := y.Array()
	if err != nil {
		return nil, nil
	}
	out := make([]daggen.Parameter, 0, len(arr))
	for i := range arr {
		entry := y.GetIndex(i)
		p := daggen.Parameter{
			Name:           entry.Get("name").MustString(""),
			ProducerOpName: entry.Get("producer_op_name").MustString(""),
		}
		if v, err := entry.Get("value").String(); err == nil {
			p.Value = &v
		}
		out = append(out, p)
	}
	return out, nil
}

func parseCondition(y *simpleyaml.Yaml) (*daggen.Condition, error) {
	op1, err := parseOperand(y.Get("operand1"))
	if err != nil {
		return nil, err
	}
	op2, err := parseOperand(y.Get("operand2"))
	if err != nil {
		return nil, err
	}
	return &daggen.Condition{
		Operand1: op1,
		Operator: y.Get("operator").MustString("=="),
		Operand2: op2,
	}, nil
}

func parseOperand(y *simpleyaml.Yaml) (daggen.ConditionOperand, error) {
	if _, err := y.Get("param").Map(); err == nil {
		p := parseSingleParam(y.Get("param"))
		return daggen.ConditionOperand{Param: &p}, nil
	}
	return daggen.ConditionOperand{Literal: y.Get("literal").MustString("")}, nil
}

// parseSingleParam parses one {name, producer_op_name[, value]} object
// node directly, for the single-parameter operand case where parseParams'
// array-of-entries shape doesn't apply.
func parseSingleParam(y *simpleyaml.Yaml) daggen.Parameter {
	p := daggen.Parameter{
		Name:           y.Get("name").MustString(""),
		ProducerOpName: y.Get("producer_op_name").MustString(""),
	}
	if v, err := y.Get("value").String(); err == nil {
		p.Value = &v
	}
	return p
}

func toStringMap(m map[interface{}]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[fmt.Sprintf("%v", k)] = v
	}
	return out
}
