package daggen

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeHandler struct{}

func (fakeHandler) Render(op *Operation) ([]Template, error) {
	return []Template{{Name: op.Name, Raw: map[string]interface{}{"container": map[string]interface{}{"image": "busybox"}}}}, nil
}

func findTemplate(templates []ManifestTemplate, name string) *ManifestTemplate {
	for i := range templates {
		if templates[i].Name == name {
			return &templates[i]
		}
	}
	return nil
}

func TestCompileLinearTwoOps(t *testing.T) {
	Convey("a two-op pipeline with a direct parameter dependency compiles", t, func() {
		produce := &Operation{
			Name:    "produce",
			Outputs: map[string]Parameter{"greeting": {Name: "greeting", ProducerOpName: "produce"}},
			OutputOrder: []string{"greeting"},
		}
		consume := &Operation{
			Name:   "consume",
			Inputs: []Parameter{{Name: "greeting", ProducerOpName: "produce"}},
		}
		root := &Group{Name: "pipeline", Kind: RootKind, Ops: []*Operation{produce, consume}}
		pipeline := &Pipeline{
			Name: "pipeline",
			Root: root,
			Ops:  map[string]*Operation{"produce": produce, "consume": consume},
		}

		result, err := Compile(pipeline, DNSLabelSanitizer{}, fakeHandler{}, nil)

		So(err, ShouldBeNil)
		root_t := findTemplate(result.Manifest.Spec.Templates, "pipeline")
		So(root_t, ShouldNotBeNil)
		So(root_t.DAG, ShouldNotBeNil)
		So(len(root_t.DAG.Tasks), ShouldEqual, 2)

		var consumeTask *ManifestTask
		for i := range root_t.DAG.Tasks {
			if root_t.DAG.Tasks[i].Name == "consume" {
				consumeTask = &root_t.DAG.Tasks[i]
			}
		}
		So(consumeTask, ShouldNotBeNil)
		So(consumeTask.Dependencies, ShouldResemble, []string{"produce"})
		So(consumeTask.Arguments.Parameters[0].Value, ShouldEqual, "{{tasks.produce.outputs.parameters.produce-greeting}}")
	})
}

func TestCompilePipelineParameterPassthrough(t *testing.T) {
	Convey("a parameter with no producer is wired from the pipeline's own inputs", t, func() {
		op := &Operation{Name: "greet", Inputs: []Parameter{{Name: "message"}}}
		root := &Group{Name: "pipeline", Kind: RootKind, Ops: []*Operation{op}}
		d := "hi"
		pipeline := &Pipeline{
			Name:   "pipeline",
			Root:   root,
			Ops:    map[string]*Operation{"greet": op},
			Inputs: []PipelineInput{{Name: "message", Default: &d}},
		}

		result, err := Compile(pipeline, DNSLabelSanitizer{}, fakeHandler{}, nil)

		So(err, ShouldBeNil)
		So(result.Manifest.Spec.Arguments.Parameters[0].Name, ShouldEqual, "message")
		So(*result.Manifest.Spec.Arguments.Parameters[0].Value, ShouldEqual, "hi")

		root_t := findTemplate(result.Manifest.Spec.Templates, "pipeline")
		So(root_t.Inputs.Parameters[0].Name, ShouldEqual, "message")
		So(root_t.DAG.Tasks[0].Arguments.Parameters[0].Value, ShouldEqual, "{{inputs.parameters.message}}")
	})
}

func TestCompileCrossScopeLift(t *testing.T) {
	Convey("a parameter crossing sibling subgroups is lifted through both scopes", t, func() {
		producer := &Operation{
			Name:        "producer",
			Outputs:     map[string]Parameter{"value": {Name: "value", ProducerOpName: "producer"}},
			OutputOrder: []string{"value"},
		}
		consumer := &Operation{
			Name:   "consumer",
			Inputs: []Parameter{{Name: "value", ProducerOpName: "producer"}},
		}
		left := &Group{Name: "left", Kind: ConditionKind, Ops: []*Operation{producer},
			Condition: &Condition{Operand1: ConditionOperand{Literal: "1"}, Operator: "==", Operand2: ConditionOperand{Literal: "1"}}}
		right := &Group{Name: "right", Kind: ConditionKind, Ops: []*Operation{consumer},
			Condition: &Condition{Operand1: ConditionOperand{Literal: "1"}, Operator: "==", Operand2: ConditionOperand{Literal: "1"}}}
		root := &Group{Name: "pipeline", Kind: RootKind, Groups: []*Group{left, right}}
		pipeline := &Pipeline{
			Name: "pipeline",
			Root: root,
			Ops:  map[string]*Operation{"producer": producer, "consumer": consumer},
		}

		result, err := Compile(pipeline, DNSLabelSanitizer{}, fakeHandler{}, nil)

		So(err, ShouldBeNil)
		leftT := findTemplate(result.Manifest.Spec.Templates, "left")
		rightT := findTemplate(result.Manifest.Spec.Templates, "right")
		So(leftT.Outputs.Parameters[0].Name, ShouldEqual, "producer-value")
		So(rightT.Inputs.Parameters[0].Name, ShouldEqual, "producer-value")

		rootT := findTemplate(result.Manifest.Spec.Templates, "pipeline")
		So(len(rootT.DAG.Tasks), ShouldEqual, 2)
	})
}

func TestCompileRejectsMultipleExitHandlers(t *testing.T) {
	Convey("two exit_handler groups in the same pipeline are rejected", t, func() {
		op := &Operation{Name: "op1"}
		h1 := &Group{Name: "h1", Kind: ExitHandlerKind, ExitOp: &Operation{Name: "exit1"}}
		h2 := &Group{Name: "h2", Kind: ExitHandlerKind, ExitOp: &Operation{Name: "exit2"}}
		root := &Group{Name: "pipeline", Kind: RootKind, Ops: []*Operation{op}, Groups: []*Group{h1, h2}}
		pipeline := &Pipeline{Name: "pipeline", Root: root, Ops: map[string]*Operation{
			"op1": op, "exit1": h1.ExitOp, "exit2": h2.ExitOp,
		}}

		_, err := Compile(pipeline, DNSLabelSanitizer{}, fakeHandler{}, nil)

		So(err, ShouldNotBeNil)
		ce, ok := err.(*CompileError)
		So(ok, ShouldBeTrue)
		So(ce.Type, ShouldEqual, MultipleExitHandlers)
	})
}

func TestCompileExitHandlerMustCoverAllOps(t *testing.T) {
	Convey("an exit handler that doesn't enclose every op is rejected", t, func() {
		inside := &Operation{Name: "inside"}
		outside := &Operation{Name: "outside"}
		handler := &Group{Name: "handler", Kind: ExitHandlerKind, ExitOp: &Operation{Name: "exit"}, Ops: []*Operation{inside}}
		root := &Group{Name: "pipeline", Kind: RootKind, Ops: []*Operation{outside}, Groups: []*Group{handler}}
		pipeline := &Pipeline{Name: "pipeline", Root: root, Ops: map[string]*Operation{
			"inside": inside, "outside": outside, "exit": handler.ExitOp,
		}}

		_, err := Compile(pipeline, DNSLabelSanitizer{}, fakeHandler{}, nil)

		So(err, ShouldNotBeNil)
		ce, ok := err.(*CompileError)
		So(ok, ShouldBeTrue)
		So(ce.Type, ShouldEqual, MultipleExitHandlers)
	})
}

func TestCompileSingleExitHandlerSetsOnExit(t *testing.T) {
	Convey("a single covering exit handler sets spec.onExit", t, func() {
		inside := &Operation{Name: "inside"}
		handler := &Group{Name: "handler", Kind: ExitHandlerKind, ExitOp: &Operation{Name: "exit"}, Ops: []*Operation{inside}}
		root := &Group{Name: "pipeline", Kind: RootKind, Groups: []*Group{handler}}
		pipeline := &Pipeline{Name: "pipeline", Root: root, Ops: map[string]*Operation{
			"inside": inside, "exit": handler.ExitOp,
		}}

		result, err := Compile(pipeline, DNSLabelSanitizer{}, fakeHandler{}, nil)

		So(err, ShouldBeNil)
		So(result.Manifest.Spec.OnExit, ShouldEqual, "exit")
	})
}

func TestSanitizeNamesRewritesParameterNamesAndOutputKeys(t *testing.T) {
	Convey("sanitizeNames rewrites every parameter name, output key, and pipeline input, not just op/group names", t, func() {
		produce := &Operation{
			Name:             "Produce Op",
			Outputs:          map[string]Parameter{"Greeting Text": {Name: "Greeting Text", ProducerOpName: "Produce Op"}},
			OutputOrder:      []string{"Greeting Text"},
			FileOutputs:      []FileOutput{{ParamName: "Report File", Path: "/out/r.json"}},
			AttributeOutputs: []AttributeOutput{{ParamName: "Pod IP", AttributePath: "status.podIP"}},
		}
		consume := &Operation{
			Name:   "Consume Op",
			Inputs: []Parameter{{Name: "Greeting Text", ProducerOpName: "Produce Op"}, {Name: "Message In"}},
		}
		cond := &Group{
			Name: "Gate", Kind: ConditionKind,
			Condition: &Condition{
				Operand1: ConditionOperand{Param: &Parameter{Name: "Greeting Text", ProducerOpName: "Produce Op"}},
				Operator: "==",
				Operand2: ConditionOperand{Literal: "ok"},
			},
			Ops: []*Operation{consume},
		}
		root := &Group{Name: "Pipeline Root", Kind: RootKind, Ops: []*Operation{produce}, Groups: []*Group{cond}}
		d := "hi"
		pipeline := &Pipeline{
			Name:   "pipeline",
			Root:   root,
			Ops:    map[string]*Operation{"Produce Op": produce, "Consume Op": consume},
			Inputs: []PipelineInput{{Name: "Message In", Default: &d}},
		}

		sanitizeNames(pipeline, DNSLabelSanitizer{})

		So(produce.Name, ShouldEqual, "produce-op")
		_, stale := produce.Outputs["Greeting Text"]
		So(stale, ShouldBeFalse)
		sanitized, ok := produce.Outputs["greeting-text"]
		So(ok, ShouldBeTrue)
		So(sanitized.Name, ShouldEqual, "greeting-text")
		So(sanitized.ProducerOpName, ShouldEqual, "produce-op")
		So(produce.OutputOrder, ShouldResemble, []string{"greeting-text"})
		So(produce.FileOutputs[0].ParamName, ShouldEqual, "report-file")
		So(produce.AttributeOutputs[0].ParamName, ShouldEqual, "pod-ip")

		So(consume.Inputs[0].Name, ShouldEqual, "greeting-text")
		So(consume.Inputs[0].ProducerOpName, ShouldEqual, "produce-op")
		So(consume.Inputs[1].Name, ShouldEqual, "message-in")

		So(cond.Condition.Operand1.Param.Name, ShouldEqual, "greeting-text")
		So(cond.Condition.Operand1.Param.ProducerOpName, ShouldEqual, "produce-op")

		So(pipeline.Inputs[0].Name, ShouldEqual, "message-in")
	})
}

func TestCompileRecursiveReference(t *testing.T) {
	Convey("a recursive group reference shares its target's renamed identity", t, func() {
		step := &Operation{Name: "step", Inputs: []Parameter{{Name: "counter"}}}
		body := &Group{Name: "Loop Body", Kind: ConditionKind, Ops: []*Operation{step}, Inputs: []Parameter{{Name: "counter"}}}
		recur := &Group{Name: "Loop Body-recur", Kind: RecursiveKind, RecursionRef: body, Inputs: []Parameter{{Name: "counter"}}}
		body.Groups = []*Group{recur}
		root := &Group{Name: "pipeline", Kind: RootKind, Groups: []*Group{body}}
		pipeline := &Pipeline{Name: "pipeline", Root: root, Ops: map[string]*Operation{"step": step}}

		result, err := Compile(pipeline, DNSLabelSanitizer{}, fakeHandler{}, nil)

		So(err, ShouldBeNil)
		So(body.Name, ShouldEqual, "loop-body")
		So(recur.RecursionRef.Name, ShouldEqual, "loop-body")
		So(result.Manifest, ShouldNotBeNil)
	})
}
