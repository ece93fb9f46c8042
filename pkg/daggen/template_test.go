package daggen

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCreateTemplatesRendersGroupsAndOps(t *testing.T) {
	Convey("createTemplates produces one DAG template per group and one leaf template per op", t, func() {
		produce := &Operation{Name: "produce"}
		consume := &Operation{Name: "consume", DependentNames: []string{"produce"}}
		root := &Group{Name: "root", Kind: RootKind, Ops: []*Operation{produce, consume}}
		pipeline := &Pipeline{Root: root, Ops: map[string]*Operation{"produce": produce, "consume": consume}}

		templates, err := createTemplates(pipeline, fakeHandler{})

		So(err, ShouldBeNil)
		names := map[string]bool{}
		for _, t := range templates {
			names[t.Name] = true
		}
		So(names["root"], ShouldBeTrue)
		So(names["produce"], ShouldBeTrue)
		So(names["consume"], ShouldBeTrue)

		var rootT *Template
		for i := range templates {
			if templates[i].Name == "root" {
				rootT = &templates[i]
			}
		}
		So(rootT.DAG, ShouldNotBeNil)
		So(len(rootT.DAG.Tasks), ShouldEqual, 2)
	})
}

func TestGroupToTemplateOrdersTasksByName(t *testing.T) {
	Convey("groupToTemplate sorts its DAG tasks by name regardless of declaration order", t, func() {
		z := &Operation{Name: "zeta"}
		a := &Operation{Name: "alpha"}
		root := &Group{Name: "root", Kind: RootKind, Ops: []*Operation{z, a}}
		w := walkTree(root)
		cond := propagateConditions(root)
		lift, err := liftIO(&Pipeline{Root: root, Ops: map[string]*Operation{"zeta": z, "alpha": a}}, w, cond)
		So(err, ShouldBeNil)
		deps, err := liftDependencies(&Pipeline{Root: root, Ops: map[string]*Operation{"zeta": z, "alpha": a}}, w, cond)
		So(err, ShouldBeNil)

		tmpl := groupToTemplate(root, lift, deps)

		So(tmpl.DAG.Tasks[0].Name, ShouldEqual, "alpha")
		So(tmpl.DAG.Tasks[1].Name, ShouldEqual, "zeta")
	})
}

func TestChildTaskRecursiveRemapsTemplateAndArgumentNames(t *testing.T) {
	Convey("a recursive child task points at its target's template and remaps argument names positionally", t, func() {
		step := &Operation{Name: "step", Inputs: []Parameter{{Name: "counter"}}}
		body := &Group{Name: "body", Kind: ConditionKind, Ops: []*Operation{step}, Inputs: []Parameter{{Name: "counter"}}}
		recur := &Group{Name: "body-recur", Kind: RecursiveKind, RecursionRef: body, Inputs: []Parameter{{Name: "counter"}}}
		body.Groups = []*Group{recur}
		root := &Group{Name: "root", Kind: RootKind, Groups: []*Group{body}}
		pipeline := &Pipeline{Root: root, Ops: map[string]*Operation{"step": step}}
		w := walkTree(root)
		cond := propagateConditions(root)
		lift, err := liftIO(pipeline, w, cond)
		So(err, ShouldBeNil)
		deps, err := liftDependencies(pipeline, w, cond)
		So(err, ShouldBeNil)

		task := childTask(recur, lift, deps)

		So(task.TemplateName, ShouldEqual, "body")
		So(task.Name, ShouldEqual, "body")
	})
}

func TestBuildArgumentsResolvesValuesFromSiblingOutputs(t *testing.T) {
	Convey("buildArguments resolves a task's argument values against its caller's lifted inputs", t, func() {
		produce := &Operation{Name: "produce"}
		consume := &Operation{Name: "consume", Inputs: []Parameter{{Name: "value", ProducerOpName: "produce"}}}
		root := &Group{Name: "root", Kind: RootKind, Ops: []*Operation{produce, consume}}
		pipeline := &Pipeline{Root: root, Ops: map[string]*Operation{"produce": produce, "consume": consume}}
		w := walkTree(root)
		cond := propagateConditions(root)
		lift, err := liftIO(pipeline, w, cond)
		So(err, ShouldBeNil)

		args := buildArguments("consume", false, nil, lift)

		So(len(args), ShouldEqual, 1)
		So(args[0].Name, ShouldEqual, "produce-value")
		So(args[0].Value, ShouldEqual, "{{tasks.produce.outputs.parameters.produce-value}}")
	})
}
