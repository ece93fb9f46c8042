package daggen

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLiftDependenciesSiblingEdge(t *testing.T) {
	Convey("an explicit dependent_names edge is recorded between siblings", t, func() {
		produce := &Operation{Name: "produce"}
		consume := &Operation{Name: "consume", DependentNames: []string{"produce"}}
		root := &Group{Name: "root", Kind: RootKind, Ops: []*Operation{produce, consume}}
		pipeline := &Pipeline{Root: root, Ops: map[string]*Operation{"produce": produce, "consume": consume}}
		w := walkTree(root)

		deps, err := liftDependencies(pipeline, w, conditionParams{})

		So(err, ShouldBeNil)
		So(deps.sorted("consume"), ShouldResemble, []string{"produce"})
		So(deps.sorted("produce"), ShouldBeEmpty)
	})
}

func TestLiftDependenciesCrossScopeLiftsToSubgroup(t *testing.T) {
	Convey("a downstream op nested in a subgroup lifts its dependency to the subgroup itself", t, func() {
		produce := &Operation{Name: "produce"}
		consume := &Operation{Name: "consume", Inputs: []Parameter{{Name: "value", ProducerOpName: "produce"}}}
		sub := &Group{Name: "sub", Kind: ConditionKind, Ops: []*Operation{consume}}
		root := &Group{Name: "root", Kind: RootKind, Ops: []*Operation{produce}, Groups: []*Group{sub}}
		pipeline := &Pipeline{Root: root, Ops: map[string]*Operation{"produce": produce, "consume": consume}}
		w := walkTree(root)

		deps, err := liftDependencies(pipeline, w, conditionParams{})

		So(err, ShouldBeNil)
		So(deps.sorted("sub"), ShouldResemble, []string{"produce"})
	})
}

func TestLiftDependenciesUnknownNameFails(t *testing.T) {
	Convey("a dependent_names entry naming no op or group fails", t, func() {
		op := &Operation{Name: "op", DependentNames: []string{"ghost"}}
		root := &Group{Name: "root", Kind: RootKind, Ops: []*Operation{op}}
		pipeline := &Pipeline{Root: root, Ops: map[string]*Operation{"op": op}}
		w := walkTree(root)

		_, err := liftDependencies(pipeline, w, conditionParams{})

		So(err, ShouldNotBeNil)
		ce, ok := err.(*CompileError)
		So(ok, ShouldBeTrue)
		So(ce.Type, ShouldEqual, UnknownDependency)
	})
}

func TestLiftDependenciesRecursiveGroupUsesInputs(t *testing.T) {
	Convey("a recursive child group's dependency is drawn from its own Inputs, not Dependencies", t, func() {
		seed := &Operation{Name: "seed"}
		body := &Group{Name: "body", Kind: ConditionKind, Inputs: []Parameter{{Name: "counter", ProducerOpName: "seed"}}}
		root := &Group{Name: "root", Kind: RootKind, Ops: []*Operation{seed}, Groups: []*Group{body}}
		recur := &Group{Name: "body-recur", Kind: RecursiveKind, RecursionRef: body, Inputs: []Parameter{{Name: "counter", ProducerOpName: "seed"}}}
		body.Groups = []*Group{recur}
		pipeline := &Pipeline{Root: root, Ops: map[string]*Operation{"seed": seed}}
		w := walkTree(root)

		deps, err := liftDependencies(pipeline, w, conditionParams{})

		So(err, ShouldBeNil)
		So(deps.sorted("body"), ShouldResemble, []string{"seed"})
	})
}
