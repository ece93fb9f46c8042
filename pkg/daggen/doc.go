// Package daggen compiles an in-memory pipeline description — a tree of
// nested groups containing containerized operations, conditionals, exit
// handlers, and recursive sub-pipelines wired together by symbolic
// parameters — into an Argo Workflow v1alpha1 manifest: a flat list of DAG
// templates wired by inputs, outputs, arguments, and dependencies.
//
// The compiler never mutates the input tree's parent/child relationships.
// It rewrites op and group state in place (sanitized names, transformer
// output), runs a handful of whole-tree analyses exactly once, and renders
// the result as a separate manifest tree ready for YAML serialization.
package daggen
