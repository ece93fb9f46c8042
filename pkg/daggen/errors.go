package daggen

import (
	"fmt"

	"github.com/starkandwayne/goutils/ansi"
)

// ErrorType categorizes a CompileError.
type ErrorType string

const (
	// UnknownEntity is raised when an ancestor lookup is asked about a
	// name that resolves in neither op_ancestry nor group_ancestry.
	UnknownEntity ErrorType = "unknown_entity"
	// UnknownDependency is raised when a declared dependency name
	// resolves in neither ops nor groups.
	UnknownDependency ErrorType = "unknown_dependency"
	// MultipleExitHandlers is raised when more than one exit_handler
	// group exists, or a single one does not cover every op.
	MultipleExitHandlers ErrorType = "multiple_exit_handlers"
	// UnsupportedPackageSuffix is raised when the output path's suffix
	// is not one of the recognized packaging formats.
	UnsupportedPackageSuffix ErrorType = "unsupported_package_suffix"
	// ConflictingParameterSource is raised when the input/output lifter
	// is asked to record two different sibling markers for the same full
	// parameter name within the same group (see SPEC_FULL.md §9).
	ConflictingParameterSource ErrorType = "conflicting_parameter_source"
)

// CompileError is the single error type raised by the analyses and
// assembler in this package. All of them are fatal: nothing in this
// package recovers from one locally.
type CompileError struct {
	Type ErrorType
	Name string // offending entity name, dependency name, or output path
	Msg  string
}

func (e *CompileError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Msg, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Msg)
}

func errUnknownEntity(name string) error {
	return &CompileError{Type: UnknownEntity, Name: name, Msg: "does not exist in either op or group ancestry"}
}

func errUnknownDependency(name string) error {
	return &CompileError{Type: UnknownDependency, Name: name, Msg: "dependency name resolves to neither an op nor a group"}
}

func errMultipleExitHandlers() error {
	return &CompileError{Type: MultipleExitHandlers, Msg: "only one global exit handler is allowed and it must cover every op"}
}

func errUnsupportedPackageSuffix(path string) error {
	return &CompileError{Type: UnsupportedPackageSuffix, Name: path, Msg: "output path should end with one of: .tar.gz, .tgz, .zip, .yaml, .yml"}
}

// NewUnsupportedPackageSuffixError builds the error the packaging stage
// (internal/pack) raises for an output path whose suffix names no
// recognized format. Exported so that package can raise the same
// CompileError kind the core analyses use.
func NewUnsupportedPackageSuffixError(path string) error {
	return errUnsupportedPackageSuffix(path)
}

func errConflictingParameterSource(group, fullName string) error {
	return &CompileError{Type: ConflictingParameterSource, Name: fmt.Sprintf("%s/%s", group, fullName), Msg: "parameter has two different sibling producers in the same scope"}
}

// WarningError is a non-fatal condition surfaced to stderr, never to
// stdout, and never aborting compilation. The workflow assembler raises
// one for each volume name declared with conflicting specs.
type WarningError struct {
	warning string
}

// NewWarningError builds a WarningError with an ansi-formatted message.
func NewWarningError(format string, args ...interface{}) WarningError {
	return WarningError{warning: ansi.Sprintf(format, args...)}
}

func (w WarningError) Error() string {
	return w.warning
}
