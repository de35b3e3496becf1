package rpctree

import (
	"errors"
	"fmt"

	"github.com/broady/rpctree/ir"
)

var (
	// ErrUnresolved is the "no match" result: the method path does not name a
	// leaf of the handler tree. Every *UnresolvedError matches it with errors.Is.
	ErrUnresolved = errors.New("rpctree: unresolved method path")

	// ErrConflict is matched by *ConflictError.
	ErrConflict = errors.New("rpctree: conflicting param declarations")
)

// Reason is a machine-readable cause of an unresolved path.
type Reason string

const (
	ReasonEmptyPath    Reason = "empty_path"    // path is ""
	ReasonEmptySegment Reason = "empty_segment" // "a..b", ".a", "a."
	ReasonMissingChild Reason = "missing_child" // segment names no child
	ReasonNotInvocable Reason = "not_invocable" // path ends on a parent
	ReasonPastLeaf     Reason = "past_leaf"     // path continues below a leaf
)

// UnresolvedError reports where and why resolution stopped.
type UnresolvedError struct {
	// Path is the full method path that was being resolved.
	Path string

	// Segment is the segment at which resolution stopped.
	Segment string

	// Depth is the zero-based index of Segment within Path.
	Depth int

	Reason Reason
}

func (e *UnresolvedError) Error() string {
	switch e.Reason {
	case ReasonEmptyPath:
		return "unresolved method path: empty path"
	case ReasonEmptySegment:
		return fmt.Sprintf("unresolved method path %q: empty segment at position %d", e.Path, e.Depth)
	case ReasonMissingChild:
		return fmt.Sprintf("unresolved method path %q: no handler named %q at position %d", e.Path, e.Segment, e.Depth)
	case ReasonNotInvocable:
		return fmt.Sprintf("unresolved method path %q: %q is a namespace, not a method", e.Path, e.Segment)
	case ReasonPastLeaf:
		if e.Segment == "" {
			return fmt.Sprintf("unresolved method path %q: the root handler is a method and has no children", e.Path)
		}
		return fmt.Sprintf("unresolved method path %q: %q is a method and has no children", e.Path, e.Segment)
	default:
		return fmt.Sprintf("unresolved method path %q: %s", e.Path, e.Reason)
	}
}

// Is makes errors.Is(err, ErrUnresolved) true.
func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolved
}

// ConflictError reports a param declared on two levels of the same method path
// with incompatible shapes. It indicates an ill-formed schema.
type ConflictError struct {
	// Path is the method path being resolved, or the leaf path being validated.
	Path string

	// Field is the conflicting property name.
	Field string

	Outer ir.FieldDescriptor
	Inner ir.FieldDescriptor
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting declarations of param %q along %q: %s%s vs %s%s",
		e.Field, e.Path,
		ir.Describe(e.Outer.Type), optionalMark(e.Outer),
		ir.Describe(e.Inner.Type), optionalMark(e.Inner))
}

// Is makes errors.Is(err, ErrConflict) true.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func optionalMark(f ir.FieldDescriptor) string {
	if f.Optional {
		return " (optional)"
	}
	return ""
}

// ValidationCode identifies a schema validation failure.
type ValidationCode string

const (
	CodeNilNode          ValidationCode = "nil_node"
	CodeRootLeaf         ValidationCode = "root_leaf" // no path can resolve against a leaf root
	CodeInvalidName      ValidationCode = "invalid_name"
	CodeMissingReturn    ValidationCode = "missing_return"
	CodeInvalidField     ValidationCode = "invalid_field"
	CodeDuplicateField   ValidationCode = "duplicate_field"
	CodeConflictingParam ValidationCode = "conflicting_param"
)

// ValidationError represents a schema validation failure found by Compile.
type ValidationError struct {
	Code ValidationCode

	// Path locates the offending node ("" for the root).
	Path string

	Message string

	// Err is the underlying error, if any (for example a *ConflictError).
	Err error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: <root>: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
