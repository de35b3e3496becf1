// Package ir defines the intermediate representation for parameter and return
// shapes of RPC handlers. Shapes are language-agnostic: the resolver merges and
// compares them, and generators turn them into target language source code.
package ir

// GoIdentifier names a type that a shape refers to instead of inlining it.
type GoIdentifier struct {
	// Name is the type name as it should appear in generated code.
	Name string

	// Package is the fully qualified package path.
	// Empty for types declared in schema documents.
	Package string
}

// IsZero returns true if the identifier is empty.
func (id GoIdentifier) IsZero() bool {
	return id.Name == "" && id.Package == ""
}

// Documentation holds documentation attached to a node or field.
type Documentation struct {
	// Summary is the first sentence or paragraph, suitable for brief descriptions.
	Summary string

	// Body is the complete documentation text, including the summary.
	Body string

	// Deprecated is non-nil if the symbol is marked deprecated.
	// The string value is the deprecation message (may be empty).
	Deprecated *string
}

// IsZero returns true if the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == "" && d.Deprecated == nil
}

// Source represents a location in a schema document.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// Warning represents a non-fatal issue encountered while building shapes.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string
}
