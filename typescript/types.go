package typescript

import (
	"fmt"

	"github.com/broady/rpctree/ir"
)

// Output files, relative to the output directory.
const (
	HelpersFile  = "type-helpers.ts"
	TypesFile    = "types.ts"
	HandlersFile = "handlers.ts"
	MethodsFile  = "methods.ts"
)

// Config controls TypeScript output.
type Config struct {
	// EmitComments writes documentation as JSDoc comments.
	EmitComments bool

	// UnknownType is used for "any" shapes: "unknown" (default) or "any".
	UnknownType string

	// ReadonlyArrays emits "readonly T[]" instead of "T[]".
	ReadonlyArrays bool

	// IndentSize is the number of spaces per level (default 2).
	IndentSize int

	// Frontmatter is written after the header of every generated file
	// except the helpers.
	Frontmatter string
}

// DefaultConfig returns the configuration used by FromSchema.
func DefaultConfig() Config {
	return Config{
		EmitComments: true,
		UnknownType:  "unknown",
		IndentSize:   2,
	}
}

func (c Config) withDefaults() Config {
	if c.UnknownType == "" {
		c.UnknownType = "unknown"
	}
	if c.IndentSize <= 0 {
		c.IndentSize = 2
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.UnknownType {
	case "", "unknown", "any":
	default:
		return fmt.Errorf("unknown type must be %q or %q, got %q", "unknown", "any", c.UnknownType)
	}
	if c.IndentSize < 0 || c.IndentSize > 8 {
		return fmt.Errorf("indent size must be between 0 and 8, got %d", c.IndentSize)
	}
	return nil
}

// GenerateResult describes a generation run.
type GenerateResult struct {
	// Files lists the files written: helpers, types, handlers, methods.
	Files []OutputFile

	// Methods is the number of methods in methods.ts.
	Methods int

	// Warnings contains non-fatal issues encountered.
	Warnings []ir.Warning
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is relative to the output directory.
	Path string

	// Size is the number of bytes written.
	Size int64
}
