package rpctree

import (
	"github.com/broady/rpctree/ir"
)

// CompatibleFunc decides whether a param declared on two levels of one method
// path describes the same property. The default is ir.FieldsCompatible.
type CompatibleFunc func(outer, inner ir.FieldDescriptor) bool

// Merge returns the structural union of param shapes, outermost level first.
// Fields keep their declaration order; a field redeclared by a later level is
// kept once, as first declared, when compat accepts the pair. Otherwise Merge
// returns a *ConflictError (its Path is left for the caller to fill in).
// Nil levels are the empty shape. The inputs are not modified.
func Merge(compat CompatibleFunc, levels ...*ir.ObjectDescriptor) (*ir.ObjectDescriptor, error) {
	if compat == nil {
		compat = ir.FieldsCompatible
	}

	n := 0
	for _, level := range levels {
		n += level.Len()
	}
	merged := &ir.ObjectDescriptor{Fields: make([]ir.FieldDescriptor, 0, n)}
	index := make(map[string]int, n)

	for _, level := range levels {
		if level == nil {
			continue
		}
		for _, f := range level.Fields {
			i, seen := index[f.Name]
			if !seen {
				index[f.Name] = len(merged.Fields)
				merged.Fields = append(merged.Fields, f)
				continue
			}
			if !compat(merged.Fields[i], f) {
				return nil, &ConflictError{Field: f.Name, Outer: merged.Fields[i], Inner: f}
			}
		}
	}
	return merged, nil
}
