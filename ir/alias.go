package ir

// Alias is a named shape, declared once and referred to by
// ReferenceDescriptor. Schema documents declare them under "types".
type Alias struct {
	Name          GoIdentifier
	Underlying    TypeDescriptor
	Documentation Documentation
	Source        Source
}

// References returns the names of all references reachable from t, in the
// order first encountered, without duplicates.
func References(t TypeDescriptor) []GoIdentifier {
	var out []GoIdentifier
	seen := make(map[GoIdentifier]bool)
	var walk func(TypeDescriptor)
	walk = func(t TypeDescriptor) {
		switch d := t.(type) {
		case *ReferenceDescriptor:
			if !seen[d.Target] {
				seen[d.Target] = true
				out = append(out, d.Target)
			}
		case *ArrayDescriptor:
			walk(d.Element)
		case *PtrDescriptor:
			walk(d.Element)
		case *MapDescriptor:
			walk(d.Key)
			walk(d.Value)
		case *UnionDescriptor:
			for _, m := range d.Types {
				walk(m)
			}
		case *ObjectDescriptor:
			if d == nil {
				return
			}
			for _, f := range d.Fields {
				walk(f.Type)
			}
		}
	}
	walk(t)
	return out
}
