package ir

// Equal reports whether two descriptors describe the same shape.
// Documentation, sources and validate tags are ignored. Object fields and
// union members are compared as sets, so declaration order does not matter.
func Equal(a, b TypeDescriptor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *PrimitiveDescriptor:
		y := b.(*PrimitiveDescriptor)
		return x.PrimitiveKind == y.PrimitiveKind && x.BitSize == y.BitSize
	case *ArrayDescriptor:
		y := b.(*ArrayDescriptor)
		return x.Length == y.Length && Equal(x.Element, y.Element)
	case *MapDescriptor:
		y := b.(*MapDescriptor)
		return Equal(x.Key, y.Key) && Equal(x.Value, y.Value)
	case *ReferenceDescriptor:
		return x.Target == b.(*ReferenceDescriptor).Target
	case *PtrDescriptor:
		return Equal(x.Element, b.(*PtrDescriptor).Element)
	case *UnionDescriptor:
		return unionEqual(x, b.(*UnionDescriptor))
	case *ObjectDescriptor:
		return objectEqual(x, b.(*ObjectDescriptor))
	default:
		return false
	}
}

// FieldsCompatible is the default compatibility rule for a property declared
// on more than one level of a handler tree: same shape, same optionality.
func FieldsCompatible(a, b FieldDescriptor) bool {
	return a.Optional == b.Optional && Equal(a.Type, b.Type)
}

func objectEqual(x, y *ObjectDescriptor) bool {
	if x.Len() != y.Len() {
		return false
	}
	for _, f := range x.Fields {
		g, ok := y.Field(f.Name)
		if !ok || !FieldsCompatible(f, g) {
			return false
		}
	}
	return true
}

func unionEqual(x, y *UnionDescriptor) bool {
	if len(x.Types) != len(y.Types) {
		return false
	}
	matched := make([]bool, len(y.Types))
	for _, t := range x.Types {
		found := false
		for i, u := range y.Types {
			if !matched[i] && Equal(t, u) {
				matched[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
