package ir

// DescriptorKind identifies the category of a type descriptor.
type DescriptorKind int

const (
	KindObject    DescriptorKind = iota // Inline object with named fields
	KindPrimitive                       // Built-in primitive type
	KindArray                           // Ordered collection ([]T or [N]T)
	KindMap                             // Key-value mapping (map[K]V)
	KindReference                       // Reference to a named type
	KindPtr                             // Nullable wrapper (*T)
	KindUnion                           // Union of types (T1 | T2 | ...)
)

// String returns the string representation of the descriptor kind.
func (k DescriptorKind) String() string {
	switch k {
	case KindObject:
		return "Object"
	case KindPrimitive:
		return "Primitive"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindReference:
		return "Reference"
	case KindPtr:
		return "Ptr"
	case KindUnion:
		return "Union"
	default:
		return "Unknown"
	}
}

// TypeDescriptor is the base interface for all shape descriptors.
type TypeDescriptor interface {
	// Kind returns the descriptor kind for type switching.
	Kind() DescriptorKind

	// Ensure only types in this package can implement TypeDescriptor.
	sealed()
}

// exprBase seals expression descriptors.
type exprBase struct{}

func (exprBase) sealed() {}
