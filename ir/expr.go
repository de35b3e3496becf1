package ir

// Composite shapes. Each wraps one or more other shapes; Describe writes them
// as *T, T[], T[N], map[K]V, A | B and @Name.

// PtrDescriptor is a value that may be null on the wire.
// The TypeScript emitter writes it as "T | null".
type PtrDescriptor struct {
	exprBase
	Element TypeDescriptor
}

func (d *PtrDescriptor) Kind() DescriptorKind { return KindPtr }

// Ptr makes element nullable.
func Ptr(element TypeDescriptor) *PtrDescriptor {
	return &PtrDescriptor{Element: element}
}

// ArrayDescriptor is a JSON array of Element.
// A positive Length fixes the number of items, and short fixed arrays are
// emitted as tuples.
type ArrayDescriptor struct {
	exprBase
	Element TypeDescriptor
	Length  int
}

func (d *ArrayDescriptor) Kind() DescriptorKind { return KindArray }

// Slice is an array of any length.
func Slice(element TypeDescriptor) *ArrayDescriptor {
	return &ArrayDescriptor{Element: element}
}

// Array is an array of exactly length items.
func Array(element TypeDescriptor, length int) *ArrayDescriptor {
	return &ArrayDescriptor{Element: element, Length: length}
}

// MapDescriptor is a JSON object used as a dictionary. Key is the shape of
// the property names before they are stringified.
type MapDescriptor struct {
	exprBase
	Key, Value TypeDescriptor
}

func (d *MapDescriptor) Kind() DescriptorKind { return KindMap }

func Map(key, value TypeDescriptor) *MapDescriptor {
	return &MapDescriptor{Key: key, Value: value}
}

// UnionDescriptor accepts a value matching any of Types.
// Member order is not significant to Equal.
type UnionDescriptor struct {
	exprBase
	Types []TypeDescriptor
}

func (d *UnionDescriptor) Kind() DescriptorKind { return KindUnion }

func Union(types ...TypeDescriptor) *UnionDescriptor {
	return &UnionDescriptor{Types: types}
}

// ReferenceDescriptor names an Alias instead of spelling out its shape.
// Schema documents write it as @Name. The reflection provider produces one
// when a struct refers back to itself.
type ReferenceDescriptor struct {
	exprBase
	Target GoIdentifier
}

func (d *ReferenceDescriptor) Kind() DescriptorKind { return KindReference }

// Ref refers to the alias called name. pkg is the Go import path for types
// found by reflection and empty for types declared in a document.
func Ref(name string, pkg string) *ReferenceDescriptor {
	return &ReferenceDescriptor{Target: GoIdentifier{Name: name, Package: pkg}}
}
