package ir

// ObjectDescriptor represents an inline object shape: an ordered set of named
// fields. Parameter shapes are always objects so that the fields contributed
// by each level of a handler tree can be merged.
type ObjectDescriptor struct {
	exprBase

	// Fields in declaration order. Names are unique within one object.
	Fields []FieldDescriptor
}

// Kind returns KindObject.
func (d *ObjectDescriptor) Kind() DescriptorKind { return KindObject }

// Object returns an ObjectDescriptor with the given fields.
func Object(fields ...FieldDescriptor) *ObjectDescriptor {
	return &ObjectDescriptor{Fields: fields}
}

// Field looks up a field by name.
func (d *ObjectDescriptor) Field(name string) (FieldDescriptor, bool) {
	if d == nil {
		return FieldDescriptor{}, false
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Len returns the number of fields. A nil object has no fields.
func (d *ObjectDescriptor) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Fields)
}

// Clone returns a copy whose field slice can be modified independently.
// Field types are shared; descriptors are treated as immutable.
func (d *ObjectDescriptor) Clone() *ObjectDescriptor {
	if d == nil {
		return &ObjectDescriptor{}
	}
	fields := make([]FieldDescriptor, len(d.Fields))
	copy(fields, d.Fields)
	return &ObjectDescriptor{Fields: fields}
}

// FieldDescriptor represents a single property of an object shape.
type FieldDescriptor struct {
	// Name is the serialized property name.
	Name string

	// Type is the field's type descriptor.
	Type TypeDescriptor

	// Optional indicates the property can be absent.
	Optional bool

	// ValidateTag is the raw `validate` struct tag, when the shape was derived
	// from a Go struct. It is carried for generators and never interpreted here.
	ValidateTag string

	// Documentation for this field.
	Documentation Documentation

	// Source is where the field was declared, when loaded from a document.
	Source Source
}

// NewField returns a required field.
func NewField(name string, typ TypeDescriptor) FieldDescriptor {
	return FieldDescriptor{Name: name, Type: typ}
}

// OptionalField returns an optional field.
func OptionalField(name string, typ TypeDescriptor) FieldDescriptor {
	return FieldDescriptor{Name: name, Type: typ, Optional: true}
}
