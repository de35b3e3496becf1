package ir

import "encoding/json"

// JSON serialization support for IR types.
// All descriptors include a "kind" field for type discrimination.

// MarshalJSON implements json.Marshaler for PrimitiveDescriptor.
func (d *PrimitiveDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind          string `json:"kind"`
		PrimitiveKind string `json:"primitiveKind"`
		BitSize       int    `json:"bitSize,omitempty"`
	}{
		Kind:          "primitive",
		PrimitiveKind: d.PrimitiveKind.String(),
		BitSize:       d.BitSize,
	})
}

// MarshalJSON implements json.Marshaler for ArrayDescriptor.
func (d *ArrayDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string         `json:"kind"`
		Element TypeDescriptor `json:"element"`
		Length  int            `json:"length,omitempty"`
	}{
		Kind:    "array",
		Element: d.Element,
		Length:  d.Length,
	})
}

// MarshalJSON implements json.Marshaler for MapDescriptor.
func (d *MapDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind  string         `json:"kind"`
		Key   TypeDescriptor `json:"key"`
		Value TypeDescriptor `json:"value"`
	}{
		Kind:  "map",
		Key:   d.Key,
		Value: d.Value,
	})
}

// MarshalJSON implements json.Marshaler for ReferenceDescriptor.
func (d *ReferenceDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
		Pkg  string `json:"package,omitempty"`
	}{
		Kind: "reference",
		Name: d.Target.Name,
		Pkg:  d.Target.Package,
	})
}

// MarshalJSON implements json.Marshaler for PtrDescriptor.
func (d *PtrDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string         `json:"kind"`
		Element TypeDescriptor `json:"element"`
	}{
		Kind:    "ptr",
		Element: d.Element,
	})
}

// MarshalJSON implements json.Marshaler for UnionDescriptor.
func (d *UnionDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind  string           `json:"kind"`
		Types []TypeDescriptor `json:"types"`
	}{
		Kind:  "union",
		Types: d.Types,
	})
}

// MarshalJSON implements json.Marshaler for ObjectDescriptor.
// A nil or empty object encodes with an empty (not null) field list.
func (d *ObjectDescriptor) MarshalJSON() ([]byte, error) {
	fields := []FieldDescriptor{}
	if d != nil && d.Fields != nil {
		fields = d.Fields
	}
	return json.Marshal(&struct {
		Kind   string            `json:"kind"`
		Fields []FieldDescriptor `json:"fields"`
	}{
		Kind:   "object",
		Fields: fields,
	})
}

// MarshalJSON implements json.Marshaler for FieldDescriptor.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name        string         `json:"name"`
		Type        TypeDescriptor `json:"type"`
		Optional    bool           `json:"optional,omitempty"`
		ValidateTag string         `json:"validateTag,omitempty"`
		Doc         string         `json:"doc,omitempty"`
	}{
		Name:        f.Name,
		Type:        f.Type,
		Optional:    f.Optional,
		ValidateTag: f.ValidateTag,
		Doc:         f.Documentation.Summary,
	})
}
