// Package provider derives parameter and return shapes from Go types.
// Handler trees declared in Go use it so that the shapes the resolver merges
// are exactly what encoding/json produces for the handler's types.
package provider

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	"github.com/broady/rpctree/ir"
)

// Shape returns the shape of values of type t.
// Structs are inlined as objects; a struct that contains itself is emitted as
// a reference with a CYCLE_DETECTED warning.
func Shape(t reflect.Type) (ir.TypeDescriptor, []ir.Warning, error) {
	if t == nil {
		return nil, nil, fmt.Errorf("nil type")
	}
	b := newShapeBuilder()
	desc, err := b.typeToDescriptor(t)
	if err != nil {
		return nil, nil, err
	}
	return desc, b.warnings, nil
}

// ObjectShape returns the shape of a struct type (or pointer to struct),
// as used for params. Empty structs yield an object with no fields.
func ObjectShape(t reflect.Type) (*ir.ObjectDescriptor, []ir.Warning, error) {
	if t == nil {
		return nil, nil, fmt.Errorf("nil type")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("params type must be a struct, got %s", t)
	}
	b := newShapeBuilder()
	obj, err := b.structToObject(t)
	if err != nil {
		return nil, nil, err
	}
	return obj, b.warnings, nil
}

// shapeBuilder maintains state while converting one root type.
type shapeBuilder struct {
	processing map[reflect.Type]bool // structs currently being expanded (cycle detection)
	warnings   []ir.Warning
}

func newShapeBuilder() *shapeBuilder {
	return &shapeBuilder{processing: make(map[reflect.Type]bool)}
}

func (b *shapeBuilder) typeToDescriptor(t reflect.Type) (ir.TypeDescriptor, error) {
	if desc := checkSpecialType(t); desc != nil {
		return desc, nil
	}
	if err := checkUnsupportedType(t); err != nil {
		return nil, err
	}

	switch t.Kind() {
	case reflect.Bool:
		return ir.Bool(), nil

	case reflect.Int:
		return ir.Int(0), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ir.Int(t.Bits()), nil

	case reflect.Uint, reflect.Uintptr:
		return ir.Uint(0), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ir.Uint(t.Bits()), nil

	case reflect.Float32, reflect.Float64:
		return ir.Float(t.Bits()), nil

	case reflect.String:
		return ir.String(), nil

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ir.Bytes(), nil
		}
		elem, err := b.typeToDescriptor(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Slice(elem), nil

	case reflect.Array:
		elem, err := b.typeToDescriptor(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, t.Len()), nil

	case reflect.Map:
		if err := validateMapKeyType(t.Key()); err != nil {
			return nil, err
		}
		var key ir.TypeDescriptor = ir.String()
		if !t.Key().Implements(textMarshalerType) {
			var err error
			if key, err = b.typeToDescriptor(t.Key()); err != nil {
				return nil, err
			}
		}
		value, err := b.typeToDescriptor(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Map(key, value), nil

	case reflect.Ptr:
		elem, err := b.typeToDescriptor(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Ptr(elem), nil

	case reflect.Struct:
		if b.processing[t] {
			b.addWarning("CYCLE_DETECTED", fmt.Sprintf("Recursive type detected: %s", t), t.String())
			return ir.Ref(t.Name(), t.PkgPath()), nil
		}
		return b.structToObject(t)

	case reflect.Interface:
		b.addWarning("INTERFACE_TYPE", fmt.Sprintf("Interface type %s mapped to 'any'", t), t.String())
		return ir.Any(), nil

	default:
		return nil, fmt.Errorf("unsupported type: %s (kind: %s)", t, t.Kind())
	}
}

// structToObject inlines a struct's JSON-visible fields.
// Embedded structs without a json name are flattened into the parent and
// name conflicts are settled the way encoding/json settles them: the
// shallowest field wins, a json tag breaks ties at equal depth, and an
// unbroken tie drops the name.
func (b *shapeBuilder) structToObject(t reflect.Type) (*ir.ObjectDescriptor, error) {
	var fields []jsonField
	if err := b.collectFields(t, 0, &fields); err != nil {
		return nil, err
	}

	byName := make(map[string][]int)
	for i, f := range fields {
		byName[f.Name] = append(byName[f.Name], i)
	}

	obj := &ir.ObjectDescriptor{Fields: []ir.FieldDescriptor{}}
	for i, f := range fields {
		if dominantField(fields, byName[f.Name]) == i {
			obj.Fields = append(obj.Fields, f.FieldDescriptor)
		}
	}
	return obj, nil
}

// jsonField is a candidate field with its embedding depth.
type jsonField struct {
	ir.FieldDescriptor
	depth  int
	tagged bool
}

func (b *shapeBuilder) collectFields(t reflect.Type, depth int, out *[]jsonField) error {
	b.processing[t] = true
	defer delete(b.processing, t)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		name, optional, skip, stringEncoded := parseJSONTag(jsonTag, field.Name)
		if skip {
			continue
		}
		tagged := strings.Split(jsonTag, ",")[0] != ""

		if field.Anonymous && !tagged {
			embedded := field.Type
			for embedded.Kind() == reflect.Ptr {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				if b.processing[embedded] || checkSpecialType(embedded) != nil {
					continue
				}
				if err := b.collectFields(embedded, depth+1, out); err != nil {
					return fmt.Errorf("embedded %s.%s: %w", t.Name(), field.Name, err)
				}
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		desc, err := b.typeToDescriptor(field.Type)
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
		}
		if stringEncoded && isStringEncodable(desc) {
			desc = ir.String()
		}

		*out = append(*out, jsonField{
			FieldDescriptor: ir.FieldDescriptor{
				Name:        name,
				Type:        desc,
				Optional:    optional,
				ValidateTag: field.Tag.Get("validate"),
			},
			depth:  depth,
			tagged: tagged,
		})
	}
	return nil
}

// dominantField returns the index of the field that owns a name among
// candidates, or -1 when the name is ambiguous.
func dominantField(fields []jsonField, candidates []int) int {
	minDepth := fields[candidates[0]].depth
	for _, i := range candidates[1:] {
		minDepth = min(minDepth, fields[i].depth)
	}

	winner, shallow, tagged := -1, 0, 0
	for _, i := range candidates {
		if fields[i].depth != minDepth {
			continue
		}
		shallow++
		if fields[i].tagged {
			tagged++
			winner = i
		} else if shallow == 1 {
			winner = i
		}
	}
	switch {
	case shallow == 1:
		return winner
	case tagged == 1:
		return winner
	default:
		return -1
	}
}

func (b *shapeBuilder) addWarning(code, message, typeName string) {
	b.warnings = append(b.warnings, ir.Warning{Code: code, Message: message, TypeName: typeName})
}

func checkSpecialType(t reflect.Type) ir.TypeDescriptor {
	switch {
	case t.PkgPath() == "time" && t.Name() == "Time":
		return ir.Time()
	case t.PkgPath() == "time" && t.Name() == "Duration":
		return ir.Duration()
	case t.PkgPath() == "encoding/json" && t.Name() == "Number":
		return ir.String()
	case t.PkgPath() == "encoding/json" && t.Name() == "RawMessage":
		return ir.Any()
	case t.Kind() == reflect.Interface && t.NumMethod() == 0:
		return ir.Any()
	case t.Kind() == reflect.Struct && t.NumField() == 0:
		return ir.Empty()
	}
	return nil
}

func checkUnsupportedType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Chan:
		return fmt.Errorf("unsupported type: chan %s", t.Elem())
	case reflect.Complex64, reflect.Complex128:
		return fmt.Errorf("unsupported type: %s", t.Kind())
	case reflect.Func:
		return fmt.Errorf("unsupported type: func")
	case reflect.UnsafePointer:
		return fmt.Errorf("unsupported type: unsafe.Pointer")
	}
	return nil
}

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

func validateMapKeyType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return nil
	case reflect.Struct:
		if t.Implements(textMarshalerType) {
			return nil
		}
		return fmt.Errorf("unsupported map key type: struct without TextMarshaler")
	default:
		return fmt.Errorf("unsupported map key type: %s", t.Kind())
	}
}

func isStringEncodable(d ir.TypeDescriptor) bool {
	p, ok := d.(*ir.PrimitiveDescriptor)
	if !ok {
		return false
	}
	return p.IsNumeric() || p.PrimitiveKind == ir.PrimitiveBool || p.PrimitiveKind == ir.PrimitiveString
}

// parseJSONTag mirrors encoding/json's interpretation of the json struct tag.
func parseJSONTag(tag, fieldName string) (jsonName string, optional, skip, stringEncoded bool) {
	if tag == "" {
		return fieldName, false, false, false
	}

	parts := strings.Split(tag, ",")
	jsonName = parts[0]

	// "-" alone skips the field; "-," names a field "-".
	if jsonName == "-" && len(parts) == 1 {
		return "", false, true, false
	}
	if jsonName == "" {
		jsonName = fieldName
	}

	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty", "omitzero":
			optional = true
		case "string":
			stringEncoded = true
		}
	}
	return jsonName, optional, false, stringEncoded
}
