package ir

import "fmt"

// PrimitiveKind identifies the category of a primitive type.
type PrimitiveKind int

const (
	PrimitiveBool  PrimitiveKind = iota
	PrimitiveInt                 // Signed integer (see BitSize)
	PrimitiveUint                // Unsigned integer (see BitSize)
	PrimitiveFloat               // Floating point (see BitSize)
	PrimitiveString
	PrimitiveBytes    // base64-encoded on the wire
	PrimitiveTime     // RFC 3339 string on the wire
	PrimitiveDuration // nanoseconds as int64 on the wire
	PrimitiveAny      // unconstrained value
	PrimitiveEmpty    // {} with no fields
)

var primitiveNames = [...]string{
	PrimitiveBool:     "Bool",
	PrimitiveInt:      "Int",
	PrimitiveUint:     "Uint",
	PrimitiveFloat:    "Float",
	PrimitiveString:   "String",
	PrimitiveBytes:    "Bytes",
	PrimitiveTime:     "Time",
	PrimitiveDuration: "Duration",
	PrimitiveAny:      "Any",
	PrimitiveEmpty:    "Empty",
}

// String returns the string representation of the primitive kind.
func (k PrimitiveKind) String() string {
	if k < 0 || int(k) >= len(primitiveNames) {
		return "Unknown"
	}
	return primitiveNames[k]
}

// ParsePrimitiveKind is the inverse of PrimitiveKind.String.
func ParsePrimitiveKind(s string) (PrimitiveKind, error) {
	for k, name := range primitiveNames {
		if name == s {
			return PrimitiveKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown primitive kind %q", s)
}

// PrimitiveDescriptor represents a built-in primitive type.
type PrimitiveDescriptor struct {
	exprBase
	PrimitiveKind PrimitiveKind

	// BitSize specifies the size for numeric kinds: 0 for platform-dependent
	// size, otherwise 8, 16, 32 or 64. Ignored for non-numeric kinds.
	BitSize int
}

// Kind returns KindPrimitive.
func (d *PrimitiveDescriptor) Kind() DescriptorKind { return KindPrimitive }

// IsNumeric reports whether the primitive is an integer or float.
func (d *PrimitiveDescriptor) IsNumeric() bool {
	switch d.PrimitiveKind {
	case PrimitiveInt, PrimitiveUint, PrimitiveFloat:
		return true
	}
	return false
}

// Bool returns a PrimitiveDescriptor for bool.
func Bool() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveBool}
}

// String returns a PrimitiveDescriptor for string.
func String() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveString}
}

// Int returns a PrimitiveDescriptor for int with the given bit size.
// Use 0 for platform-dependent int.
func Int(bitSize int) *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveInt, BitSize: bitSize}
}

// Uint returns a PrimitiveDescriptor for uint with the given bit size.
// Use 0 for platform-dependent uint.
func Uint(bitSize int) *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveUint, BitSize: bitSize}
}

// Float returns a PrimitiveDescriptor for float with the given bit size.
func Float(bitSize int) *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveFloat, BitSize: bitSize}
}

// Bytes returns a PrimitiveDescriptor for []byte.
func Bytes() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveBytes}
}

// Time returns a PrimitiveDescriptor for time.Time.
func Time() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveTime}
}

// Duration returns a PrimitiveDescriptor for time.Duration.
func Duration() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveDuration}
}

// Any returns a PrimitiveDescriptor for an unconstrained value.
func Any() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveAny}
}

// Empty returns a PrimitiveDescriptor for struct{}.
func Empty() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveEmpty}
}
