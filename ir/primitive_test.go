package ir

import "testing"

func TestPrimitiveKind_String(t *testing.T) {
	tests := []struct {
		kind PrimitiveKind
		want string
	}{
		{PrimitiveBool, "Bool"},
		{PrimitiveInt, "Int"},
		{PrimitiveUint, "Uint"},
		{PrimitiveFloat, "Float"},
		{PrimitiveString, "String"},
		{PrimitiveBytes, "Bytes"},
		{PrimitiveTime, "Time"},
		{PrimitiveDuration, "Duration"},
		{PrimitiveAny, "Any"},
		{PrimitiveEmpty, "Empty"},
		{PrimitiveKind(999), "Unknown"},
		{PrimitiveKind(-1), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("PrimitiveKind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePrimitiveKind(t *testing.T) {
	for k := PrimitiveBool; k <= PrimitiveEmpty; k++ {
		got, err := ParsePrimitiveKind(k.String())
		if err != nil {
			t.Fatalf("ParsePrimitiveKind(%q) error: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParsePrimitiveKind(%q) = %v, want %v", k.String(), got, k)
		}
	}

	if _, err := ParsePrimitiveKind("Complex"); err == nil {
		t.Error("ParsePrimitiveKind(Complex) should fail")
	}
}

func TestPrimitiveConstructors(t *testing.T) {
	tests := []struct {
		name    string
		desc    *PrimitiveDescriptor
		want    PrimitiveKind
		bitSize int
		numeric bool
	}{
		{"Bool", Bool(), PrimitiveBool, 0, false},
		{"String", String(), PrimitiveString, 0, false},
		{"Int64", Int(64), PrimitiveInt, 64, true},
		{"Uint8", Uint(8), PrimitiveUint, 8, true},
		{"Float32", Float(32), PrimitiveFloat, 32, true},
		{"Bytes", Bytes(), PrimitiveBytes, 0, false},
		{"Time", Time(), PrimitiveTime, 0, false},
		{"Duration", Duration(), PrimitiveDuration, 0, false},
		{"Any", Any(), PrimitiveAny, 0, false},
		{"Empty", Empty(), PrimitiveEmpty, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.desc.Kind() != KindPrimitive {
				t.Errorf("Kind() = %v, want KindPrimitive", tt.desc.Kind())
			}
			if tt.desc.PrimitiveKind != tt.want {
				t.Errorf("PrimitiveKind = %v, want %v", tt.desc.PrimitiveKind, tt.want)
			}
			if tt.desc.BitSize != tt.bitSize {
				t.Errorf("BitSize = %d, want %d", tt.desc.BitSize, tt.bitSize)
			}
			if tt.desc.IsNumeric() != tt.numeric {
				t.Errorf("IsNumeric() = %v, want %v", tt.desc.IsNumeric(), tt.numeric)
			}
		})
	}
}

func TestDescriptorKind_String(t *testing.T) {
	tests := []struct {
		kind DescriptorKind
		want string
	}{
		{KindObject, "Object"},
		{KindPrimitive, "Primitive"},
		{KindArray, "Array"},
		{KindMap, "Map"},
		{KindReference, "Reference"},
		{KindPtr, "Ptr"},
		{KindUnion, "Union"},
		{DescriptorKind(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("DescriptorKind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}
