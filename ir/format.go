package ir

import (
	"strconv"
	"strings"
)

// Describe renders a descriptor as a compact, TypeScript-like string for
// diagnostics, e.g. "{auth: string, tags?: string[]}".
func Describe(t TypeDescriptor) string {
	var sb strings.Builder
	describe(&sb, t)
	return sb.String()
}

func describe(sb *strings.Builder, t TypeDescriptor) {
	switch d := t.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *PrimitiveDescriptor:
		sb.WriteString(describePrimitive(d))
	case *ArrayDescriptor:
		describeOperand(sb, d.Element)
		sb.WriteString("[")
		if d.Length > 0 {
			sb.WriteString(strconv.Itoa(d.Length))
		}
		sb.WriteString("]")
	case *MapDescriptor:
		sb.WriteString("map[")
		describe(sb, d.Key)
		sb.WriteString("]")
		describeOperand(sb, d.Value)
	case *ReferenceDescriptor:
		sb.WriteString("@")
		sb.WriteString(d.Target.Name)
	case *PtrDescriptor:
		sb.WriteString("*")
		if _, ok := d.Element.(*ArrayDescriptor); ok {
			sb.WriteString("(")
			describe(sb, d.Element)
			sb.WriteString(")")
		} else {
			describeOperand(sb, d.Element)
		}
	case *UnionDescriptor:
		for i, m := range d.Types {
			if i > 0 {
				sb.WriteString(" | ")
			}
			describe(sb, m)
		}
	case *ObjectDescriptor:
		sb.WriteString("{")
		if d == nil {
			sb.WriteString("}")
			return
		}
		for i, f := range d.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(describeName(f.Name))
			if f.Optional {
				sb.WriteString("?")
			}
			sb.WriteString(": ")
			describe(sb, f.Type)
		}
		sb.WriteString("}")
	}
}

// describeName quotes property names that are not plain ASCII identifiers.
func describeName(name string) string {
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
		case i > 0 && '0' <= r && r <= '9':
		default:
			return strconv.Quote(name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}

// describeOperand parenthesizes operands that a following "[]" or a
// preceding "*" would otherwise bind into.
func describeOperand(sb *strings.Builder, t TypeDescriptor) {
	switch t.(type) {
	case *UnionDescriptor, *MapDescriptor:
		sb.WriteString("(")
		describe(sb, t)
		sb.WriteString(")")
	default:
		describe(sb, t)
	}
}

func describePrimitive(d *PrimitiveDescriptor) string {
	switch d.PrimitiveKind {
	case PrimitiveBool:
		return "boolean"
	case PrimitiveInt:
		return sized("int", d.BitSize)
	case PrimitiveUint:
		return sized("uint", d.BitSize)
	case PrimitiveFloat:
		return sized("float", d.BitSize)
	case PrimitiveString:
		return "string"
	case PrimitiveBytes:
		return "bytes"
	case PrimitiveTime:
		return "time"
	case PrimitiveDuration:
		return "duration"
	case PrimitiveAny:
		return "any"
	case PrimitiveEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

func sized(base string, bits int) string {
	if bits == 0 {
		return base
	}
	return base + strconv.Itoa(bits)
}
