package typescript

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/broady/rpctree"
	"github.com/broady/rpctree/ir"
)

// Emitter renders shapes and handler trees as TypeScript type expressions.
type Emitter struct {
	cfg Config
}

// NewEmitter returns an Emitter for cfg. Zero values in cfg take defaults.
func NewEmitter(cfg Config) *Emitter {
	return &Emitter{cfg: cfg.withDefaults()}
}

// EmitTypeExpr renders t as a type expression. Objects are written inline,
// one property per line, indented relative to the start of the line.
func (e *Emitter) EmitTypeExpr(t ir.TypeDescriptor) (string, error) {
	var buf bytes.Buffer
	if err := e.expr(&buf, t, 0); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EmitTree renders a handler tree as the handler type understood by
// RpcParamType and RpcReturnType:
//
//	{_PARAMS: P; _RETURN?: R; _CHILDREN?: {name: ...}}
func (e *Emitter) EmitTree(root rpctree.Node) (string, error) {
	var buf bytes.Buffer
	if err := e.tree(&buf, root, "", 0); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Emitter) pad(depth int) string {
	return strings.Repeat(" ", depth*e.cfg.IndentSize)
}

func (e *Emitter) tree(buf *bytes.Buffer, node rpctree.Node, path string, depth int) error {
	var (
		params   *ir.ObjectDescriptor
		ret      ir.TypeDescriptor
		children map[string]rpctree.Node
		isParent bool
	)
	switch n := node.(type) {
	case *rpctree.Parent:
		if n == nil {
			return fmt.Errorf("handler %q is nil", path)
		}
		// A namespace never surfaces its own return.
		params, children, isParent = n.Params, n.Children, true
	case *rpctree.Leaf:
		if n == nil {
			return fmt.Errorf("handler %q is nil", path)
		}
		if n.Return == nil {
			return fmt.Errorf("method %q has no return shape", path)
		}
		params, ret = n.Params, n.Return
	default:
		return fmt.Errorf("handler %q is nil", path)
	}

	inner := e.pad(depth + 1)
	buf.WriteString("{\n")

	buf.WriteString(inner)
	buf.WriteString("_PARAMS: ")
	if err := e.expr(buf, orEmpty(params), depth+1); err != nil {
		return fmt.Errorf("params of %q: %w", displayPath(path), err)
	}
	buf.WriteString(";\n")

	if ret != nil {
		buf.WriteString(inner)
		buf.WriteString("_RETURN: ")
		if err := e.expr(buf, ret, depth+1); err != nil {
			return fmt.Errorf("return of %q: %w", displayPath(path), err)
		}
		buf.WriteString(";\n")
	}

	if isParent {
		buf.WriteString(inner)
		buf.WriteString("_CHILDREN: {")
		names := make([]string, 0, len(children))
		for name := range children {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) > 0 {
			buf.WriteString("\n")
		}
		for _, name := range names {
			child := children[name]
			childPath := name
			if path != "" {
				childPath = rpctree.JoinPath(path, name)
			}
			e.jsdoc(buf, nodeDoc(child), depth+2)
			buf.WriteString(e.pad(depth + 2))
			buf.WriteString(propertyName(name))
			buf.WriteString(": ")
			if err := e.tree(buf, child, childPath, depth+2); err != nil {
				return err
			}
			buf.WriteString(";\n")
		}
		if len(names) > 0 {
			buf.WriteString(inner)
		}
		buf.WriteString("};\n")
	}

	buf.WriteString(e.pad(depth))
	buf.WriteString("}")
	return nil
}

func nodeDoc(n rpctree.Node) ir.Documentation {
	switch n := n.(type) {
	case *rpctree.Parent:
		if n != nil {
			return n.Documentation
		}
	case *rpctree.Leaf:
		if n != nil {
			return n.Documentation
		}
	}
	return ir.Documentation{}
}

func orEmpty(o *ir.ObjectDescriptor) *ir.ObjectDescriptor {
	if o == nil {
		return &ir.ObjectDescriptor{}
	}
	return o
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

func (e *Emitter) expr(buf *bytes.Buffer, t ir.TypeDescriptor, depth int) error {
	switch d := t.(type) {
	case nil:
		return fmt.Errorf("missing type")

	case *ir.PrimitiveDescriptor:
		buf.WriteString(e.primitive(d))

	case *ir.ObjectDescriptor:
		return e.object(buf, d, depth)

	case *ir.ArrayDescriptor:
		elem, err := e.operand(d.Element, depth)
		if err != nil {
			return err
		}
		if d.Length > 0 && d.Length <= maxTupleLength {
			// Small fixed-length arrays become tuples.
			buf.WriteString("[")
			for i := 0; i < d.Length; i++ {
				if i > 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(elem)
			}
			buf.WriteString("]")
			return nil
		}
		if e.cfg.ReadonlyArrays {
			buf.WriteString("readonly ")
		}
		buf.WriteString(elem)
		buf.WriteString("[]")

	case *ir.MapDescriptor:
		// JSON object keys are always strings; named key types are kept.
		key := "string"
		if ref, ok := d.Key.(*ir.ReferenceDescriptor); ok {
			key = typeName(ref.Target.Name)
		}
		buf.WriteString("Record<")
		buf.WriteString(key)
		buf.WriteString(", ")
		if err := e.expr(buf, d.Value, depth); err != nil {
			return err
		}
		buf.WriteString(">")

	case *ir.ReferenceDescriptor:
		buf.WriteString(typeName(d.Target.Name))

	case *ir.PtrDescriptor:
		if err := e.expr(buf, d.Element, depth); err != nil {
			return err
		}
		buf.WriteString(" | null")

	case *ir.UnionDescriptor:
		if len(d.Types) == 0 {
			buf.WriteString("never")
			return nil
		}
		for i, m := range d.Types {
			if i > 0 {
				buf.WriteString(" | ")
			}
			if err := e.expr(buf, m, depth); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("unsupported type expression kind: %s", t.Kind())
	}
	return nil
}

const maxTupleLength = 10

// operand renders t for use before a "[]" suffix.
func (e *Emitter) operand(t ir.TypeDescriptor, depth int) (string, error) {
	var buf bytes.Buffer
	if err := e.expr(&buf, t, depth); err != nil {
		return "", err
	}
	switch t.(type) {
	case *ir.UnionDescriptor, *ir.PtrDescriptor:
		return "(" + buf.String() + ")", nil
	}
	if strings.HasPrefix(buf.String(), "readonly ") {
		return "(" + buf.String() + ")", nil
	}
	return buf.String(), nil
}

func (e *Emitter) primitive(p *ir.PrimitiveDescriptor) string {
	switch p.PrimitiveKind {
	case ir.PrimitiveBool:
		return "boolean"
	case ir.PrimitiveInt, ir.PrimitiveUint, ir.PrimitiveFloat:
		return "number"
	case ir.PrimitiveString:
		return "string"
	case ir.PrimitiveBytes:
		return "string" // base64
	case ir.PrimitiveTime:
		return "string" // RFC 3339
	case ir.PrimitiveDuration:
		return "number" // nanoseconds
	case ir.PrimitiveEmpty:
		return "Record<string, never>"
	default:
		return e.cfg.UnknownType
	}
}

func (e *Emitter) object(buf *bytes.Buffer, o *ir.ObjectDescriptor, depth int) error {
	if o.Len() == 0 {
		buf.WriteString("{}")
		return nil
	}
	buf.WriteString("{\n")
	for _, f := range o.Fields {
		e.jsdoc(buf, f.Documentation, depth+1)
		buf.WriteString(e.pad(depth + 1))
		buf.WriteString(propertyName(f.Name))
		if f.Optional {
			buf.WriteString("?")
		}
		buf.WriteString(": ")
		if err := e.expr(buf, f.Type, depth+1); err != nil {
			return fmt.Errorf("property %s: %w", f.Name, err)
		}
		buf.WriteString(";\n")
	}
	buf.WriteString(e.pad(depth))
	buf.WriteString("}")
	return nil
}

// jsdoc writes doc as a JSDoc comment at depth, if comments are enabled.
func (e *Emitter) jsdoc(buf *bytes.Buffer, doc ir.Documentation, depth int) {
	if !e.cfg.EmitComments || doc.IsZero() {
		return
	}
	pad := e.pad(depth)
	body := strings.TrimSpace(doc.Body)
	if body == "" {
		body = strings.TrimSpace(doc.Summary)
	}
	lines := strings.Split(body, "\n")

	if len(lines) == 1 && doc.Deprecated == nil {
		fmt.Fprintf(buf, "%s/** %s */\n", pad, escapeComment(lines[0]))
		return
	}
	buf.WriteString(pad)
	buf.WriteString("/**\n")
	if body != "" {
		for _, line := range lines {
			buf.WriteString(strings.TrimRight(pad+" * "+escapeComment(strings.TrimSpace(line)), " "))
			buf.WriteString("\n")
		}
	}
	if doc.Deprecated != nil {
		buf.WriteString(pad)
		buf.WriteString(" * @deprecated")
		if *doc.Deprecated != "" {
			buf.WriteString(" ")
			buf.WriteString(escapeComment(*doc.Deprecated))
		}
		buf.WriteString("\n")
	}
	buf.WriteString(pad)
	buf.WriteString(" */\n")
}

func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}
