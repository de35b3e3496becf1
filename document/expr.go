package document

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/broady/rpctree/ir"
)

// ParseType parses a type expression:
//
//	string  boolean  number  int32  uint  float64  bytes  time  duration  any  empty
//	T[]  T[4]  *T  map[K]V  A | B  (T)  @Name  {name: T, opt?: T, "x-id": T}
//
// A prefix "*" binds tighter than a "[]" suffix: "*T[]" is a slice of
// pointers and "*(T[])" a pointer to a slice.
func ParseType(expr string) (ir.TypeDescriptor, error) {
	p := &exprParser{src: expr}
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// ExprError reports a malformed type expression.
type ExprError struct {
	Expr   string
	Offset int
	Msg    string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("type %q: %s at offset %d", e.Expr, e.Msg, e.Offset)
}

var primitives = map[string]func() ir.TypeDescriptor{
	"string":   func() ir.TypeDescriptor { return ir.String() },
	"boolean":  func() ir.TypeDescriptor { return ir.Bool() },
	"bool":     func() ir.TypeDescriptor { return ir.Bool() },
	"number":   func() ir.TypeDescriptor { return ir.Float(64) },
	"int":      func() ir.TypeDescriptor { return ir.Int(0) },
	"int8":     func() ir.TypeDescriptor { return ir.Int(8) },
	"int16":    func() ir.TypeDescriptor { return ir.Int(16) },
	"int32":    func() ir.TypeDescriptor { return ir.Int(32) },
	"int64":    func() ir.TypeDescriptor { return ir.Int(64) },
	"uint":     func() ir.TypeDescriptor { return ir.Uint(0) },
	"uint8":    func() ir.TypeDescriptor { return ir.Uint(8) },
	"uint16":   func() ir.TypeDescriptor { return ir.Uint(16) },
	"uint32":   func() ir.TypeDescriptor { return ir.Uint(32) },
	"uint64":   func() ir.TypeDescriptor { return ir.Uint(64) },
	"float":    func() ir.TypeDescriptor { return ir.Float(0) },
	"float32":  func() ir.TypeDescriptor { return ir.Float(32) },
	"float64":  func() ir.TypeDescriptor { return ir.Float(64) },
	"bytes":    func() ir.TypeDescriptor { return ir.Bytes() },
	"time":     func() ir.TypeDescriptor { return ir.Time() },
	"duration": func() ir.TypeDescriptor { return ir.Duration() },
	"any":      func() ir.TypeDescriptor { return ir.Any() },
	"empty":    func() ir.TypeDescriptor { return ir.Empty() },
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) errorf(format string, args ...any) error {
	return &ExprError{Expr: p.src, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *exprParser) eof() bool { return p.pos >= len(p.src) }

func (p *exprParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// accept consumes tok after optional whitespace.
func (p *exprParser) accept(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *exprParser) expect(tok string) error {
	if !p.accept(tok) {
		if p.eof() {
			return p.errorf("expected %q, got end of input", tok)
		}
		return p.errorf("expected %q", tok)
	}
	return nil
}

func (p *exprParser) union() (ir.TypeDescriptor, error) {
	first, err := p.postfix()
	if err != nil {
		return nil, err
	}
	members := []ir.TypeDescriptor{first}
	for p.accept("|") {
		next, err := p.postfix()
		if err != nil {
			return nil, err
		}
		members = append(members, next)
	}
	if len(members) == 1 {
		return first, nil
	}
	return ir.Union(members...), nil
}

func (p *exprParser) postfix() (ir.TypeDescriptor, error) {
	t, err := p.prefix()
	if err != nil {
		return nil, err
	}
	for p.accept("[") {
		p.skipSpace()
		start := p.pos
		for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		length := 0
		if p.pos > start {
			n, err := strconv.Atoi(p.src[start:p.pos])
			if err != nil || n == 0 {
				return nil, p.errorf("invalid array length %q", p.src[start:p.pos])
			}
			length = n
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		if length > 0 {
			t = ir.Array(t, length)
		} else {
			t = ir.Slice(t)
		}
	}
	return t, nil
}

func (p *exprParser) prefix() (ir.TypeDescriptor, error) {
	if p.accept("*") {
		elem, err := p.prefix()
		if err != nil {
			return nil, err
		}
		return ir.Ptr(elem), nil
	}
	return p.primary()
}

func (p *exprParser) primary() (ir.TypeDescriptor, error) {
	switch {
	case p.accept("("):
		t, err := p.union()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return t, nil

	case p.accept("{"):
		return p.object()

	case p.accept("@"):
		name := p.ident()
		if name == "" {
			return nil, p.errorf("expected type name after %q", "@")
		}
		return ir.Ref(name, ""), nil
	}

	name := p.ident()
	if name == "" {
		if p.eof() {
			return nil, p.errorf("expected type, got end of input")
		}
		return nil, p.errorf("expected type")
	}
	if name == "map" {
		return p.mapType()
	}
	ctor, ok := primitives[name]
	if !ok {
		return nil, &ExprError{Expr: p.src, Offset: p.pos - len(name), Msg: fmt.Sprintf("unknown type %q (named types are written @%s)", name, name)}
	}
	return ctor(), nil
}

func (p *exprParser) mapType() (ir.TypeDescriptor, error) {
	if err := p.expect("["); err != nil {
		return nil, err
	}
	key, err := p.union()
	if err != nil {
		return nil, err
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	value, err := p.postfix()
	if err != nil {
		return nil, err
	}
	return ir.Map(key, value), nil
}

// object parses the remainder of an inline object after "{".
func (p *exprParser) object() (ir.TypeDescriptor, error) {
	obj := &ir.ObjectDescriptor{Fields: []ir.FieldDescriptor{}}
	if p.accept("}") {
		return obj, nil
	}
	for {
		name, err := p.propertyName()
		if err != nil {
			return nil, err
		}
		optional := p.accept("?")
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		t, err := p.union()
		if err != nil {
			return nil, err
		}
		if _, dup := obj.Field(name); dup {
			return nil, p.errorf("property %q declared twice", name)
		}
		obj.Fields = append(obj.Fields, ir.FieldDescriptor{Name: name, Type: t, Optional: optional})

		if p.accept("}") {
			return obj, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

// propertyName reads a bare identifier or a double-quoted Go string.
func (p *exprParser) propertyName() (string, error) {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '"' {
		if name := p.ident(); name != "" {
			return name, nil
		}
		return "", p.errorf("expected property name")
	}
	quoted, err := strconv.QuotedPrefix(p.src[p.pos:])
	if err != nil {
		return "", p.errorf("unterminated property name")
	}
	name, err := strconv.Unquote(quoted)
	if err != nil || name == "" {
		return "", p.errorf("invalid property name %s", quoted)
	}
	p.pos += len(quoted)
	return name, nil
}

func (p *exprParser) ident() string {
	p.skipSpace()
	start := p.pos
	for !p.eof() {
		r := rune(p.src[p.pos])
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !(p.pos > start && unicode.IsDigit(r)) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}
