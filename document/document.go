// Package document loads handler trees from YAML or JSON schema documents.
//
// A document is a mapping describing the root namespace:
//
//	types:
//	  # A registered account.
//	  User:
//	    id: int64
//	    name: string
//	    email?: string
//	params:
//	  auth: string
//	children:
//	  ping:
//	    return: {pong: boolean}
//	  users:
//	    doc: User management.
//	    children:
//	      get:
//	        params: {id: int64}
//	        return: "@User"
//
// A node with a "children" key is a namespace; any other node is a method
// and must declare "return". Shapes are either mappings (keys ending in "?"
// are optional) or type expressions as accepted by ParseType.
package document

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/broady/rpctree"
	"github.com/broady/rpctree/ir"
)

// Document is a parsed schema document.
type Document struct {
	// File is the name the document was loaded from.
	File string

	// Root is the root namespace.
	Root *rpctree.Parent

	// Types holds the named shapes declared under "types", sorted by name.
	Types []*ir.Alias
}

// Type looks up a declared type by name.
func (d *Document) Type(name string) (*ir.Alias, bool) {
	i := sort.Search(len(d.Types), func(i int) bool { return d.Types[i].Name.Name >= name })
	if i < len(d.Types) && d.Types[i].Name.Name == name {
		return d.Types[i], true
	}
	return nil, false
}

// Load reads and parses the schema document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data, path)
}

// Parse parses a schema document. filename is used in error messages.
// All problems found are reported together; each is a *PosError.
func Parse(data []byte, filename string) (*Document, error) {
	var file yaml.Node
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if file.Kind != yaml.DocumentNode || len(file.Content) == 0 {
		return nil, &PosError{File: filename, Line: 1, Column: 1, Msg: "empty document"}
	}

	p := &parser{file: filename, types: make(map[string]bool)}
	doc := &Document{File: filename, Root: p.root(file.Content[0])}
	doc.Types = p.aliases

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return doc, nil
}

// PosError is a problem at a position in a schema document.
type PosError struct {
	File   string
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *PosError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, msg)
}

func (e *PosError) Unwrap() error {
	return e.Err
}

var (
	validate = newValidator()

	identifierRE = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

const (
	handlerNameRules = "required,excludesall=.,printascii"
	fieldNameRules   = "required,printascii"
	typeNameRules    = "required,identifier"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierRE.MatchString(fl.Field().String())
	})
	return v
}

type parser struct {
	file    string
	types   map[string]bool
	aliases []*ir.Alias
	errs    []error
}

func (p *parser) fail(n *yaml.Node, err error, format string, args ...any) {
	p.errs = append(p.errs, &PosError{
		File:   p.file,
		Line:   n.Line,
		Column: n.Column,
		Msg:    fmt.Sprintf(format, args...),
		Err:    err,
	})
}

// pairs returns the key/value pairs of a mapping node.
func (p *parser) pairs(n *yaml.Node, what string) [][2]*yaml.Node {
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode {
		p.fail(n, nil, "%s must be a mapping, got %s", what, kindName(n))
		return nil
	}
	out := make([][2]*yaml.Node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, [2]*yaml.Node{n.Content[i], resolveAlias(n.Content[i+1])})
	}
	return out
}

func (p *parser) root(n *yaml.Node) *rpctree.Parent {
	// Type names are collected first so shapes may refer to types declared
	// later in the document, and types to each other.
	if n = resolveAlias(n); n.Kind != yaml.MappingNode {
		p.fail(n, nil, "document must be a mapping, got %s", kindName(n))
		return nil
	}
	var typesNode *yaml.Node
	for _, kv := range p.pairs(n, "document") {
		if kv[0].Value == "types" {
			typesNode = kv[1]
		}
	}
	if typesNode != nil && !isNull(typesNode) {
		p.declareTypes(typesNode)
	}

	node := p.node(n, "", true)
	parent, ok := node.(*rpctree.Parent)
	if !ok {
		// A document without children is an empty namespace.
		parent = rpctree.NewParent(nil)
		if leaf, isLeaf := node.(*rpctree.Leaf); isLeaf {
			parent.Params = leaf.Params
			parent.Documentation = leaf.Documentation
			parent.Metadata = leaf.Metadata
		}
	}
	return parent
}

func (p *parser) declareTypes(n *yaml.Node) {
	pairs := p.pairs(n, "types")
	for _, kv := range pairs {
		name := kv[0].Value
		if err := validate.Var(name, typeNameRules); err != nil {
			p.fail(kv[0], nil, "invalid type name %q", name)
			continue
		}
		if p.types[name] {
			p.fail(kv[0], nil, "type %q declared twice", name)
			continue
		}
		p.types[name] = true
	}
	parsed := make(map[string]bool, len(pairs))
	for _, kv := range pairs {
		name := kv[0].Value
		if !p.types[name] || parsed[name] {
			continue
		}
		parsed[name] = true
		t := p.shape(kv[1], "type "+name)
		if t == nil {
			continue
		}
		p.aliases = append(p.aliases, &ir.Alias{
			Name:          ir.GoIdentifier{Name: name},
			Underlying:    t,
			Documentation: commentDoc(kv[0], kv[1]),
			Source:        ir.Source{File: p.file, Line: kv[0].Line, Column: kv[0].Column},
		})
	}
	sort.Slice(p.aliases, func(i, j int) bool {
		return p.aliases[i].Name.Name < p.aliases[j].Name.Name
	})
}

// node parses a handler node. path is used in messages only.
func (p *parser) node(n *yaml.Node, path string, isRoot bool) rpctree.Node {
	var (
		params, ret, children *yaml.Node
		doc                   ir.Documentation
		metadata              map[string]any
	)
	for _, kv := range p.pairs(n, describePath(path)) {
		key, value := kv[0], kv[1]
		switch key.Value {
		case "params":
			params = value
		case "return":
			ret = value
		case "children":
			children = value
		case "doc":
			if value.Kind != yaml.ScalarNode {
				p.fail(value, nil, "doc must be a string")
				continue
			}
			doc.Body = strings.TrimSpace(value.Value)
			doc.Summary = summary(doc.Body)
		case "deprecated":
			var msg string
			if value.ShortTag() == "!!bool" {
				var deprecated bool
				if err := value.Decode(&deprecated); err != nil {
					p.fail(value, err, "invalid deprecated flag")
					continue
				}
				if !deprecated {
					continue
				}
			} else {
				msg = value.Value
			}
			doc.Deprecated = &msg
		case "metadata":
			if err := value.Decode(&metadata); err != nil {
				p.fail(value, err, "invalid metadata")
			}
		case "types":
			if !isRoot {
				p.fail(key, nil, "types may only be declared at the top level")
			}
		default:
			p.fail(key, nil, "unknown key %q in %s", key.Value, describePath(path))
		}
	}

	var paramShape *ir.ObjectDescriptor
	if params != nil && !isNull(params) {
		paramShape = p.params(params, path)
	}
	var retShape ir.TypeDescriptor
	if ret != nil && !isNull(ret) {
		retShape = p.shape(ret, "return of "+describePath(path))
	}

	if children == nil {
		if (ret == nil || isNull(ret)) && !isRoot {
			p.fail(n, nil, "method %s has no return (namespaces declare children)", describePath(path))
		}
		leaf := rpctree.NewLeaf(paramShape, retShape)
		leaf.Documentation = doc
		leaf.Metadata = metadata
		return leaf
	}

	parent := rpctree.NewParent(paramShape)
	parent.Return = retShape
	parent.Documentation = doc
	parent.Metadata = metadata
	if isNull(children) {
		return parent
	}
	for _, kv := range p.pairs(children, "children of "+describePath(path)) {
		name := kv[0].Value
		if err := validate.Var(name, handlerNameRules); err != nil {
			p.fail(kv[0], nil, "invalid handler name %q: must be non-empty printable ASCII without %q", name, rpctree.Separator)
			continue
		}
		if _, dup := parent.Children[name]; dup {
			p.fail(kv[0], nil, "handler %q declared twice", name)
			continue
		}
		childPath := name
		if path != "" {
			childPath = rpctree.JoinPath(path, name)
		}
		parent.Add(name, p.node(kv[1], childPath, false))
	}
	return parent
}

func (p *parser) params(n *yaml.Node, path string) *ir.ObjectDescriptor {
	t := p.shape(n, "params of "+describePath(path))
	if t == nil {
		return nil
	}
	obj, ok := t.(*ir.ObjectDescriptor)
	if !ok {
		p.fail(n, nil, "params of %s must be an object, got %s", describePath(path), ir.Describe(t))
		return nil
	}
	return obj
}

// shape parses a mapping as an object or a scalar as a type expression.
// It returns nil after recording an error.
func (p *parser) shape(n *yaml.Node, what string) ir.TypeDescriptor {
	switch n.Kind {
	case yaml.MappingNode:
		if obj := p.object(n, what); obj != nil {
			return obj
		}
		return nil
	case yaml.ScalarNode:
		t, err := ParseType(n.Value)
		if err != nil {
			p.fail(n, err, "%s", what)
			return nil
		}
		if !p.checkRefs(n, t) {
			return nil
		}
		return t
	default:
		p.fail(n, nil, "%s must be a mapping or a type expression, got %s", what, kindName(n))
		return nil
	}
}

func (p *parser) object(n *yaml.Node, what string) *ir.ObjectDescriptor {
	obj := &ir.ObjectDescriptor{Fields: []ir.FieldDescriptor{}}
	ok := true
	for _, kv := range p.pairs(n, what) {
		key := kv[0]
		name, optional := strings.CutSuffix(key.Value, "?")
		if err := validate.Var(name, fieldNameRules); err != nil {
			p.fail(key, nil, "invalid property name %q in %s", key.Value, what)
			ok = false
			continue
		}
		if _, dup := obj.Field(name); dup {
			p.fail(key, nil, "property %q declared twice in %s", name, what)
			ok = false
			continue
		}
		t := p.shape(kv[1], fmt.Sprintf("property %q", name))
		if t == nil {
			ok = false
			continue
		}
		obj.Fields = append(obj.Fields, ir.FieldDescriptor{
			Name:          name,
			Type:          t,
			Optional:      optional,
			Documentation: commentDoc(key, kv[1]),
			Source:        ir.Source{File: p.file, Line: key.Line, Column: key.Column},
		})
	}
	if !ok {
		return nil
	}
	return obj
}

func (p *parser) checkRefs(n *yaml.Node, t ir.TypeDescriptor) bool {
	ok := true
	for _, ref := range ir.References(t) {
		if !p.types[ref.Name] {
			p.fail(n, nil, "undeclared type @%s", ref.Name)
			ok = false
		}
	}
	return ok
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		if isNull(n) {
			return "null"
		}
		return "scalar"
	default:
		return "node"
	}
}

func describePath(path string) string {
	if path == "" {
		return "the root namespace"
	}
	return fmt.Sprintf("%q", path)
}

// commentDoc turns the comments attached to a mapping pair into documentation.
func commentDoc(key, value *yaml.Node) ir.Documentation {
	var lines []string
	for _, c := range []string{key.HeadComment, key.LineComment, value.LineComment} {
		for _, line := range strings.Split(c, "\n") {
			line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		return ir.Documentation{}
	}
	body := strings.Join(lines, "\n")
	return ir.Documentation{Summary: summary(body), Body: body}
}

func summary(body string) string {
	first, _, _ := strings.Cut(body, "\n\n")
	return strings.Join(strings.Fields(first), " ")
}
