package rpctree

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/broady/rpctree/ir"
)

// Compiler validates a handler tree once and flattens it into a Schema.
// Create with NewCompiler and configure with method chaining.
type Compiler struct {
	compat CompatibleFunc
	logger *slog.Logger
}

// NewCompiler returns a Compiler using ir.FieldsCompatible for params
// redeclared along a method path.
func NewCompiler() *Compiler {
	return &Compiler{compat: ir.FieldsCompatible}
}

// WithCompatibility replaces the rule deciding whether a param declared on
// more than one level of a method path may be merged.
func (c *Compiler) WithCompatibility(fn CompatibleFunc) *Compiler {
	c.compat = fn
	return c
}

// WithLogger sets the logger used for debug output.
// If not set, slog.Default() will be used.
func (c *Compiler) WithLogger(logger *slog.Logger) *Compiler {
	c.logger = logger
	return c
}

func (c *Compiler) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Compile validates the tree and resolves every method it contains.
// All problems are reported together: the error joins one *ValidationError
// per problem. The tree must not be modified while the returned Schema is in use.
func Compile(root Node) (*Schema, error) {
	return NewCompiler().Compile(root)
}

// Compile validates the tree and resolves every method it contains.
func (c *Compiler) Compile(root Node) (*Schema, error) {
	b := &schemaBuilder{
		compat:  c.compat,
		methods: make(map[string]*Method),
	}
	if b.compat == nil {
		b.compat = ir.FieldsCompatible
	}

	switch root.(type) {
	case nil:
		b.fail(CodeNilNode, "", "handler tree is nil", nil)
	case *Leaf:
		b.fail(CodeRootLeaf, "", "root handler must be a namespace", nil)
	default:
		b.visit(root, "", nil, false)
	}

	if len(b.errs) > 0 {
		c.log().Debug("handler tree rejected", slog.Int("errors", len(b.errs)))
		errs := make([]error, len(b.errs))
		for i, e := range b.errs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}

	s := &Schema{root: root, methods: b.methods, paths: make([]string, 0, len(b.methods))}
	for path := range b.methods {
		s.paths = append(s.paths, path)
	}
	sort.Strings(s.paths)

	c.log().Debug("compiled handler tree", slog.Int("methods", len(s.paths)))
	return s, nil
}

type schemaBuilder struct {
	compat  CompatibleFunc
	methods map[string]*Method
	errs    []*ValidationError
}

func (b *schemaBuilder) fail(code ValidationCode, path, msg string, err error) {
	b.errs = append(b.errs, &ValidationError{Code: code, Path: path, Message: msg, Err: err})
}

// visit validates node at path. levels holds the params of the ancestors.
// tainted is set once a level is itself invalid, which suppresses merge
// diagnostics that would only repeat the same problem.
func (b *schemaBuilder) visit(node Node, path string, levels []*ir.ObjectDescriptor, tainted bool) {
	switch n := node.(type) {
	case nil:
		b.fail(CodeNilNode, path, "handler is nil", nil)

	case *Parent:
		if n == nil {
			b.fail(CodeNilNode, path, "handler is nil", nil)
			return
		}
		if !b.checkLevel(path, n.Params) {
			tainted = true
		}
		levels = append(levels[:len(levels):len(levels)], n.Params)

		names := make([]string, 0, len(n.Children))
		for name := range n.Children {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			childPath := name
			if path != "" {
				childPath = JoinPath(path, name)
			}
			if name == "" || strings.Contains(name, Separator) {
				b.fail(CodeInvalidName, childPath, fmt.Sprintf("handler name %q must be non-empty and must not contain %q", name, Separator), nil)
				continue
			}
			b.visit(n.Children[name], childPath, levels, tainted)
		}

	case *Leaf:
		if n == nil {
			b.fail(CodeNilNode, path, "handler is nil", nil)
			return
		}
		ok := b.checkLevel(path, n.Params)
		if n.Return == nil {
			b.fail(CodeMissingReturn, path, "method has no return shape", nil)
			ok = false
		}
		if !ok || tainted {
			return
		}

		params, err := Merge(b.compat, append(levels[:len(levels):len(levels)], n.Params)...)
		if err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				conflict.Path = path
			}
			b.fail(CodeConflictingParam, path, err.Error(), err)
			return
		}

		b.methods[path] = &Method{
			Path:          path,
			Params:        params,
			Return:        n.Return,
			Documentation: n.Documentation,
			Metadata:      n.Metadata,
		}
	}
}

// checkLevel validates the params declared by a single node.
func (b *schemaBuilder) checkLevel(path string, params *ir.ObjectDescriptor) bool {
	if params == nil {
		return true
	}
	ok := true
	seen := make(map[string]bool, len(params.Fields))
	for i, f := range params.Fields {
		switch {
		case f.Name == "":
			b.fail(CodeInvalidField, path, fmt.Sprintf("param %d has no name", i), nil)
			ok = false
		case f.Type == nil:
			b.fail(CodeInvalidField, path, fmt.Sprintf("param %q has no type", f.Name), nil)
			ok = false
		case seen[f.Name]:
			b.fail(CodeDuplicateField, path, fmt.Sprintf("param %q declared twice", f.Name), nil)
			ok = false
		}
		seen[f.Name] = true
	}
	return ok
}

// Method is a resolved, callable leaf of a compiled handler tree.
// Shapes are shared with the tree and must be treated as read-only.
type Method struct {
	// Path is the dotted method path, e.g. "users.create".
	Path string

	// Params is the merge of every level's params along Path.
	Params *ir.ObjectDescriptor

	// Return is the leaf's return shape.
	Return ir.TypeDescriptor

	Documentation ir.Documentation
	Metadata      map[string]any
}

// Schema is a validated handler tree with every method resolved.
// It is immutable and safe for concurrent use.
type Schema struct {
	root    Node
	methods map[string]*Method
	paths   []string
}

// Root returns the handler tree the schema was compiled from.
func (s *Schema) Root() Node {
	return s.root
}

// Len returns the number of callable methods.
func (s *Schema) Len() int {
	return len(s.paths)
}

// Methods returns all methods sorted by path.
func (s *Schema) Methods() []*Method {
	out := make([]*Method, len(s.paths))
	for i, path := range s.paths {
		out[i] = s.methods[path]
	}
	return out
}

// Method looks up a method by path.
func (s *Schema) Method(path string) (*Method, bool) {
	m, ok := s.methods[path]
	return m, ok
}

// ResolveParams is ResolveParams against the compiled tree.
func (s *Schema) ResolveParams(path string) (*ir.ObjectDescriptor, error) {
	m, err := s.lookup(path)
	if err != nil {
		return nil, err
	}
	return m.Params, nil
}

// ResolveReturn is ResolveReturn against the compiled tree.
func (s *Schema) ResolveReturn(path string) (ir.TypeDescriptor, error) {
	m, err := s.lookup(path)
	if err != nil {
		return nil, err
	}
	return m.Return, nil
}

func (s *Schema) lookup(path string) (*Method, error) {
	if m, ok := s.methods[path]; ok {
		return m, nil
	}
	// Walk the tree only to explain the miss.
	if _, _, err := descend(s.root, path); err != nil {
		return nil, err
	}
	return nil, &UnresolvedError{Path: path, Segment: path, Reason: ReasonMissingChild}
}
