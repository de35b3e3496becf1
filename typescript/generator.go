// Package typescript generates TypeScript declarations for a compiled
// handler tree: the tree itself as a type understood by the RpcParamType and
// RpcReturnType helpers, and a table of every method with its resolved params
// and return.
package typescript

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/broady/rpctree"
	"github.com/broady/rpctree/ir"
	"github.com/broady/rpctree/sink"
)

//go:embed type-helpers.ts
var typeHelpers []byte

// TypeHelpers returns the contents of type-helpers.ts.
func TypeHelpers() []byte {
	return bytes.Clone(typeHelpers)
}

const header = "// Code generated by rpctree. DO NOT EDIT.\n"

// Generator provides a fluent API for TypeScript generation.
// Create with FromSchema and configure with method chaining.
//
// Example:
//
//	typescript.FromSchema(schema).
//	    WithTypes(doc.Types...).
//	    ToDir(ctx, "./client/src/rpc")
type Generator struct {
	schema *rpctree.Schema
	types  []*ir.Alias
	cfg    Config
	logger *slog.Logger
}

// FromSchema returns a Generator for schema using DefaultConfig.
func FromSchema(schema *rpctree.Schema) *Generator {
	return &Generator{schema: schema, cfg: DefaultConfig()}
}

// WithTypes adds named shapes that references in the schema refer to.
func (g *Generator) WithTypes(aliases ...*ir.Alias) *Generator {
	g.types = append(g.types, aliases...)
	return g
}

// WithConfig replaces the configuration.
func (g *Generator) WithConfig(cfg Config) *Generator {
	g.cfg = cfg
	return g
}

// WithoutComments disables JSDoc output.
func (g *Generator) WithoutComments() *Generator {
	g.cfg.EmitComments = false
	return g
}

// UnknownType sets the type emitted for "any" shapes.
// Valid values: "unknown" (default), "any".
func (g *Generator) UnknownType(t string) *Generator {
	g.cfg.UnknownType = t
	return g
}

// ReadonlyArrays emits readonly array types.
func (g *Generator) ReadonlyArrays() *Generator {
	g.cfg.ReadonlyArrays = true
	return g
}

// Frontmatter adds content to the top of generated files.
func (g *Generator) Frontmatter(content string) *Generator {
	g.cfg.Frontmatter = content
	return g
}

// WithLogger sets the logger used for debug output.
// If not set, slog.Default() will be used.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

func (g *Generator) log() *slog.Logger {
	if g.logger == nil {
		return slog.Default()
	}
	return g.logger
}

// ToDir writes the generated files to dir.
func (g *Generator) ToDir(ctx context.Context, dir string) (*GenerateResult, error) {
	return g.ToSink(ctx, sink.NewFilesystemSink(dir).WithLogger(g.logger))
}

// ToSink writes the generated files to out. Files are written concurrently;
// the first failure cancels the rest.
func (g *Generator) ToSink(ctx context.Context, out sink.OutputSink) (*GenerateResult, error) {
	files, result, err := g.render()
	if err != nil {
		return nil, err
	}
	result.Files = make([]OutputFile, len(files))
	eg, egctx := errgroup.WithContext(ctx)
	for i, f := range files {
		result.Files[i] = OutputFile{Path: f.path, Size: int64(len(f.content))}
		eg.Go(func() error {
			if err := out.WriteFile(egctx, f.path, f.content); err != nil {
				return fmt.Errorf("write %s: %w", f.path, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	g.log().Debug("generated typescript",
		slog.Int("files", len(result.Files)),
		slog.Int("methods", result.Methods),
		slog.Int("warnings", len(result.Warnings)))
	return result, nil
}

type renderedFile struct {
	path    string
	content []byte
}

func (g *Generator) render() ([]renderedFile, *GenerateResult, error) {
	if g.schema == nil {
		return nil, nil, fmt.Errorf("schema is required")
	}
	if err := g.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	r := &renderer{
		emitter:  NewEmitter(g.cfg),
		cfg:      g.cfg.withDefaults(),
		declared: make(map[string]*ir.Alias),
		result:   &GenerateResult{Methods: g.schema.Len()},
	}
	for _, a := range g.types {
		if prev, dup := r.declared[a.Name.Name]; dup && prev != a {
			return nil, nil, fmt.Errorf("type %s declared twice", a.Name.Name)
		}
		r.declared[a.Name.Name] = a
	}
	r.findUndeclared(g.schema.Root())

	types, err := r.typesFile()
	if err != nil {
		return nil, nil, err
	}
	handlers, err := r.handlersFile(g.schema)
	if err != nil {
		return nil, nil, err
	}
	methods, err := r.methodsFile(g.schema)
	if err != nil {
		return nil, nil, err
	}
	files := []renderedFile{
		{HelpersFile, TypeHelpers()},
		{TypesFile, types},
		{HandlersFile, handlers},
		{MethodsFile, methods},
	}
	return files, r.result, nil
}

type renderer struct {
	emitter    *Emitter
	cfg        Config
	declared   map[string]*ir.Alias
	undeclared []string
	result     *GenerateResult
}

// findUndeclared records every referenced name without a declaration.
// Such references come from Go types that refer to themselves.
func (r *renderer) findUndeclared(root rpctree.Node) {
	var shapes []ir.TypeDescriptor
	collectShapes(root, &shapes)
	for _, a := range r.declared {
		shapes = append(shapes, a.Underlying)
	}
	seen := make(map[string]bool)
	for _, s := range shapes {
		for _, ref := range ir.References(s) {
			if r.declared[ref.Name] != nil || seen[ref.Name] {
				continue
			}
			seen[ref.Name] = true
			r.undeclared = append(r.undeclared, ref.Name)
			r.result.Warnings = append(r.result.Warnings, ir.Warning{
				Code:     "UNDECLARED_TYPE",
				Message:  fmt.Sprintf("type %s is referenced but not declared; emitted as %s", ref.Name, r.cfg.UnknownType),
				TypeName: ref.Name,
			})
		}
	}
	sort.Strings(r.undeclared)
	sort.Slice(r.result.Warnings, func(i, j int) bool {
		return r.result.Warnings[i].TypeName < r.result.Warnings[j].TypeName
	})
}

func (r *renderer) begin(buf *bytes.Buffer) {
	buf.WriteString(header)
	if r.cfg.Frontmatter != "" {
		buf.WriteString("\n")
		buf.WriteString(strings.TrimRight(r.cfg.Frontmatter, "\n"))
		buf.WriteString("\n")
	}
}

// importTypes writes an import of the declared types that shapes refer to.
func (r *renderer) importTypes(buf *bytes.Buffer, shapes []ir.TypeDescriptor) {
	seen := make(map[string]bool)
	var names []string
	for _, s := range shapes {
		for _, ref := range ir.References(s) {
			name := typeName(ref.Name)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	fmt.Fprintf(buf, "import type { %s } from %q;\n", strings.Join(names, ", "), "./"+strings.TrimSuffix(TypesFile, ".ts"))
}

// typesFile declares every named shape, followed by placeholders for
// undeclared references.
func (r *renderer) typesFile() ([]byte, error) {
	var buf bytes.Buffer
	r.begin(&buf)

	names := make([]string, 0, len(r.declared))
	for name := range r.declared {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a := r.declared[name]
		buf.WriteString("\n")
		r.emitter.jsdoc(&buf, a.Documentation, 0)
		expr, err := r.emitter.EmitTypeExpr(a.Underlying)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		fmt.Fprintf(&buf, "export type %s = %s;\n", typeName(name), expr)
	}
	for _, name := range r.undeclared {
		fmt.Fprintf(&buf, "\n/** Not declared in the schema. */\nexport type %s = %s;\n", typeName(name), r.cfg.UnknownType)
	}
	if len(names)+len(r.undeclared) == 0 {
		buf.WriteString("\nexport {};\n")
	}
	return buf.Bytes(), nil
}

func (r *renderer) handlersFile(schema *rpctree.Schema) ([]byte, error) {
	tree, err := r.emitter.EmitTree(schema.Root())
	if err != nil {
		return nil, err
	}

	var shapes []ir.TypeDescriptor
	collectShapes(schema.Root(), &shapes)

	var buf bytes.Buffer
	r.begin(&buf)
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "import type { RpcParamType, RpcReturnType } from %q;\n", "./"+strings.TrimSuffix(HelpersFile, ".ts"))
	r.importTypes(&buf, shapes)
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "export type RpcHandlers = %s;\n", tree)
	buf.WriteString("\n")
	buf.WriteString("/** The params of method M. never if M names no method. */\n")
	buf.WriteString("export type RpcParams<M extends string> = RpcParamType<RpcHandlers, M>;\n")
	buf.WriteString("\n")
	buf.WriteString("/** The return of method M. never if M names no method. */\n")
	buf.WriteString("export type RpcReturn<M extends string> = RpcReturnType<RpcHandlers, M>;\n")
	return buf.Bytes(), nil
}

func collectShapes(node rpctree.Node, out *[]ir.TypeDescriptor) {
	switch n := node.(type) {
	case *rpctree.Parent:
		if n == nil {
			return
		}
		*out = append(*out, n.ParamShape())
		for _, child := range n.Children {
			collectShapes(child, out)
		}
	case *rpctree.Leaf:
		if n == nil {
			return
		}
		*out = append(*out, n.ParamShape(), n.Return)
	}
}

func (r *renderer) methodsFile(schema *rpctree.Schema) ([]byte, error) {
	methods := schema.Methods()
	shapes := make([]ir.TypeDescriptor, 0, 2*len(methods))
	for _, m := range methods {
		shapes = append(shapes, m.Params, m.Return)
	}

	var buf bytes.Buffer
	r.begin(&buf)
	var imports bytes.Buffer
	r.importTypes(&imports, shapes)
	if imports.Len() > 0 {
		buf.WriteString("\n")
		buf.Write(imports.Bytes())
	}

	pad := r.emitter.pad(1)
	buf.WriteString("\n/** Every callable method, keyed by its dotted path. */\n")
	buf.WriteString("export interface RpcMethods {")
	if len(methods) > 0 {
		buf.WriteString("\n")
	}
	for _, m := range methods {
		r.emitter.jsdoc(&buf, m.Documentation, 1)
		params, err := r.exprAt(m.Params, 2)
		if err != nil {
			return nil, fmt.Errorf("params of %s: %w", m.Path, err)
		}
		ret, err := r.exprAt(m.Return, 2)
		if err != nil {
			return nil, fmt.Errorf("return of %s: %w", m.Path, err)
		}
		fmt.Fprintf(&buf, "%s%s: {\n", pad, strconv.Quote(m.Path))
		fmt.Fprintf(&buf, "%s%sparams: %s;\n", pad, pad, params)
		fmt.Fprintf(&buf, "%s%sreturn: %s;\n", pad, pad, ret)
		fmt.Fprintf(&buf, "%s};\n", pad)
	}
	buf.WriteString("}\n\n")

	buf.WriteString("export type RpcMethod = keyof RpcMethods;\n\n")
	buf.WriteString("export const rpcMethods = [")
	for i, m := range methods {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(strconv.Quote(m.Path))
	}
	buf.WriteString("] as const;\n")
	return buf.Bytes(), nil
}

func (r *renderer) exprAt(t ir.TypeDescriptor, depth int) (string, error) {
	var buf bytes.Buffer
	if err := r.emitter.expr(&buf, t, depth); err != nil {
		return "", err
	}
	return buf.String(), nil
}
