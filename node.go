package rpctree

import (
	"github.com/broady/rpctree/ir"
)

// NodeKind distinguishes the two node shapes of a handler tree.
type NodeKind int

const (
	KindParent NodeKind = iota // namespace owning child nodes
	KindLeaf                   // invocable method
)

// String returns the string representation of the node kind.
func (k NodeKind) String() string {
	switch k {
	case KindParent:
		return "parent"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Node is a handler tree node: either a *Parent or a *Leaf.
// The interface is sealed so a node can never be both.
type Node interface {
	// Kind returns the node kind for type switching.
	Kind() NodeKind

	// ParamShape returns the parameters this node contributes.
	// It never returns nil; a node without params contributes the empty object.
	ParamShape() *ir.ObjectDescriptor

	sealed()
}

// Parent is a namespace. Its params are contributed to every method
// nested beneath it.
type Parent struct {
	// Children maps a path segment to the node it names.
	Children map[string]Node

	// Params contributed to every descendant. Nil means no params.
	Params *ir.ObjectDescriptor

	// Return is carried for symmetry with Leaf and never surfaced by resolution.
	Return ir.TypeDescriptor

	Documentation ir.Documentation
	Metadata      map[string]any
}

// Leaf is an invocable method.
type Leaf struct {
	// Params required by the method itself. Nil means no params.
	Params *ir.ObjectDescriptor

	// Return is the shape of the value the method produces.
	Return ir.TypeDescriptor

	Documentation ir.Documentation
	Metadata      map[string]any
}

// Kind returns KindParent.
func (p *Parent) Kind() NodeKind { return KindParent }

// ParamShape returns the parent's params, or the empty object.
func (p *Parent) ParamShape() *ir.ObjectDescriptor { return orEmpty(p.Params) }

func (*Parent) sealed() {}

// Kind returns KindLeaf.
func (l *Leaf) Kind() NodeKind { return KindLeaf }

// ParamShape returns the leaf's params, or the empty object.
func (l *Leaf) ParamShape() *ir.ObjectDescriptor { return orEmpty(l.Params) }

func (*Leaf) sealed() {}

func orEmpty(o *ir.ObjectDescriptor) *ir.ObjectDescriptor {
	if o == nil {
		return &ir.ObjectDescriptor{}
	}
	return o
}

// NewParent returns a namespace node contributing params to its descendants.
// A nil params is the empty shape.
//
// Example:
//
//	root := rpctree.NewParent(ir.Object(ir.NewField("auth", ir.String()))).
//	    Add("users", rpctree.NewParent(nil).
//	        Add("create", rpctree.NewLeaf(createParams, createResult)))
func NewParent(params *ir.ObjectDescriptor) *Parent {
	return &Parent{
		Children: make(map[string]Node),
		Params:   params,
	}
}

// NewLeaf returns a method node.
func NewLeaf(params *ir.ObjectDescriptor, ret ir.TypeDescriptor) *Leaf {
	return &Leaf{
		Params: params,
		Return: ret,
	}
}

// Add sets the child named name and returns the parent for chaining.
// A child already registered under the same name is replaced.
// Names are checked by Compiler.Compile, not here.
func (p *Parent) Add(name string, child Node) *Parent {
	if p.Children == nil {
		p.Children = make(map[string]Node)
	}
	p.Children[name] = child
	return p
}

// WithDoc sets the documentation summary and returns the parent.
func (p *Parent) WithDoc(summary string) *Parent {
	p.Documentation = ir.Documentation{Summary: summary, Body: summary}
	return p
}

// WithDoc sets the documentation summary and returns the leaf.
func (l *Leaf) WithDoc(summary string) *Leaf {
	l.Documentation = ir.Documentation{Summary: summary, Body: summary}
	return l
}

// WithMetadata sets a metadata entry and returns the leaf.
func (l *Leaf) WithMetadata(key string, value any) *Leaf {
	if l.Metadata == nil {
		l.Metadata = make(map[string]any)
	}
	l.Metadata[key] = value
	return l
}
