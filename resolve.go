// Package rpctree resolves dotted method paths against a tree of RPC handler
// shapes: the params of a method are merged from every namespace on its path,
// the return comes from the method alone.
package rpctree

import (
	"errors"
	"strings"

	"github.com/broady/rpctree/ir"
)

// ResolveParams returns the params expected by the method at path: the merge
// of the params of every parent passed through, root first, with the params
// of the terminal leaf.
//
// If path does not name a leaf the error is an *UnresolvedError (errors.Is
// ErrUnresolved). If the levels declare the same param incompatibly the error
// is a *ConflictError; Compiler.Compile reports those up front.
func ResolveParams(root Node, path string) (*ir.ObjectDescriptor, error) {
	return resolveParams(root, path, nil)
}

// ResolveReturn returns the return shape of the leaf at path. Returns declared
// on parents are ignored. Unresolvable paths yield an *UnresolvedError.
func ResolveReturn(root Node, path string) (ir.TypeDescriptor, error) {
	_, leaf, err := descend(root, path)
	if err != nil {
		return nil, err
	}
	return leaf.Return, nil
}

func resolveParams(root Node, path string, compat CompatibleFunc) (*ir.ObjectDescriptor, error) {
	trail, leaf, err := descend(root, path)
	if err != nil {
		return nil, err
	}

	levels := make([]*ir.ObjectDescriptor, 0, len(trail)+1)
	for _, p := range trail {
		levels = append(levels, p.Params)
	}
	levels = append(levels, leaf.Params)

	merged, err := Merge(compat, levels...)
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			conflict.Path = path
		}
		return nil, err
	}
	return merged, nil
}

// descend walks from root along path and returns the parents passed through
// (outermost first) and the terminal leaf. The first segment that fails to
// resolve determines the error.
func descend(root Node, path string) ([]*Parent, *Leaf, error) {
	if path == "" {
		return nil, nil, &UnresolvedError{Path: path, Reason: ReasonEmptyPath}
	}
	if root == nil {
		return nil, nil, &UnresolvedError{Path: path, Reason: ReasonMissingChild, Segment: firstSegment(path)}
	}
	var trail []*Parent
	leaf, err := step(root, path, path, 0, &trail)
	if err != nil {
		return nil, nil, err
	}
	return trail, leaf, nil
}

// step resolves rest against node. depth is the index of rest's first
// segment within full.
func step(node Node, full, rest string, depth int, trail *[]*Parent) (*Leaf, error) {
	parent, ok := node.(*Parent)
	if ok && parent == nil {
		return nil, &UnresolvedError{Path: full, Segment: firstSegment(rest), Depth: depth, Reason: ReasonMissingChild}
	}
	if !ok {
		// Only reachable when the root itself is a leaf: parents check
		// their children's kinds before descending.
		return nil, &UnresolvedError{Path: full, Depth: depth, Reason: ReasonPastLeaf}
	}
	*trail = append(*trail, parent)

	head, tail, more := strings.Cut(rest, Separator)
	if head == "" {
		return nil, &UnresolvedError{Path: full, Depth: depth, Reason: ReasonEmptySegment}
	}

	child, ok := parent.Children[head]
	if !ok || isNil(child) {
		return nil, &UnresolvedError{Path: full, Segment: head, Depth: depth, Reason: ReasonMissingChild}
	}

	if more {
		if tail == "" {
			return nil, &UnresolvedError{Path: full, Depth: depth + 1, Reason: ReasonEmptySegment}
		}
		if _, isLeaf := child.(*Leaf); isLeaf {
			return nil, &UnresolvedError{Path: full, Segment: head, Depth: depth, Reason: ReasonPastLeaf}
		}
		return step(child, full, tail, depth+1, trail)
	}

	leaf, isLeaf := child.(*Leaf)
	if !isLeaf {
		return nil, &UnresolvedError{Path: full, Segment: head, Depth: depth, Reason: ReasonNotInvocable}
	}
	return leaf, nil
}

func firstSegment(path string) string {
	head, _, _ := strings.Cut(path, Separator)
	return head
}

// isNil reports whether n is nil or a typed nil node.
func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Parent:
		return v == nil
	case *Leaf:
		return v == nil
	}
	return false
}
