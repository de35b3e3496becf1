package rpctree

import (
	"fmt"
	"reflect"

	"github.com/broady/rpctree/ir"
	"github.com/broady/rpctree/provider"
)

// LeafOf returns a method node whose params are the JSON shape of struct type P
// and whose return is the JSON shape of R.
// It panics if P is not a struct or either type cannot be encoded as JSON.
//
// Example:
//
//	type CreateUserParams struct {
//	    Name string `json:"name"`
//	}
//	type User struct {
//	    ID int64 `json:"id"`
//	}
//
//	root.Add("create", rpctree.LeafOf[CreateUserParams, User]())
func LeafOf[P, R any]() *Leaf {
	return NewLeaf(mustObjectShape(reflect.TypeFor[P]()), mustShape(reflect.TypeFor[R]()))
}

// ParentOf returns a namespace node contributing the JSON shape of struct
// type P to every method beneath it. It panics like LeafOf.
func ParentOf[P any]() *Parent {
	return NewParent(mustObjectShape(reflect.TypeFor[P]()))
}

func mustObjectShape(t reflect.Type) *ir.ObjectDescriptor {
	obj, _, err := provider.ObjectShape(t)
	if err != nil {
		panic(fmt.Sprintf("rpctree: params %s: %v", t, err))
	}
	return obj
}

func mustShape(t reflect.Type) ir.TypeDescriptor {
	desc, _, err := provider.Shape(t)
	if err != nil {
		panic(fmt.Sprintf("rpctree: return %s: %v", t, err))
	}
	return desc
}
