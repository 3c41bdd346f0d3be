// Copyright © 2024 The ELPS authors

// Package reactor implements a dataflow engine for semantic analysis.
//
// A Reactor owns a store of attribute values keyed by (node, name) pairs
// and a collection of rules.  Each rule declares the attributes it
// depends on and the attributes it exports, together with a computation
// that derives the latter from the former.  Running the reactor drives
// the rules to a fixed point: values unblock rules, rules publish more
// values, and semantic errors propagate to every attribute that can no
// longer be computed.
//
// Attribute values are heterogeneous.  The framework only discriminates
// error values (*SemanticError) from everything else; callers retrieving
// a value are expected to know its type.
package reactor

import "fmt"

// An Attribute is a (node, name) pair acting as a handle for a named
// attribute of a node.  Attributes are used as map keys: the node is
// compared by identity and the name by value.  Nodes are typically
// pointers to AST structs; any comparable value with a stable identity
// works.  A nil node denotes a global attribute.
type Attribute struct {
	Node any
	Name string
}

// Attr returns the attribute handle for name on node.
func Attr(node any, name string) Attribute {
	return Attribute{Node: node, Name: name}
}

func (a Attribute) String() string {
	return fmt.Sprintf("(%v :: %s)", a.Node, a.Name)
}
