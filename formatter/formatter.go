// Copyright © 2024 The ELPS authors

// Package formatter renders attributed trees.  Given a root node and a
// reactor it produces a tree-like (indented children) view of the AST
// where the attributes computed for each node are listed after the node
// itself, before its descendants.
package formatter

import (
	"fmt"
	"strings"

	"github.com/luthersystems/reactor"
	"github.com/luthersystems/reactor/astutil"
	"github.com/muesli/reflow/indent"
)

const indentWidth = 2

type treeFormatter struct {
	reactor *reactor.Reactor
	b       strings.Builder
	depth   uint
}

// Format walks the tree rooted at root with the given walker and
// returns the indented dump of nodes and their attribute values.  Nodes
// render through their String method (or fmt's default otherwise).
func Format(root any, r *reactor.Reactor, walk astutil.Walker) string {
	f := &treeFormatter{reactor: r}
	walk(root, f.preVisit, f.postVisit)
	return f.b.String()
}

// FormatFields is Format with the reflective field walker, which
// discovers children through exported struct fields.
func FormatFields(root any, r *reactor.Reactor) string {
	return Format(root, r, astutil.Walk)
}

func (f *treeFormatter) preVisit(node any) {
	line := fmt.Sprintf("%v", node)
	for _, entry := range f.reactor.GetAll(node) {
		value := entry.Value
		if s, ok := value.(fmt.Stringer); ok {
			// Prefer String over Error so error values stay recognizable.
			value = s.String()
		}
		line += fmt.Sprintf("\n%*s:: %s = %v", indentWidth, "", entry.Attr.Name, value)
	}
	f.b.WriteString(indent.String(line, f.depth*indentWidth))
	f.b.WriteString("\n")
	f.depth++
}

func (f *treeFormatter) postVisit(node any) {
	f.depth--
}
