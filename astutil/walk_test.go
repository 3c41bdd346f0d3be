// Copyright © 2024 The ELPS authors

package astutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type branch struct {
	Name     string
	Children []*branch
	Extra    *leaf
	hidden   *branch
}

type leaf struct {
	Name string
}

func TestWalkOrder(t *testing.T) {
	tree := &branch{
		Name: "root",
		Children: []*branch{
			{Name: "a", Extra: &leaf{Name: "a1"}},
			{Name: "b"},
		},
	}

	var pre, post []string
	name := func(node any) string {
		switch n := node.(type) {
		case *branch:
			return n.Name
		case *leaf:
			return n.Name
		}
		return "?"
	}
	Walk(tree,
		func(node any) { pre = append(pre, name(node)) },
		func(node any) { post = append(post, name(node)) })

	assert.Equal(t, []string{"root", "a", "a1", "b"}, pre)
	assert.Equal(t, []string{"a1", "a", "b", "root"}, post)
}

func TestWalkNilVisitors(t *testing.T) {
	assert.NotPanics(t, func() { Walk(&branch{Name: "root"}, nil, nil) })
}

func TestWalkSkipsNonNodes(t *testing.T) {
	var count int
	Walk(nil, func(any) { count++ }, nil)
	Walk("string", func(any) { count++ }, nil)
	Walk(42, func(any) { count++ }, nil)
	var nilBranch *branch
	Walk(nilBranch, func(any) { count++ }, nil)
	assert.Zero(t, count)
}

func TestWalkSkipsUnexportedFields(t *testing.T) {
	tree := &branch{Name: "root", hidden: &branch{Name: "secret"}}
	var pre []string
	Walk(tree, func(node any) {
		if b, ok := node.(*branch); ok {
			pre = append(pre, b.Name)
		}
	}, nil)
	assert.Equal(t, []string{"root"}, pre)
}

func TestWalkInterfaceFields(t *testing.T) {
	type wrapper struct {
		Inner any
	}
	tree := &wrapper{Inner: &leaf{Name: "deep"}}
	var seen []any
	Walk(tree, func(node any) { seen = append(seen, node) }, nil)
	assert.Len(t, seen, 2)
	assert.Equal(t, &leaf{Name: "deep"}, seen[1])
}
