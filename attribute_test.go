// Copyright © 2024 The ELPS authors

package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeEquality(t *testing.T) {
	// Nodes with equal contents are distinct attribute keys.
	n1 := &testNode{name: "X"}
	n2 := &testNode{name: "X"}

	assert.Equal(t, Attr(n1, "t"), Attr(n1, "t"))
	// assert.NotEqual compares deeply and would treat n1 and n2 as
	// equal; attribute keys compare nodes with ==.
	assert.True(t, Attr(n1, "t") != Attr(n2, "t"))
	assert.NotEqual(t, Attr(n1, "t"), Attr(n1, "u"))

	m := map[Attribute]int{
		Attr(n1, "t"): 1,
		Attr(n2, "t"): 2,
	}
	assert.Len(t, m, 2)
	assert.Equal(t, 1, m[Attr(n1, "t")])
}

func TestAttributeString(t *testing.T) {
	n := &testNode{name: "A"}
	assert.Equal(t, "(A :: t)", Attr(n, "t").String())
	assert.Equal(t, "(<nil> :: g)", Attr(nil, "g").String())
}
