// Copyright © 2024 The ELPS authors

package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorLocationChain(t *testing.T) {
	locA := &testNode{name: "A"}
	locB := &testNode{name: "B"}

	root := NewError("root", nil, locA)
	mid := NewError("mid", root, nil)
	top := NewError("top", mid, locB)

	// Own location wins; otherwise the cause chain is walked.
	assert.Equal(t, locB, top.Location())
	assert.Equal(t, locA, mid.Location())
	assert.Equal(t, locA, root.Location())

	orphan := NewError("orphan", nil, nil)
	assert.Nil(t, orphan.Location())
}

func TestErrorInterface(t *testing.T) {
	err := NewError("boom", nil, nil)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, "SemanticError(boom)", err.String())
}

func TestErrorf(t *testing.T) {
	loc := &testNode{name: "A"}
	err := Errorf(loc, "bad %s: %d", "thing", 7)
	assert.Equal(t, "bad thing: 7", err.Description)
	assert.Nil(t, err.Cause)
	assert.Equal(t, loc, err.Location())
}

func TestErrorIdentity(t *testing.T) {
	// Distinct instances are distinct errors even with identical text.
	e1 := NewError("dup", nil, nil)
	e2 := NewError("dup", nil, nil)
	assert.NotSame(t, e1, e2)

	set := map[*SemanticError]bool{e1: true}
	assert.False(t, set[e2])
}
