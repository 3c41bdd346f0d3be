// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"
	"testing"

	"github.com/luthersystems/reactor"
	"github.com/luthersystems/reactor/lang"
	"github.com/luthersystems/reactor/parser"
	"github.com/luthersystems/reactor/reactortest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *reactortest.Fixture {
	return &reactortest.Fixture{
		Configure: func(r *reactor.Reactor, ast any) {
			ConfigureReactor(r, ast.(*lang.Program))
		},
		Parse: func(input string) (any, error) {
			return parser.Parse("test.rx", []byte(input))
		},
		NodeString: func(node any) string {
			if n, ok := node.(lang.Node); ok {
				return fmt.Sprintf("%v (%v)", node, n.Loc())
			}
			return fmt.Sprintf("%v", node)
		},
	}
}

func parseAndAnalyze(t *testing.T, source string) *Result {
	t.Helper()
	prog, err := parser.Parse("test.rx", []byte(source))
	require.NoError(t, err)
	return Analyze(prog, nil)
}

func TestAnalyzeLinear(t *testing.T) {
	res := parseAndAnalyze(t, `
let x = 1
let y = x + 2
y
`)
	require.Empty(t, res.Errors())

	x := res.Scope.Lookup("x")
	require.NotNil(t, x)
	assert.Equal(t, TypeInt, res.TypeOf(x))
	y := res.Scope.Lookup("y")
	require.NotNil(t, y)
	assert.Equal(t, TypeInt, res.TypeOf(y))
	assert.Equal(t, []string{"x", "y"}, res.Scope.Names())
}

func TestAnalyzeStringConcat(t *testing.T) {
	res := parseAndAnalyze(t, `
let a = "foo"
let b = a + "bar"
`)
	require.Empty(t, res.Errors())
	assert.Equal(t, TypeString, res.TypeOf(res.Scope.Lookup("b")))
}

func TestAnalyzeForwardReference(t *testing.T) {
	fixture().SuccessInput(t, `
let a = b - 1
let b = 2
`)
}

func TestAnalyzeUndefinedVariable(t *testing.T) {
	prog, err := parser.Parse("test.rx", []byte(`oops + 1`))
	require.NoError(t, err)
	res := Analyze(prog, nil)

	errs := res.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "undefined variable oops", errs[0].Description)

	ref := prog.Stmts[0].(*lang.ExprStmt).X.(*lang.Binary).X
	assert.Equal(t, ref, errs[0].Location())

	// The binary expression's type is tainted, not missing.
	binary := prog.Stmts[0].(*lang.ExprStmt).X
	derived, ok := res.TypeOf(binary).(*reactor.SemanticError)
	require.True(t, ok)
	assert.Same(t, errs[0], derived.Cause)
}

func TestAnalyzeOperandMismatch(t *testing.T) {
	err := fixture().FailureInput(t, `let a = 1 + "s"`, "invalid operands for +")
	require.NotNil(t, err)
	assert.Equal(t, "invalid operands for +: Int and String", err.Description)
}

func TestAnalyzeStringSubtraction(t *testing.T) {
	fixture().FailureInput(t, `let a = "x" - "y"`, "invalid operands for -")
}

func TestAnalyzeDuplicateDeclaration(t *testing.T) {
	prog, err := parser.Parse("test.rx", []byte("let x = 1\nlet x = 2\nx"))
	require.NoError(t, err)
	res := Analyze(prog, nil)

	errs := res.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Description, "duplicate declaration of x")
	assert.Equal(t, prog.Stmts[1], errs[0].Location())

	// The reference still resolves to the first declaration.
	ref := prog.Stmts[2].(*lang.ExprStmt).X
	res2 := res.Reactor.GetNode(ref, AttrDecl)
	assert.Equal(t, prog.Stmts[0], res2)
}

// A self-referential binding is a dependency cycle between its typing
// rules.  No rule can fire and no attribute is stuck on a missing
// external input, so analysis reports nothing and the binding stays
// untyped.
func TestAnalyzeSelfReference(t *testing.T) {
	res := parseAndAnalyze(t, `let x = x`)
	assert.Empty(t, res.Errors())
	assert.Nil(t, res.TypeOf(res.Scope.Lookup("x")))
}

func TestAnalyzeErrorTaintsChain(t *testing.T) {
	res := parseAndAnalyze(t, `
let a = oops
let b = a + 1
`)
	errs := res.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "undefined variable oops", errs[0].Description)

	// a and b are tainted transitively.
	aErr, ok := res.TypeOf(res.Scope.Lookup("a")).(*reactor.SemanticError)
	require.True(t, ok)
	assert.NotNil(t, aErr.Cause)
	bErr, ok := res.TypeOf(res.Scope.Lookup("b")).(*reactor.SemanticError)
	require.True(t, ok)
	assert.NotNil(t, bErr.Cause)

	// Effective locations all walk back to the unresolved reference.
	assert.Equal(t, errs[0].Location(), bErr.Location())
}

func TestAnalyzeWithSuppliedReactor(t *testing.T) {
	prog, err := parser.Parse("test.rx", []byte(`let x = 1`))
	require.NoError(t, err)

	r := reactor.New()
	res := Analyze(prog, &Config{Reactor: r})
	assert.Same(t, r, res.Reactor)
	assert.Empty(t, res.Errors())
}

func TestAnalyzeGrouping(t *testing.T) {
	res := parseAndAnalyze(t, `let x = (1 + 2) - 3`)
	require.Empty(t, res.Errors())
	assert.Equal(t, TypeInt, res.TypeOf(res.Scope.Lookup("x")))
}
