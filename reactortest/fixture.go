// Copyright © 2024 The ELPS authors

// Package reactortest provides a test harness for reactor-based
// semantic analyses.  A Fixture configures a fresh reactor for an AST,
// runs it, and asserts on the presence or absence of root errors, their
// descriptions and their effective locations.
//
// ASTs can be passed directly to Success and Failure, or built through
// parsing by setting the Parse hook and using the Input variants, which
// is usually far less painful than constructing trees by hand.
package reactortest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/reactor"
)

// Fixture drives reactor-based semantic analysis in tests.
type Fixture struct {
	// Configure instantiates analysis rules on a fresh reactor for the
	// given AST, so that the fixture can run it.  Required.
	Configure func(r *reactor.Reactor, ast any)

	// Parse converts a source string into an AST for the Input
	// assertion variants.  Optional.
	Parse func(input string) (any, error)

	// NodeString renders an AST node for failure messages.  It should
	// identify the node to the user without being too verbose.  When
	// nil, nodes render with fmt's default formatting.
	NodeString func(node any) string
}

func (f *Fixture) nodeString(node any) string {
	if f.NodeString != nil {
		return f.NodeString(node)
	}
	return fmt.Sprintf("%v", node)
}

// Analyze configures a fresh reactor for ast, runs it, and returns it
// without asserting anything.
func (f *Fixture) Analyze(t testing.TB, ast any) *reactor.Reactor {
	t.Helper()
	if f.Configure == nil {
		t.Fatal("reactortest: Fixture.Configure is not set")
	}
	r := reactor.New()
	f.Configure(r, ast)
	r.Run()
	return r
}

// Success asserts that semantic analysis of ast produces no errors and
// returns the reactor for further inspection.
func (f *Fixture) Success(t testing.TB, ast any) *reactor.Reactor {
	t.Helper()
	r := f.Analyze(t, ast)
	if errs := r.Errors(); len(errs) > 0 {
		t.Errorf("unexpected semantic errors:\n%s", r.ReportErrors(f.nodeString))
	}
	return r
}

// Failure asserts that semantic analysis of ast produces at least one
// root error whose description contains wantDescription, and returns
// that error.
func (f *Fixture) Failure(t testing.TB, ast any, wantDescription string) *reactor.SemanticError {
	t.Helper()
	r := f.Analyze(t, ast)
	errs := r.Errors()
	if len(errs) == 0 {
		t.Errorf("analysis succeeded, want error containing %q", wantDescription)
		return nil
	}
	for _, err := range errs {
		if strings.Contains(err.Description, wantDescription) {
			return err
		}
	}
	t.Errorf("no error contains %q:\n%s", wantDescription, r.ReportErrors(f.nodeString))
	return nil
}

// FailureAt is Failure plus an assertion on the error's effective
// location.
func (f *Fixture) FailureAt(t testing.TB, ast any, wantDescription string, wantLocation any) *reactor.SemanticError {
	t.Helper()
	err := f.Failure(t, ast, wantDescription)
	if err == nil {
		return nil
	}
	if loc := err.Location(); loc != wantLocation {
		t.Errorf("error location = %s, want %s",
			f.nodeString(loc), f.nodeString(wantLocation))
	}
	return err
}

func (f *Fixture) parse(t testing.TB, input string) any {
	t.Helper()
	if f.Parse == nil {
		t.Fatal("reactortest: Fixture.Parse is not set")
	}
	ast, err := f.Parse(input)
	if err != nil {
		t.Fatalf("parse failure: %v", err)
	}
	return ast
}

// SuccessInput parses input and asserts analysis succeeds.
func (f *Fixture) SuccessInput(t testing.TB, input string) *reactor.Reactor {
	t.Helper()
	return f.Success(t, f.parse(t, input))
}

// FailureInput parses input and asserts analysis fails with an error
// containing wantDescription.
func (f *Fixture) FailureInput(t testing.TB, input string, wantDescription string) *reactor.SemanticError {
	t.Helper()
	return f.Failure(t, f.parse(t, input), wantDescription)
}
