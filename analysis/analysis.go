// Copyright © 2024 The ELPS authors

// Package analysis performs semantic analysis of the demo language on
// top of the reactor.
//
// The analyzer makes two passes.  A pre-scan collects top-level let
// bindings into a scope, so that references may precede their
// declaration.  A walk then registers one or more rules per node:
// literals export their type eagerly, binary expressions derive a type
// from their operands, and references resolve to a declaration first
// and register a lazy typing rule once the declaration is known.
// Running the reactor drives everything to a fixed point; unresolved
// names and operand type mismatches surface as root semantic errors.
//
// Attributes computed per node:
//
//	type  the node's type, "Int" or "String" (every expression, lets)
//	decl  the resolved *lang.Let (references only)
package analysis

import (
	"fmt"

	"github.com/luthersystems/reactor"
	"github.com/luthersystems/reactor/lang"
)

// Type names exported through the "type" attribute.
const (
	TypeInt    = "Int"
	TypeString = "String"
)

// Attribute names registered by the analyzer.
const (
	AttrType = "type"
	AttrDecl = "decl"
)

// Config controls the behavior of the analyzer.
type Config struct {
	// Reactor evaluates the analysis rules.  When nil a fresh default
	// reactor is used.  Supplying one allows callers to attach a
	// profiler or redefinition policy.
	Reactor *reactor.Reactor
}

// Result holds the output of semantic analysis.
type Result struct {
	// Reactor holds every computed attribute for inspection.
	Reactor *reactor.Reactor

	// Scope maps binding names to their declarations.
	Scope *Scope
}

// Errors returns the root semantic errors, the natural summary for
// callers.
func (res *Result) Errors() []*reactor.SemanticError {
	return res.Reactor.Errors()
}

// TypeOf returns the type attribute computed for the node, or nil.
// The value is a type name string or a *reactor.SemanticError.
func (res *Result) TypeOf(node lang.Node) any {
	return res.Reactor.GetNode(node, AttrType)
}

// Analyze performs semantic analysis on a parsed program.
func Analyze(prog *lang.Program, cfg *Config) *Result {
	if cfg == nil {
		cfg = &Config{}
	}
	r := cfg.Reactor
	if r == nil {
		r = reactor.New()
	}

	a := &analyzer{
		reactor: r,
		scope:   NewScope(),
	}

	// Phase 1: pre-scan declarations (forward references).
	a.prescan(prog)

	// Phase 2: register rules node by node.
	for _, stmt := range prog.Stmts {
		a.analyzeStmt(stmt)
	}

	r.Run()
	return &Result{Reactor: r, Scope: a.scope}
}

// ConfigureReactor registers analysis rules for prog on r without
// running it.  It backs the reactortest fixture, which owns the run.
func ConfigureReactor(r *reactor.Reactor, prog *lang.Program) {
	a := &analyzer{reactor: r, scope: NewScope()}
	a.prescan(prog)
	for _, stmt := range prog.Stmts {
		a.analyzeStmt(stmt)
	}
}

type analyzer struct {
	reactor *reactor.Reactor
	scope   *Scope
}

func (a *analyzer) prescan(prog *lang.Program) {
	for _, stmt := range prog.Stmts {
		let, ok := stmt.(*lang.Let)
		if !ok {
			continue
		}
		if prev := a.scope.Lookup(let.Name); prev != nil {
			a.reactor.Error(reactor.Errorf(let,
				"duplicate declaration of %s (first declared at %v)",
				let.Name, prev.Loc()))
			continue
		}
		a.scope.Define(let)
	}
}

func (a *analyzer) analyzeStmt(stmt lang.Stmt) {
	switch n := stmt.(type) {
	case *lang.Let:
		a.analyzeExpr(n.Value)
		if a.scope.Lookup(n.Name) != n {
			// A duplicate declaration; only the first one participates
			// in typing.
			return
		}
		a.reactor.RuleNode(n, AttrType).
			UsingNode(n.Value, AttrType).
			By(reactor.CopyFirst)
	case *lang.ExprStmt:
		a.analyzeExpr(n.X)
	}
}

func (a *analyzer) analyzeExpr(expr lang.Expr) {
	switch n := expr.(type) {
	case *lang.IntLit:
		a.reactor.RuleNode(n, AttrType).By(func(rule *reactor.Rule) {
			rule.Set(0, TypeInt)
		})
	case *lang.StrLit:
		a.reactor.RuleNode(n, AttrType).By(func(rule *reactor.Rule) {
			rule.Set(0, TypeString)
		})
	case *lang.Ref:
		a.analyzeRef(n)
	case *lang.Binary:
		a.analyzeExpr(n.X)
		a.analyzeExpr(n.Y)
		a.reactor.RuleNode(n, AttrType).
			Using(reactor.Attr(n.X, AttrType), reactor.Attr(n.Y, AttrType)).
			By(func(rule *reactor.Rule) {
				a.checkBinary(rule, n)
			})
	}
}

// analyzeRef resolves a reference in two steps.  Resolution itself
// needs no attribute values, so the decl rule has no dependencies.  The
// typing rule cannot be registered until the declaration is known; a
// chained rule waits on the decl attribute and registers it lazily.  An
// unresolved name pre-fails both attributes so the missing-attribute
// pass stays quiet about them.
func (a *analyzer) analyzeRef(n *lang.Ref) {
	a.reactor.RuleNode(n, AttrDecl).By(func(rule *reactor.Rule) {
		if let := a.scope.Lookup(n.Name); let != nil {
			rule.Set(0, let)
			return
		}
		rule.ErrorFor(fmt.Sprintf("undefined variable %s", n.Name), n,
			reactor.Attr(n, AttrDecl), reactor.Attr(n, AttrType))
	})
	a.reactor.Rule().UsingNode(n, AttrDecl).By(func(rule *reactor.Rule) {
		let := rule.Get(0).(*lang.Let)
		a.reactor.RuleNode(n, AttrType).
			UsingNode(let, AttrType).
			By(reactor.CopyFirst)
	})
}

func (a *analyzer) checkBinary(rule *reactor.Rule, n *lang.Binary) {
	x, xok := rule.Get(0).(string)
	y, yok := rule.Get(1).(string)
	if !xok || !yok {
		// An operand carries an upstream error value; this rule only
		// fires with one when the error was stored before this rule
		// registered, in which case the type is unrecoverable.
		rule.Error(fmt.Sprintf("untyped operand for %s", n.Op), n)
		return
	}
	switch {
	case x == TypeInt && y == TypeInt:
		rule.Set(0, TypeInt)
	case x == TypeString && y == TypeString && n.Op == "+":
		rule.Set(0, TypeString)
	default:
		rule.Error(fmt.Sprintf("invalid operands for %s: %s and %s", n.Op, x, y), n)
	}
}
