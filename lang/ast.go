// Copyright © 2024 The ELPS authors

// Package lang defines the AST for a small let-binding expression
// language.  The language exists to exercise reactor-based semantic
// analysis end to end: the analysis package registers typing and
// resolution rules over these nodes, the formatter dumps their
// attributes, and the CLI ties it together.
//
//	program := stmt*
//	stmt    := "let" IDENT "=" expr | expr
//	expr    := term (("+" | "-") term)*
//	term    := INT | STRING | IDENT | "(" expr ")"
package lang

import (
	"fmt"
	"strconv"
)

// Loc is a position in a source file.  Line and Col are 1-based.
type Loc struct {
	File string
	Line int
	Col  int
}

func (l Loc) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// A Node is any AST node.  Nodes are compared by identity when used as
// attribute keys, so every node in a tree is allocated separately.
type Node interface {
	// Loc returns the node's position in the source.
	Loc() Loc
}

// An Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// A Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Stmts []Stmt
	Pos   Loc
}

func (p *Program) Loc() Loc { return p.Pos }

func (p *Program) String() string { return "program " + p.Pos.File }

// Let binds a name to the value of an expression.  Bindings are file
// scoped and may be referenced before their declaration.
type Let struct {
	Name  string
	Value Expr
	Pos   Loc
}

func (n *Let) Loc() Loc  { return n.Pos }
func (n *Let) stmtNode() {}

func (n *Let) String() string { return "let " + n.Name }

// ExprStmt is a bare expression at statement position.
type ExprStmt struct {
	X   Expr
	Pos Loc
}

func (n *ExprStmt) Loc() Loc  { return n.Pos }
func (n *ExprStmt) stmtNode() {}

func (n *ExprStmt) String() string { return "expr" }

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Pos   Loc
}

func (n *IntLit) Loc() Loc  { return n.Pos }
func (n *IntLit) exprNode() {}

func (n *IntLit) String() string { return strconv.FormatInt(n.Value, 10) }

// StrLit is a string literal.
type StrLit struct {
	Value string
	Pos   Loc
}

func (n *StrLit) Loc() Loc  { return n.Pos }
func (n *StrLit) exprNode() {}

func (n *StrLit) String() string { return strconv.Quote(n.Value) }

// Ref is a reference to a let binding.
type Ref struct {
	Name string
	Pos  Loc
}

func (n *Ref) Loc() Loc  { return n.Pos }
func (n *Ref) exprNode() {}

func (n *Ref) String() string { return n.Name }

// Binary applies an infix operator to two operands.
type Binary struct {
	Op   string
	X, Y Expr
	Pos  Loc
}

func (n *Binary) Loc() Loc  { return n.Pos }
func (n *Binary) exprNode() {}

func (n *Binary) String() string { return "(" + n.Op + ")" }
