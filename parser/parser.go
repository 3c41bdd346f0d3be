// Copyright © 2024 The ELPS authors

// Package parser parses the demo expression language into lang ASTs.
//
//	program := stmt*
//	stmt    := "let" IDENT "=" expr | expr
//	expr    := term (("+" | "-") term)*
//	term    := INT | STRING | IDENT | "(" expr ")"
//
// Comments run from "#" to end of line.
package parser

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/luthersystems/reactor/lang"
	parsec "github.com/prataprc/goparsec"
)

// ParseFile reads and parses path.
func ParseFile(path string) (*lang.Program, error) {
	source, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return nil, err
	}
	return Parse(path, source)
}

// Parse parses source into a program.  The name is used in source
// locations and error messages.
func Parse(name string, source []byte) (*lang.Program, error) {
	b := &builder{name: name, lineStarts: lineStarts(source)}
	source = stripComments(source)
	p := b.newParser()

	prog := &lang.Program{Pos: lang.Loc{File: name, Line: 1, Col: 1}}
	s := parsec.NewScanner(source)
	var root parsec.ParsecNode
	root, s = p(s)
	for root != nil {
		stmt, ok := unwrap(root).(lang.Stmt)
		if !ok {
			return nil, fmt.Errorf("%s: unexpected parse node %T", name, unwrap(root))
		}
		prog.Stmts = append(prog.Stmts, stmt)
		root, s = p(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		text, _ := s.Match(`.{1,16}`)
		if len(text) > 15 {
			text = append(text[:15:15], []byte("...")...)
		}
		return nil, fmt.Errorf("%v: unexpected source text possibly starting: %s",
			b.loc(s.GetCursor()), text)
	}
	return prog, nil
}

type builder struct {
	name       string
	lineStarts []int
}

func (b *builder) newParser() parsec.Parser {
	letKw := parsec.Token(`let\b`, "LET")
	assign := parsec.Atom("=", "ASSIGN")
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	intTok := parsec.Token(`-?[0-9]+`, "INT")
	strTok := parsec.Token(`"(?:[^"\\]|\\.)*"`, "STRING")
	identTok := parsec.Token(`[a-zA-Z_][a-zA-Z0-9_]*`, "IDENT")
	opTok := parsec.Token(`[+-]`, "OP")

	var expr parsec.Parser // forward declaration allows for recursive parsing
	group := parsec.And(b.groupNode, openP, &expr, closeP)
	term := parsec.OrdChoice(b.termNode, intTok, strTok, identTok, group)
	rest := parsec.Kleene(nil, parsec.And(nil, opTok, term))
	expr = parsec.And(b.exprNode, term, rest)
	letStmt := parsec.And(b.letNode, letKw, identTok, assign, &expr)
	return parsec.OrdChoice(b.stmtNode, letStmt, &expr)
}

func (b *builder) termNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	switch n := unwrap(ns[0]).(type) {
	case *parsec.Terminal:
		switch n.Name {
		case "INT":
			v, err := strconv.ParseInt(n.Value, 10, 64)
			if err != nil {
				return nil
			}
			return &lang.IntLit{Value: v, Pos: b.loc(n.Position)}
		case "STRING":
			v, err := strconv.Unquote(n.Value)
			if err != nil {
				return nil
			}
			return &lang.StrLit{Value: v, Pos: b.loc(n.Position)}
		case "IDENT":
			return &lang.Ref{Name: n.Value, Pos: b.loc(n.Position)}
		}
		return nil
	case lang.Expr:
		// Parenthesized group.
		return n
	}
	return nil
}

func (b *builder) groupNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	return unwrap(ns[1])
}

func (b *builder) exprNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	x, ok := unwrap(ns[0]).(lang.Expr)
	if !ok {
		return nil
	}
	rest, _ := unwrapSlice(ns[1])
	for _, item := range rest {
		pair, _ := unwrapSlice(item)
		if len(pair) != 2 {
			return nil
		}
		op, ok := unwrap(pair[0]).(*parsec.Terminal)
		if !ok {
			return nil
		}
		y, ok := unwrap(pair[1]).(lang.Expr)
		if !ok {
			return nil
		}
		x = &lang.Binary{Op: op.Value, X: x, Y: y, Pos: b.loc(op.Position)}
	}
	return x
}

func (b *builder) letNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	kw, ok := unwrap(ns[0]).(*parsec.Terminal)
	if !ok {
		return nil
	}
	ident, ok := unwrap(ns[1]).(*parsec.Terminal)
	if !ok {
		return nil
	}
	value, ok := unwrap(ns[3]).(lang.Expr)
	if !ok {
		return nil
	}
	return &lang.Let{Name: ident.Value, Value: value, Pos: b.loc(kw.Position)}
}

func (b *builder) stmtNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	switch n := unwrap(ns[0]).(type) {
	case lang.Stmt:
		return n
	case lang.Expr:
		return &lang.ExprStmt{X: n, Pos: n.Loc()}
	}
	return nil
}

// unwrap peels single-element node lists produced by combinators with
// default callbacks.
func unwrap(n parsec.ParsecNode) parsec.ParsecNode {
	for {
		ns, ok := n.([]parsec.ParsecNode)
		if !ok || len(ns) != 1 {
			return n
		}
		n = ns[0]
	}
}

func unwrapSlice(n parsec.ParsecNode) ([]parsec.ParsecNode, bool) {
	ns, ok := n.([]parsec.ParsecNode)
	return ns, ok
}

// loc converts a byte offset to a file position.
func (b *builder) loc(offset int) lang.Loc {
	line := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	})
	return lang.Loc{
		File: b.name,
		Line: line,
		Col:  offset - b.lineStarts[line-1] + 1,
	}
}

// stripComments blanks out "#" comments so the grammar never sees
// them.  Comment bytes are replaced with spaces, preserving every
// offset and line number.  A "#" inside a string literal is left
// alone.
func stripComments(source []byte) []byte {
	out := append([]byte(nil), source...)
	inString := false
	inComment := false
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case inComment:
			if c == '\n' {
				inComment = false
			} else {
				out[i] = ' '
			}
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '#':
			inComment = true
			out[i] = ' '
		}
	}
	return out
}

func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, c := range source {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
