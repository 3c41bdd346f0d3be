// Copyright © 2024 The ELPS authors

package analysis

import "github.com/luthersystems/reactor/lang"

// Scope maps binding names to their declarations.  The demo language
// has a single file-level scope; bindings are visible to the whole
// file, including statements preceding the declaration.
type Scope struct {
	bindings map[string]*lang.Let
	names    []string
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{bindings: make(map[string]*lang.Let)}
}

// Define records a declaration.  The first declaration of a name wins;
// callers are expected to report duplicates before calling Define.
func (s *Scope) Define(let *lang.Let) {
	if _, ok := s.bindings[let.Name]; ok {
		return
	}
	s.bindings[let.Name] = let
	s.names = append(s.names, let.Name)
}

// Lookup returns the declaration bound to name, or nil.
func (s *Scope) Lookup(name string) *lang.Let {
	return s.bindings[name]
}

// Names returns the declared names in declaration order.
func (s *Scope) Names() []string {
	return append([]string(nil), s.names...)
}
