// Copyright © 2024 The ELPS authors

package reactor

import (
	"fmt"
	"strings"
)

// A Computation derives a rule's export values from its dependency
// values.  It runs with every dependency valued and must either set
// every export to a non-nil value or signal an error covering them (see
// Rule.Fail and Rule.FailFor).
type Computation func(*Rule)

// CopyFirst is a Computation that copies the value of dependency 0 to
// export 0.  This is a frequently needed behaviour; pass it directly to
// RuleBuilder.By.
func CopyFirst(r *Rule) {
	r.Set(0, r.Get(0))
}

// A Rule computes a set of exported attribute values from a set of
// dependency attribute values.  Rules are created through Reactor.Rule
// and invoked by the reactor when every dependency has a value; they
// cannot be invoked manually.
//
// The computation passed to RuleBuilder.By receives the Rule and uses
// it to read dependencies (Get and variants), write exports (Set and
// variants) and signal semantic errors (Error, Fail, ErrorFor,
// FailFor).
//
// A computation may register further rules on the reactor.  Such lazy
// rules are ordinary rules that happen to be registered mid-run; if
// their dependencies already have values they fire within the same run.
// When an error precludes even the registration of a lazy rule the
// registering computation should pre-fail the lazy rule's exports with
// ErrorFor or FailFor.
type Rule struct {
	exports      []Attribute
	dependencies []Attribute

	exportValues     []any
	dependencyValues []any

	reactor     *Reactor
	computation Computation
	unsatisfied int
}

// Exports returns a copy of the rule's exported attributes.
func (r *Rule) Exports() []Attribute {
	return append([]Attribute(nil), r.exports...)
}

// Dependencies returns a copy of the rule's dependency attributes.
func (r *Rule) Dependencies() []Attribute {
	return append([]Attribute(nil), r.dependencies...)
}

// Get returns the value of the dependency at index i.
func (r *Rule) Get(i int) any {
	return r.dependencyValues[i]
}

// GetAttr returns the value of the given dependency attribute.  When
// the attribute appears multiple times in the dependency list the first
// slot is used.
func (r *Rule) GetAttr(dep Attribute) any {
	i := indexOf(r.dependencies, dep)
	if i < 0 {
		panic(fmt.Sprintf("reactor: %v is not a dependency of %v", dep, r))
	}
	v := r.dependencyValues[i]
	if v == nil {
		// Stale slot under a custom redefinition policy; read through
		// to the store.
		v = r.reactor.Get(dep)
		r.dependencyValues[i] = v
	}
	return v
}

// GetNode returns the value of the dependency (node, name).
func (r *Rule) GetNode(node any, name string) any {
	return r.GetAttr(Attr(node, name))
}

// Set assigns the value of the export at index i.  The value cannot be
// nil.  Only the final assignment is published when the computation
// returns.
func (r *Rule) Set(i int, value any) {
	if value == nil {
		panic("reactor: value can't be nil")
	}
	r.exportValues[i] = value
}

// SetAttr assigns the value of the given export attribute.
func (r *Rule) SetAttr(export Attribute, value any) {
	i := indexOf(r.exports, export)
	if i < 0 {
		panic(fmt.Sprintf("reactor: %v is not an export of %v", export, r))
	}
	r.Set(i, value)
}

// SetNode assigns the value of the export (node, name).
func (r *Rule) SetNode(node any, name string, value any) {
	r.SetAttr(Attr(node, name), value)
}

// Error signals that a semantic error precluded the computation of all
// of the rule's exports.  Equivalent to Fail with a new root error.
func (r *Rule) Error(description string, location any) {
	r.Fail(NewError(description, nil, location))
}

// Fail signals that err precluded the computation of all of the rule's
// exports.  The error becomes the value of every export.  If the rule
// has no exports the error is reported to the reactor unattached, so it
// is not lost.
func (r *Rule) Fail(err *SemanticError) {
	if len(r.exports) == 0 {
		r.reactor.reportUnattached(err)
		return
	}
	for i := range r.exportValues {
		r.exportValues[i] = err
	}
}

// ErrorFor signals that a semantic error precluded the computation of
// the affected attributes.  Equivalent to FailFor with a new root
// error.
func (r *Rule) ErrorFor(description string, location any, affected ...Attribute) {
	r.FailFor(NewError(description, nil, location), affected...)
}

// FailFor signals that err precluded the computation of the affected
// attributes (which may be empty: the error is then reported
// unattached).  Affected attributes need not be exports of the rule.
// This freedom is useful when an error prevents the registration of a
// lazy rule: failing the lazy rule's would-be exports here pre-empts a
// spurious missing-attribute diagnostic.
func (r *Rule) FailFor(err *SemanticError, affected ...Attribute) {
	if len(affected) == 0 {
		r.reactor.reportUnattached(err)
		return
	}
	for _, attr := range affected {
		if i := indexOf(r.exports, attr); i >= 0 {
			r.Set(i, err)
		} else {
			// Attributes that are not exports are routed out of band.
			r.reactor.reportAttached(err, attr)
		}
	}
}

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString("Rule{deps: [")
	writeAttrValues(&b, r.dependencies, r.dependencyValues)
	b.WriteString("], exports: [")
	writeAttrValues(&b, r.exports, r.exportValues)
	b.WriteString("]}")
	return b.String()
}

func writeAttrValues(b *strings.Builder, attrs []Attribute, values []any) {
	for i, attr := range attrs {
		if i > 0 {
			b.WriteString(", ")
		}
		if values[i] == nil {
			fmt.Fprintf(b, "%v", attr)
		} else {
			fmt.Fprintf(b, "%v = %v", attr, values[i])
		}
	}
}

// run invokes the computation.  Called by the reactor with every
// dependency valued.
func (r *Rule) run() {
	r.computation(r)
}

// supply fills every dependency slot matching dep.  The same attribute
// may appear multiple times in the dependency list and each slot must
// be filled.  The unsatisfied count only drops for slots that were
// empty, so a redefinition cannot mask a genuinely missing dependency.
// The rule is enqueued at most once per supply call: either the last
// empty slot was just filled, or the rule was already complete and the
// new value warrants a re-fire (custom redefinition policies only).
func (r *Rule) supply(dep Attribute, value any) {
	matched := false
	for i, d := range r.dependencies {
		if d != dep {
			continue
		}
		matched = true
		if r.dependencyValues[i] == nil {
			r.unsatisfied--
		}
		r.dependencyValues[i] = value
	}
	if matched && r.unsatisfied == 0 {
		r.reactor.enqueue(r)
	}
}

func indexOf(attrs []Attribute, attr Attribute) int {
	for i, a := range attrs {
		if a == attr {
			return i
		}
	}
	return -1
}

// A RuleBuilder accumulates the schema of a rule.  Obtain one from
// Reactor.Rule, optionally add dependencies with Using, and finalize
// registration with By.
type RuleBuilder struct {
	reactor      *Reactor
	exports      []Attribute
	dependencies []Attribute
}

// Using declares the dependencies of the rule.  Optional; a rule built
// without Using has no dependencies and becomes runnable immediately.
func (b *RuleBuilder) Using(dependencies ...Attribute) *RuleBuilder {
	b.dependencies = dependencies
	return b
}

// UsingNode declares the single dependency (node, name).
func (b *RuleBuilder) UsingNode(node any, name string) *RuleBuilder {
	return b.Using(Attr(node, name))
}

// By supplies the computation and registers the rule with the reactor.
func (b *RuleBuilder) By(computation Computation) {
	rule := &Rule{
		exports:          b.exports,
		dependencies:     b.dependencies,
		exportValues:     make([]any, len(b.exports)),
		dependencyValues: make([]any, len(b.dependencies)),
		reactor:          b.reactor,
		computation:      computation,
		unsatisfied:      len(b.dependencies),
	}
	b.reactor.register(rule)
}
