// Copyright © 2024 The ELPS authors

package reactor

import (
	"fmt"
	"strings"
)

// noDepsNode keys the bucket of rules without dependencies.  A private
// allocation cannot collide with any user attribute.
var noDepsNode = new(int)

var noDeps = Attribute{Node: noDepsNode, Name: "no-deps"}

// A Reactor owns a store of attribute values and a collection of rules
// that export attribute values given other attribute values as input.
//
// Rules are registered through the builder returned by Rule.  Values
// known up front are stored with Set; eager errors with Error.  Run
// drives the rules to a fixed point: it fires every rule whose
// dependencies become available, propagates semantic errors to
// attributes that can no longer be computed, and finally synthesizes
// "missing attribute" errors for dependencies no rule ever supplied.
//
// After Run, Errors returns the root errors (the natural summary for
// users) and AllErrors additionally returns every derived error.
//
// A Reactor is not safe for concurrent use.  Evaluation is single
// threaded and cooperative: at most one rule computation is in flight
// at any time.
type Reactor struct {
	attributes map[Attribute]any
	order      []Attribute

	// dependencies maps an attribute to the rules depending on it.  A
	// rule with duplicate dependency attributes is placed in the same
	// bucket once per occurrence; placements of one rule are adjacent
	// because registration appends them in a single call.
	dependencies map[Attribute][]*Rule

	// rules holds every registered rule in registration order, for the
	// missing-attribute pass and deterministic diagnostics.
	rules []*Rule

	queue []*Rule

	errors   []*SemanticError
	errorSet map[*SemanticError]bool

	// attributelessDerived collects derived errors signaled without an
	// affected attribute; they have no slot in the store and would
	// otherwise be lost.
	attributelessDerived []*SemanticError
	attributelessSet     map[*SemanticError]bool

	running    bool
	onRedefine RedefinitionHandler
	profiler   Profiler
}

// New returns an empty reactor configured with the given options.
func New(opts ...Option) *Reactor {
	r := &Reactor{
		attributes:       make(map[Attribute]any),
		dependencies:     make(map[Attribute][]*Rule),
		errorSet:         make(map[*SemanticError]bool),
		attributelessSet: make(map[*SemanticError]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rule returns a builder for a rule exporting the given attributes.
// The export list may be empty, for rules that only check and report.
func (r *Reactor) Rule(exports ...Attribute) *RuleBuilder {
	return &RuleBuilder{reactor: r, exports: exports}
}

// RuleNode returns a builder for a rule exporting (node, name).
func (r *Reactor) RuleNode(node any, name string) *RuleBuilder {
	return r.Rule(Attr(node, name))
}

// Set stores the non-nil value of an attribute known statically, before
// running the reactor.  Not meant for use inside rules (use Rule.Set
// and variants there).  Panics if called while the reactor is running.
func (r *Reactor) Set(attr Attribute, value any) {
	if value == nil {
		panic("reactor: value can't be nil")
	}
	if r.running {
		panic("reactor: Set called while the reactor is running")
	}
	r.put(attr, value)
}

// SetNode stores the value of the attribute (node, name).
func (r *Reactor) SetNode(node any, name string, value any) {
	r.Set(Attr(node, name), value)
}

// Error reports a semantic error affecting the given attributes (the
// list may be empty).  Use it for simple errors that are independent of
// attribute values and detected at rule instantiation time, such as
// structural checks on the tree.
func (r *Reactor) Error(err *SemanticError, affected ...Attribute) {
	if len(affected) == 0 {
		r.reportUnattached(err)
		return
	}
	for _, attr := range affected {
		r.reportAttached(err, attr)
	}
}

// Run fires every rule that can be fired, directly or transitively as
// rules make new attributes available, then synthesizes errors for
// attributes that were never supplied.  Running an already-run reactor
// with no new rules or values is a no-op.
func (r *Reactor) Run() {
	r.running = true
	for _, attr := range r.order {
		r.seedDependents(attr, r.attributes[attr])
	}
	for _, rule := range r.dependencies[noDeps] {
		r.enqueue(rule)
	}
	r.loopOnQueue()
	r.handleMissingAttributes()
	r.running = false
}

func (r *Reactor) enqueue(rule *Rule) {
	r.queue = append(r.queue, rule)
}

// loopOnQueue drains the queue, running each rule and publishing its
// exported values, which may in turn enqueue more rules.
func (r *Reactor) loopOnQueue() {
	for len(r.queue) > 0 {
		rule := r.queue[0]
		r.queue = r.queue[1:]

		r.fire(rule)

		for i, attr := range rule.exports {
			value := rule.exportValues[i]
			if value == nil {
				panic(fmt.Sprintf(
					"reactor: rule did not provide exported attribute %v:\n%v", attr, rule))
			}
			r.setValue(attr, value)
		}
	}
}

// fire invokes the rule's computation, renaming a panic so the failing
// rule can be identified.
func (r *Reactor) fire(rule *Rule) {
	defer func() {
		if v := recover(); v != nil {
			panic(fmt.Sprintf("reactor: panic while running %v: %v", rule, v))
		}
	}()
	if r.profiler != nil && r.profiler.IsEnabled() {
		defer r.profiler.Start(rule)()
	}
	rule.run()
}

// setValue publishes a value for an attribute.
//
// An attribute whose stored value is an error is final: later non-error
// values are silently dropped and the first reported error is kept.
// A later value for an attribute holding a non-error value is a
// redefinition, rejected unless a RedefinitionHandler was installed.
func (r *Reactor) setValue(attr Attribute, value any) {
	if old, ok := r.attributes[attr]; ok {
		if _, isErr := old.(*SemanticError); isErr {
			// Keep the first reported error.
			return
		}
		r.redefinitionAttempt(attr, old, value)
		return
	}
	r.put(attr, value)
	if err, isErr := value.(*SemanticError); isErr {
		if err.Cause == nil {
			r.addRootError(err)
		}
		r.propagateError(err, attr)
	} else {
		r.SupplyToDependents(attr, value)
	}
}

func (r *Reactor) put(attr Attribute, value any) {
	if _, ok := r.attributes[attr]; !ok {
		r.order = append(r.order, attr)
	}
	r.attributes[attr] = value
}

func (r *Reactor) redefinitionAttempt(attr Attribute, oldValue, newValue any) {
	if r.onRedefine == nil {
		panic(fmt.Sprintf("reactor: attempting to redefine %v", attr))
	}
	r.onRedefine(r, attr, oldValue, newValue)
}

// Redefine changes the value of an already-defined attribute.  It is a
// privileged extension point meant to be called from a
// RedefinitionHandler; pair it with SupplyToDependents to make
// dependent rules see the new value.
func (r *Reactor) Redefine(attr Attribute, value any) {
	if value == nil {
		panic("reactor: value can't be nil")
	}
	r.put(attr, value)
}

// SupplyToDependents notifies every rule depending on the attribute
// that it has a new value, which may make the rule runnable — or
// runnable again: a rule whose dependencies were already complete is
// re-enqueued.  It is called internally for every fresh value and is a
// privileged extension point for RedefinitionHandler implementations,
// which must call Redefine first.
func (r *Reactor) SupplyToDependents(attr Attribute, value any) {
	var last *Rule
	for _, rule := range r.dependencies[attr] {
		if rule == last {
			// Duplicate placement of the same rule; one supply call
			// fills every matching slot.
			continue
		}
		last = rule
		rule.supply(attr, value)
	}
}

// seedDependents is SupplyToDependents for the seeding phase of Run: a
// rule with no unsatisfied dependencies already fired in an earlier run
// and is left alone, keeping Run idempotent.
func (r *Reactor) seedDependents(attr Attribute, value any) {
	var last *Rule
	for _, rule := range r.dependencies[attr] {
		if rule == last || rule.unsatisfied == 0 {
			continue
		}
		last = rule
		rule.supply(attr, value)
	}
}

func (r *Reactor) addRootError(err *SemanticError) {
	if r.errorSet[err] {
		return
	}
	r.errorSet[err] = true
	r.errors = append(r.errors, err)
}

// reportUnattached records an error that is not the value of any
// attribute: a root error, or a derived error that would otherwise be
// lost.
func (r *Reactor) reportUnattached(err *SemanticError) {
	if err.Cause == nil {
		r.addRootError(err)
		return
	}
	if r.attributelessSet[err] {
		return
	}
	r.attributelessSet[err] = true
	r.attributelessDerived = append(r.attributelessDerived, err)
}

// reportAttached makes err the value of the affected attribute, which
// triggers the usual propagation to dependents.
func (r *Reactor) reportAttached(err *SemanticError, affected Attribute) {
	r.setValue(affected, err)
}

// propagateError taints every export of every rule depending on the
// affected attribute with a derived error, cascading transitively.
// Rules without exports are skipped: the propagated error would have no
// attribute to attach to and the root error remains visible.
func (r *Reactor) propagateError(err *SemanticError, affected Attribute) {
	for _, rule := range r.dependencies[affected] {
		for _, export := range rule.exports {
			r.reportAttached(NewError(
				"missing dependency "+affected.String(), err, nil), export)
		}
	}
}

// handleMissingAttributes inspects rules that never fired.  Rules with
// an error-valued dependency were correctly silenced upstream.  The
// rest indicate a bug in the user's analysis: some dependency was never
// supplied.  A root error is synthesized for every such dependency that
// is absent from the store and cannot still be supplied by another
// untriggered rule; propagation then cascades to all transitive
// dependents.  The queue needs no further processing because error
// propagation makes no rule runnable.
func (r *Reactor) handleMissingAttributes() {
	var untriggered []*Rule
	for _, rule := range r.rules {
		if rule.unsatisfied == 0 {
			continue
		}
		silenced := false
		for _, dep := range rule.dependencies {
			if _, isErr := r.attributes[dep].(*SemanticError); isErr {
				silenced = true
				break
			}
		}
		if !silenced {
			untriggered = append(untriggered, rule)
		}
	}

	untriggeredExports := make(map[Attribute]bool)
	for _, rule := range untriggered {
		for _, export := range rule.exports {
			untriggeredExports[export] = true
		}
	}

	for _, rule := range untriggered {
		for _, dep := range rule.dependencies {
			if _, ok := r.attributes[dep]; ok {
				continue
			}
			if untriggeredExports[dep] {
				continue
			}
			r.setValue(dep, NewError("missing attribute "+dep.String(), nil, dep.Node))
		}
	}
}

// register attaches a rule to the dependency index.  Called by
// RuleBuilder.By.  While the reactor is running, dependencies that
// already have values are supplied immediately, so a lazily registered
// rule can fire within the same run.
func (r *Reactor) register(rule *Rule) {
	r.rules = append(r.rules, rule)

	if len(rule.dependencies) == 0 {
		r.dependencies[noDeps] = append(r.dependencies[noDeps], rule)
		if r.running {
			r.enqueue(rule)
		}
		return
	}

	var supplied map[Attribute]bool
	for _, dep := range rule.dependencies {
		r.dependencies[dep] = append(r.dependencies[dep], rule)
		if !r.running {
			continue
		}
		if supplied == nil {
			supplied = make(map[Attribute]bool)
		}
		if supplied[dep] {
			continue
		}
		supplied[dep] = true
		if value, ok := r.attributes[dep]; ok {
			rule.supply(dep, value)
		}
	}
}

// Get returns the stored value of the attribute, or nil if it has not
// been computed.  The value may be a *SemanticError.
func (r *Reactor) Get(attr Attribute) any {
	return r.attributes[attr]
}

// GetNode returns the stored value of the attribute (node, name).
func (r *Reactor) GetNode(node any, name string) any {
	return r.attributes[Attr(node, name)]
}

// An Entry pairs an attribute with its stored value.
type Entry struct {
	Attr  Attribute
	Value any
}

// GetAll returns every (attribute, value) pair whose attribute names
// the given node, in the order the attributes were first valued.
func (r *Reactor) GetAll(node any) []Entry {
	var entries []Entry
	for _, attr := range r.order {
		if attr.Node == node {
			entries = append(entries, Entry{Attr: attr, Value: r.attributes[attr]})
		}
	}
	return entries
}

// Attributes returns the set of valued attributes in the order they
// were first valued.  The returned slice is a copy.
func (r *Reactor) Attributes() []Attribute {
	return append([]Attribute(nil), r.order...)
}

// Errors returns the root errors encountered while running the
// reactor: errors not caused by another error.  Use AllErrors to also
// get derived errors.  The returned slice is a copy.
func (r *Reactor) Errors() []*SemanticError {
	return append([]*SemanticError(nil), r.errors...)
}

// AllErrors returns every error obtained while running the reactor:
// the root errors, every derived error stored as an attribute value,
// and derived errors that are attached to no attribute.  Root errors
// appear once even when stored under several attributes.
func (r *Reactor) AllErrors() []*SemanticError {
	all := append([]*SemanticError(nil), r.errors...)
	for _, attr := range r.order {
		if err, ok := r.attributes[attr].(*SemanticError); ok && err.Cause != nil {
			all = append(all, err)
		}
	}
	all = append(all, r.attributelessDerived...)
	return all
}

// ReportErrors returns a textual dump of the root errors.  The
// printLocation function renders an error location (typically an AST
// node) for display.
func (r *Reactor) ReportErrors(printLocation func(any) string) string {
	if len(r.errors) == 0 {
		return ""
	}
	var b strings.Builder
	for _, err := range r.errors {
		b.WriteString(err.Description)
		if loc := err.Location(); loc != nil {
			b.WriteString("\nlocation: ")
			b.WriteString(printLocation(loc))
		}
		b.WriteString("\n\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
