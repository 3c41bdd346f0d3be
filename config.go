// Copyright © 2024 The ELPS authors

package reactor

// An Option configures a Reactor at construction.
type Option func(*Reactor)

// A RedefinitionHandler decides what happens when a value is published
// for an attribute that already holds a non-error value, which happens
// when several rules compete to provide the same attribute.  Without a
// handler the reactor treats redefinition as a fatal contract
// violation.
//
// At the time the handler runs the original value is still stored and
// dependent rules have not seen newValue.  A handler may keep the old
// value (do nothing), store the new one with Reactor.Redefine, and/or
// re-notify dependent rules with Reactor.SupplyToDependents — the
// combination of the latter two enables incremental attribute
// computation where rules re-fire as their inputs change.  Handlers
// must expect recursive setValue activity when re-fired rules publish
// their exports.
//
// Attributes whose stored value is a semantic error are final and never
// reach the handler.
type RedefinitionHandler func(r *Reactor, attr Attribute, oldValue, newValue any)

// WithRedefinitionHandler installs fn as the reactor's redefinition
// policy in place of the default fail-fast behaviour.
func WithRedefinitionHandler(fn RedefinitionHandler) Option {
	return func(r *Reactor) { r.onRedefine = fn }
}

// WithProfiler attaches a profiler whose Start hook wraps every rule
// firing.  See the reactor/x/profiler package for implementations.
func WithProfiler(p Profiler) Option {
	return func(r *Reactor) { r.profiler = p }
}
