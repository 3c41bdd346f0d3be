// Copyright © 2024 The ELPS authors

// Package profiler provides reactor.Profiler implementations that
// annotate tracing systems with a span per rule firing.
package profiler

import (
	"fmt"

	"github.com/luthersystems/reactor"
)

// profiler is a minimal reactor.Profiler
type profiler struct {
	enabled     bool
	skipFilter  SkipFilter
	ruleLabeler RuleLabeler
}

var _ reactor.Profiler = &profiler{}

// A SkipFilter reports whether a rule firing should be left out of the
// trace.
type SkipFilter func(rule *reactor.Rule) bool

// A RuleLabeler produces the span label for a rule firing.  Returning
// the empty string falls back to the default label.
type RuleLabeler func(rule *reactor.Rule) string

type Option func(*profiler)

// WithSkipFilter makes the annotator skip firings matched by fn.
func WithSkipFilter(fn SkipFilter) Option {
	return func(p *profiler) { p.skipFilter = fn }
}

// WithRuleLabeler overrides the span label for rule firings.
func WithRuleLabeler(fn RuleLabeler) Option {
	return func(p *profiler) { p.ruleLabeler = fn }
}

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) Complete() error {
	return nil
}

func (p *profiler) Start(rule *reactor.Rule) func() {
	return func() {}
}

func (p *profiler) skipTrace(rule *reactor.Rule) bool {
	return !p.enabled || p.skipFilter != nil && p.skipFilter(rule)
}

// label returns the span label for a rule firing.  Rules are labeled by
// their first export, the most recognizable name they have.
func (p *profiler) label(rule *reactor.Rule) string {
	if p.ruleLabeler != nil {
		if s := p.ruleLabeler(rule); s != "" {
			return s
		}
	}
	return defaultRuleLabel(rule)
}

func defaultRuleLabel(rule *reactor.Rule) string {
	exports := rule.Exports()
	if len(exports) == 0 {
		return "rule:<no exports>"
	}
	return "rule:" + exports[0].String()
}
