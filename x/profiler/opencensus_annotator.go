// Copyright © 2024 The ELPS authors

package profiler

import (
	"context"
	"errors"

	"github.com/luthersystems/reactor"
	"go.opencensus.io/trace"
)

type ocAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    *trace.Span
}

var _ reactor.Profiler = &ocAnnotator{}

// NewOpenCensusAnnotator returns a profiler that opens an OpenCensus
// span around every rule firing.  Spans nest when a firing triggers
// further reactor activity synchronously.
func NewOpenCensusAnnotator(parentContext context.Context, opts ...Option) *ocAnnotator {
	p := &ocAnnotator{
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *ocAnnotator) Enable() error {
	if p.currentContext == nil {
		return errors.New("we can only append spans to a context that is linked to opencensus")
	}
	return p.profiler.Enable()
}

func (p *ocAnnotator) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
	}
	return nil
}

func (p *ocAnnotator) Start(rule *reactor.Rule) func() {
	if p.skipTrace(rule) {
		return func() {}
	}
	oldContext := p.currentContext
	p.currentContext, p.currentSpan = trace.StartSpan(p.currentContext, p.label(rule))
	span := p.currentSpan
	return func() {
		span.End()
		p.currentContext = oldContext
		p.currentSpan = trace.FromContext(p.currentContext)
	}
}
