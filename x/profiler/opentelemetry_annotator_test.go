// Copyright © 2024 The ELPS authors

package profiler_test

import (
	"context"
	"testing"

	"github.com/luthersystems/reactor"
	"github.com/luthersystems/reactor/x/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type node struct{ name string }

func (n *node) String() string { return n.name }

// runChain evaluates a three-rule chain with the given profiler.
func runChain(t *testing.T, p reactor.Profiler) {
	t.Helper()
	a, b, c := &node{"a"}, &node{"b"}, &node{"c"}
	r := reactor.New(reactor.WithProfiler(p))
	r.SetNode(a, "t", "int")
	r.Rule(reactor.Attr(b, "t")).UsingNode(a, "t").By(reactor.CopyFirst)
	r.Rule(reactor.Attr(c, "t")).UsingNode(b, "t").By(reactor.CopyFirst)
	r.Rule().By(func(rule *reactor.Rule) {})
	r.Run()
	assert.Empty(t, r.Errors())
}

func TestNewOpenTelemetryAnnotator(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)

	ppa := profiler.NewOpenTelemetryAnnotator(context.Background())
	assert.NoError(t, ppa.Enable())
	runChain(t, ppa)
	assert.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	names := make(map[string]bool)
	for _, span := range spans {
		names[span.Name] = true
	}
	assert.True(t, names["rule:(b :: t)"])
	assert.True(t, names["rule:(c :: t)"])
	assert.True(t, names["rule:<no exports>"])
}

func TestNewOpenTelemetryAnnotatorSkip(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)

	ppa := profiler.NewOpenTelemetryAnnotator(context.Background(),
		profiler.WithSkipFilter(func(rule *reactor.Rule) bool {
			return len(rule.Exports()) == 0
		}))
	assert.NoError(t, ppa.Enable())
	runChain(t, ppa)
	assert.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	assert.Len(t, spans, 2)
}

func TestNewOpenTelemetryAnnotatorLabeler(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)

	ppa := profiler.NewOpenTelemetryAnnotator(context.Background(),
		profiler.WithRuleLabeler(func(rule *reactor.Rule) string {
			if exports := rule.Exports(); len(exports) > 0 {
				return "typing:" + exports[0].Name
			}
			return ""
		}))
	assert.NoError(t, ppa.Enable())
	runChain(t, ppa)
	assert.NoError(t, ppa.Complete())

	names := make(map[string]bool)
	for _, span := range exporter.GetSpans() {
		names[span.Name] = true
	}
	assert.True(t, names["typing:t"])
	assert.True(t, names["rule:<no exports>"])
}

func TestEnableRequiresContext(t *testing.T) {
	ppa := profiler.NewOpenTelemetryAnnotator(nil)
	assert.Error(t, ppa.Enable())
}
