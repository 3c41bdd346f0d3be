// Copyright © 2024 The ELPS authors

package profiler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/luthersystems/reactor/x/profiler"
	"github.com/stretchr/testify/assert"
	"go.opencensus.io/trace"
)

// collectExporter retains exported span data for assertions.
type collectExporter struct {
	mu    sync.Mutex
	spans []*trace.SpanData
}

func (e *collectExporter) ExportSpan(sd *trace.SpanData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, sd)
}

func (e *collectExporter) names() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make(map[string]bool)
	for _, sd := range e.spans {
		names[sd.Name] = true
	}
	return names
}

func TestNewOpenCensusAnnotator(t *testing.T) {
	exporter := new(collectExporter)
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	trace.RegisterExporter(exporter)
	defer trace.UnregisterExporter(exporter)

	ppa := profiler.NewOpenCensusAnnotator(context.Background())
	assert.NoError(t, ppa.Enable())
	runChain(t, ppa)
	assert.NoError(t, ppa.Complete())

	names := exporter.names()
	assert.True(t, names["rule:(b :: t)"])
	assert.True(t, names["rule:(c :: t)"])
}

func TestOpenCensusEnableRequiresContext(t *testing.T) {
	ppa := profiler.NewOpenCensusAnnotator(nil)
	assert.Error(t, ppa.Enable())
}
