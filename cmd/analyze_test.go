// Copyright © 2024 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luthersystems/reactor/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o600))
	return path
}

func TestAnalyzeFileSuccess(t *testing.T) {
	path := writeSource(t, "good.rx", "let x = 1\nlet y = x + 2\ny\n")
	assert.True(t, analyzeFile(path))
}

func TestAnalyzeFileSemanticError(t *testing.T) {
	path := writeSource(t, "bad.rx", "boom + 1\n")
	assert.False(t, analyzeFile(path))
}

func TestAnalyzeFileParseError(t *testing.T) {
	path := writeSource(t, "junk.rx", "let = =\n")
	assert.False(t, analyzeFile(path))
}

func TestAnalyzeFileMissing(t *testing.T) {
	assert.False(t, analyzeFile(filepath.Join(t.TempDir(), "nope.rx")))
}

func TestSpanLocator(t *testing.T) {
	ref := &lang.Ref{Name: "x", Pos: lang.Loc{File: "f.rx", Line: 2, Col: 5}}
	span := spanLocator(ref)
	require.NotNil(t, span)
	assert.Equal(t, "f.rx", span.File)
	assert.Equal(t, 2, span.Line)
	assert.Equal(t, 5, span.Col)

	assert.Nil(t, spanLocator("not a node"))
	assert.Nil(t, spanLocator(nil))
}

func TestPrintLocation(t *testing.T) {
	ref := &lang.Ref{Name: "x", Pos: lang.Loc{File: "f.rx", Line: 2, Col: 5}}
	assert.Equal(t, "x (f.rx:2:5)", printLocation(ref))
	assert.Equal(t, "plain", printLocation("plain"))
}
