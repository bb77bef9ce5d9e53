package diag

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkCollectsAllBeforeFlush(t *testing.T) {
	s := NewSink()
	pos := token.Position{Filename: "a.go", Line: 3, Column: 2}

	s.Warnf(pos, "first")
	s.Errorf(pos, "second")
	s.ErrorWithHelp(pos, "try x instead", "third")

	assert.True(t, s.HasErrors())
	assert.Equal(t, 3, s.Len())

	diags := s.Flush()
	require.Len(t, diags, 3)
	assert.Equal(t, Warning, diags[0].Severity)
	assert.Equal(t, Error, diags[1].Severity)
	assert.Equal(t, "try x instead", diags[2].Help)

	// Flushed atomically: the sink is empty and reusable afterwards.
	assert.False(t, s.HasErrors())
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Flush())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Severity: Error,
		Pos:      token.Position{Filename: "b.go", Line: 7, Column: 1},
		Message:  "duplicate forward annotation",
		Help:     "remove one of them",
	}
	assert.Contains(t, d.String(), "b.go:7:1")
	assert.Contains(t, d.String(), "error: duplicate forward annotation")
	assert.Contains(t, d.String(), "help: remove one of them")
}
