package ccblog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledLoggerIsNoop(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	require.False(t, l.Enabled())
	require.Empty(t, l.RunID())
	l.Trace(0, "CONSTANT", 1)
	require.Empty(t, buf.String())
}

func TestEnabledLoggerWritesOneLinePerTrace(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)
	require.True(t, l.Enabled())
	require.NotEmpty(t, l.RunID())

	l.Trace(4, "ADD", 2)
	out := buf.String()
	require.Contains(t, out, l.RunID())
	require.Contains(t, out, "ip=0004")
	require.Contains(t, out, "op=ADD")
	require.Contains(t, out, "stack=2")
}

func TestNilLoggerEnabledIsFalse(t *testing.T) {
	var l *Logger
	require.False(t, l.Enabled())
}
