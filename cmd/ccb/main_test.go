package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wudi/ccb/internal/diag"
)

func TestExtOf(t *testing.T) {
	require.Equal(t, ".ccb", extOf("program.ccb"))
	require.Equal(t, ".CCB", extOf("program.CCB"))
	require.Equal(t, "", extOf("noext"))
}

func TestExitCodeFor(t *testing.T) {
	require.Equal(t, 1, exitCodeFor(usageError{"bad args"}))
	require.Equal(t, 65, exitCodeFor(diag.NewCompileError("x")))
	require.Equal(t, 70, exitCodeFor(diag.NewRuntimeError("x")))
	require.Equal(t, 1, exitCodeFor(errors.New("plain")))
}
