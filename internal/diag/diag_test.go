package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := NewParseError(Position{Line: 2, Col: 5}, "unexpected token %s", "+")
	require.Equal(t, "PARSE ERROR at 2:5: unexpected token +", err.Error())
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 65, ExitCode(NewLexError(Position{}, "x")))
	require.Equal(t, 65, ExitCode(NewParseError(Position{}, "x")))
	require.Equal(t, 65, ExitCode(NewCompileError("x")))
	require.Equal(t, 70, ExitCode(NewRuntimeError("x")))
	require.Equal(t, 1, ExitCode(errors.New("plain")))
}

func TestCategoryString(t *testing.T) {
	require.Equal(t, "LEXER ERROR", Lex.String())
	require.Equal(t, "PARSE ERROR", Parse.String())
	require.Equal(t, "COMPILE ERROR", Compile.String())
	require.Equal(t, "RUNTIME ERROR", Runtime.String())
	require.Equal(t, "ERROR", Category(99).String())
}
