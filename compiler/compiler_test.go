package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wudi/ccb/lexer"
	"github.com/wudi/ccb/opcodes"
	"github.com/wudi/ccb/parser"
)

func mustCompile(t *testing.T, src string) *Result {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors)
	result, err := Compile(prog)
	require.NoError(t, err)
	return result
}

func TestCompileConstantFoldingOfLiterals(t *testing.T) {
	result := mustCompile(t, "out 1 + 2;")
	// Folded to a single CONSTANT 3, then OUT, then trailing RETURN.
	require.Equal(t, []byte{
		byte(opcodes.CONSTANT), 0,
		byte(opcodes.OUT),
		byte(opcodes.RETURN),
	}, result.Chunk.Code)
	require.Equal(t, []int{3}, result.Chunk.Constants)
}

func TestCompileConstantFoldingIsNotRecursiveAcrossPrecedence(t *testing.T) {
	// "2 * 3" (a nested literal-literal Infix) folds to a single constant,
	// but the outer "1 + (folded 6)" does not collapse further since its
	// own right operand is no longer an *ast.IntegerLiteral node in the
	// AST handed to foldConstant: folding happens at compileExpr-time per
	// node, not as a separate pre-pass over the whole tree.
	result := mustCompile(t, "out 1 + 2 * 3;")
	require.Equal(t, []byte{
		byte(opcodes.CONSTANT), 0,
		byte(opcodes.CONSTANT), 1,
		byte(opcodes.ADD),
		byte(opcodes.OUT),
		byte(opcodes.RETURN),
	}, result.Chunk.Code)
	require.Equal(t, []int{1, 6}, result.Chunk.Constants)
}

func TestCompileDoesNotFoldDivisionByZero(t *testing.T) {
	result := mustCompile(t, "out 1 / 0;")
	require.Contains(t, result.Chunk.Code, byte(opcodes.DIV))
}

func TestCompileGlobalDefineAndGet(t *testing.T) {
	result := mustCompile(t, "let x = 5; out x;")
	require.Equal(t, []byte{
		byte(opcodes.CONSTANT), 0,
		byte(opcodes.DEFINE_GLOBAL), 0,
		byte(opcodes.GET_GLOBAL), 0,
		byte(opcodes.OUT),
		byte(opcodes.RETURN),
	}, result.Chunk.Code)
	require.Equal(t, 0, result.GlobalNames["x"])
}

func TestCompileAssignmentLeavesValueOnStack(t *testing.T) {
	result := mustCompile(t, "let x = 0; x = 5;")
	// "x = 5;" as an expression statement: compile RHS, SET_GLOBAL (no
	// pop emitted by SET_GLOBAL itself), then the statement-level POP.
	code := result.Chunk.Code
	require.Contains(t, code, byte(opcodes.SET_GLOBAL))
	require.Equal(t, byte(opcodes.POP), code[len(code)-2])
}

func TestCompileWhileLoopStructure(t *testing.T) {
	result := mustCompile(t, "let i = 0; while (i < 3) { i = i + 1; }")
	code := result.Chunk.Code
	require.Contains(t, code, byte(opcodes.JUMP_IF_FALSE))
	require.Contains(t, code, byte(opcodes.LOOP))
}

func TestCompileIfElseNoExtraPop(t *testing.T) {
	result := mustCompile(t, "if (1 == 1) { out 1; } else { out 2; }")
	code := result.Chunk.Code
	// cond "1 == 1" compiles to CONSTANT,idx,CONSTANT,idx,EQUAL (5 bytes);
	// JUMP_IF_FALSE immediately follows, with no POP anywhere for the if
	// itself since it is used in statement position.
	require.Equal(t, byte(opcodes.EQUAL), code[4])
	require.Equal(t, byte(opcodes.JUMP_IF_FALSE), code[5])
}

func TestCompileFunctionDeclAndCall(t *testing.T) {
	result := mustCompile(t, "fn add(a, b) { return a + b; } out add(1, 2);")
	require.Contains(t, result.Functions, "add")
	code := result.Chunk.Code
	require.Contains(t, code, byte(opcodes.CALL))
	require.Contains(t, code, byte(opcodes.GET_LOCAL))
}

func TestCompileLocalsDoNotTouchGlobalTable(t *testing.T) {
	result := mustCompile(t, "fn f(a) { let b = a; return b; }")
	require.Empty(t, result.GlobalNames)
}

func TestCompileUndefinedFunctionCallIsCompileError(t *testing.T) {
	p := parser.New(lexer.New("out missing(1);"))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors)
	_, err := Compile(prog)
	require.Error(t, err)
}

func TestCompileForwardCallResolvesWithinOnePass(t *testing.T) {
	// "main" calls "helper" before helper's declaration appears.
	result := mustCompile(t, "fn main() { return helper(); } fn helper() { return 1; }")
	require.Contains(t, result.Functions, "main")
	require.Contains(t, result.Functions, "helper")
}

func TestCompileTooManyGlobalsErrors(t *testing.T) {
	c := New()
	for i := 0; i < maxGlobals; i++ {
		_, err := c.internGlobal(string(rune('a')) + string(rune(i)))
		require.NoError(t, err)
	}
	_, err := c.internGlobal("overflow")
	require.Error(t, err)
}

func TestPatchJumpRejectsOversizedOffset(t *testing.T) {
	c := New()
	patchPos := c.emitJump(opcodes.JUMP)
	// Simulate an enormous gap by appending maxJumpOffset+1 filler bytes
	// after the placeholder instead of compiling real code.
	c.chunk.Code = append(c.chunk.Code, make([]byte, maxJumpOffset+1)...)
	err := c.patchJump(patchPos)
	require.Error(t, err)
}

func TestCompileIncrementAccumulatesAcrossCalls(t *testing.T) {
	c := New()
	p1 := parser.New(lexer.New("let x = 1;"))
	prog1 := p1.ParseProgram()
	require.Empty(t, p1.Errors)
	_, err := c.CompileIncrement(prog1)
	require.NoError(t, err)

	p2 := parser.New(lexer.New("out x;"))
	prog2 := p2.ParseProgram()
	require.Empty(t, p2.Errors)
	start, err := c.CompileIncrement(prog2)
	require.NoError(t, err)

	snap := c.Snapshot()
	require.Equal(t, 0, snap.GlobalNames["x"])
	require.Less(t, start, len(snap.Chunk.Code))
}
