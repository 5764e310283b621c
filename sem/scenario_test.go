package sem

// End-to-end checks driving the analyzer the way a parser's grammar
// actions would, one scenario per classic source fragment.

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// DIM a AS byte = 300: the initializer is cast to i8, the truncation
// warns, and the stored default is 300 - 256 = 44.
func TestScenarioDimByteWithOverflowingInitializer(t *testing.T) {
	c, buf := newTestContext(t)
	init, err := c.MakeTypecast(1, types.I8, ast.NewConstExpr(1, types.IntValue(types.U16, 300)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "lose significant digits")

	e, err := c.DeclareVariable("a", 1, types.I8, true, init)
	require.NoError(t, err)
	assert.Equal(t, types.I8, e.Type)
	assert.Equal(t, int64(44), e.DefaultValue.Int)
}

// LET b = 1 + 2 * 3: the rhs folds to a single constant, retyped to the
// destination's integer type by the assignment's implicit cast.
func TestScenarioLetFoldsArithmeticToDestinationType(t *testing.T) {
	c, _ := newTestContext(t)
	b, err := c.DeclareVariable("b", 1, types.I16, true, nil)
	require.NoError(t, err)

	mul, err := c.MakeBinary(2, ast.OpMul,
		ast.NewConstExpr(2, types.IntValue(types.U8, 2)),
		ast.NewConstExpr(2, types.IntValue(types.U8, 3)))
	require.NoError(t, err)
	sum, err := c.MakeBinary(2, ast.OpAdd, ast.NewConstExpr(2, types.IntValue(types.U8, 1)), mul)
	require.NoError(t, err)

	stmt, err := c.MakeAssign(2, ast.NewIdExpr(2, b), sum)
	require.NoError(t, err)
	ce, ok := stmt.RHS.(*ast.ConstExpr)
	require.True(t, ok)
	assert.Equal(t, int64(7), ce.Value.Int)
	assert.Equal(t, types.I16, ce.ExprType())
	assert.False(t, c.Diag.HasErrors())
}

// DECLARE FUNCTION f(x AS byte) followed by FUNCTION f(y AS integer):
// the parameter type mismatch is an error, and it fires before any
// rename warning could.
func TestScenarioForwardDeclarationParameterMismatch(t *testing.T) {
	c, buf := newTestContext(t)
	_, err := c.BeginFunc("f", 1, symtab.FuncKindFunction, types.I16,
		[]symtab.Param{{Name: "x", Type: types.I8}}, true)
	require.NoError(t, err)

	_, err = c.BeginFunc("f", 5, symtab.FuncKindFunction, types.I16,
		[]symtab.Param{{Name: "y", Type: types.I16}}, false)
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "parameter")
	assert.NotContains(t, buf.String(), "renamed")
}

// PRINT s(2 TO 4) on a literal string folds the slice at compile time.
func TestScenarioStringSliceFoldsAtCompileTime(t *testing.T) {
	c, _ := newTestContext(t)
	e, err := c.MakeStrSlice(1, ast.NewConstExpr(1, types.StringValue("hello")),
		ast.NewConstExpr(1, types.IntValue(types.U8, 2)),
		ast.NewConstExpr(1, types.IntValue(types.U8, 4)))
	require.NoError(t, err)
	ce, ok := e.(*ast.ConstExpr)
	require.True(t, ok)
	assert.Equal(t, "ell", ce.Value.Str)
}

// EXIT WHILE inside a FOR is an error: the enclosing loop kinds must
// match.
func TestScenarioExitWhileInsideForIsError(t *testing.T) {
	c, _ := newTestContext(t)
	entry, from, to, step, err := c.BeginFor(1, "i",
		ast.NewConstExpr(1, types.IntValue(types.U8, 1)),
		ast.NewConstExpr(1, types.IntValue(types.U8, 10)), nil)
	require.NoError(t, err)

	_, err = c.MakeExit(2, symtab.LoopWhile)
	assert.Error(t, err)
	c.EndFor(3, entry, from, to, step, nil)
}

// LET a(0) = 1 on DIM a(1 TO 3) warns about the constant subscript.
func TestScenarioConstantSubscriptOutOfRangeWarns(t *testing.T) {
	c, buf := newTestContext(t)
	arr, err := c.DeclareArray("a", 1, types.I8, []symtab.Bound{{Lower: 1, Upper: 3}})
	require.NoError(t, err)

	access, err := c.MakeArrayAccess(2, arr, []ast.Expr{ast.NewConstExpr(2, types.IntValue(types.U8, 0))})
	require.NoError(t, err)
	_, err = c.MakeAssign(2, access, ast.NewConstExpr(2, types.IntValue(types.U8, 1)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "out of range")
	assert.False(t, c.Diag.HasErrors())
}
