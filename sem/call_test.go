package sem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

func TestMakeIdReturnsDeclaredEntry(t *testing.T) {
	c, _ := newTestContext(t)
	e, err := c.DeclareVariable("x", 1, types.I16, true, nil)
	require.NoError(t, err)

	id, err := c.MakeId(2, "x")
	require.NoError(t, err)
	ie, ok := id.(*ast.IdExpr)
	require.True(t, ok)
	assert.Same(t, e, ie.Entry)
	assert.True(t, e.Accessed)
}

func TestMakeIdImplicitlyDeclaresWithWarning(t *testing.T) {
	c, buf := newTestContext(t)
	id, err := c.MakeId(1, "ghost")
	require.NoError(t, err)
	assert.Equal(t, types.Float, id.ExprType())
	assert.Contains(t, buf.String(), "implicit default type")

	e, ok := c.Table.GetEntry("ghost", nil)
	require.True(t, ok)
	assert.True(t, e.Declared)
}

func TestMakeIdSuffixForcesTypeWithoutWarning(t *testing.T) {
	c, buf := newTestContext(t)
	id, err := c.MakeId(1, "name$")
	require.NoError(t, err)
	assert.Equal(t, types.String, id.ExprType())
	assert.NotContains(t, buf.String(), "implicit default type")
}

func TestMakeCallExprDispatchesToArrayAccess(t *testing.T) {
	c, _ := newTestContext(t)
	_, err := c.DeclareArray("a", 1, types.I8, []symtab.Bound{{Lower: 0, Upper: 9}})
	require.NoError(t, err)

	e, err := c.MakeCallExpr(2, "a", []ast.Expr{ast.NewConstExpr(2, types.IntValue(types.U8, 3))})
	require.NoError(t, err)
	assert.IsType(t, &ast.ArrayAccessExpr{}, e)
	assert.Equal(t, types.I8, e.ExprType())
}

func TestMakeCallExprDispatchesToStringSubscript(t *testing.T) {
	c, _ := newTestContext(t)
	_, err := c.DeclareVariable("s", 1, types.String, true, nil)
	require.NoError(t, err)

	e, err := c.MakeCallExpr(2, "s", []ast.Expr{ast.NewConstExpr(2, types.IntValue(types.U8, 0))})
	require.NoError(t, err)
	assert.Equal(t, types.String, e.ExprType())

	_, err = c.MakeCallExpr(3, "s", []ast.Expr{
		ast.NewConstExpr(3, types.IntValue(types.U8, 0)),
		ast.NewConstExpr(3, types.IntValue(types.U8, 1)),
	})
	assert.Error(t, err)
}

func TestMakeCallExprRejectsScalarWithArguments(t *testing.T) {
	c, _ := newTestContext(t)
	_, err := c.DeclareVariable("n", 1, types.I16, true, nil)
	require.NoError(t, err)

	_, err = c.MakeCallExpr(2, "n", []ast.Expr{ast.NewConstExpr(2, types.IntValue(types.U8, 1))})
	assert.Error(t, err)
}

func TestMakeCallExprCallsDeclaredFunction(t *testing.T) {
	c, _ := newTestContext(t)
	fn, err := c.BeginFunc("twice", 1, symtab.FuncKindFunction, types.I16,
		[]symtab.Param{{Name: "n", Type: types.I16}}, false)
	require.NoError(t, err)
	c.EndFunc(nil)

	e, err := c.MakeCallExpr(5, "twice", []ast.Expr{ast.NewConstExpr(5, types.IntValue(types.I16, 3))})
	require.NoError(t, err)
	call, ok := e.(*ast.CallExpr)
	require.True(t, ok)
	assert.Same(t, fn, call.Func)
	assert.Equal(t, types.I16, call.ExprType())
}

func TestMakeCallExprDefersUndeclaredCallee(t *testing.T) {
	c, _ := newTestContext(t)
	e, err := c.MakeCallExpr(1, "later", []ast.Expr{ast.NewConstExpr(1, types.IntValue(types.I16, 3))})
	require.NoError(t, err)
	assert.Equal(t, types.Unknown, e.ExprType())
	require.Len(t, c.Program.PendingCalls, 1)

	fn, err := c.BeginFunc("later", 5, symtab.FuncKindFunction, types.I16,
		[]symtab.Param{{Name: "n", Type: types.I16}}, false)
	require.NoError(t, err)
	c.EndFunc(nil)

	require.NoError(t, c.CheckPendingCalls())
	call := e.(*ast.CallExpr)
	assert.Same(t, fn, call.Func)
	assert.Equal(t, types.I16, call.ExprType())
	assert.Empty(t, c.Program.PendingCalls)
}

func TestCheckPendingCallsErrorsOnNeverDeclaredCallee(t *testing.T) {
	c, _ := newTestContext(t)
	_, err := c.MakeCallExpr(1, "nope", nil)
	require.NoError(t, err)

	err = c.CheckPendingCalls()
	assert.Error(t, err)
	assert.True(t, c.Diag.HasErrors())
}

func TestMakeCallStmtRejectsByRefLiteral(t *testing.T) {
	c, _ := newTestContext(t)
	fn := &symtab.Entry{Name: "swapish", Type: types.Unknown, Kind: symtab.FuncKindSub,
		Params: []symtab.Param{{Name: "n", Type: types.I16, ByRef: true}}}

	_, err := c.MakeCallStmt(1, fn, []ast.Expr{ast.NewConstExpr(1, types.IntValue(types.I16, 5))})
	assert.Error(t, err)
	assert.True(t, c.Diag.HasErrors())
}
