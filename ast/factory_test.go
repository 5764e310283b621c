package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

func constOf(tag types.Tag, i int64) *ConstExpr {
	return &ConstExpr{baseExpr: baseExpr{Typ: tag}, Value: types.IntValue(tag, i)}
}

func strConstOf(s string) *ConstExpr {
	return &ConstExpr{baseExpr: baseExpr{Typ: types.String}, Value: types.StringValue(s)}
}

// varOf stands in for a non-constant reference of the given type (a
// declared variable, as opposed to a literal or CONST), to exercise the
// type-resolution path without tripping constant folding.
func varOf(tag types.Tag) *IdExpr {
	return NewIdExpr(1, &symtab.Entry{Name: "v", Class: symtab.ClassVar, Type: tag})
}

func TestMakeBinaryWidensToCommonType(t *testing.T) {
	left := varOf(types.U8)
	right := varOf(types.I16)
	b, err := MakeBinary(1, OpAdd, left, right)
	require.NoError(t, err)
	assert.Equal(t, types.I16, b.ExprType())
	assert.IsType(t, &BinaryExpr{}, b)
}

func TestMakeBinaryRejectsArithmeticOnStrings(t *testing.T) {
	_, err := MakeBinary(1, OpSub, varOf(types.String), varOf(types.String))
	assert.Error(t, err)
}

func TestMakeBinaryAllowsStringConcatOnVariables(t *testing.T) {
	b, err := MakeBinary(1, OpAdd, varOf(types.String), varOf(types.String))
	require.NoError(t, err)
	assert.Equal(t, types.String, b.ExprType())
	assert.IsType(t, &BinaryExpr{}, b)
}

func TestMakeBinaryRejectsMixedStringNumericConcat(t *testing.T) {
	_, err := MakeBinary(1, OpAdd, varOf(types.String), varOf(types.I16))
	assert.Error(t, err)
}

func TestMakeBinaryRejectsMixedStringNumericComparison(t *testing.T) {
	_, err := MakeBinary(1, OpEq, varOf(types.String), varOf(types.I16))
	assert.Error(t, err)
}

func TestMakeBinaryRelationalIsBoolean(t *testing.T) {
	b, err := MakeBinary(1, OpLt, varOf(types.I32), varOf(types.I32))
	require.NoError(t, err)
	assert.Equal(t, types.U8, b.ExprType())
}

func TestMakeBinaryShiftKeepsLeftOperandType(t *testing.T) {
	b, err := MakeBinary(1, OpShl, varOf(types.I32), varOf(types.I8))
	require.NoError(t, err)
	assert.Equal(t, types.I32, b.ExprType())
}

func TestMakeBinaryBitwiseOnFloatForcesI32(t *testing.T) {
	b, err := MakeBinary(1, OpAnd, varOf(types.Float), varOf(types.Float))
	require.NoError(t, err)
	assert.Equal(t, types.I32, b.ExprType())
}

func TestMakeBinaryFoldsIntegerLiterals(t *testing.T) {
	mul, err := MakeBinary(1, OpMul, constOf(types.U8, 2), constOf(types.U8, 3))
	require.NoError(t, err)
	add, err := MakeBinary(1, OpAdd, constOf(types.U8, 1), mul)
	require.NoError(t, err)

	ce, ok := add.(*ConstExpr)
	require.True(t, ok, "expected a folded ConstExpr, got %T", add)
	assert.Equal(t, int64(7), ce.Value.Int)
	assert.Equal(t, types.U8, ce.ExprType())
}

func TestMakeBinaryFoldsRelationalToU8(t *testing.T) {
	lt, err := MakeBinary(1, OpLt, constOf(types.I16, 1), constOf(types.I16, 2))
	require.NoError(t, err)
	ce, ok := lt.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, types.U8, ce.ExprType())
	assert.Equal(t, int64(1), ce.Value.Int)
}

func TestMakeBinaryFoldsStringConcat(t *testing.T) {
	e, err := MakeBinary(1, OpAdd, strConstOf("foo"), strConstOf("bar"))
	require.NoError(t, err)
	ce, ok := e.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, "foobar", ce.Value.Str)
}

func TestMakeBinaryDivByZeroLiteralsFallsBackToRuntimeNode(t *testing.T) {
	e, err := MakeBinary(1, OpDiv, constOf(types.I16, 1), constOf(types.I16, 0))
	require.NoError(t, err)
	assert.IsType(t, &BinaryExpr{}, e)
}

func TestMakeBinaryFoldsThroughDeclaredConst(t *testing.T) {
	constEntry := &symtab.Entry{Name: "pi", Class: symtab.ClassConst, Type: types.I16, DefaultValue: types.IntValue(types.I16, 3)}
	ref := NewIdExpr(1, constEntry)
	e, err := MakeBinary(1, OpAdd, ref, constOf(types.I16, 1))
	require.NoError(t, err)
	ce, ok := e.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, int64(4), ce.Value.Int)
}

func TestMakeUnaryNegWidensUnsignedVariable(t *testing.T) {
	u, err := MakeUnary(1, OpNeg, varOf(types.U16))
	require.NoError(t, err)
	assert.Equal(t, types.I16, u.ExprType())
	assert.IsType(t, &UnaryExpr{}, u)
}

func TestMakeUnaryNegFoldsLiteral(t *testing.T) {
	u, err := MakeUnary(1, OpNeg, constOf(types.U16, 5))
	require.NoError(t, err)
	ce, ok := u.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, int64(-5), ce.Value.Int)
}

func TestMakeUnaryNotYieldsU8(t *testing.T) {
	u, err := MakeUnary(1, OpNot, varOf(types.I16))
	require.NoError(t, err)
	assert.Equal(t, types.U8, u.ExprType())
}

func TestMakeUnaryNotRejectsString(t *testing.T) {
	_, err := MakeUnary(1, OpNot, varOf(types.String))
	assert.Error(t, err)
}

func TestMakeTypecastIdentityReturnsSameNode(t *testing.T) {
	x := varOf(types.I16)
	c, lossy, err := MakeTypecast(1, types.I16, x)
	require.NoError(t, err)
	assert.False(t, lossy)
	assert.Same(t, Expr(x), c)
}

func TestMakeTypecastDetectsLossyConstant(t *testing.T) {
	x := constOf(types.I32, 70000)
	c, lossy, err := MakeTypecast(1, types.I16, x)
	require.NoError(t, err)
	assert.True(t, lossy)
	ce, ok := c.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, int64(70000-65536), ce.Value.Int)
}

func TestMakeTypecastRejectsStringNumericMix(t *testing.T) {
	_, _, err := MakeTypecast(1, types.String, constOf(types.I16, 1))
	assert.Error(t, err)
}

func TestMakeTypecastOfNonConstantFlagsLossyByWidth(t *testing.T) {
	_, lossy, err := MakeTypecast(1, types.I8, varOf(types.I16))
	require.NoError(t, err)
	assert.True(t, lossy)
}

func TestMakeArrayAccessChecksIndexCount(t *testing.T) {
	arr := &symtab.Entry{Name: "a", Type: types.I16, Bounds: []symtab.Bound{{Lower: 0, Upper: 9}}}
	idx := constOf(types.I16, 0)
	_, _, err := MakeArrayAccess(1, arr, []Expr{idx, idx})
	assert.Error(t, err)

	ok, _, err := MakeArrayAccess(1, arr, []Expr{idx})
	require.NoError(t, err)
	assert.Equal(t, types.I16, ok.ExprType())
}

func TestMakeArrayAccessComputesConstantOffset(t *testing.T) {
	arr := &symtab.Entry{Name: "a", Type: types.I8, Bounds: []symtab.Bound{{Lower: 1, Upper: 3}, {Lower: 0, Upper: 1}}}
	e, outOfRange, err := MakeArrayAccess(1, arr, []Expr{constOf(types.I16, 2), constOf(types.I16, 1)})
	require.NoError(t, err)
	assert.False(t, outOfRange)
	require.NotNil(t, e.Offset)
	// i1=2-1=1, i2=1-0=1; linear = 1*2+1 = 3, times element size 1
	assert.Equal(t, 3, *e.Offset)
}

func TestMakeArrayAccessWarnsOutOfRange(t *testing.T) {
	arr := &symtab.Entry{Name: "a", Type: types.I8, Bounds: []symtab.Bound{{Lower: 1, Upper: 3}}}
	_, outOfRange, err := MakeArrayAccess(1, arr, []Expr{constOf(types.I16, 0)})
	require.NoError(t, err)
	assert.True(t, outOfRange)
}

func TestMakeArrayAccessSymbolicIndexLeavesOffsetNil(t *testing.T) {
	arr := &symtab.Entry{Name: "a", Type: types.I8, Bounds: []symtab.Bound{{Lower: 1, Upper: 3}}}
	e, outOfRange, err := MakeArrayAccess(1, arr, []Expr{varOf(types.I16)})
	require.NoError(t, err)
	assert.False(t, outOfRange)
	assert.Nil(t, e.Offset)
}

func TestMakeStrSliceFoldsLiteralSlice(t *testing.T) {
	e, err := MakeStrSlice(1, strConstOf("hello"), constOf(types.I16, 2), constOf(types.I16, 4), 0)
	require.NoError(t, err)
	ce, ok := e.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, "ell", ce.Value.Str)
}

func TestMakeStrSliceEmptyWhenLoAboveHi(t *testing.T) {
	e, err := MakeStrSlice(1, varOf(types.String), constOf(types.I16, 5), constOf(types.I16, 2), 0)
	require.NoError(t, err)
	ce, ok := e.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, "", ce.Value.Str)
}

func TestMakeStrSliceSubtractsStringBase(t *testing.T) {
	e, err := MakeStrSlice(1, strConstOf("hello"), constOf(types.I16, 3), constOf(types.I16, 5), 1)
	require.NoError(t, err)
	ce, ok := e.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, "llo", ce.Value.Str)
}

func TestMakeStrSliceNonConstantStringStaysSymbolic(t *testing.T) {
	e, err := MakeStrSlice(1, varOf(types.String), constOf(types.I16, 2), constOf(types.I16, 4), 0)
	require.NoError(t, err)
	assert.IsType(t, &StrSliceExpr{}, e)
}

func TestMakeStrSliceRejectsNonStringOperand(t *testing.T) {
	_, err := MakeStrSlice(1, varOf(types.I16), constOf(types.I16, 0), nil, 0)
	assert.Error(t, err)
}

func TestMakeUnaryAbsFoldsNegativeLiteral(t *testing.T) {
	u, err := MakeUnary(1, OpAbs, constOf(types.I16, -5))
	require.NoError(t, err)
	ce, ok := u.(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, int64(5), ce.Value.Int)
}

func TestMakeUnaryAbsOnUnsignedReturnsOperandUnchanged(t *testing.T) {
	x := varOf(types.U16)
	u, err := MakeUnary(1, OpAbs, x)
	require.NoError(t, err)
	assert.Same(t, Expr(x), u)
}

func TestMakeArrayAccessRebasesSymbolicIndex(t *testing.T) {
	arr := &symtab.Entry{Name: "a", Type: types.I8, Bounds: []symtab.Bound{{Lower: 5, Upper: 9}}}
	e, _, err := MakeArrayAccess(1, arr, []Expr{varOf(types.I16)})
	require.NoError(t, err)
	require.Len(t, e.Indices, 1)
	assert.Equal(t, types.U16, e.Indices[0].ExprType())
}

func TestMakeCallChecksArity(t *testing.T) {
	fn := &symtab.Entry{
		Name: "f",
		Type: types.I16,
		Params: []symtab.Param{
			{Name: "a", Type: types.I16},
			{Name: "b", Type: types.I16, Default: &types.Value{Tag: types.I16, Int: 0}},
		},
	}
	_, _, err := MakeCall(1, fn, nil)
	assert.Error(t, err)

	_, mismatches, err := MakeCall(1, fn, []Expr{constOf(types.I16, 1)})
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestMakeCallFlagsStringNumericMismatchAsFatal(t *testing.T) {
	fn := &symtab.Entry{
		Name:   "f",
		Type:   types.Unknown,
		Params: []symtab.Param{{Name: "s", Type: types.String}},
	}
	_, mismatches, err := MakeCall(1, fn, []Expr{constOf(types.I16, 1)})
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.True(t, mismatches[0].Fatal)
}

func TestMakeCallSynthesizesTrailingDefaults(t *testing.T) {
	def := types.IntValue(types.I16, 42)
	fn := &symtab.Entry{
		Name: "f",
		Type: types.I16,
		Params: []symtab.Param{
			{Name: "a", Type: types.I16},
			{Name: "b", Type: types.I16, Default: &def},
		},
	}
	call, mismatches, err := MakeCall(1, fn, []Expr{constOf(types.I16, 1)})
	require.NoError(t, err)
	assert.Empty(t, mismatches)
	require.Len(t, call.Args, 2)
	ce, ok := call.Args[1].(*ConstExpr)
	require.True(t, ok)
	assert.Equal(t, int64(42), ce.Value.Int)
}

func TestMakeCallInsertsImplicitCastIntoArgument(t *testing.T) {
	fn := &symtab.Entry{
		Name:   "f",
		Type:   types.Unknown,
		Params: []symtab.Param{{Name: "n", Type: types.I16}},
	}
	call, mismatches, err := MakeCall(1, fn, []Expr{varOf(types.U8)})
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.False(t, mismatches[0].Fatal)
	assert.Equal(t, types.I16, call.Args[0].ExprType())
}

func TestMakeCallByRefRequiresLValue(t *testing.T) {
	fn := &symtab.Entry{
		Name:   "f",
		Type:   types.Unknown,
		Params: []symtab.Param{{Name: "n", Type: types.I16, ByRef: true}},
	}
	_, mismatches, err := MakeCall(1, fn, []Expr{constOf(types.I16, 1)})
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.True(t, mismatches[0].Fatal)
	assert.True(t, mismatches[0].NotLValue)

	call, mismatches, err := MakeCall(1, fn, []Expr{varOf(types.I16)})
	require.NoError(t, err)
	assert.Empty(t, mismatches)
	require.Len(t, call.ByRefArgs, 1)
	assert.True(t, call.ByRefArgs[0])
}

func TestBindDeferredCallResolvesTypeAndCallee(t *testing.T) {
	call := NewDeferredCall(1, []Expr{constOf(types.I16, 7)})
	assert.Equal(t, types.Unknown, call.ExprType())

	fn := &symtab.Entry{
		Name:   "f",
		Type:   types.I32,
		Params: []symtab.Param{{Name: "n", Type: types.I16}},
	}
	mismatches, err := BindDeferredCall(call, fn)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
	assert.Same(t, fn, call.Func)
	assert.Equal(t, types.I32, call.ExprType())
}
