package sem

import (
	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// MakeBinary wraps ast.MakeBinary, turning a rejected operand combination
// into a diagnostic.
func (c *Context) MakeBinary(line int, op ast.BinaryOp, left, right ast.Expr) (ast.Expr, error) {
	e, err := ast.MakeBinary(line, op, left, right)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	return e, nil
}

// MakeUnary wraps ast.MakeUnary, warning when ABS is applied to a value
// that cannot be negative to begin with.
func (c *Context) MakeUnary(line int, op ast.UnaryOp, x ast.Expr) (ast.Expr, error) {
	if op == ast.OpAbs && types.IsUnsigned(x.ExprType()) {
		c.warnf(line, "redundant ABS on an unsigned value")
	}
	e, err := ast.MakeUnary(line, op, x)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	return e, nil
}

// MakeTypecast wraps ast.MakeTypecast, warning when the cast narrows.
func (c *Context) MakeTypecast(line int, target types.Tag, x ast.Expr) (ast.Expr, error) {
	e, lossy, err := ast.MakeTypecast(line, target, x)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	if lossy {
		c.warnf(line, "conversion may lose significant digits")
	}
	return e, nil
}

// MakeArrayAccess wraps ast.MakeArrayAccess, warning on a constant
// subscript that falls outside the array's declared bound.
func (c *Context) MakeArrayAccess(line int, array *symtab.Entry, indices []ast.Expr) (*ast.ArrayAccessExpr, error) {
	e, outOfRange, err := ast.MakeArrayAccess(line, array, indices)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	if outOfRange {
		c.warnf(line, "array subscript out of range")
	}
	return e, nil
}

// MakeStrSlice wraps ast.MakeStrSlice, supplying the configured string
// index origin.
func (c *Context) MakeStrSlice(line int, str, lower, upper ast.Expr) (ast.Expr, error) {
	e, err := ast.MakeStrSlice(line, str, lower, upper, int64(c.Options.Current().StringBase))
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	return e, nil
}
