package sem

import (
	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// DeclareVariable declares a global or local scalar, reporting a fatal
// diagnostic (and returning it) on redeclaration, and appends the new
// ast.VarDecl to the right list for the current scope.
func (c *Context) DeclareVariable(name string, line int, t types.Tag, hasExplicitType bool, init ast.Expr) (*symtab.Entry, error) {
	var initVal *types.Value
	if ce, ok := init.(*ast.ConstExpr); ok {
		initVal = &ce.Value
	}
	e, err := c.Table.DeclareVariable(name, line, t, hasExplicitType, initVal)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	decl := &ast.VarDecl{Entry: e, Init: init}
	if c.Table.InFunction() {
		c.currentFunc.Locals = append(c.currentFunc.Locals, decl)
	} else {
		c.Program.Globals = append(c.Program.Globals, decl)
	}
	return e, nil
}

// DeclareConst declares a CONST and records it on the program.
func (c *Context) DeclareConst(name string, line int, value types.Value) (*symtab.Entry, error) {
	e, err := c.Table.DeclareConst(name, line, value)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	c.Program.Consts = append(c.Program.Consts, &ast.ConstDecl{Entry: e})
	return e, nil
}

// DeclareVariableAt declares a scalar pinned at an absolute address (the
// AT clause); a pinned variable never takes a stack-frame slot.
func (c *Context) DeclareVariableAt(name string, line int, t types.Tag, addr int) (*symtab.Entry, error) {
	e, err := c.DeclareVariable(name, line, t, true, nil)
	if err != nil {
		return nil, err
	}
	if err := c.Table.PinAt(e.Name, addr); err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	return e, nil
}

// MakeBound folds one array dimension's bound expressions into an
// inclusive range. A nil lower bound takes the configured default array
// base. A bound that does not fold to an integer constant is an error.
func (c *Context) MakeBound(line int, lower, upper ast.Expr) (symtab.Bound, error) {
	lo := int64(c.Options.Current().ArrayBase)
	if lower != nil {
		v, ok := ast.FoldedValue(lower)
		if !ok || !types.IsInteger(v.Tag) {
			return symtab.Bound{}, c.errorf(line, "array bound must be a constant integer expression")
		}
		lo = v.Int
	}
	v, ok := ast.FoldedValue(upper)
	if !ok || !types.IsInteger(v.Tag) {
		return symtab.Bound{}, c.errorf(line, "array bound must be a constant integer expression")
	}
	if v.Int < lo {
		return symtab.Bound{}, c.errorf(line, "array upper bound %d is below lower bound %d", v.Int, lo)
	}
	return symtab.Bound{Lower: lo, Upper: v.Int}, nil
}

// DeclareArray declares a DIM'd array and records it on the program.
func (c *Context) DeclareArray(name string, line int, elemType types.Tag, bounds []symtab.Bound) (*symtab.Entry, error) {
	e, err := c.Table.DeclareArray(name, line, elemType, bounds)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	c.Program.Arrays = append(c.Program.Arrays, &ast.ArrayDecl{Entry: e})
	return e, nil
}

// DeclareConstArray declares a read-only array whose every element is a
// compile-time constant, folded to the element type at declaration. The
// element count must fill the declared bounds exactly.
func (c *Context) DeclareConstArray(name string, line int, elemType types.Tag, bounds []symtab.Bound, values []ast.Expr) (*symtab.Entry, error) {
	want := int64(1)
	for _, b := range bounds {
		want *= b.Count()
	}
	if int64(len(values)) != want {
		return nil, c.errorf(line, "CONST array '%s' declares %d element(s) but initializes %d", name, want, len(values))
	}

	folded := make([]types.Value, 0, len(values))
	for _, val := range values {
		cast, err := c.MakeTypecast(line, elemType, val)
		if err != nil {
			return nil, err
		}
		v, ok := ast.FoldedValue(cast)
		if !ok {
			return nil, c.errorf(line, "CONST array element must be a constant expression")
		}
		folded = append(folded, v)
	}

	e, err := c.Table.DeclareArray(name, line, elemType, bounds)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	e.ReadOnly = true
	c.Program.Arrays = append(c.Program.Arrays, &ast.ArrayDecl{Entry: e, Init: folded})
	return e, nil
}

// MakeStatic rewrites a local variable as STATIC storage: the entry
// stays visible under its local name but shares a single global slot
// across calls of the enclosing function.
func (c *Context) MakeStatic(line int, name string) (*symtab.Entry, error) {
	if !c.Table.InFunction() {
		return nil, c.errorf(line, "STATIC outside of a FUNCTION or SUB")
	}
	e, err := c.Table.MakeStatic(name)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	return e, nil
}

// DeclareLabel declares a label for GOTO/GOSUB targeting.
func (c *Context) DeclareLabel(name string, line int) (*symtab.Entry, error) {
	e, err := c.Table.DeclareLabel(name, line)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	return e, nil
}

// BeginFunc opens a FUNCTION/SUB: declares its signature, enters its
// scope, and declares each parameter.
func (c *Context) BeginFunc(name string, line int, kind symtab.FuncKind, retType types.Tag, params []symtab.Param, isForwardDecl bool) (*symtab.Entry, error) {
	res, err := c.Table.DeclareFunc(name, line, kind, retType, params, isForwardDecl)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	if res.Warning != "" {
		c.warnf(line, "%s", res.Warning)
	}
	if isForwardDecl {
		return res.Entry, nil
	}

	c.Table.EnterScope(name)
	for _, p := range params {
		if _, err := c.Table.DeclareParam(p.Name, line, p.Type, p.ByRef); err != nil {
			return nil, c.errorf(line, "%s", err.Error())
		}
	}

	c.currentFunc = &ast.FuncDecl{Entry: res.Entry}
	return res.Entry, nil
}

// EndFunc closes the current FUNCTION/SUB, laying out its stack frame
// and attaching the closed scope to the entry for the code generator.
func (c *Context) EndFunc(body []ast.Stmt) *ast.FuncDecl {
	size, scope := c.Table.LeaveScope()
	c.currentFunc.Entry.LocalsSize = size
	c.currentFunc.Entry.LocalSymbolTable = scope
	c.currentFunc.Body = body
	decl := c.currentFunc
	c.Program.Functions = append(c.Program.Functions, decl)
	c.currentFunc = nil
	return decl
}
