package sem

import (
	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// MakeId builds an identifier reference in expression position. An
// undeclared name is implicitly declared as a scalar of the default
// type (or the type its deprecated suffix forces), with a warning,
// matching the classic BASIC rule that a bare read brings a variable
// into existence.
func (c *Context) MakeId(line int, name string) (ast.Expr, error) {
	e, ok := c.Table.GetEntry(name, nil)
	if !ok {
		if _, _, suffixed := types.SuffixTag(name); !suffixed {
			c.warnf(line, "'%s' declared with implicit default type %s", name, types.Float)
		}
		var err error
		e, err = c.DeclareVariable(name, line, types.Float, false, nil)
		if err != nil {
			return nil, err
		}
	}
	e.Accessed = true
	return ast.NewIdExpr(line, e), nil
}

// MakeCallExpr implements the call-syntax dispatch: name(args) is an
// array load, a string subscript, or a function/sub call, depending on
// what name is declared as. A call to a name with no declaration yet is
// recorded on the pending list and re-checked by the finish pass once
// the whole file has been read.
func (c *Context) MakeCallExpr(line int, name string, args []ast.Expr) (ast.Expr, error) {
	e, ok := c.Table.GetEntry(name, nil)
	if !ok {
		call := ast.NewDeferredCall(line, args)
		c.Program.PendingCalls = append(c.Program.PendingCalls, ast.PendingCall{Name: name, Line: line, Call: call})
		return call, nil
	}
	e.Accessed = true

	switch e.Class {
	case symtab.ClassArray:
		return c.MakeArrayAccess(line, e, args)

	case symtab.ClassVar:
		if types.IsString(e.Type) {
			switch len(args) {
			case 0:
				return ast.NewIdExpr(line, e), nil
			case 1:
				return c.MakeStrSlice(line, ast.NewIdExpr(line, e), args[0], nil)
			default:
				return nil, c.errorf(line, "string '%s' takes a single subscript", e.Name)
			}
		}
		if len(args) == 0 {
			return ast.NewIdExpr(line, e), nil
		}
		return nil, c.errorf(line, "'%s' is not callable", e.Name)

	case symtab.ClassFunction, symtab.ClassSub:
		return c.makeCheckedCall(line, e, args)

	default:
		return nil, c.errorf(line, "'%s' cannot be used as a call target", e.Name)
	}
}

// makeCheckedCall runs the call-site check against a declared callee and
// renders every mismatch it surfaces.
func (c *Context) makeCheckedCall(line int, fn *symtab.Entry, args []ast.Expr) (*ast.CallExpr, error) {
	call, mismatches, err := ast.MakeCall(line, fn, args)
	if err != nil {
		return nil, c.errorf(line, "%s", err.Error())
	}
	if err := c.reportMismatches(line, fn.Name, mismatches); err != nil {
		return nil, err
	}
	fn.Accessed = true
	return call, nil
}

// reportMismatches turns the call check's findings into diagnostics:
// a byref argument without an address and a string/numeric kind clash
// are errors, an implicit numeric conversion only warns.
func (c *Context) reportMismatches(line int, name string, mismatches []ast.ArgumentMismatch) error {
	var firstErr error
	for _, m := range mismatches {
		switch {
		case m.NotLValue:
			if err := c.errorf(line, "byref argument %d to '%s' must be a variable or array", m.Index+1, name); firstErr == nil {
				firstErr = err
			}
		case m.Fatal:
			if err := c.errorf(line, "argument %d to '%s' has incompatible type %s, expected %s", m.Index+1, name, m.ArgType, m.ParamType); firstErr == nil {
				firstErr = err
			}
		default:
			c.warnf(line, "argument %d to '%s' converts from %s to %s", m.Index+1, name, m.ArgType, m.ParamType)
		}
	}
	return firstErr
}

// CheckPendingCalls re-runs the call-site check for every call whose
// callee had not been declared when the call was parsed. Run by Finish
// once the function table is complete.
func (c *Context) CheckPendingCalls() error {
	var firstErr error
	for _, p := range c.Program.PendingCalls {
		e, ok := c.Table.GetEntry(p.Name, nil)
		if !ok {
			if err := c.errorf(p.Line, "undeclared function '%s'", p.Name); firstErr == nil {
				firstErr = err
			}
			continue
		}
		if e.Class != symtab.ClassFunction && e.Class != symtab.ClassSub {
			if err := c.errorf(p.Line, "'%s' is not a FUNCTION or SUB", p.Name); firstErr == nil {
				firstErr = err
			}
			continue
		}
		mismatches, err := ast.BindDeferredCall(p.Call, e)
		if err != nil {
			if err := c.errorf(p.Line, "%s", err.Error()); firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := c.reportMismatches(p.Line, p.Name, mismatches); firstErr == nil {
			firstErr = err
		}
		e.Accessed = true
	}
	c.Program.PendingCalls = nil
	return firstErr
}
