package sem

import (
	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// MakeAssign builds an AssignStmt, checking that lhs is an assignable
// expression kind and inserting the implicit cast that brings rhs to
// the destination's type.
func (c *Context) MakeAssign(line int, lhs, rhs ast.Expr) (*ast.AssignStmt, error) {
	switch l := lhs.(type) {
	case *ast.IdExpr:
		if l.Entry.Class != symtab.ClassVar {
			return nil, c.errorf(line, "cannot assign to %s '%s'", l.Entry.Class, l.Entry.Name)
		}
	case *ast.ArrayAccessExpr:
		if l.Array.ReadOnly {
			return nil, c.errorf(line, "cannot assign to CONST array '%s'", l.Array.Name)
		}
	case *ast.StrSliceExpr:
	default:
		return nil, c.errorf(line, "left-hand side of assignment is not assignable")
	}
	cast, err := c.MakeTypecast(line, lhs.ExprType(), rhs)
	if err != nil {
		return nil, err
	}
	return ast.NewAssignStmt(line, lhs, cast), nil
}

// truthy is the compile-time reading of a folded condition value.
func truthy(v types.Value) bool {
	if types.IsString(v.Tag) {
		return v.Str != ""
	}
	return v.AsFloat() != 0
}

// MakeIf builds an IfStmt, warning when the condition folds to a
// compile-time constant since one branch is then provably dead. With
// optimization enabled the dead branch is dropped entirely: the result
// is the live branch alone (nil when the live branch is empty).
func (c *Context) MakeIf(line int, cond ast.Expr, then, els []ast.Stmt) ast.Stmt {
	v, folded := ast.FoldedValue(cond)
	if folded {
		if truthy(v) {
			if len(els) > 0 {
				c.warnf(line, "condition is always true; ELSE branch is unreachable")
			}
		} else if len(then) > 0 {
			c.warnf(line, "condition is always false; THEN branch is unreachable")
		}
		if c.Options.Current().Optimization > 0 {
			live := then
			if !truthy(v) {
				live = els
			}
			if len(live) == 0 {
				return nil
			}
			return ast.NewBlockStmt(line, live)
		}
	}
	return ast.NewIfStmt(line, cond, then, els)
}

// MakeWhile builds a WHILE...WEND loop, warning on a constant
// condition; an always-false loop is dropped entirely when optimization
// is enabled, since its body can never run.
func (c *Context) MakeWhile(line int, cond ast.Expr, body []ast.Stmt) ast.Stmt {
	if v, ok := ast.FoldedValue(cond); ok {
		if truthy(v) {
			c.warnf(line, "condition is always true; loop never ends")
		} else {
			c.warnf(line, "condition is always false; loop body never executes")
			if c.Options.Current().Optimization > 0 {
				return nil
			}
		}
	}
	return ast.NewWhileStmt(line, cond, body)
}

// MakeDoLoop builds one of the DO...LOOP spellings. The pre-tested
// forms get the same constant-condition treatment as WHILE; a
// post-tested body always runs at least once, so only the
// never-terminates case is worth a warning there.
func (c *Context) MakeDoLoop(line int, kind ast.DoLoopKind, cond ast.Expr, body []ast.Stmt) ast.Stmt {
	if cond != nil {
		if v, ok := ast.FoldedValue(cond); ok {
			t := truthy(v)
			switch kind {
			case ast.DoWhilePre:
				if t {
					c.warnf(line, "condition is always true; loop never ends")
				} else {
					c.warnf(line, "condition is always false; loop body never executes")
					if c.Options.Current().Optimization > 0 {
						return nil
					}
				}
			case ast.DoUntilPre:
				if t {
					c.warnf(line, "condition is always true; loop body never executes")
					if c.Options.Current().Optimization > 0 {
						return nil
					}
				} else {
					c.warnf(line, "condition is always false; loop never ends")
				}
			case ast.DoWhilePost:
				if t {
					c.warnf(line, "condition is always true; loop never ends")
				}
			case ast.DoUntilPost:
				if !t {
					c.warnf(line, "condition is always false; loop never ends")
				}
			}
		}
	}
	return ast.NewDoLoopStmt(line, kind, cond, body)
}

// CheckNext verifies that a NEXT closes the innermost FOR, and that its
// variable, when spelled out, is that loop's own.
func (c *Context) CheckNext(line int, name string) error {
	frame, ok := c.Table.CurrentLoop()
	if !ok || frame.Kind != symtab.LoopFor {
		return c.errorf(line, "NEXT without a matching FOR")
	}
	if name != "" && frame.ForVar != name {
		return c.errorf(line, "NEXT '%s' does not match FOR variable '%s'", name, frame.ForVar)
	}
	return nil
}

// BeginLoop pushes a loop frame of the given kind, for EXIT/CONTINUE
// matching within the body about to be parsed.
func (c *Context) BeginLoop(kind symtab.LoopKind, forVar string) {
	c.Table.PushLoop(kind, forVar)
}

// EndLoop pops the innermost loop frame.
func (c *Context) EndLoop() {
	c.Table.PopLoop()
}

// MakeExit builds an ExitStmt, erroring if no enclosing loop of the
// requested kind is active.
func (c *Context) MakeExit(line int, kind symtab.LoopKind) (*ast.ExitStmt, error) {
	if _, ok := c.Table.FindLoop(kind); !ok {
		return nil, c.errorf(line, "EXIT %s outside of a matching loop", kind)
	}
	return ast.NewExitStmt(line, kind), nil
}

// MakeContinue builds a ContinueStmt, erroring if no enclosing loop of
// the requested kind is active.
func (c *Context) MakeContinue(line int, kind symtab.LoopKind) (*ast.ContinueStmt, error) {
	if _, ok := c.Table.FindLoop(kind); !ok {
		return nil, c.errorf(line, "CONTINUE %s outside of a matching loop", kind)
	}
	return ast.NewContinueStmt(line, kind), nil
}

// MakeReturn builds a ReturnStmt, checking value against the enclosing
// function's declared return type; a SUB must return no value and a
// FUNCTION must return one.
func (c *Context) MakeReturn(line int, value ast.Expr) (*ast.ReturnStmt, error) {
	if c.currentFunc == nil {
		return nil, c.errorf(line, "RETURN outside of a FUNCTION or SUB")
	}
	fn := c.currentFunc.Entry
	if fn.Kind == symtab.FuncKindSub {
		if value != nil {
			return nil, c.errorf(line, "SUB '%s' cannot RETURN a value", fn.Name)
		}
		return ast.NewReturnStmt(line, nil), nil
	}
	if value == nil {
		return nil, c.errorf(line, "FUNCTION '%s' must RETURN a value", fn.Name)
	}
	vt := value.ExprType()
	_, ok := types.CommonType(fn.Type, vt)
	if !ok || (vt != types.Unknown && types.IsString(fn.Type) != types.IsString(vt)) {
		return nil, c.errorf(line, "cannot return %s from a FUNCTION declared %s", value.ExprType(), fn.Type)
	}
	return ast.NewReturnStmt(line, value), nil
}

// MakeLabel declares a label at this point in the statement stream;
// the label itself is hoisted to the global scope by the symbol table.
func (c *Context) MakeLabel(line int, name string) (*ast.LabelStmt, error) {
	e, err := c.DeclareLabel(name, line)
	if err != nil {
		return nil, err
	}
	return ast.NewLabelStmt(line, e), nil
}

// MakeGoto builds a GOTO. The target binding is deferred when the
// label's declaration hasn't been seen yet.
func (c *Context) MakeGoto(line int, name string) *ast.GotoStmt {
	s := ast.NewGotoStmt(line, nil)
	c.resolveLabel(name, line, func(e *symtab.Entry) { s.Label = e })
	return s
}

// MakeGosub builds a GO SUB, with the same deferred label binding as
// GOTO.
func (c *Context) MakeGosub(line int, name string) *ast.GosubStmt {
	s := ast.NewGosubStmt(line, nil)
	c.resolveLabel(name, line, func(e *symtab.Entry) { s.Label = e })
	return s
}

// resolveLabel defers a jump target's binding until the label is
// declared, rejecting a target that resolves to anything but a label.
func (c *Context) resolveLabel(name string, line int, bind func(*symtab.Entry)) {
	c.Resolve(name, line, func(e *symtab.Entry) {
		if e.Class != symtab.ClassLabel {
			_ = c.errorf(line, "'%s' is not a label", name)
			return
		}
		e.Accessed = true
		bind(e)
	})
}

// MakeCallStmt wraps a CALL/SUB-invocation expression as a statement,
// surfacing any argument-conversion problems as diagnostics.
func (c *Context) MakeCallStmt(line int, fn *symtab.Entry, args []ast.Expr) (*ast.ExprStmt, error) {
	call, err := c.makeCheckedCall(line, fn, args)
	if err != nil {
		return nil, err
	}
	return ast.NewExprStmt(line, call), nil
}
