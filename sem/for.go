package sem

import (
	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// BeginFor opens a FOR loop. If name isn't already declared, it is
// implicitly declared with a type inferred from the common type of
// from/to/step (classic BASIC lets a FOR target double as its own DIM). The
// three bound expressions are then coerced to a common numeric type and
// cast to the loop variable's own type, matching the way every other
// assignment into that variable would be cast. step defaults to a literal 1
// when omitted. A loop-stack frame is pushed for EXIT/CONTINUE matching,
// and bounds provably empty or infinite at compile time raise a "useless
// FOR" warning.
func (c *Context) BeginFor(line int, name string, from, to, step ast.Expr) (*symtab.Entry, ast.Expr, ast.Expr, ast.Expr, error) {
	entry, ok := c.Table.GetEntry(name, nil)
	if !ok {
		common, okc := types.CommonType(from.ExprType(), to.ExprType())
		if !okc {
			return nil, nil, nil, nil, c.errorf(line, "incompatible FOR bounds for '%s'", name)
		}
		if step != nil {
			if c2, okc2 := types.CommonType(common, step.ExprType()); okc2 {
				common = c2
			}
		}
		var err error
		entry, err = c.DeclareVariable(name, line, common, false, nil)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	if step == nil {
		step = ast.NewConstExpr(line, types.IntValue(types.I16, 1))
	}

	castFrom, err := c.MakeTypecast(line, entry.Type, from)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	castTo, err := c.MakeTypecast(line, entry.Type, to)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	castStep, err := c.MakeTypecast(line, entry.Type, step)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if fv, fok := ast.FoldedValue(castFrom); fok {
		if tv, tok := ast.FoldedValue(castTo); tok {
			if sv, sok := ast.FoldedValue(castStep); sok {
				switch {
				case sv.AsFloat() == 0:
					c.warnf(line, "useless FOR: STEP is zero, loop never terminates")
				case sv.AsFloat() > 0 && fv.AsFloat() > tv.AsFloat():
					c.warnf(line, "useless FOR: loop body never executes")
				case sv.AsFloat() < 0 && fv.AsFloat() < tv.AsFloat():
					c.warnf(line, "useless FOR: loop body never executes")
				}
			}
		}
	}

	c.BeginLoop(symtab.LoopFor, name)
	return entry, castFrom, castTo, castStep, nil
}

// EndFor closes a FOR loop's loop-stack frame and assembles the final
// ForStmt now that its body is known.
func (c *Context) EndFor(line int, v *symtab.Entry, from, to, step ast.Expr, body []ast.Stmt) *ast.ForStmt {
	c.EndLoop()
	return ast.NewForStmt(line, v, from, to, step, body)
}
