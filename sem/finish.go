package sem

import (
	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/types"
)

// Finish runs the post-parse fix-up pass: identifiers whose declaration
// followed their first use are rebound, every deferred call site is
// checked against the now-complete function table, the program is
// terminated with an implicit END 0, and the data AST the emitter
// consumes is assembled from the global variables and arrays. The
// returned error is the first semantic failure surfaced by the pass;
// diagnostics for every failure have already been written either way.
func (c *Context) Finish() error {
	errRefs := c.FinishResolution()
	errCalls := c.CheckPendingCalls()

	last := 0
	if n := len(c.Program.Main); n > 0 {
		last = c.Program.Main[n-1].Line()
	}
	c.Program.Main = append(c.Program.Main,
		ast.NewEndStmt(last, ast.NewConstExpr(last, types.IntValue(types.U8, 0))))

	c.Program.DataSeg = &ast.DataRoot{
		Vars:   c.Program.Globals,
		Arrays: c.Program.Arrays,
	}

	if errRefs != nil {
		return errRefs
	}
	return errCalls
}
