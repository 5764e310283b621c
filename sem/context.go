// Package sem is the semantic analyzer proper: it drives the symbol
// table and the typed AST factories to turn a parsed program into a
// fully resolved, type-checked tree, the same three-phase shape (build
// tables, check types, only then hand off) as a classic analyzer.
package sem

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/config"
	"github.com/z80dev/zbasic/diag"
	"github.com/z80dev/zbasic/symtab"
)

// Context ties together one compilation's symbol table, diagnostics
// sink, and option stack. ID is a per-compilation correlation token
// assigned at NewContext time; diagnostic lines written through errorf
// and warnf do not include it.
type Context struct {
	ID       string
	File     string
	Table    *symtab.Table
	Diag     *diag.Sink
	Options  *config.Stack
	Program  *ast.Program

	currentFunc *ast.FuncDecl
}

// NewContext builds a fresh analysis context for one source file.
func NewContext(file string, sink *diag.Sink, opts config.Options) *Context {
	return &Context{
		ID:      uuid.NewString(),
		File:    file,
		Table:   symtab.NewTable(opts.CaseInsensitive),
		Diag:    sink,
		Options: config.NewStack(opts),
		Program: &ast.Program{SourceFile: file},
	}
}

// errorf reports one semantic error to the sink and returns a non-nil
// error for the factory's caller. When the sink's fatal threshold is
// crossed, the sink's ErrTooManyErrors takes precedence so the driver
// can stop pushing input.
func (c *Context) errorf(line int, format string, args ...interface{}) error {
	if fatal := c.Diag.Error(c.File, line, format, args...); fatal != nil {
		return fatal
	}
	return errors.Errorf("%s:%d: %s", c.File, line, fmt.Sprintf(format, args...))
}

func (c *Context) warnf(line int, format string, args ...interface{}) {
	c.Diag.Warn(c.File, line, format, args...)
}

// Resolve looks for name in the table; if it isn't found yet, the
// resolution is deferred: resolve is queued and invoked once the
// identifier is declared, so a GOTO or GOSUB is free to precede the label
// it targets textually. Calls to a not-yet-declared function are deferred
// separately, on Program.PendingCalls.
func (c *Context) Resolve(name string, line int, resolve func(*symtab.Entry)) {
	if e, ok := c.Table.GetEntry(name, nil); ok {
		resolve(e)
		return
	}
	c.Program.Unresolved = append(c.Program.Unresolved, ast.PendingRef{Name: name, Line: line, Resolve: resolve})
}

// FinishResolution must be called once the whole program has been
// scanned: any reference still pending at that point names an
// identifier that was never declared anywhere in the file.
func (c *Context) FinishResolution() error {
	var firstErr error
	for _, p := range c.Program.Unresolved {
		e, ok := c.Table.GetEntry(p.Name, nil)
		if !ok {
			err := c.errorf(p.Line, "undeclared identifier '%s'", p.Name)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.Resolve(e)
	}
	c.Program.Unresolved = nil
	return firstErr
}
