package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/z80dev/zbasic/ast"
	"github.com/z80dev/zbasic/config"
	"github.com/z80dev/zbasic/diag"
	"github.com/z80dev/zbasic/sem"
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

func main() {
	opts := config.Default()
	sink := diag.NewSink(os.Stderr, opts.MaxSyntaxErrors)
	ctx := sem.NewContext("<stdin>", sink, opts)

	h := &harness{}
	r := newDirectiveReader(os.Stdin)
	if err := h.run(ctx, r); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	if err := ctx.Finish(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	if sink.HasErrors() {
		fmt.Fprintf(os.Stderr, "%d error(s)\n", sink.ErrorCount())
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	dumpSymbols(w, ctx)
	w.Flush()
}

// pendingFor is one still-open FOR awaiting its matching NEXT.
type pendingFor struct {
	line                int
	entry               *symtab.Entry
	from, to, step      ast.Expr
}

// harness carries the directive-stream reader's own state across lines:
// which FOR loops are currently open, so NEXT can close the innermost one.
type harness struct {
	forStack []pendingFor
}

func (h *harness) run(ctx *sem.Context, r *directiveReader) error {
	for {
		d, ok, err := r.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := h.applyDirective(ctx, d); err != nil {
			fmt.Fprintf(os.Stderr, "line %d: %v\n", d.lineNum, err)
		}
	}
}

func (h *harness) applyDirective(ctx *sem.Context, d *directive) error {
	switch d.kind {
	case "VAR":
		if len(d.fields) != 2 {
			return fmt.Errorf("VAR expects name and type")
		}
		t, err := parseTag(d.fields[1])
		if err != nil {
			return err
		}
		_, err = ctx.DeclareVariable(d.fields[0], d.lineNum, t, true, nil)
		return err

	case "CONST":
		if len(d.fields) != 3 {
			return fmt.Errorf("CONST expects name, type, and value")
		}
		t, err := parseTag(d.fields[1])
		if err != nil {
			return err
		}
		v, err := constValue(t, d.fields[2])
		if err != nil {
			return err
		}
		_, err = ctx.DeclareConst(d.fields[0], d.lineNum, v)
		return err

	case "DIM":
		if len(d.fields) < 4 {
			return fmt.Errorf("DIM expects name, type, and at least one lower/upper bound")
		}
		t, err := parseTag(d.fields[1])
		if err != nil {
			return err
		}
		bounds, err := parseBounds(d.fields[2:])
		if err != nil {
			return err
		}
		_, err = ctx.DeclareArray(d.fields[0], d.lineNum, t, bounds)
		return err

	case "LABEL":
		if len(d.fields) != 1 {
			return fmt.Errorf("LABEL expects a name")
		}
		stmt, err := ctx.MakeLabel(d.lineNum, d.fields[0])
		if err != nil {
			return err
		}
		ctx.Program.Main = append(ctx.Program.Main, stmt)
		return nil

	case "GOTO":
		if len(d.fields) != 1 {
			return fmt.Errorf("GOTO expects a label name")
		}
		ctx.Program.Main = append(ctx.Program.Main, ctx.MakeGoto(d.lineNum, d.fields[0]))
		return nil

	case "FUNC", "DECLARE":
		if len(d.fields) < 2 {
			return fmt.Errorf("%s expects name and return type", d.kind)
		}
		t, err := parseTag(d.fields[1])
		if err != nil {
			return err
		}
		var params []symtab.Param
		for _, spec := range d.fields[2:] {
			p, err := parseParam(spec)
			if err != nil {
				return err
			}
			params = append(params, p)
		}
		_, err = ctx.BeginFunc(d.fields[0], d.lineNum, symtab.FuncKindFunction, t, params, d.kind == "DECLARE")
		return err

	case "SUB":
		if len(d.fields) < 1 {
			return fmt.Errorf("SUB expects a name")
		}
		var params []symtab.Param
		for _, spec := range d.fields[1:] {
			p, err := parseParam(spec)
			if err != nil {
				return err
			}
			params = append(params, p)
		}
		_, err := ctx.BeginFunc(d.fields[0], d.lineNum, symtab.FuncKindSub, types.Unknown, params, false)
		return err

	case "ENDFUNC":
		ctx.EndFunc(nil)
		return nil

	case "CALL":
		if len(d.fields) < 1 {
			return fmt.Errorf("CALL expects a callee name")
		}
		var args []ast.Expr
		for _, f := range d.fields[1:] {
			a, err := forBoundExpr(ctx, d.lineNum, f)
			if err != nil {
				return err
			}
			args = append(args, a)
		}
		call, err := ctx.MakeCallExpr(d.lineNum, d.fields[0], args)
		if err != nil {
			return err
		}
		ctx.Program.Main = append(ctx.Program.Main, ast.NewExprStmt(d.lineNum, call))
		return nil

	case "STATIC":
		if len(d.fields) != 1 {
			return fmt.Errorf("STATIC expects a name")
		}
		_, err := ctx.MakeStatic(d.lineNum, d.fields[0])
		return err

	case "PRAGMA":
		switch {
		case len(d.fields) == 2 && d.fields[0] == "push":
			return ctx.PragmaPush(d.lineNum, d.fields[1])
		case len(d.fields) == 2 && d.fields[0] == "pop":
			return ctx.PragmaPop(d.lineNum, d.fields[1])
		case len(d.fields) == 3 && d.fields[0] == "set":
			return ctx.PragmaSet(d.lineNum, d.fields[1], d.fields[2])
		default:
			return fmt.Errorf("PRAGMA expects push name, pop name, or set name value")
		}

	case "FOR":
		if len(d.fields) < 3 || len(d.fields) > 4 {
			return fmt.Errorf("FOR expects name, from, to, and an optional step")
		}
		from, err := forBoundExpr(ctx, d.lineNum, d.fields[1])
		if err != nil {
			return err
		}
		to, err := forBoundExpr(ctx, d.lineNum, d.fields[2])
		if err != nil {
			return err
		}
		var step ast.Expr
		if len(d.fields) == 4 {
			step, err = forBoundExpr(ctx, d.lineNum, d.fields[3])
			if err != nil {
				return err
			}
		}
		entry, castFrom, castTo, castStep, err := ctx.BeginFor(d.lineNum, d.fields[0], from, to, step)
		if err != nil {
			return err
		}
		h.forStack = append(h.forStack, pendingFor{line: d.lineNum, entry: entry, from: castFrom, to: castTo, step: castStep})
		return nil

	case "NEXT":
		if len(h.forStack) == 0 {
			return fmt.Errorf("NEXT without a matching FOR")
		}
		name := ""
		if len(d.fields) == 1 {
			name = d.fields[0]
		}
		if err := ctx.CheckNext(d.lineNum, name); err != nil {
			return err
		}
		top := h.forStack[len(h.forStack)-1]
		h.forStack = h.forStack[:len(h.forStack)-1]
		stmt := ctx.EndFor(d.lineNum, top.entry, top.from, top.to, top.step, nil)
		ctx.Program.Main = append(ctx.Program.Main, stmt)
		return nil

	default:
		return fmt.Errorf("unknown directive %q", d.kind)
	}
}

// forBoundExpr parses one FOR-directive bound: either the name of an
// already-declared identifier, or an integer literal.
func forBoundExpr(ctx *sem.Context, line int, field string) (ast.Expr, error) {
	if e, ok := ctx.Table.GetEntry(field, nil); ok {
		return ast.NewIdExpr(line, e), nil
	}
	i, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad FOR bound %q", field)
	}
	return ast.NewConstExpr(line, types.IntValue(types.TypeOfIntLiteral(i), i)), nil
}

func constValue(t types.Tag, raw string) (types.Value, error) {
	if types.IsString(t) {
		return types.StringValue(raw), nil
	}
	if t == types.Fixed || t == types.Float {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.Value{}, err
		}
		return types.FloatValue(t, f), nil
	}
	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return types.Value{}, err
	}
	return types.IntValue(t, i), nil
}

func dumpSymbols(w *bufio.Writer, ctx *sem.Context) {
	fmt.Fprintf(w, "; compilation %s\n", ctx.ID)
	for _, g := range ctx.Program.Globals {
		fmt.Fprintf(w, "global %s %s\n", g.Entry.MangledName, g.Entry.Type)
	}
	for _, a := range ctx.Program.Arrays {
		fmt.Fprintf(w, "array %s %s\n", a.Entry.MangledName, a.Entry.Type)
	}
	for _, cst := range ctx.Program.Consts {
		fmt.Fprintf(w, "const %s %s\n", cst.Entry.MangledName, cst.Entry.Type)
	}
	for _, fn := range ctx.Program.Functions {
		fmt.Fprintf(w, "func %s %s frame=%d\n", fn.Entry.MangledName, fn.Entry.Type, fn.Entry.LocalsSize)
	}
	fmt.Fprintf(w, "main: %d statement(s)\n", len(ctx.Program.Main))
}
