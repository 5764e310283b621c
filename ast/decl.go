package ast

import (
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// VarDecl is a global or local variable declaration together with its
// (possibly defaulted) initializer.
type VarDecl struct {
	Entry *symtab.Entry
	Init  Expr
}

// ConstDecl is a CONST declaration; the value itself lives on Entry.
type ConstDecl struct {
	Entry *symtab.Entry
}

// ArrayDecl is a DIM array declaration. Init is non-empty only for a
// CONST array, whose elements were all folded at declaration time and
// are laid out verbatim in the data segment.
type ArrayDecl struct {
	Entry *symtab.Entry
	Init  []types.Value
}

// FuncDecl is a FUNCTION or SUB definition.
type FuncDecl struct {
	Entry  *symtab.Entry
	Locals []*VarDecl
	Body   []Stmt
}

// DataDecl is one DATA statement's folded literal payload, consumed in
// order by READ.
type DataDecl struct {
	Line   int
	Values []ConstExpr
}

// Program is the root of one compiled source file.
type Program struct {
	SourceFile string
	Globals    []*VarDecl
	Arrays     []*ArrayDecl
	Consts     []*ConstDecl
	Functions  []*FuncDecl
	Data       []*DataDecl
	Main       []Stmt // top-level statements outside any FUNCTION/SUB

	// Unresolved lists the names seen in a GOTO/GOSUB position
	// before their declaring statement was reached; resolution happens
	// once the whole file has been scanned, and any name still unresolved
	// at that point is an undeclared-identifier error.
	Unresolved []PendingRef

	// PendingCalls lists call sites whose callee had not been declared
	// when the call was parsed; each is re-checked against the complete
	// function table once the whole file has been scanned.
	PendingCalls []PendingCall

	// DataSeg is the data AST handed to the emitter: every global
	// variable and array in declaration order. It is assembled by the
	// finish pass, after the last declaration has been seen.
	DataSeg *DataRoot
}

// PendingCall records one call site awaiting its callee's declaration.
// Call.Func is nil until the finish pass binds it.
type PendingCall struct {
	Name string
	Line int
	Call *CallExpr
}

// DataRoot is the second AST root the emitter consumes: globals and
// arrays only, separated from the statement tree.
type DataRoot struct {
	Vars   []*VarDecl
	Arrays []*ArrayDecl
}

// PendingRef is a forward reference awaiting resolution once the
// identifier it names is declared.
type PendingRef struct {
	Name   string
	Line   int
	Resolve func(*symtab.Entry)
}
