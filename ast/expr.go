// Package ast holds the typed tree produced while walking a parsed BASIC
// program: one concrete Go type per expression and statement kind,
// sharing the Expr/Stmt interfaces the way a hand-written recursive
// descent front end usually does.
package ast

import (
	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// Expr is any typed expression node.
type Expr interface {
	exprNode()
	Line() int
	ExprType() types.Tag

	// Reg/SetReg expose the node's scratch slot: the emitter parks the
	// name of the temporary register holding this node's value there
	// while lowering the tree.
	Reg() string
	SetReg(string)
}

type baseExpr struct {
	LineNo int
	Typ    types.Tag
	reg    string
}

func (e *baseExpr) exprNode()           {}
func (e *baseExpr) Line() int           { return e.LineNo }
func (e *baseExpr) ExprType() types.Tag { return e.Typ }
func (e *baseExpr) Reg() string         { return e.reg }
func (e *baseExpr) SetReg(r string)     { e.reg = r }

// ConstExpr is a folded compile-time constant.
type ConstExpr struct {
	baseExpr
	Value types.Value
}

// NewConstExpr builds a ConstExpr at line from an already-folded value.
func NewConstExpr(line int, v types.Value) *ConstExpr {
	return &ConstExpr{baseExpr: baseExpr{LineNo: line, Typ: v.Tag}, Value: v}
}

// IdExpr references a declared identifier; Entry is resolved at the
// point the identifier is first parsed, not deferred. A call to a
// not-yet-declared function is a deferred CallExpr instead (see
// Program.PendingCalls).
type IdExpr struct {
	baseExpr
	Entry *symtab.Entry
}

// NewIdExpr builds an IdExpr at line referencing entry.
func NewIdExpr(line int, entry *symtab.Entry) *IdExpr {
	return &IdExpr{baseExpr: baseExpr{LineNo: line, Typ: entry.Type}, Entry: entry}
}

// BinaryOp is the set of binary operators a BinaryExpr may carry.
type BinaryOp string

const (
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpMod  BinaryOp = "MOD"
	OpPow  BinaryOp = "^"
	OpAnd  BinaryOp = "AND"
	OpOr   BinaryOp = "OR"
	OpXor  BinaryOp = "XOR"
	OpShl  BinaryOp = "<<"
	OpShr  BinaryOp = ">>"
	OpEq   BinaryOp = "="
	OpNe   BinaryOp = "<>"
	OpLt   BinaryOp = "<"
	OpLe   BinaryOp = "<="
	OpGt   BinaryOp = ">"
	OpGe   BinaryOp = ">="
)

// BinaryExpr is a two-operand arithmetic, relational, or bitwise
// expression; Typ is the already-resolved result type: u8 for relational
// operators, the left operand's type for shifts, i32 for bitwise
// operators on fixed/float, and the common type of Left and Right
// otherwise.
type BinaryExpr struct {
	baseExpr
	Op          BinaryOp
	Left, Right Expr
}

// UnaryOp is the set of unary operators a UnaryExpr may carry.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "NOT"
	OpAbs UnaryOp = "ABS"
)

type UnaryExpr struct {
	baseExpr
	Op UnaryOp
	X  Expr
}

// TypecastExpr is an explicit CAST(type, expr), or an implicit widening
// inserted by a factory. Lossy is set when the target type is narrower
// than the source and the conversion can discard bits.
type TypecastExpr struct {
	baseExpr
	X     Expr
	Lossy bool
}

// CallExpr invokes a FUNCTION for its value. ByRefArgs marks, per
// argument position, which arguments are passed by reference rather
// than by value; it is always the same length as Args once the
// call-site check has run. Func is nil only while the call is pending
// resolution of a forward-referenced callee.
type CallExpr struct {
	baseExpr
	Func      *symtab.Entry
	Args      []Expr
	ByRefArgs []bool
}

// ArrayAccessExpr indexes into a declared array. Offset is the folded
// linear byte offset when every index is constant; nil when any index is
// symbolic, leaving the offset to be computed at runtime.
type ArrayAccessExpr struct {
	baseExpr
	Array   *symtab.Entry
	Indices []Expr
	Offset  *int
}

// StrSliceExpr is a string subscript or slice: str(lower [TO upper]).
// Upper is nil for a single-character subscript.
type StrSliceExpr struct {
	baseExpr
	Str         Expr
	Lower, Upper Expr
}
