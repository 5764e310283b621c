package ast

import "github.com/z80dev/zbasic/symtab"

// Stmt is any statement node.
type Stmt interface {
	stmtNode()
	Line() int
}

type baseStmt struct {
	LineNo int
	reg    string
}

func (s *baseStmt) stmtNode()       {}
func (s *baseStmt) Line() int       { return s.LineNo }
func (s *baseStmt) Reg() string     { return s.reg }
func (s *baseStmt) SetReg(r string) { s.reg = r }

// EndStmt is END [code]: program termination with an exit code. The
// analyzer appends an implicit END 0 after the last top-level statement
// so the emitter always sees a terminated program.
type EndStmt struct {
	baseStmt
	Code Expr
}

// NewEndStmt builds an EndStmt at line.
func NewEndStmt(line int, code Expr) *EndStmt {
	return &EndStmt{baseStmt: baseStmt{LineNo: line}, Code: code}
}

// ExprStmt is a bare expression used as a statement (a SUB call).
type ExprStmt struct {
	baseStmt
	X Expr
}

// NewExprStmt builds an ExprStmt at line.
func NewExprStmt(line int, x Expr) *ExprStmt {
	return &ExprStmt{baseStmt: baseStmt{LineNo: line}, X: x}
}

// AssignStmt is LET/implicit assignment. LHS is an IdExpr,
// ArrayAccessExpr, or StrSliceExpr.
type AssignStmt struct {
	baseStmt
	LHS Expr
	RHS Expr
}

// NewAssignStmt builds an AssignStmt at line.
func NewAssignStmt(line int, lhs, rhs Expr) *AssignStmt {
	return &AssignStmt{baseStmt: baseStmt{LineNo: line}, LHS: lhs, RHS: rhs}
}

// IfStmt is IF/ELSEIF/ELSE/END IF.
type IfStmt struct {
	baseStmt
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if no ELSE
}

// NewIfStmt builds an IfStmt at line.
func NewIfStmt(line int, cond Expr, then, els []Stmt) *IfStmt {
	return &IfStmt{baseStmt: baseStmt{LineNo: line}, Cond: cond, Then: then, Else: els}
}

// ForStmt is FOR var = from TO to [STEP step] ... NEXT.
type ForStmt struct {
	baseStmt
	Var            *symtab.Entry
	From, To, Step Expr
	Body           []Stmt
}

// NewForStmt builds a ForStmt at line.
func NewForStmt(line int, v *symtab.Entry, from, to, step Expr, body []Stmt) *ForStmt {
	return &ForStmt{baseStmt: baseStmt{LineNo: line}, Var: v, From: from, To: to, Step: step, Body: body}
}

// WhileStmt is WHILE ... WEND.
type WhileStmt struct {
	baseStmt
	Cond Expr
	Body []Stmt
}

// NewWhileStmt builds a WhileStmt at line.
func NewWhileStmt(line int, cond Expr, body []Stmt) *WhileStmt {
	return &WhileStmt{baseStmt: baseStmt{LineNo: line}, Cond: cond, Body: body}
}

// DoLoopKind distinguishes the plain DO...LOOP from its four conditional
// spellings.
type DoLoopKind int

const (
	DoLoopPlain DoLoopKind = iota
	DoWhilePre
	DoUntilPre
	DoWhilePost
	DoUntilPost
)

// DoLoopStmt is DO [WHILE|UNTIL cond] ... LOOP [WHILE|UNTIL cond].
type DoLoopStmt struct {
	baseStmt
	Kind DoLoopKind
	Cond Expr // nil for DoLoopPlain
	Body []Stmt
}

// NewDoLoopStmt builds a DoLoopStmt at line.
func NewDoLoopStmt(line int, kind DoLoopKind, cond Expr, body []Stmt) *DoLoopStmt {
	return &DoLoopStmt{baseStmt: baseStmt{LineNo: line}, Kind: kind, Cond: cond, Body: body}
}

// ExitStmt is EXIT FOR / EXIT DO / EXIT WHILE.
type ExitStmt struct {
	baseStmt
	Kind symtab.LoopKind
}

// NewExitStmt builds an ExitStmt at line.
func NewExitStmt(line int, kind symtab.LoopKind) *ExitStmt {
	return &ExitStmt{baseStmt: baseStmt{LineNo: line}, Kind: kind}
}

// ContinueStmt is CONTINUE FOR / CONTINUE DO / CONTINUE WHILE.
type ContinueStmt struct {
	baseStmt
	Kind symtab.LoopKind
}

// NewContinueStmt builds a ContinueStmt at line.
func NewContinueStmt(line int, kind symtab.LoopKind) *ContinueStmt {
	return &ContinueStmt{baseStmt: baseStmt{LineNo: line}, Kind: kind}
}

// GotoStmt is GOTO label.
type GotoStmt struct {
	baseStmt
	Label *symtab.Entry
}

// NewGotoStmt builds a GotoStmt at line.
func NewGotoStmt(line int, label *symtab.Entry) *GotoStmt {
	return &GotoStmt{baseStmt: baseStmt{LineNo: line}, Label: label}
}

// GosubStmt is GO SUB label / RETURN pairing used by classic BASIC
// subroutines (distinct from FUNCTION/SUB).
type GosubStmt struct {
	baseStmt
	Label *symtab.Entry
}

// NewGosubStmt builds a GosubStmt at line.
func NewGosubStmt(line int, label *symtab.Entry) *GosubStmt {
	return &GosubStmt{baseStmt: baseStmt{LineNo: line}, Label: label}
}

// ReturnFromGosubStmt is the bare RETURN that pairs with GosubStmt.
type ReturnFromGosubStmt struct {
	baseStmt
}

// NewReturnFromGosubStmt builds a ReturnFromGosubStmt at line.
func NewReturnFromGosubStmt(line int) *ReturnFromGosubStmt {
	return &ReturnFromGosubStmt{baseStmt: baseStmt{LineNo: line}}
}

// LabelStmt marks a program position named by a label declaration.
type LabelStmt struct {
	baseStmt
	Label *symtab.Entry
}

// NewLabelStmt builds a LabelStmt at line.
func NewLabelStmt(line int, label *symtab.Entry) *LabelStmt {
	return &LabelStmt{baseStmt: baseStmt{LineNo: line}, Label: label}
}

// ReturnStmt is a FUNCTION/SUB return; Value is nil for a SUB.
type ReturnStmt struct {
	baseStmt
	Value Expr
}

// NewReturnStmt builds a ReturnStmt at line.
func NewReturnStmt(line int, value Expr) *ReturnStmt {
	return &ReturnStmt{baseStmt: baseStmt{LineNo: line}, Value: value}
}

// AsmStmt is a literal inline-assembly block.
type AsmStmt struct {
	baseStmt
	Code string
}

// NewAsmStmt builds an AsmStmt at line.
func NewAsmStmt(line int, code string) *AsmStmt {
	return &AsmStmt{baseStmt: baseStmt{LineNo: line}, Code: code}
}

// BlockStmt groups a sequence of statements, used for a freestanding
// nested scope that does not introduce its own symbol-table frame.
type BlockStmt struct {
	baseStmt
	Body []Stmt
}

// NewBlockStmt builds a BlockStmt at line.
func NewBlockStmt(line int, body []Stmt) *BlockStmt {
	return &BlockStmt{baseStmt: baseStmt{LineNo: line}, Body: body}
}
