package ast

import (
	"fmt"
	"math"

	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// constValueOf reports the folded value behind e, if e is foldable at
// all: either a literal ConstExpr, or an IdExpr referencing a declared
// CONST (whose DefaultValue was itself fixed at declaration time).
func constValueOf(e Expr) (types.Value, bool) {
	switch n := e.(type) {
	case *ConstExpr:
		return n.Value, true
	case *IdExpr:
		if n.Entry != nil && n.Entry.Class == symtab.ClassConst {
			return n.Entry.DefaultValue, true
		}
	}
	return types.Value{}, false
}

// FoldedValue is the exported form of constValueOf, for callers outside
// this package (FOR-loop bound checking needs it to detect a
// compile-time-provable empty or infinite loop).
func FoldedValue(e Expr) (types.Value, bool) {
	return constValueOf(e)
}

func intValue(v int64) types.Value   { return types.IntValue(types.TypeOfIntLiteral(v), v) }
func floatValue(v float64) types.Value { return types.FloatValue(types.TypeOfFloatLiteral(v), v) }

func boolValue(b bool) types.Value {
	if b {
		return types.IntValue(types.U8, 1)
	}
	return types.IntValue(types.U8, 0)
}

// foldBinary evaluates op on two already-folded operand values, reporting
// whether op is even defined for this pairing (e.g. "/" on strings isn't,
// and falls through to the ordinary type-checking path instead of being
// folded).
func foldBinary(op BinaryOp, a, b types.Value) (types.Value, bool) {
	if types.IsString(a.Tag) || types.IsString(b.Tag) {
		if types.IsString(a.Tag) != types.IsString(b.Tag) {
			return types.Value{}, false
		}
		switch op {
		case OpAdd:
			return types.StringValue(a.Str + b.Str), true
		case OpEq:
			return boolValue(a.Str == b.Str), true
		case OpNe:
			return boolValue(a.Str != b.Str), true
		case OpLt:
			return boolValue(a.Str < b.Str), true
		case OpLe:
			return boolValue(a.Str <= b.Str), true
		case OpGt:
			return boolValue(a.Str > b.Str), true
		case OpGe:
			return boolValue(a.Str >= b.Str), true
		default:
			return types.Value{}, false
		}
	}

	if a.Tag == types.Fixed || a.Tag == types.Float || b.Tag == types.Fixed || b.Tag == types.Float {
		af, bf := a.AsFloat(), b.AsFloat()
		switch op {
		case OpAdd:
			return floatValue(af + bf), true
		case OpSub:
			return floatValue(af - bf), true
		case OpMul:
			return floatValue(af * bf), true
		case OpDiv:
			if bf == 0 {
				return types.Value{}, false
			}
			return floatValue(af / bf), true
		case OpPow:
			return floatValue(math.Pow(af, bf)), true
		case OpEq:
			return boolValue(af == bf), true
		case OpNe:
			return boolValue(af != bf), true
		case OpLt:
			return boolValue(af < bf), true
		case OpLe:
			return boolValue(af <= bf), true
		case OpGt:
			return boolValue(af > bf), true
		case OpGe:
			return boolValue(af >= bf), true
		default:
			return types.Value{}, false
		}
	}

	ai, bi := a.Int, b.Int
	switch op {
	case OpAdd:
		return intValue(ai + bi), true
	case OpSub:
		return intValue(ai - bi), true
	case OpMul:
		return intValue(ai * bi), true
	case OpDiv:
		if bi == 0 {
			return types.Value{}, false
		}
		return intValue(ai / bi), true
	case OpMod:
		if bi == 0 {
			return types.Value{}, false
		}
		return intValue(ai % bi), true
	case OpPow:
		return intValue(int64(math.Pow(float64(ai), float64(bi)))), true
	case OpAnd:
		return intValue(ai & bi), true
	case OpOr:
		return intValue(ai | bi), true
	case OpXor:
		return intValue(ai ^ bi), true
	case OpShl:
		return intValue(ai << uint(bi)), true
	case OpShr:
		return intValue(ai >> uint(bi)), true
	case OpEq:
		return boolValue(ai == bi), true
	case OpNe:
		return boolValue(ai != bi), true
	case OpLt:
		return boolValue(ai < bi), true
	case OpLe:
		return boolValue(ai <= bi), true
	case OpGt:
		return boolValue(ai > bi), true
	case OpGe:
		return boolValue(ai >= bi), true
	default:
		return types.Value{}, false
	}
}

func foldUnary(op UnaryOp, v types.Value) (types.Value, bool) {
	switch op {
	case OpNeg:
		if v.Tag == types.Fixed || v.Tag == types.Float {
			return floatValue(-v.Flt), true
		}
		return intValue(-v.Int), true
	case OpNot:
		if v.Tag == types.String {
			return types.Value{}, false
		}
		return boolValue(v.AsFloat() == 0), true
	case OpAbs:
		if v.Tag == types.Fixed || v.Tag == types.Float {
			return floatValue(math.Abs(v.Flt)), true
		}
		if v.Int < 0 {
			return intValue(-v.Int), true
		}
		return v, true
	default:
		return types.Value{}, false
	}
}

// MakeBinary builds a binary expression. If both operands fold to a
// compile-time value, the operator is evaluated immediately and a single
// ConstExpr is returned instead of a BinaryExpr node; otherwise the usual
// common-type and operand-kind rules resolve the node's runtime type.
func MakeBinary(line int, op BinaryOp, left, right Expr) (Expr, error) {
	if lv, lok := constValueOf(left); lok {
		if rv, rok := constValueOf(right); rok {
			if folded, fok := foldBinary(op, lv, rv); fok {
				return NewConstExpr(line, folded), nil
			}
		}
	}

	common, ok := types.CommonType(left.ExprType(), right.ExprType())
	if !ok {
		return nil, fmt.Errorf("line %d: incompatible operand types for %s", line, op)
	}

	switch op {
	case OpAdd:
		// string concatenation is the one arithmetic op strings support,
		// and only between two strings
		if types.IsString(common) && (!types.IsString(left.ExprType()) || !types.IsString(right.ExprType())) {
			return nil, fmt.Errorf("line %d: operator %s does not accept mixed string and numeric operands", line, op)
		}
	case OpSub, OpMul, OpDiv, OpMod, OpPow:
		if types.IsString(common) {
			return nil, fmt.Errorf("line %d: operator %s does not accept string operands", line, op)
		}
	case OpAnd, OpOr, OpXor:
		if types.IsString(common) {
			return nil, fmt.Errorf("line %d: operator %s does not accept string operands", line, op)
		}
		if common == types.Fixed || common == types.Float {
			common = types.I32
		}
	case OpShl, OpShr:
		if types.IsString(common) {
			return nil, fmt.Errorf("line %d: operator %s does not accept string operands", line, op)
		}
		// The left operand is never cast; the shift count always travels
		// as a u8.
		common = left.ExprType()
		cast, _, err := MakeTypecast(line, types.U8, right)
		if err != nil {
			return nil, err
		}
		right = cast
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		if types.IsString(left.ExprType()) != types.IsString(right.ExprType()) {
			return nil, fmt.Errorf("line %d: cannot compare a string with a numeric value", line)
		}
		common = types.U8
	default:
		return nil, fmt.Errorf("line %d: unknown operator %s", line, op)
	}

	return &BinaryExpr{
		baseExpr: baseExpr{LineNo: line, Typ: common},
		Op:       op,
		Left:     left,
		Right:    right,
	}, nil
}

// MakeUnary builds a UnaryExpr, folding it immediately when x is a
// compile-time constant. Unary MINUS on an unsigned operand widens to the
// signed sibling of the same size before negating; NOT always yields u8.
func MakeUnary(line int, op UnaryOp, x Expr) (Expr, error) {
	t := x.ExprType()
	switch op {
	case OpNeg:
		if !types.IsNumeric(t) {
			return nil, fmt.Errorf("line %d: unary - requires a numeric operand", line)
		}
	case OpNot:
		if types.IsString(t) {
			return nil, fmt.Errorf("line %d: NOT does not accept a string operand", line)
		}
	case OpAbs:
		if !types.IsNumeric(t) {
			return nil, fmt.Errorf("line %d: ABS requires a numeric operand", line)
		}
		if types.IsUnsigned(t) {
			// ABS of an unsigned value is the value itself.
			return x, nil
		}
	default:
		return nil, fmt.Errorf("line %d: unknown unary operator %s", line, op)
	}

	if v, ok := constValueOf(x); ok {
		if folded, fok := foldUnary(op, v); fok {
			return NewConstExpr(line, folded), nil
		}
	}

	resultType := t
	switch op {
	case OpNeg:
		if types.IsUnsigned(t) {
			resultType = types.SignedSibling(t)
		}
	case OpNot:
		resultType = types.U8
	}
	return &UnaryExpr{
		baseExpr: baseExpr{LineNo: line, Typ: resultType},
		Op:       op,
		X:        x,
	}, nil
}

// castValue applies target to an already-folded value v: integer targets
// truncate (reporting whether the truncation lost magnitude); fixed/float
// targets promote v to floating form.
func castValue(v types.Value, target types.Tag) (types.Value, bool) {
	if types.IsInteger(target) {
		src := v.Int
		if v.Tag == types.Fixed || v.Tag == types.Float {
			src = int64(v.Flt)
		}
		truncated, lost := types.TruncateInt(src, target)
		return types.IntValue(target, truncated), lost
	}
	return types.FloatValue(target, v.AsFloat()), false
}

// MakeTypecast builds a cast to target. An identity cast returns x
// unchanged (the round-trip invariant this gives for free: casting twice
// to the same type is casting once). A folded operand is cast at compile
// time into a new ConstExpr; otherwise a TypecastExpr wraps x, with Lossy
// set when source and target are both integer types and the target is
// narrower (casts to or from fixed/float are not flagged). The second return
// value mirrors Lossy for callers (sem.Context) that want to turn it into
// a diagnostic without a type assertion.
func MakeTypecast(line int, target types.Tag, x Expr) (Expr, bool, error) {
	src := x.ExprType()
	if target == src {
		return x, false, nil
	}
	if types.IsString(target) != types.IsString(src) {
		if types.IsString(target) {
			return nil, false, fmt.Errorf("line %d: cannot cast a numeric value to string; use STR()", line)
		}
		return nil, false, fmt.Errorf("line %d: cannot cast a string to numeric; use VAL()", line)
	}

	if v, ok := constValueOf(x); ok {
		folded, lossy := castValue(v, target)
		return NewConstExpr(line, folded), lossy, nil
	}

	lossy := types.IsInteger(target) && types.IsInteger(src) && types.SizeOf(target) < types.SizeOf(src)
	return &TypecastExpr{
		baseExpr: baseExpr{LineNo: line, Typ: target},
		X:        x,
		Lossy:    lossy,
	}, lossy, nil
}

// MakeArrayAccess builds an ArrayAccessExpr, checking the index count
// against the array's declared dimensionality and computing a literal
// linear offset when every index is itself constant. Each stored index
// is rebased: the declared lower bound is subtracted and the result cast
// to u16, so the emitter always addresses from element zero. The second
// return value reports whether a constant index fell outside its
// declared bound, for the caller to turn into a diagnostic.
func MakeArrayAccess(line int, array *symtab.Entry, indices []Expr) (*ArrayAccessExpr, bool, error) {
	if len(indices) != len(array.Bounds) {
		return nil, false, fmt.Errorf("line %d: '%s' expects %d index(es), got %d", line, array.Name, len(array.Bounds), len(indices))
	}
	for _, idx := range indices {
		if !types.IsInteger(idx.ExprType()) {
			return nil, false, fmt.Errorf("line %d: array index must be an integer expression", line)
		}
	}

	allConst := true
	outOfRange := false
	var linear int64
	rebased := make([]Expr, len(indices))
	for k, idx := range indices {
		b := array.Bounds[k]
		if v, ok := constValueOf(idx); ok {
			if v.Int < b.Lower || v.Int > b.Upper {
				outOfRange = true
			}
			linear = linear*b.Count() + (v.Int - b.Lower)
		} else {
			allConst = false
		}

		sub, err := MakeBinary(line, OpSub, idx, NewConstExpr(line, intValue(b.Lower)))
		if err != nil {
			return nil, false, err
		}
		cast, _, err := MakeTypecast(line, types.U16, sub)
		if err != nil {
			return nil, false, err
		}
		rebased[k] = cast
	}

	node := &ArrayAccessExpr{
		baseExpr: baseExpr{LineNo: line, Typ: array.Type},
		Array:    array,
		Indices:  rebased,
	}
	if allConst {
		off := int(linear) * array.ElementSize()
		node.Offset = &off
	}
	return node, outOfRange, nil
}

func clampStringBound(v, base int64) int64 {
	v -= base
	if v < 0 {
		return 0
	}
	if v > 65534 {
		return 65534
	}
	return v
}

// MakeStrSlice builds a string subscript/slice str(lower [TO upper]).
// Both bounds are recast as an offset from stringBase and clamped to
// [0, 65534]. If both bounds are constant and lo > hi, the result folds
// to the empty string; if str is also constant, the whole slice folds at
// compile time (right-padding str with spaces out to hi+1 first, the way
// a fixed-width string store would). A single-character subscript is
// upper == nil, treated as lower == upper.
func MakeStrSlice(line int, str, lower, upper Expr, stringBase int64) (Expr, error) {
	if !types.IsString(str.ExprType()) {
		return nil, fmt.Errorf("line %d: string subscript requires a string operand", line)
	}
	if !types.IsInteger(lower.ExprType()) {
		return nil, fmt.Errorf("line %d: string subscript bound must be an integer expression", line)
	}
	if upper != nil && !types.IsInteger(upper.ExprType()) {
		return nil, fmt.Errorf("line %d: string subscript bound must be an integer expression", line)
	}

	loVal, loConst := constValueOf(lower)
	var hiVal types.Value
	hiConst := false
	if upper != nil {
		hiVal, hiConst = constValueOf(upper)
	} else {
		hiVal, hiConst = loVal, loConst
	}

	if loConst && hiConst {
		lo := clampStringBound(loVal.Int, stringBase)
		hi := clampStringBound(hiVal.Int, stringBase)
		if lo > hi {
			return NewConstExpr(line, types.StringValue("")), nil
		}
		if sv, ok := constValueOf(str); ok {
			padded := sv.Str
			for int64(len(padded)) < hi+1 {
				padded += " "
			}
			return NewConstExpr(line, types.StringValue(padded[lo:hi+1])), nil
		}
	}

	return &StrSliceExpr{
		baseExpr: baseExpr{LineNo: line, Typ: types.String},
		Str:      str,
		Lower:    lower,
		Upper:    upper,
	}, nil
}

// ArgumentMismatch describes one argument that required an implicit
// conversion or failed to convert at all, for the caller to turn into a
// diagnostic. NotLValue marks a byref argument that is not a bare
// variable or array name and so has no address to pass.
type ArgumentMismatch struct {
	Index              int
	ParamType, ArgType types.Tag
	Fatal              bool
	NotLValue          bool
}

// isLValueArg reports whether a is a bare identifier naming a variable
// or array, the only argument kinds a byref parameter can bind to.
func isLValueArg(a Expr) bool {
	id, ok := a.(*IdExpr)
	if !ok {
		return false
	}
	return id.Entry != nil && (id.Entry.Class == symtab.ClassVar || id.Entry.Class == symtab.ClassArray)
}

// MakeCall builds a CallExpr against fn's declared parameter list.
// Missing trailing arguments are synthesized from the parameters'
// declared defaults before the arity check runs; each byval argument of
// a differing type gets an implicit typecast inserted (recorded as a
// non-fatal mismatch, since BASIC quietly widens and narrows call
// arguments); a byref parameter requires an lvalue argument of exactly
// its own type and marks that position in the node's ByRefArgs mask.
func MakeCall(line int, fn *symtab.Entry, args []Expr) (*CallExpr, []ArgumentMismatch, error) {
	for i := len(args); i < len(fn.Params); i++ {
		p := fn.Params[i]
		if p.Default == nil {
			break
		}
		args = append(args, NewConstExpr(line, *p.Default))
	}
	if len(args) != len(fn.Params) {
		return nil, nil, fmt.Errorf("line %d: '%s' expects %d argument(s), got %d", line, fn.Name, len(fn.Params), len(args))
	}

	var mismatches []ArgumentMismatch
	byRef := make([]bool, len(args))
	checked := make([]Expr, len(args))
	copy(checked, args)
	for i, a := range args {
		p := fn.Params[i]
		if p.ByRef {
			byRef[i] = true
			if !isLValueArg(a) {
				mismatches = append(mismatches, ArgumentMismatch{Index: i, ParamType: p.Type, ArgType: a.ExprType(), Fatal: true, NotLValue: true})
				continue
			}
			if a.ExprType() != p.Type {
				mismatches = append(mismatches, ArgumentMismatch{Index: i, ParamType: p.Type, ArgType: a.ExprType(), Fatal: true})
			}
			continue
		}
		if a.ExprType() == p.Type {
			continue
		}
		cast, _, err := MakeTypecast(line, p.Type, a)
		if err != nil {
			mismatches = append(mismatches, ArgumentMismatch{Index: i, ParamType: p.Type, ArgType: a.ExprType(), Fatal: true})
			continue
		}
		checked[i] = cast
		mismatches = append(mismatches, ArgumentMismatch{Index: i, ParamType: p.Type, ArgType: a.ExprType()})
	}

	return &CallExpr{
		baseExpr:  baseExpr{LineNo: line, Typ: fn.Type},
		Func:      fn,
		Args:      checked,
		ByRefArgs: byRef,
	}, mismatches, nil
}

// NewDeferredCall builds a CallExpr whose callee has not been declared
// yet. Its type stays Unknown and Func nil until BindDeferredCall runs
// during the post-parse fix-up.
func NewDeferredCall(line int, args []Expr) *CallExpr {
	return &CallExpr{
		baseExpr: baseExpr{LineNo: line, Typ: types.Unknown},
		Args:     args,
	}
}

// BindDeferredCall runs the full call-site check against the
// now-declared callee and rewrites call in place, so every expression
// already holding a reference to it sees the resolved form.
func BindDeferredCall(call *CallExpr, fn *symtab.Entry) ([]ArgumentMismatch, error) {
	fresh, mismatches, err := MakeCall(call.LineNo, fn, call.Args)
	if err != nil {
		return nil, err
	}
	call.Func = fn
	call.Args = fresh.Args
	call.ByRefArgs = fresh.ByRefArgs
	call.Typ = fn.Type
	return mismatches, nil
}
