package symtab

import "github.com/z80dev/zbasic/types"

// Class is the identifier's role. Once Declared is true, Type and Class
// are fixed for the lifetime of the entry.
type Class int

const (
	ClassNone Class = iota
	ClassVar
	ClassFunction
	ClassSub
	ClassArray
	ClassLabel
	ClassConst
)

func (c Class) String() string {
	switch c {
	case ClassVar:
		return "var"
	case ClassFunction:
		return "function"
	case ClassSub:
		return "sub"
	case ClassArray:
		return "array"
	case ClassLabel:
		return "label"
	case ClassConst:
		return "const"
	default:
		return "none"
	}
}

// ScopeKind records where an identifier lives.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeLocal
	ScopeParameter
)

// FuncKind distinguishes a FUNCTION (returns a value) from a SUB
// (procedure); used by RETURN type-checking.
type FuncKind int

const (
	FuncKindNone FuncKind = iota
	FuncKindFunction
	FuncKindSub
)

// Callable is a tri-state: an identifier referenced before its declaring
// statement is seen has class ClassNone and an undetermined Callable,
// resolved once the real declaration is processed.
type Callable int

const (
	CallableUnknown Callable = iota
	CallableTrue
	CallableFalse
)

// Convention is the calling convention recorded on a function entry for
// the emitter.
type Convention string

const (
	ConventionStdcall  Convention = "__stdcall__"
	ConventionFastcall Convention = "__fastcall__"
)

// Bound is one dimension's inclusive [Lower, Upper] range for an array.
type Bound struct {
	Lower int64
	Upper int64
}

// Count returns the number of elements in this dimension.
func (b Bound) Count() int64 {
	return b.Upper - b.Lower + 1
}

// Param describes one formal parameter of a function/sub entry.
type Param struct {
	Name    string
	Type    types.Tag
	ByRef   bool
	Default *types.Value // non-nil for an optional trailing parameter
}

// Entry is a symbol table record: everything known about one declared
// identifier.
type Entry struct {
	Name        string
	Declared    bool
	Class       Class
	Scope       ScopeKind
	Type        types.Tag
	MangledName string

	// Offset is the stack-frame offset for a local; nil for a global.
	Offset *int

	DefaultValue types.Value

	// Addr is the absolute address if the entry was pinned with AT; nil
	// otherwise.
	Addr *int

	// Alias points at this entry's ultimate base (never itself an alias).
	// AliasedBy is the reverse index, owned only by a base entry.
	Alias     *Entry
	AliasedBy []*Entry

	ByRef     bool
	Callable  Callable
	Forwarded bool
	Accessed  bool
	CaseIns   bool

	// ReadOnly marks a CONST array: its elements were folded at
	// declaration time and the emitter places them in a read-only
	// section.
	ReadOnly bool

	Kind       FuncKind
	Params     []Param
	ParamsSize int
	LocalsSize int

	// LocalSymbolTable is captured when the function's scope closes.
	LocalSymbolTable *Scope

	Convention Convention

	Bounds []Bound // for ClassArray

	Line int // line of (re)declaration, for diagnostics
}

// IsAlias reports whether this entry's storage is shared with another.
func (e *Entry) IsAlias() bool {
	return e.Alias != nil
}

// Base returns the entry that actually owns the storage: e itself unless
// e is an alias.
func (e *Entry) Base() *Entry {
	if e.Alias != nil {
		return e.Alias
	}
	return e
}

// ElementSize returns the size in bytes of one element of an array entry,
// or the size of the scalar type otherwise.
func (e *Entry) ElementSize() int {
	return types.SizeOf(e.Type)
}

// TotalArraySize returns the full byte footprint of an array entry across
// all dimensions.
func (e *Entry) TotalArraySize() int {
	if e.Class != ClassArray {
		return types.SizeOf(e.Type)
	}
	count := int64(1)
	for _, b := range e.Bounds {
		count *= b.Count()
	}
	return int(count) * types.SizeOf(e.Type)
}
