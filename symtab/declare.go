package symtab

import (
	"fmt"

	"github.com/z80dev/zbasic/types"
)

// applySuffix strips a deprecated $/%/& suffix from name and, if present,
// forces declType to the corresponding type. It errors if the caller also
// supplied an explicit, conflicting type.
func applySuffix(name string, declType types.Tag, hasExplicitType bool) (string, types.Tag, error) {
	stripped, forced, ok := types.SuffixTag(name)
	if !ok {
		return name, declType, nil
	}
	if hasExplicitType && declType != forced {
		return stripped, forced, fmt.Errorf("suffix on '%s' conflicts with declared type", name)
	}
	return stripped, forced, nil
}

// DeclareVariable declares a scalar variable, applying the enclosing
// scope's global/local split and the type's zero value as its default.
func (t *Table) DeclareVariable(name string, line int, declType types.Tag, hasExplicitType bool, init *types.Value) (*Entry, error) {
	name, declType, err := applySuffix(name, declType, hasExplicitType)
	if err != nil {
		return nil, err
	}
	scope := ScopeLocal
	if !t.InFunction() {
		scope = ScopeGlobal
	}
	def := types.ZeroValue(declType)
	if init != nil {
		def = *init
	}
	e := &Entry{
		Class:        ClassVar,
		Scope:        scope,
		Type:         declType,
		MangledName:  t.MangledName(name),
		DefaultValue: def,
		Callable:     CallableFalse,
	}
	if err := t.Declare(nil, name, line, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeclareConst declares a CONST entry whose value is a fully-evaluated
// compile-time constant of its declared type.
func (t *Table) DeclareConst(name string, line int, value types.Value) (*Entry, error) {
	name, declType, err := applySuffix(name, value.Tag, true)
	if err != nil {
		return nil, err
	}
	e := &Entry{
		Class:        ClassConst,
		Scope:        ScopeGlobal,
		Type:         declType,
		MangledName:  t.MangledName(name),
		DefaultValue: value,
		Callable:     CallableFalse,
	}
	if err := t.Declare(nil, name, line, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeclareLabel declares a label. Labels always live in the outermost
// scope, even when declared lexically inside a function body.
func (t *Table) DeclareLabel(name string, line int) (*Entry, error) {
	e := &Entry{
		Class:       ClassLabel,
		Scope:       ScopeGlobal,
		MangledName: LabelMangledName(name),
		Callable:    CallableFalse,
	}
	if err := t.Declare(t.GlobalScope(), name, line, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeclareParam declares a formal parameter in the function's own scope,
// with scope class Parameter.
func (t *Table) DeclareParam(name string, line int, declType types.Tag, byRef bool) (*Entry, error) {
	name, declType, err := applySuffix(name, declType, true)
	if err != nil {
		return nil, err
	}
	e := &Entry{
		Class:       ClassVar,
		Scope:       ScopeParameter,
		Type:        declType,
		MangledName: t.MangledName(name),
		ByRef:       byRef,
		Callable:    CallableFalse,
	}
	if err := t.Declare(nil, name, line, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeclareArray declares an array variable with one or more dimension
// bounds.
func (t *Table) DeclareArray(name string, line int, elemType types.Tag, bounds []Bound) (*Entry, error) {
	name, elemType, err := applySuffix(name, elemType, true)
	if err != nil {
		return nil, err
	}
	scope := ScopeLocal
	if !t.InFunction() {
		scope = ScopeGlobal
	}
	e := &Entry{
		Class:       ClassArray,
		Scope:       scope,
		Type:        elemType,
		MangledName: t.MangledName(name),
		Bounds:      bounds,
		Callable:    CallableTrue,
	}
	if err := t.Declare(nil, name, line, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeclareType declares a (possibly anonymous) named type alias, modeled
// as a ClassNone entry whose Type field is the aliased primitive tag; it
// is never callable.
func (t *Table) DeclareType(name string, line int, underlying types.Tag) (*Entry, error) {
	e := &Entry{
		Class:       ClassNone,
		Scope:       ScopeGlobal,
		Type:        underlying,
		MangledName: t.MangledName(name),
		Callable:    CallableFalse,
	}
	if err := t.Declare(t.GlobalScope(), name, line, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeclareFuncResult is the outcome of DeclareFunc: either a brand-new
// entry, or the existing forward-declared entry being filled in, plus
// any non-fatal warning produced by matching the two signatures.
type DeclareFuncResult struct {
	Entry       *Entry
	Warning     string
	IsNewEntry  bool
	RenamedArgs []string // parameter names that were renamed vs. the DECLARE
}

// DeclareFunc declares a FUNCTION or SUB, including the
// forward-declaration matching rule: a function may be re-encountered if
// Forwarded is true, in which case the old type and ParamsSize are
// preserved and the new signature must match (params count, types, byref
// disposition) or it is an error; a parameter rename alone is only a
// warning.
func (t *Table) DeclareFunc(name string, line int, kind FuncKind, retType types.Tag, params []Param, isForwardDecl bool) (*DeclareFuncResult, error) {
	name, retType, err := applySuffix(name, retType, kind == FuncKindFunction)
	if err != nil {
		return nil, err
	}
	seenDefault := false
	for _, p := range params {
		if p.Default != nil {
			seenDefault = true
		} else if seenDefault {
			return nil, fmt.Errorf("parameter '%s' without a default follows a defaulted parameter", p.Name)
		}
	}

	existing, ok := t.lookupIn(t.GlobalScope(), name)
	if ok && existing.Forwarded && !isForwardDecl {
		if err := matchSignatures(existing, kind, retType, params); err != nil {
			return nil, err
		}
		res := &DeclareFuncResult{Entry: existing, IsNewEntry: false}
		for i, p := range params {
			if existing.Params[i].Name != p.Name {
				res.RenamedArgs = append(res.RenamedArgs, existing.Params[i].Name+"->"+p.Name)
			}
			existing.Params[i].Name = p.Name
		}
		if len(res.RenamedArgs) > 0 {
			res.Warning = fmt.Sprintf("parameter renamed in redefinition of '%s'", name)
		}
		existing.Forwarded = false
		existing.Line = line
		return res, nil
	}
	if ok && !isForwardDecl {
		return nil, fmt.Errorf("'%s' already declared", name)
	}
	if ok && isForwardDecl {
		return nil, fmt.Errorf("'%s' already declared", name)
	}

	e := &Entry{
		Class:       classForKind(kind),
		Scope:       ScopeGlobal,
		Type:        retType,
		MangledName: t.MangledName(name),
		Kind:        kind,
		Params:      params,
		Forwarded:   isForwardDecl,
		Callable:    CallableTrue,
		Convention:  ConventionStdcall,
	}
	for _, p := range params {
		e.ParamsSize += types.SizeOf(p.Type)
	}
	if err := t.Declare(t.GlobalScope(), name, line, e); err != nil {
		return nil, err
	}
	return &DeclareFuncResult{Entry: e, IsNewEntry: true}, nil
}

func classForKind(k FuncKind) Class {
	if k == FuncKindSub {
		return ClassSub
	}
	return ClassFunction
}

func matchSignatures(existing *Entry, kind FuncKind, retType types.Tag, params []Param) error {
	if existing.Kind != kind {
		return fmt.Errorf("function '%s' kind mismatch with its DECLARE", existing.Name)
	}
	if existing.Type != retType {
		return fmt.Errorf("function '%s' return type mismatch with its DECLARE", existing.Name)
	}
	if len(existing.Params) != len(params) {
		return fmt.Errorf("function '%s' parameter mismatch", existing.Name)
	}
	for i, p := range params {
		old := existing.Params[i]
		if old.Type != p.Type || old.ByRef != p.ByRef {
			return fmt.Errorf("function '%s' parameter %d mismatch with its DECLARE", existing.Name, i+1)
		}
	}
	return nil
}
