// Package symtab implements the symbol table: a stack of lexical scopes,
// declaration and lookup, scope transitions, name mangling, and local
// stack-frame layout.
package symtab

import (
	"fmt"
	"sort"
	"strings"
)

// LoopKind identifies which structured-loop construct is active, for
// EXIT/CONTINUE matching.
type LoopKind int

const (
	LoopFor LoopKind = iota
	LoopDo
	LoopWhile
)

func (k LoopKind) String() string {
	switch k {
	case LoopFor:
		return "FOR"
	case LoopDo:
		return "DO"
	case LoopWhile:
		return "WHILE"
	default:
		return "?"
	}
}

// LoopFrame is one entry of the loop stack, pushed on entry into a
// structured loop and popped on exit.
type LoopFrame struct {
	Kind   LoopKind
	ForVar string // non-empty only for LoopFor
}

// Table is the full symbol table: an ordered stack of Scopes plus the
// process-wide bookkeeping (current mangle prefix, loop stack) that
// travels with scope transitions. A Table is single-writer and must be
// reset between compilation units; NewTable always starts a fresh one.
type Table struct {
	scopes []*Scope

	mangle      string
	mangleStack []string

	loopStack      []LoopFrame
	loopStackStack [][]LoopFrame

	caseInsensitive bool
}

// NewTable returns a fresh Table with only the global scope open.
func NewTable(caseInsensitive bool) *Table {
	t := &Table{caseInsensitive: caseInsensitive}
	t.scopes = []*Scope{newScope("")}
	return t
}

// SetCaseInsensitive toggles case-insensitive identifier matching; it is
// the push/pop target of the case-insensitive compiler option.
func (t *Table) SetCaseInsensitive(v bool) {
	t.caseInsensitive = v
}

func (t *Table) CaseInsensitive() bool {
	return t.caseInsensitive
}

// CurrentScope returns the innermost open scope.
func (t *Table) CurrentScope() *Scope {
	return t.scopes[len(t.scopes)-1]
}

// GlobalScope returns scope 0.
func (t *Table) GlobalScope() *Scope {
	return t.scopes[0]
}

// InFunction reports whether a local scope is open.
func (t *Table) InFunction() bool {
	return len(t.scopes) > 1
}

// stripSuffix removes a deprecated $/%/& suffix before any lookup or
// declaration.
func stripSuffix(name string) string {
	if name == "" {
		return name
	}
	switch name[len(name)-1] {
	case '$', '%', '&':
		return name[:len(name)-1]
	default:
		return name
	}
}

// GetEntry looks up name, walking scopes from innermost outward unless a
// specific scope is given. Deprecated suffixes are stripped first. The
// case-sensitive walk runs to completion before the lower-cased shadow
// maps are consulted at all, and that fallback pass walks the scopes
// outermost-first; the two passes are never interleaved scope-by-scope.
func (t *Table) GetEntry(name string, scope *Scope) (*Entry, bool) {
	name = stripSuffix(name)
	if scope != nil {
		return t.lookupIn(scope, name)
	}
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if e, ok := t.scopes[i].get(name); ok {
			return e, true
		}
	}
	if t.caseInsensitive {
		for _, s := range t.scopes {
			if e, ok := s.getCaseins(name); ok {
				return e, true
			}
		}
	}
	return nil, false
}

// lookupIn tries the case-sensitive map first; only if that misses and
// case-insensitive matching is on do we fall back to the lower-cased
// shadow map.
func (t *Table) lookupIn(s *Scope, name string) (*Entry, bool) {
	if e, ok := s.get(name); ok {
		return e, true
	}
	if t.caseInsensitive {
		if e, ok := s.getCaseins(name); ok {
			return e, true
		}
	}
	return nil, false
}

// Declare inserts entry into the current scope (or an explicit target
// scope for label hoisting). A name may be declared at most once per
// scope.
func (t *Table) Declare(scope *Scope, name string, line int, entry *Entry) error {
	name = stripSuffix(name)
	if scope == nil {
		scope = t.CurrentScope()
	}
	if _, ok := t.lookupIn(scope, name); ok {
		return fmt.Errorf("'%s' already declared", name)
	}
	entry.Name = name
	entry.Line = line
	entry.Declared = true
	scope.put(entry)
	return nil
}

// MoveToGlobalScope relocates an existing local entry to scope 0 in
// place (move_to_global_scope). MakeStatic does not use it: it declares
// a separate global twin instead.
func (t *Table) MoveToGlobalScope(name string) *Entry {
	name = stripSuffix(name)
	cur := t.CurrentScope()
	e, ok := cur.get(name)
	if !ok {
		return nil
	}
	cur.remove(name)
	e.Scope = ScopeGlobal
	t.GlobalScope().put(e)
	return e
}

// MakeStatic implements the STATIC-variable pattern: the local entry is
// rewritten as an alias to a freshly-declared global twin carrying the
// mangled name, so repeated calls to the enclosing function share one
// piece of storage.
func (t *Table) MakeStatic(name string) (*Entry, error) {
	name = stripSuffix(name)
	local, ok := t.CurrentScope().get(name)
	if !ok {
		return nil, fmt.Errorf("'%s' not declared", name)
	}
	mangled := "_" + strings.TrimPrefix(local.MangledName, "_")
	global := &Entry{
		Class:        local.Class,
		Scope:        ScopeGlobal,
		Type:         local.Type,
		MangledName:  mangled,
		DefaultValue: local.DefaultValue,
		Declared:     true,
		Name:         mangled,
	}
	t.GlobalScope().put(global)

	local.Alias = global
	local.Offset = nil
	global.AliasedBy = append(global.AliasedBy, local)
	return local, nil
}

// PinAt fixes name's storage at an absolute address (the AT clause). A
// pinned entry never takes a stack-frame offset.
func (t *Table) PinAt(name string, addr int) error {
	name = stripSuffix(name)
	e, ok := t.GetEntry(name, nil)
	if !ok {
		return fmt.Errorf("'%s' not declared", name)
	}
	e.Addr = &addr
	e.Offset = nil
	return nil
}

// Alias links name (which must already be declared in the current scope)
// as sharing storage with target, collapsing any chain so the new alias
// always points directly at an ultimate, non-alias base.
func (t *Table) Alias(name string, target *Entry) error {
	name = stripSuffix(name)
	e, ok := t.lookupIn(t.CurrentScope(), name)
	if !ok {
		if e, ok = t.GetEntry(name, nil); !ok {
			return fmt.Errorf("'%s' not declared", name)
		}
	}
	base := target.Base()
	e.Alias = base
	e.Offset = base.Offset
	e.Addr = base.Addr
	e.ByRef = base.ByRef
	e.Scope = base.Scope
	base.AliasedBy = append(base.AliasedBy, e)
	return nil
}

// EnterScope pushes a new function-local scope, extends the mangle
// prefix with _funcname, and snapshots+resets the loop stack.
func (t *Table) EnterScope(funcname string) {
	t.scopes = append(t.scopes, newScope(funcname))

	t.mangleStack = append(t.mangleStack, t.mangle)
	t.mangle = t.mangle + "_" + funcname

	t.loopStackStack = append(t.loopStackStack, t.loopStack)
	t.loopStack = nil
}

// LeaveScope closes the current function scope: lays out the stack
// frame, restores the parent mangle prefix and loop stack, and returns
// the total local frame size together with the closed scope itself (a
// function entry captures this as its LocalSymbolTable).
func (t *Table) LeaveScope() (int, *Scope) {
	cur := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]

	locals := cur.Locals()
	sort.SliceStable(locals, func(i, j int) bool {
		return locals[i].TotalArraySize() < locals[j].TotalArraySize()
	})

	offset := 0
	for _, e := range locals {
		if e.Addr != nil || e.IsAlias() {
			continue
		}
		offset += e.TotalArraySize()
		off := offset
		e.Offset = &off
	}

	for _, n := range cur.order {
		e := cur.entries[n]
		if !e.IsAlias() {
			continue
		}
		base := e.Base()
		if e.Offset == nil {
			e.Offset = base.Offset
		} else if base.Offset != nil {
			inverted := *base.Offset - *e.Offset
			e.Offset = &inverted
		}
	}

	last := t.mangleStack[len(t.mangleStack)-1]
	t.mangleStack = t.mangleStack[:len(t.mangleStack)-1]
	t.mangle = last

	t.loopStack = t.loopStackStack[len(t.loopStackStack)-1]
	t.loopStackStack = t.loopStackStack[:len(t.loopStackStack)-1]

	return offset, cur
}

// MangledName computes the link-time name for a to-be-declared entry
// in the current scope.
func (t *Table) MangledName(name string) string {
	if t.InFunction() {
		return t.mangle + "_" + name
	}
	return "_" + name
}

// LabelMangledName implements the label-specific mangling rule: a
// "."-prefixed label keeps its name literally; otherwise it gets the
// __LABEL__ prefix.
func LabelMangledName(name string) string {
	if strings.HasPrefix(name, ".") {
		return name
	}
	return "__LABEL__" + name
}

// PushLoop records entry into a structured loop.
func (t *Table) PushLoop(kind LoopKind, forVar string) {
	t.loopStack = append(t.loopStack, LoopFrame{Kind: kind, ForVar: forVar})
}

// PopLoop records exit from the innermost structured loop.
func (t *Table) PopLoop() {
	if len(t.loopStack) == 0 {
		return
	}
	t.loopStack = t.loopStack[:len(t.loopStack)-1]
}

// CurrentLoop returns the innermost active loop frame.
func (t *Table) CurrentLoop() (LoopFrame, bool) {
	if len(t.loopStack) == 0 {
		return LoopFrame{}, false
	}
	return t.loopStack[len(t.loopStack)-1], true
}

// FindLoop searches the loop stack, innermost first, for a frame of the
// given kind (used by EXIT/CONTINUE).
func (t *Table) FindLoop(kind LoopKind) (LoopFrame, bool) {
	for i := len(t.loopStack) - 1; i >= 0; i-- {
		if t.loopStack[i].Kind == kind {
			return t.loopStack[i], true
		}
	}
	return LoopFrame{}, false
}
