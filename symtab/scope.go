package symtab

import "strings"

// Scope is one lexical naming frame: a case-sensitive map plus a
// lower-cased shadow map consulted only when case-insensitive lookup is
// enabled.
type Scope struct {
	FuncName string // empty for the global scope
	entries  map[string]*Entry
	lower    map[string]*Entry
	order    []string // declaration order, for leave_scope's stable sort
}

func newScope(funcName string) *Scope {
	return &Scope{
		FuncName: funcName,
		entries:  make(map[string]*Entry),
		lower:    make(map[string]*Entry),
	}
}

// get looks up name case-sensitively only.
func (s *Scope) get(name string) (*Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// getCaseins looks up name in the lower-cased shadow map.
func (s *Scope) getCaseins(name string) (*Entry, bool) {
	e, ok := s.lower[strings.ToLower(name)]
	return e, ok
}

func (s *Scope) put(e *Entry) {
	s.entries[e.Name] = e
	s.lower[strings.ToLower(e.Name)] = e
	s.order = append(s.order, e.Name)
}

// remove drops name from this scope, used by move_to_global_scope.
func (s *Scope) remove(name string) {
	delete(s.entries, name)
	delete(s.lower, strings.ToLower(name))
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Locals returns the var/array entries declared directly in this scope
// as true locals (excluding parameters, which occupy their own part of
// the call frame and carry no Offset of their own), in declaration order
// (used by leave_scope's frame layout).
func (s *Scope) Locals() []*Entry {
	out := make([]*Entry, 0, len(s.order))
	for _, n := range s.order {
		e := s.entries[n]
		if (e.Class == ClassVar || e.Class == ClassArray) && e.Scope != ScopeParameter {
			out = append(out, e)
		}
	}
	return out
}
