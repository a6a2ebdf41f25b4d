package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// arena is a slice indexed by ID. Slot 0 is the sentinel, so Get on a zero
// ID yields nil.
type arena[T any, ID ~uint32] struct {
	data []T
	what string
}

func newArena[T any, ID ~uint32](what string, capacity, fallback uint32) arena[T, ID] {
	if capacity == 0 {
		capacity = fallback
	}
	return arena[T, ID]{data: make([]T, 1, capacity+1), what: what}
}

func (a *arena[T, ID]) put(v T) ID {
	id, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", a.what, err))
	}
	a.data = append(a.data, v)
	return ID(id)
}

// Get returns nil for the sentinel and for IDs from another table.
// The pointer is valid until the next allocation.
func (a *arena[T, ID]) Get(id ID) *T {
	if id == 0 || int(id) >= len(a.data) {
		return nil
	}
	return &a.data[id]
}

// Len excludes the sentinel.
func (a *arena[T, ID]) Len() int { return len(a.data) - 1 }

type Scopes struct {
	arena[Scope, ScopeID]
}

func NewScopes(capacity uint32) *Scopes {
	return &Scopes{newArena[Scope, ScopeID]("scopes", capacity, 32)}
}

// New allocates a scope. Linking into the parent is the caller's job since
// named and anonymous children are kept apart.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, name string, sym SymbolID) ScopeID {
	return s.put(Scope{Kind: kind, Parent: parent, Name: name, Symbol: sym})
}

type Symbols struct {
	arena[Symbol, SymbolID]
}

func NewSymbols(capacity uint32) *Symbols {
	return &Symbols{newArena[Symbol, SymbolID]("symbols", capacity, 64)}
}

func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols.New: nil symbol")
	}
	return s.put(*sym)
}
