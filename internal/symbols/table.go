package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"opp/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table is the scope tree of one compilation unit together with its symbols.
// Scopes and symbols are addressed by ID; parents are stored as IDs.
type Table struct {
	Scopes   *Scopes
	Symbols  *Symbols
	Root     ScopeID
	rootSpan source.Span
}

// NewTable builds a table with a root scope holding the builtin classes.
func NewTable(h Hints) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	t := &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
	}
	t.Root = t.Scopes.New(ScopeRoot, NoScopeID, "", NoSymbolID)
	t.seedBuiltins()
	return t
}

// AddSymbol binds sym under name as a new named child of scope. It fails
// without mutating anything when name is already a named child.
func (t *Table) AddSymbol(scope ScopeID, name string, sym *Symbol) (ScopeID, bool) {
	parent := t.Scopes.Get(scope)
	if parent == nil {
		return NoScopeID, false
	}
	if _, exists := parent.Named[name]; exists {
		return NoScopeID, false
	}
	symID := t.Symbols.New(sym)
	child := t.Scopes.New(ScopeNamed, scope, name, symID)
	stored := t.Symbols.Get(symID)
	stored.Name = name
	stored.Scope = child

	parent = t.Scopes.Get(scope) // arena may have grown
	if parent.Named == nil {
		parent.Named = make(map[string]ScopeID)
	}
	parent.Named[name] = child
	return child, true
}

// AddChild appends an anonymous block scope to scope.
func (t *Table) AddChild(scope ScopeID) ScopeID {
	if t.Scopes.Get(scope) == nil {
		panic(fmt.Errorf("symbols.AddChild: unknown scope %d", scope))
	}
	child := t.Scopes.New(ScopeBlock, scope, "", NoSymbolID)
	parent := t.Scopes.Get(scope)
	parent.Children = append(parent.Children, child)
	return child
}

// Symbol returns the symbol bound to scope, nil when the scope is unbound.
func (t *Table) Symbol(scope ScopeID) *Symbol {
	s := t.Scopes.Get(scope)
	if s == nil {
		return nil
	}
	return t.Symbols.Get(s.Symbol)
}

// SymbolID returns the ID of the symbol bound to scope.
func (t *Table) SymbolID(scope ScopeID) SymbolID {
	if s := t.Scopes.Get(scope); s != nil {
		return s.Symbol
	}
	return NoSymbolID
}

// ResolveSymbol performs the lexical lookup: the scope's own binding first,
// then its named children (root, class and method scopes only), then the
// parent chain.
func (t *Table) ResolveSymbol(scope ScopeID, name string) (ScopeID, bool) {
	return t.resolveWhere(scope, name, nil)
}

// resolveWhere is ResolveSymbol restricted to symbols accepted by pred;
// rejected matches do not stop the outward search.
func (t *Table) resolveWhere(scope ScopeID, name string, pred func(*Symbol) bool) (ScopeID, bool) {
	for cur := scope; cur.IsValid(); {
		s := t.Scopes.Get(cur)
		if s == nil {
			break
		}
		if sym := t.Symbols.Get(s.Symbol); sym != nil && sym.Name == name && (pred == nil || pred(sym)) {
			return cur, true
		}
		if t.namedVisible(s) {
			if child, ok := s.Named[name]; ok && (pred == nil || pred(t.Symbol(child))) {
				return child, true
			}
		}
		cur = s.Parent
	}
	return NoScopeID, false
}

// namedVisible reports whether lookups may enter the named children of s.
// Blocks and local or parameter bindings thread their children: a later
// declaration is reached through its own scope, never from statements that
// precede it.
func (t *Table) namedVisible(s *Scope) bool {
	if s.Kind == ScopeBlock {
		return false
	}
	sym := t.Symbols.Get(s.Symbol)
	return !sym.IsInstance() || sym.IsField()
}

// ResolveClass looks up a class visible from scope.
func (t *Table) ResolveClass(scope ScopeID, name string) (SymbolID, bool) {
	found, ok := t.resolveWhere(scope, name, (*Symbol).IsClass)
	if !ok {
		return NoSymbolID, false
	}
	return t.SymbolID(found), true
}

// ResolveLocal looks up an instance symbol (local, parameter or field)
// visible from scope.
func (t *Table) ResolveLocal(scope ScopeID, name string) (SymbolID, bool) {
	found, ok := t.resolveWhere(scope, name, (*Symbol).IsInstance)
	if !ok {
		return NoSymbolID, false
	}
	return t.SymbolID(found), true
}

// ResolveField finds a field declared by class or inherited from one of its
// ancestors.
func (t *Table) ResolveField(class SymbolID, name string) (SymbolID, bool) {
	for _, c := range t.lineage(class) {
		if id, ok := t.ownMember(c, name, (*Symbol).IsField); ok {
			return id, true
		}
	}
	return NoSymbolID, false
}

// OwnField finds a field declared directly by class.
func (t *Table) OwnField(class SymbolID, name string) (SymbolID, bool) {
	return t.ownMember(class, name, (*Symbol).IsField)
}

// ResolveMethod finds a non-constructor method of class (or an ancestor)
// whose mangled signature matches name and args exactly.
func (t *Table) ResolveMethod(class SymbolID, name string, args []SymbolID) (SymbolID, bool) {
	key := t.MangleSymbols(name, args)
	isMethod := func(s *Symbol) bool { return s.IsMethod() && !s.Method.IsCtor() }
	for _, c := range t.lineage(class) {
		if id, ok := t.ownMember(c, key, isMethod); ok {
			return id, true
		}
	}
	return NoSymbolID, false
}

// ResolveConstructor finds the constructor of class taking exactly args.
// Constructors are not inherited.
func (t *Table) ResolveConstructor(class SymbolID, args []SymbolID) (SymbolID, bool) {
	sym := t.Symbols.Get(class)
	if !sym.IsClass() {
		return NoSymbolID, false
	}
	isCtor := func(s *Symbol) bool { return s.IsMethod() && s.Method.IsCtor() }
	return t.ownMember(class, t.MangleSymbols(sym.Name, args), isCtor)
}

func (t *Table) ownMember(class SymbolID, key string, pred func(*Symbol) bool) (SymbolID, bool) {
	sym := t.Symbols.Get(class)
	if !sym.IsClass() {
		return NoSymbolID, false
	}
	scope := t.Scopes.Get(sym.Scope)
	if scope == nil {
		return NoSymbolID, false
	}
	child, ok := scope.Named[key]
	if !ok {
		return NoSymbolID, false
	}
	id := t.SymbolID(child)
	if !pred(t.Symbols.Get(id)) {
		return NoSymbolID, false
	}
	return id, true
}

// ResolveThis returns the class enclosing scope: the nearest ancestor
// (scope itself included) bound to a class symbol.
func (t *Table) ResolveThis(scope ScopeID) (SymbolID, bool) {
	for cur := scope; cur.IsValid(); {
		s := t.Scopes.Get(cur)
		if s == nil {
			break
		}
		if sym := t.Symbols.Get(s.Symbol); sym.IsClass() {
			return s.Symbol, true
		}
		cur = s.Parent
	}
	return NoSymbolID, false
}

// ResolveEnclosingMethod returns the method or constructor whose body or
// parameter list contains scope. The search stops at the enclosing class, so
// field initializers have no enclosing method.
func (t *Table) ResolveEnclosingMethod(scope ScopeID) (SymbolID, bool) {
	for cur := scope; cur.IsValid(); {
		s := t.Scopes.Get(cur)
		if s == nil {
			break
		}
		sym := t.Symbols.Get(s.Symbol)
		switch {
		case sym.IsMethod():
			return s.Symbol, true
		case sym.IsClass():
			return NoSymbolID, false
		}
		cur = s.Parent
	}
	return NoSymbolID, false
}

// SetInstanceType records the inferred class of an instance symbol. The
// class is assigned at most once; later calls report false and change nothing.
func (t *Table) SetInstanceType(inst, class SymbolID) bool {
	sym := t.Symbols.Get(inst)
	if !sym.IsInstance() || sym.Type.IsValid() || !class.IsValid() {
		return false
	}
	sym.Type = class
	return true
}

// Parent returns the resolved parent class of class, if any.
func (t *Table) Parent(class SymbolID) (SymbolID, bool) {
	sym := t.Symbols.Get(class)
	if !sym.IsClass() || sym.Extends == "" {
		return NoSymbolID, false
	}
	scope := t.Scopes.Get(t.Root)
	child, ok := scope.Named[sym.Extends]
	if !ok {
		return NoSymbolID, false
	}
	id := t.SymbolID(child)
	if !t.Symbols.Get(id).IsClass() {
		return NoSymbolID, false
	}
	return id, true
}

// Ancestors lists the parent chain of class, nearest first. The walk stops
// at the first repeated class so cyclic hierarchies terminate.
func (t *Table) Ancestors(class SymbolID) []SymbolID {
	var out []SymbolID
	seen := map[SymbolID]struct{}{class: {}}
	for cur, ok := t.Parent(class); ok; cur, ok = t.Parent(cur) {
		if _, dup := seen[cur]; dup {
			break
		}
		seen[cur] = struct{}{}
		out = append(out, cur)
	}
	return out
}

// lineage is class followed by its ancestors.
func (t *Table) lineage(class SymbolID) []SymbolID {
	return append([]SymbolID{class}, t.Ancestors(class)...)
}
