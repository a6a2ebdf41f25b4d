package symbols

import (
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Validate walks internal arenas checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error

	if root := t.Scopes.Get(t.Root); root == nil || root.Kind != ScopeRoot || root.Parent.IsValid() {
		errs = append(errs, fmt.Errorf("root scope %d is malformed", t.Root))
	}

	for idx := 1; idx < len(t.Scopes.data); idx++ {
		scopeID, err := toScopeID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scope := &t.Scopes.data[idx]
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", scopeID))
		}
		if scopeID != t.Root && !scope.Parent.IsValid() {
			errs = append(errs, fmt.Errorf("scope %d has no parent", scopeID))
		}
		if scope.Parent.IsValid() {
			if int(scope.Parent) >= len(t.Scopes.data) || scope.Parent == scopeID {
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", scopeID, scope.Parent))
				continue
			}
			parent := &t.Scopes.data[scope.Parent]
			switch scope.Kind {
			case ScopeNamed:
				if parent.Named[scope.Name] != scopeID {
					errs = append(errs, fmt.Errorf("scope %d (%q) missing from parent %d", scopeID, scope.Name, scope.Parent))
				}
			case ScopeBlock:
				if !slices.Contains(parent.Children, scopeID) {
					errs = append(errs, fmt.Errorf("block scope %d missing from parent %d", scopeID, scope.Parent))
				}
			}
		}

		for key, child := range scope.Named {
			c := t.Scopes.Get(child)
			if c == nil || c.Parent != scopeID {
				errs = append(errs, fmt.Errorf("scope %d named child %q missing parent backlink", scopeID, key))
				continue
			}
			sym := t.Symbols.Get(c.Symbol)
			if sym == nil {
				errs = append(errs, fmt.Errorf("scope %d named child %q is unbound", scopeID, key))
				continue
			}
			if sym.Name != key {
				errs = append(errs, fmt.Errorf("scope %d key %q bound to symbol named %q", scopeID, key, sym.Name))
			}
		}
		for _, child := range scope.Children {
			c := t.Scopes.Get(child)
			if c == nil || c.Parent != scopeID || c.Kind != ScopeBlock {
				errs = append(errs, fmt.Errorf("scope %d has invalid block child %d", scopeID, child))
			}
		}
	}

	for idx := 1; idx < len(t.Symbols.data); idx++ {
		symbolID, err := toSymbolID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		symbol := &t.Symbols.data[idx]
		scope := t.Scopes.Get(symbol.Scope)
		if scope == nil || scope.Symbol != symbolID {
			errs = append(errs, fmt.Errorf("symbol %d (%q) is not bound by scope %d", symbolID, symbol.Name, symbol.Scope))
		}
		if symbol.IsInstance() && symbol.Type.IsValid() && !t.Symbols.Get(symbol.Type).IsClass() {
			errs = append(errs, fmt.Errorf("instance %d (%q) typed by non-class %d", symbolID, symbol.Name, symbol.Type))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func toScopeID(idx int) (ScopeID, error) {
	value, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoScopeID, fmt.Errorf("scope index %d overflow: %w", idx, err)
	}
	return ScopeID(value), nil
}

func toSymbolID(idx int) (SymbolID, error) {
	value, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoSymbolID, fmt.Errorf("symbol index %d overflow: %w", idx, err)
	}
	return SymbolID(value), nil
}
