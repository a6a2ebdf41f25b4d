package symbols

import "sort"

// DumpScope is the human-readable view of a scope tree. It is meant for
// debugging and tests, not as a stable format.
type DumpScope struct {
	Type     string       `json:"type" yaml:"type"`
	Symbol   *DumpSymbol  `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Symbols  []DumpEntry  `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Children []*DumpScope `json:"children,omitempty" yaml:"children,omitempty"`
}

// DumpEntry is one named child of a scope.
type DumpEntry struct {
	Key   string     `json:"key" yaml:"key"`
	Scope *DumpScope `json:"scope" yaml:"scope"`
}

// DumpSymbol describes the symbol bound to a scope.
type DumpSymbol struct {
	Type   string        `json:"type" yaml:"type"`
	Name   string        `json:"name" yaml:"name"`
	Kind   string        `json:"kind,omitempty" yaml:"kind,omitempty"`
	Clazz  string        `json:"clazz,omitempty" yaml:"clazz,omitempty"`
	Return string        `json:"return,omitempty" yaml:"return,omitempty"`
	Params []*DumpSymbol `json:"params,omitempty" yaml:"params,omitempty"`
}

// Dump renders the whole table starting at the root. Named children are
// sorted by key so the output is deterministic.
func (t *Table) Dump() *DumpScope {
	return t.DumpFrom(t.Root)
}

// DumpFrom renders the subtree rooted at scope.
func (t *Table) DumpFrom(scope ScopeID) *DumpScope {
	s := t.Scopes.Get(scope)
	if s == nil {
		return nil
	}
	out := &DumpScope{Type: "symbol_table", Symbol: t.dumpSymbol(s.Symbol)}

	keys := make([]string, 0, len(s.Named))
	for k := range s.Named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out.Symbols = append(out.Symbols, DumpEntry{Key: k, Scope: t.DumpFrom(s.Named[k])})
	}
	for _, c := range s.Children {
		out.Children = append(out.Children, t.DumpFrom(c))
	}
	return out
}

func (t *Table) dumpSymbol(id SymbolID) *DumpSymbol {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return nil
	}
	out := &DumpSymbol{Type: sym.Kind.String(), Name: sym.Name}
	switch sym.Kind {
	case SymbolInstance:
		out.Kind = sym.Instance.String()
		if sym.Type.IsValid() {
			out.Clazz = t.ClassName(sym.Type)
		}
	case SymbolMethod:
		out.Kind = sym.Method.String()
		if sym.Return.IsValid() {
			out.Return = t.ClassName(sym.Return)
		}
		for _, p := range sym.Params {
			out.Params = append(out.Params, &DumpSymbol{Type: SymbolClass.String(), Name: t.ClassName(p)})
		}
	}
	return out
}
