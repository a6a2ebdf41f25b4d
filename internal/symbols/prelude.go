package symbols

// Builtin class names seeded into the root scope.
const (
	ClassString  = "String"
	ClassInteger = "Integer"
	ClassReal    = "Real"
	ClassBoolean = "Boolean"
)

// builtinClasses returns the builtin classes in registration order.
func builtinClasses() []string {
	return []string{ClassString, ClassInteger, ClassReal, ClassBoolean}
}

func (t *Table) seedBuiltins() {
	for _, name := range builtinClasses() {
		sym := NewClass(name, "", 0, t.rootSpan)
		sym.Flags |= SymbolFlagBuiltin
		if _, ok := t.AddSymbol(t.Root, name, sym); !ok {
			panic("symbols: duplicate builtin " + name)
		}
	}
}

// Builtin returns the builtin class symbol with the given name.
func (t *Table) Builtin(name string) SymbolID {
	scope := t.Scopes.Get(t.Root)
	child, ok := scope.Named[name]
	if !ok {
		return NoSymbolID
	}
	id := t.Scopes.Get(child).Symbol
	if sym := t.Symbols.Get(id); sym == nil || sym.Flags&SymbolFlagBuiltin == 0 {
		return NoSymbolID
	}
	return id
}
