package symbols

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeRoot              // global scope holding builtins and classes
	ScopeNamed             // bound to exactly one symbol, held by name in the parent
	ScopeBlock             // anonymous, threads block-local bindings
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeRoot:
		return "root"
	case ScopeNamed:
		return "named"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope models a node of the lexical nesting tree.
type Scope struct {
	Kind     ScopeKind
	Parent   ScopeID
	Name     string   // key in Parent.Named; empty for root and blocks
	Symbol   SymbolID // bound symbol, NoSymbolID for root and blocks
	Named    map[string]ScopeID
	Children []ScopeID // anonymous block scopes in creation order
}
