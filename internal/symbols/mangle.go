package symbols

import "strings"

// MangleDelim separates the parts of a mangled signature. It cannot occur
// in identifiers, which keeps the encoding injective.
const MangleDelim = "$$"

// Mangle encodes a method or constructor signature as
// "$$name$$P1$$P2$$...": the name followed by each parameter class name in
// declaration order.
func Mangle(name string, params []string) string {
	var b strings.Builder
	b.Grow(len(name) + 2*len(MangleDelim) + 8*len(params))
	b.WriteString(MangleDelim)
	b.WriteString(name)
	b.WriteString(MangleDelim)
	for _, p := range params {
		b.WriteString(p)
		b.WriteString(MangleDelim)
	}
	return b.String()
}

// MangleSymbols mangles a signature whose parameter classes are symbols.
func (t *Table) MangleSymbols(name string, params []SymbolID) string {
	return Mangle(name, t.ClassNames(params))
}

// ClassNames maps class symbols to their names; unknown IDs become "void".
func (t *Table) ClassNames(ids []SymbolID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = t.ClassName(id)
	}
	return names
}

// ClassName returns the class name or "void" for NoSymbolID.
func (t *Table) ClassName(id SymbolID) string {
	if sym := t.Symbols.Get(id); sym != nil {
		return sym.Name
	}
	return "void"
}

// Signature renders a method for messages: "name(Integer, String)".
func (t *Table) Signature(name string, params []SymbolID) string {
	return name + "(" + strings.Join(t.ClassNames(params), ", ") + ")"
}
