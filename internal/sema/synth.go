package sema

import (
	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/symbols"
)

var literalClasses = map[ast.NodeKind]string{
	ast.NodeBoolLit:   symbols.ClassBoolean,
	ast.NodeIntLit:    symbols.ClassInteger,
	ast.NodeRealLit:   symbols.ClassReal,
	ast.NodeStringLit: symbols.ClassString,
}

// synth returns the class of expression id, or NoSymbolID when the
// expression is void or could not be typed. recv is the receiver class set by
// an enclosing member access; it applies to id only, never to arguments.
func (u *unit) synth(id ast.NodeID, recv symbols.SymbolID) symbols.SymbolID {
	scope, ok := u.index.Lookup(id)
	if !ok {
		return symbols.NoSymbolID
	}
	kind := u.nodes.Kind(id)
	switch kind {
	case ast.NodeBoolLit, ast.NodeIntLit, ast.NodeRealLit, ast.NodeStringLit:
		cls, _ := u.table.ResolveClass(scope, literalClasses[kind])
		return cls
	case ast.NodeThis:
		this, ok := u.table.ResolveThis(scope)
		if !ok {
			u.report(diag.SemaUnresolvedSymbol, u.span(id), "Unexpected identifier: this")
		}
		return this
	case ast.NodeIdent:
		return u.synthIdent(id, scope, recv)
	case ast.NodeCall:
		return u.synthCall(id, scope, recv)
	case ast.NodeMember:
		return u.synthMember(id, recv)
	default:
		return symbols.NoSymbolID
	}
}

func (u *unit) synthIdent(id ast.NodeID, scope symbols.ScopeID, recv symbols.SymbolID) symbols.SymbolID {
	ident, _ := u.nodes.Ident(id)
	if recv.IsValid() {
		field, ok := u.table.ResolveField(recv, ident.Name)
		if !ok {
			u.report(diag.SemaUnresolvedSymbol, u.span(id), "Missing property: %s", ident.Name)
			return symbols.NoSymbolID
		}
		return u.typeOf(field)
	}
	inst, ok := u.resolveName(scope, ident.Name)
	if !ok {
		u.report(diag.SemaUnresolvedSymbol, u.span(id), "Unexpected identifier: %s", ident.Name)
		return symbols.NoSymbolID
	}
	return u.typeOf(inst)
}

// synthCall resolves a call by exact signature. Without a receiver it is
// tried as a method of the enclosing class and then as a constructor of the
// class with the same name.
func (u *unit) synthCall(id ast.NodeID, scope symbols.ScopeID, recv symbols.SymbolID) symbols.SymbolID {
	call, _ := u.nodes.Call(id)
	args := make([]symbols.SymbolID, 0, len(call.Args))
	failed := false
	for _, arg := range call.Args {
		before := u.errors()
		typ := u.synth(arg, symbols.NoSymbolID)
		if !typ.IsValid() {
			if u.errors() == before {
				u.report(diag.SemaUnresolvedOverload, u.span(arg), "Cant get arg type")
			}
			failed = true
			continue
		}
		args = append(args, typ)
	}
	if failed {
		return symbols.NoSymbolID
	}

	sig := u.table.Signature(call.Name, args)
	if recv.IsValid() {
		method, ok := u.table.ResolveMethod(recv, call.Name, args)
		if !ok {
			diag.ReportError(u.reporter, diag.SemaUnresolvedOverload, u.span(id), "Cant get overload for method: "+sig).
				WithNote(u.span(id), "receiver class is "+u.table.ClassName(recv)).
				Emit()
			return symbols.NoSymbolID
		}
		return u.table.Symbols.Get(method).Return
	}

	if this, ok := u.table.ResolveThis(scope); ok {
		if method, found := u.table.ResolveMethod(this, call.Name, args); found {
			return u.table.Symbols.Get(method).Return
		}
	}
	cls, ok := u.table.ResolveClass(scope, call.Name)
	if !ok {
		u.report(diag.SemaUnresolvedOverload, u.span(id), "Cant get overload for method: %s", sig)
		return symbols.NoSymbolID
	}
	if _, ok := u.table.ResolveConstructor(cls, args); !ok {
		u.report(diag.SemaUnresolvedOverload, u.span(id), "Cant get overload for constructor: %s", sig)
		return symbols.NoSymbolID
	}
	return cls
}

// synthMember types lhs and resolves rhs as a member of the result.
func (u *unit) synthMember(id ast.NodeID, recv symbols.SymbolID) symbols.SymbolID {
	m, _ := u.nodes.Member(id)
	before := u.errors()
	lhs := u.synth(m.Lhs, recv)
	if !lhs.IsValid() {
		if u.errors() == before {
			u.report(diag.SemaUnresolvedSymbol, u.span(m.Rhs), "Missing property: %s", u.memberName(m.Rhs))
		}
		return symbols.NoSymbolID
	}
	return u.synth(m.Rhs, lhs)
}

func (u *unit) memberName(id ast.NodeID) string {
	if ident, ok := u.nodes.Ident(id); ok {
		return ident.Name
	}
	if call, ok := u.nodes.Call(id); ok {
		return call.Name
	}
	return u.nodes.Kind(id).String()
}
