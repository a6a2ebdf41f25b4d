package sema

import (
	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/symbols"
)

// checkTypes infers and checks types bottom-up. Field initializers of all
// classes are checked before any body so that bodies see field types.
func (u *unit) checkTypes() {
	u.registeredMembers(func(_, member ast.NodeID, _ symbols.ScopeID) {
		if u.nodes.Kind(member) == ast.NodeVar {
			u.checkVar(member)
		}
	})
	u.registeredMembers(func(_, member ast.NodeID, _ symbols.ScopeID) {
		if _, ok := u.memberScopes[member]; !ok {
			return
		}
		var params []ast.NodeID
		var body ast.NodeID
		switch u.nodes.Kind(member) {
		case ast.NodeCtor:
			c, _ := u.nodes.Ctor(member)
			params, body = c.Params, c.Body
		case ast.NodeMethod:
			m, _ := u.nodes.Method(member)
			params, body = m.Params, m.Body
		default:
			return
		}
		for _, pid := range params {
			u.checkParam(pid)
		}
		if body.IsValid() {
			u.checkStmt(body)
		}
	})
	u.checkEntryCall()
}

func (u *unit) checkStmt(id ast.NodeID) {
	switch u.nodes.Kind(id) {
	case ast.NodeBody:
		b, _ := u.nodes.Body(id)
		for _, stmt := range b.Stmts {
			u.checkStmt(stmt)
		}
	case ast.NodeVar:
		u.checkVar(id)
	case ast.NodeAssign:
		u.checkAssign(id)
	case ast.NodeReturn:
		u.checkReturn(id)
	case ast.NodeIf:
		s, _ := u.nodes.If(id)
		u.checkCond(s.Cond)
		if s.Then.IsValid() {
			u.checkStmt(s.Then)
		}
		if s.Else.IsValid() {
			u.checkStmt(s.Else)
		}
	case ast.NodeWhile:
		s, _ := u.nodes.While(id)
		u.checkCond(s.Cond)
		if s.Body.IsValid() {
			u.checkStmt(s.Body)
		}
	default:
		if u.nodes.Kind(id).IsExpr() {
			u.synth(id, symbols.NoSymbolID)
		}
	}
}

func (u *unit) checkVar(id ast.NodeID) {
	scope, ok := u.index.Lookup(id)
	if !ok {
		return
	}
	v, _ := u.nodes.Var(id)
	switch u.decls[id] {
	case declRejected:
		u.synth(v.Init, symbols.NoSymbolID)
	case declField:
		u.checkAssignment(id, v.Name, u.table.SymbolID(scope), v.Init)
	default:
		inst := u.table.SymbolID(scope)
		before := u.errors()
		typ := u.synth(v.Init, symbols.NoSymbolID)
		if !typ.IsValid() {
			if u.errors() == before {
				u.report(diag.SemaAmbiguousType, u.span(id), "Can`t infer type: %s", v.Name)
			}
			return
		}
		// ни поле, ни локальная переменная не может иметь тип своего класса
		if owner, ok := u.table.ResolveThis(scope); ok && owner == typ {
			u.report(diag.SemaRecursiveType, u.span(id), "Recursive type forbidden: %s", v.Name)
			return
		}
		u.table.SetInstanceType(inst, typ)
	}
}

func (u *unit) checkAssign(id ast.NodeID) {
	scope, ok := u.index.Lookup(id)
	if !ok {
		return
	}
	a, _ := u.nodes.Assign(id)
	target, found := u.resolveName(scope, a.Name)
	if !found {
		u.synth(a.Value, symbols.NoSymbolID)
		u.report(diag.SemaUnresolvedSymbol, u.span(id), "Unexpected identifier: %s", a.Name)
		return
	}
	u.checkAssignment(id, a.Name, target, a.Value)
}

// checkAssignment checks value against the already inferred class of target.
func (u *unit) checkAssignment(id ast.NodeID, name string, target symbols.SymbolID, value ast.NodeID) {
	before := u.errors()
	actual := u.synth(value, symbols.NoSymbolID)
	expected := u.typeOf(target)
	if !expected.IsValid() {
		u.report(diag.SemaAmbiguousType, u.span(id), "Ambiguous variable type: %s", name)
		return
	}
	if !actual.IsValid() {
		if u.errors() == before {
			u.report(diag.SemaAmbiguousType, u.span(id), "Ambiguous expression type: %s", name)
		}
		return
	}
	if actual != expected {
		u.reportMismatch(id, expected, actual)
	}
}

func (u *unit) checkReturn(id ast.NodeID) {
	scope, ok := u.index.Lookup(id)
	if !ok {
		return
	}
	method, ok := u.table.ResolveEnclosingMethod(scope)
	if !ok {
		// документ из astio так не построить; только для деревьев, собранных вручную
		u.report(diag.SemaUnexpectedReturn, u.span(id), "Unexpected return statement")
		return
	}
	expected := u.table.Symbols.Get(method).Return
	r, _ := u.nodes.Return(id)
	actual := symbols.NoSymbolID
	if r.Value.IsValid() {
		before := u.errors()
		actual = u.synth(r.Value, symbols.NoSymbolID)
		if !actual.IsValid() && u.errors() != before {
			return
		}
	}
	if actual != expected {
		u.reportMismatch(id, expected, actual)
	}
}

// checkCond requires an if/while condition to be exactly Boolean.
func (u *unit) checkCond(id ast.NodeID) {
	if !id.IsValid() {
		return
	}
	before := u.errors()
	actual := u.synth(id, symbols.NoSymbolID)
	boolean := u.table.Builtin(symbols.ClassBoolean)
	if actual == boolean {
		return
	}
	if actual.IsValid() || u.errors() == before {
		u.reportMismatch(id, boolean, actual)
	}
}

// checkParam records the declared class of a parameter.
func (u *unit) checkParam(id ast.NodeID) {
	if u.decls[id] != declFresh {
		return
	}
	scope, ok := u.index.Lookup(id)
	if !ok {
		return
	}
	p, _ := u.nodes.Param(id)
	cls, ok := u.table.ResolveClass(scope, p.Type)
	if !ok {
		return
	}
	method, ok := u.table.ResolveEnclosingMethod(scope)
	if ok && u.table.Symbols.Get(method).Method.IsCtor() {
		if owner, found := u.table.ResolveThis(scope); found && owner == cls {
			u.report(diag.SemaRecursiveType, u.span(id), "Recursive type in constructor: %s", p.Name)
		}
	}
	u.table.SetInstanceType(u.table.SymbolID(scope), cls)
}

// checkEntryCall type-checks the program's entry call as a constructor call
// from the root scope. Its shape is validated by checkEntrypoint.
func (u *unit) checkEntryCall() {
	call, ok := u.entryCall()
	if !ok {
		return
	}
	c, _ := u.nodes.Call(call)
	if _, isClass := u.table.ResolveClass(u.table.Root, c.Name); isClass {
		u.synth(call, symbols.NoSymbolID)
	}
}

func (u *unit) reportMismatch(id ast.NodeID, expected, actual symbols.SymbolID) {
	u.report(diag.SemaTypeMismatch, u.span(id), "Expected type: %s, but found: %s",
		u.table.ClassName(expected), u.table.ClassName(actual))
}

// resolveName finds an instance by plain name: lexical lookup first, then
// the fields inherited by the enclosing class.
func (u *unit) resolveName(scope symbols.ScopeID, name string) (symbols.SymbolID, bool) {
	if id, ok := u.table.ResolveLocal(scope, name); ok {
		return id, true
	}
	if this, ok := u.table.ResolveThis(scope); ok {
		return u.table.ResolveField(this, name)
	}
	return symbols.NoSymbolID, false
}
