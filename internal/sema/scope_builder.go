package sema

import (
	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/symbols"
)

// buildScopes walks the whole program, threads block-local scopes through
// statement and parameter lists and commits every visited node to the index.
func (u *unit) buildScopes() {
	root := u.table.Root
	u.commit(u.program, root)
	for _, classID := range u.classes() {
		u.commit(classID, root)
		scope, ok := u.classScopes[classID]
		if !ok {
			continue
		}
		cls, _ := u.nodes.Class(classID)
		for _, member := range cls.Members {
			switch u.nodes.Kind(member) {
			case ast.NodeVar:
				u.scopeVar(member, scope)
			case ast.NodeCtor, ast.NodeMethod:
				u.scopeCallable(member, scope)
			default:
				u.commit(member, scope)
			}
		}
	}
	if p, ok := u.nodes.Program(u.program); ok && p.Entry.IsValid() {
		u.scopeExpr(p.Entry, root)
	}
}

// scopeCallable re-enters the scope registered for a constructor or method
// and threads its parameters into the body.
func (u *unit) scopeCallable(id ast.NodeID, classScope symbols.ScopeID) {
	u.commit(id, classScope)
	cur, ok := u.memberScopes[id]
	if !ok {
		return
	}
	var params []ast.NodeID
	var body ast.NodeID
	if c, ok := u.nodes.Ctor(id); ok {
		params, body = c.Params, c.Body
	} else if m, ok := u.nodes.Method(id); ok {
		params, body = m.Params, m.Body
	}
	for _, pid := range params {
		cur = u.scopeParam(pid, cur)
	}
	if body.IsValid() {
		u.scopeBody(body, cur)
	}
}

func (u *unit) scopeParam(id ast.NodeID, cur symbols.ScopeID) symbols.ScopeID {
	p, ok := u.nodes.Param(id)
	if !ok {
		u.commit(id, cur)
		return cur
	}
	span := u.span(id)
	if prev, found := u.table.ResolveSymbol(cur, p.Name); found && u.table.Symbol(prev).IsInstance() {
		u.decls[id] = declRejected
		u.commit(id, cur)
		diag.ReportError(u.reporter, diag.SemaDuplicateSymbol, span, "Symbol already defined: "+p.Name).
			WithNote(u.table.Symbol(prev).Span, "previous definition here").
			Emit()
		return cur
	}
	next, ok := u.table.AddSymbol(cur, p.Name, symbols.NewInstance(symbols.InstanceParam, p.Name, id, span))
	if !ok {
		u.decls[id] = declRejected
		u.commit(id, cur)
		u.report(diag.SemaDuplicateSymbol, span, "Symbol already defined: %s", p.Name)
		return cur
	}
	u.decls[id] = declFresh
	u.commit(id, next)
	return next
}

// scopeBody commits the body, opens a block scope and threads the statements
// through it. The caller's scope is never changed.
func (u *unit) scopeBody(id ast.NodeID, cur symbols.ScopeID) {
	u.commit(id, cur)
	b, ok := u.nodes.Body(id)
	if !ok {
		return
	}
	inner := u.table.AddChild(cur)
	for _, stmt := range b.Stmts {
		inner = u.scopeStmt(stmt, inner)
	}
}

// scopeBranch handles if/while arms; bindings made inside never leak out.
func (u *unit) scopeBranch(id ast.NodeID, cur symbols.ScopeID) {
	if !id.IsValid() {
		return
	}
	if u.nodes.Kind(id) == ast.NodeBody {
		u.scopeBody(id, cur)
		return
	}
	u.scopeStmt(id, u.table.AddChild(cur))
}

// scopeStmt commits one statement and returns the scope active for the
// statements that follow it.
func (u *unit) scopeStmt(id ast.NodeID, cur symbols.ScopeID) symbols.ScopeID {
	switch u.nodes.Kind(id) {
	case ast.NodeVar:
		return u.scopeVar(id, cur)
	case ast.NodeBody:
		u.scopeBody(id, cur)
	case ast.NodeIf:
		u.commit(id, cur)
		s, _ := u.nodes.If(id)
		u.scopeExpr(s.Cond, cur)
		u.scopeBranch(s.Then, cur)
		u.scopeBranch(s.Else, cur)
	case ast.NodeWhile:
		u.commit(id, cur)
		s, _ := u.nodes.While(id)
		u.scopeExpr(s.Cond, cur)
		u.scopeBranch(s.Body, cur)
	case ast.NodeReturn:
		u.commit(id, cur)
		s, _ := u.nodes.Return(id)
		u.scopeExpr(s.Value, cur)
	case ast.NodeAssign:
		u.commit(id, cur)
		s, _ := u.nodes.Assign(id)
		u.scopeExpr(s.Value, cur)
	default:
		u.scopeExpr(id, cur)
	}
	return cur
}

// scopeVar binds a var declaration. The initializer sees the scope before
// the declaration; a name that already denotes a field reuses the field.
func (u *unit) scopeVar(id ast.NodeID, cur symbols.ScopeID) symbols.ScopeID {
	v, ok := u.nodes.Var(id)
	if !ok {
		u.commit(id, cur)
		return cur
	}
	u.scopeExpr(v.Init, cur)
	if u.decls[id] == declRejected {
		u.commit(id, cur)
		return cur
	}
	span := u.span(id)
	if prev, found := u.table.ResolveSymbol(cur, v.Name); found && u.table.Symbol(prev).IsInstance() {
		sym := u.table.Symbol(prev)
		if sym.IsField() {
			if sym.Decl == id {
				u.decls[id] = declFresh
			} else {
				u.decls[id] = declField
			}
			u.commit(id, prev)
			return cur
		}
		u.decls[id] = declRejected
		u.commit(id, cur)
		diag.ReportError(u.reporter, diag.SemaDuplicateSymbol, span, "Symbol already defined: "+v.Name).
			WithNote(sym.Span, "previous definition here").
			Emit()
		return cur
	}
	next, ok := u.table.AddSymbol(cur, v.Name, symbols.NewInstance(symbols.InstanceLocal, v.Name, id, span))
	if !ok {
		u.decls[id] = declRejected
		u.commit(id, cur)
		u.report(diag.SemaDuplicateSymbol, span, "Symbol already defined: %s", v.Name)
		return cur
	}
	u.decls[id] = declFresh
	u.commit(id, next)
	return next
}

// scopeExpr commits an expression tree; expressions open no scopes.
func (u *unit) scopeExpr(id ast.NodeID, cur symbols.ScopeID) {
	u.nodes.Walk(id, func(n ast.NodeID) bool {
		u.commit(n, cur)
		return true
	})
}
