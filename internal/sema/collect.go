package sema

import (
	"strconv"

	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/source"
	"opp/internal/symbols"
	"opp/internal/trace"
)

// collectClasses registers every top-level class in the root scope.
func (u *unit) collectClasses() {
	root := u.table.Root
	for _, classID := range u.classes() {
		cls, ok := u.nodes.Class(classID)
		if !ok {
			continue
		}
		span := u.span(classID)
		scope, ok := u.table.AddSymbol(root, cls.Name, symbols.NewClass(cls.Name, cls.Parent, classID, span))
		if !ok {
			b := diag.ReportError(u.reporter, diag.SemaDuplicateSymbol, span, "Symbol already defined: "+cls.Name)
			if prev, found := u.table.ResolveSymbol(root, cls.Name); found {
				if sym := u.table.Symbol(prev); sym != nil && sym.Flags&symbols.SymbolFlagBuiltin != 0 {
					b.WithNote(span, cls.Name+" is a builtin class")
				} else if sym != nil {
					b.WithNote(sym.Span, "previous definition here")
				}
			}
			b.Emit()
			continue
		}
		u.classScopes[classID] = scope
	}
}

// collectMembers registers fields, constructors and methods inside the
// scope of each class that survived collectClasses.
func (u *unit) collectMembers() {
	for _, classID := range u.classes() {
		scope, ok := u.classScopes[classID]
		if !ok {
			continue
		}
		cls, _ := u.nodes.Class(classID)
		trace.Point(u.ctx, trace.ScopeClass, "collect:"+cls.Name, strconv.Itoa(len(cls.Members))+" members")
		for _, member := range cls.Members {
			switch u.nodes.Kind(member) {
			case ast.NodeVar:
				u.collectField(scope, cls.Name, member)
			case ast.NodeCtor:
				u.collectCtor(scope, cls.Name, member)
			case ast.NodeMethod:
				u.collectMethod(scope, cls.Name, member)
			}
		}
	}
}

func (u *unit) collectField(classScope symbols.ScopeID, className string, id ast.NodeID) {
	v, ok := u.nodes.Var(id)
	if !ok {
		return
	}
	span := u.span(id)
	if _, ok := u.table.AddSymbol(classScope, v.Name, symbols.NewInstance(symbols.InstanceField, v.Name, id, span)); !ok {
		u.decls[id] = declRejected
		u.reportMemberClash(classScope, v.Name, span, className+"::"+v.Name)
	}
}

func (u *unit) collectCtor(classScope symbols.ScopeID, className string, id ast.NodeID) {
	c, ok := u.nodes.Ctor(id)
	if !ok {
		return
	}
	params, ok := u.paramClasses(classScope, c.Params)
	if !ok {
		return
	}
	kind := symbols.CtorDecl
	if c.Body.IsValid() {
		kind = symbols.CtorDef
	}
	owner := u.table.SymbolID(classScope)
	mangled := u.table.MangleSymbols(className, params)
	span := u.span(id)
	sym := symbols.NewMethod(kind, className, owner, params, symbols.NoSymbolID, mangled, id, span)
	scope, ok := u.table.AddSymbol(classScope, mangled, sym)
	if !ok {
		u.reportMemberClash(classScope, mangled, span, className+"::"+u.table.Signature(className, params))
		return
	}
	u.memberScopes[id] = scope
}

func (u *unit) collectMethod(classScope symbols.ScopeID, className string, id ast.NodeID) {
	m, ok := u.nodes.Method(id)
	if !ok {
		return
	}
	params, ok := u.paramClasses(classScope, m.Params)
	ret := symbols.NoSymbolID
	if m.Result != "" {
		cls, found := u.table.ResolveClass(classScope, m.Result)
		if !found {
			u.report(diag.SemaUnresolvedSymbol, u.span(id), "Missing class: %s", m.Result)
			ok = false
		}
		ret = cls
	}
	if !ok {
		return
	}
	kind := symbols.MethodDecl
	if m.Body.IsValid() {
		kind = symbols.MethodDef
	}
	owner := u.table.SymbolID(classScope)
	mangled := u.table.MangleSymbols(m.Name, params)
	span := u.span(id)
	sym := symbols.NewMethod(kind, m.Name, owner, params, ret, mangled, id, span)
	scope, ok := u.table.AddSymbol(classScope, mangled, sym)
	if !ok {
		u.reportMemberClash(classScope, mangled, span, className+"::"+u.table.Signature(m.Name, params))
		return
	}
	u.memberScopes[id] = scope
}

// paramClasses resolves the declared parameter classes. Every unknown class
// is reported; ok is false when any of them failed.
func (u *unit) paramClasses(scope symbols.ScopeID, params []ast.NodeID) ([]symbols.SymbolID, bool) {
	out := make([]symbols.SymbolID, 0, len(params))
	ok := true
	for _, pid := range params {
		p, found := u.nodes.Param(pid)
		if !found {
			ok = false
			continue
		}
		cls, found := u.table.ResolveClass(scope, p.Type)
		if !found {
			u.report(diag.SemaUnresolvedSymbol, u.span(pid), "Missing class: %s", p.Type)
			ok = false
			continue
		}
		out = append(out, cls)
	}
	return out, ok
}

func (u *unit) reportMemberClash(classScope symbols.ScopeID, key string, span source.Span, label string) {
	b := diag.ReportError(u.reporter, diag.SemaDuplicateSymbol, span, "Symbol already defined: "+label)
	if prev, ok := u.table.Scopes.Get(classScope).Named[key]; ok {
		if sym := u.table.Symbol(prev); sym != nil {
			b.WithNote(sym.Span, "previous definition here")
		}
	}
	b.Emit()
}
