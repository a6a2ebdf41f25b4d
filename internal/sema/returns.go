package sema

import (
	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/symbols"
)

type returnStatus uint8

const (
	returnOpen returnStatus = iota
	returnClosed
)

// checkReturnPaths reports method definitions with a result class whose
// body can finish without returning. Constructors have no result and are
// not checked.
func (u *unit) checkReturnPaths() {
	u.registeredMembers(func(_, member ast.NodeID, _ symbols.ScopeID) {
		m, ok := u.nodes.Method(member)
		if !ok || m.Result == "" || !m.Body.IsValid() {
			return
		}
		if _, ok := u.memberScopes[member]; !ok {
			return
		}
		if u.returnStatus(m.Body) != returnClosed {
			u.report(diag.SemaMissingReturn, u.span(member), "Missing return statement")
		}
	})
}

// returnStatus: a body returns when any of its statements does; if needs
// both arms; while returns when its body does.
func (u *unit) returnStatus(id ast.NodeID) returnStatus {
	if !id.IsValid() {
		return returnOpen
	}
	switch u.nodes.Kind(id) {
	case ast.NodeReturn:
		return returnClosed
	case ast.NodeBody:
		b, _ := u.nodes.Body(id)
		for _, stmt := range b.Stmts {
			if u.returnStatus(stmt) == returnClosed {
				return returnClosed
			}
		}
		return returnOpen
	case ast.NodeIf:
		s, _ := u.nodes.If(id)
		if s.Else.IsValid() && u.returnStatus(s.Then) == returnClosed && u.returnStatus(s.Else) == returnClosed {
			return returnClosed
		}
		return returnOpen
	case ast.NodeWhile:
		s, _ := u.nodes.While(id)
		return u.returnStatus(s.Body)
	default:
		return returnOpen
	}
}
