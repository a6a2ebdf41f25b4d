package sema

import (
	"opp/internal/ast"
	"opp/internal/diag"
)

const entrypointMessage = "Main class constructor expected"

// entryCall unwraps the program's entry expression: a bare call or
// this.Call(...). ok is false for any other shape.
func (u *unit) entryCall() (ast.NodeID, bool) {
	p, ok := u.nodes.Program(u.program)
	if !ok || !p.Entry.IsValid() {
		return ast.NoNodeID, false
	}
	switch u.nodes.Kind(p.Entry) {
	case ast.NodeCall:
		return p.Entry, true
	case ast.NodeMember:
		m, _ := u.nodes.Member(p.Entry)
		if u.nodes.Kind(m.Lhs) == ast.NodeThis && u.nodes.Kind(m.Rhs) == ast.NodeCall {
			return m.Rhs, true
		}
	}
	return ast.NoNodeID, false
}

// checkEntrypoint requires the entry expression to construct an existing class.
func (u *unit) checkEntrypoint() {
	p, ok := u.nodes.Program(u.program)
	if !ok {
		return
	}
	if !p.Entry.IsValid() {
		if u.opts.RequireEntry {
			u.report(diag.SemaEntrypointExpected, u.span(u.program), entrypointMessage)
		}
		return
	}
	call, ok := u.entryCall()
	if !ok {
		u.report(diag.SemaEntrypointExpected, u.span(p.Entry), entrypointMessage)
		return
	}
	c, _ := u.nodes.Call(call)
	if _, ok := u.table.ResolveClass(u.table.Root, c.Name); !ok {
		diag.ReportError(u.reporter, diag.SemaEntrypointExpected, u.span(p.Entry), entrypointMessage).
			WithNote(u.span(call), "no class named "+c.Name).
			Emit()
	}
}
