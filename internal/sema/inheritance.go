package sema

import (
	"sort"
	"strings"

	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/symbols"
)

// checkInheritance validates parents, reports each inheritance cycle once
// and flags fields redefined with a different class than in an ancestor.
func (u *unit) checkInheritance() {
	cycles := make(map[string]struct{})
	for _, classID := range u.classes() {
		scope, ok := u.classScopes[classID]
		if !ok {
			continue
		}
		cls, _ := u.nodes.Class(classID)
		if cls.Parent == "" {
			continue
		}
		self := u.table.SymbolID(scope)
		parent, ok := u.table.Parent(self)
		if !ok {
			span := cls.ParentSpan
			if span.Empty() {
				span = u.span(classID)
			}
			u.report(diag.SemaUnresolvedSymbol, span, "Missing class: %s", cls.Parent)
			continue
		}
		if parent == self {
			u.report(diag.SemaSelfInheritance, u.span(classID), "Self inheritance forbidden: %s", cls.Name)
			continue
		}
		u.walkParents(classID, self, parent, cycles)
	}

	u.registeredMembers(func(classID, member ast.NodeID, scope symbols.ScopeID) {
		if u.nodes.Kind(member) == ast.NodeVar && u.decls[member] == declFresh {
			u.checkFieldRedefinition(u.table.SymbolID(scope), member)
		}
	})
}

// walkParents follows the parent chain from self. A revisited class closes a
// cycle; cycles are keyed by their sorted member names so that every class
// on the loop does not report it again.
func (u *unit) walkParents(classID ast.NodeID, self, parent symbols.SymbolID, cycles map[string]struct{}) {
	visited := []symbols.SymbolID{self}
	for cur := parent; ; {
		if at := indexOf(visited, cur); at >= 0 {
			loop := visited[at:]
			if len(loop) < 2 {
				return // self inheritance, reported on its own class
			}
			names := u.table.ClassNames(loop)
			sort.Strings(names)
			key := strings.Join(names, ",")
			if _, seen := cycles[key]; seen {
				return
			}
			cycles[key] = struct{}{}
			path := append(u.table.ClassNames(loop), u.table.ClassName(cur))
			diag.ReportError(u.reporter, diag.SemaInheritanceCycle, u.span(classID), "Class loop on: "+u.table.ClassName(cur)).
				WithNote(u.span(classID), "cycle: "+strings.Join(path, " -> ")).
				Emit()
			return
		}
		visited = append(visited, cur)
		next, ok := u.table.Parent(cur)
		if !ok {
			return
		}
		cur = next
	}
}

func (u *unit) checkFieldRedefinition(class symbols.SymbolID, member ast.NodeID) {
	scope, ok := u.index.Lookup(member)
	if !ok {
		return
	}
	field := u.table.Symbol(scope)
	if !field.IsField() || !field.Type.IsValid() {
		return
	}
	for _, anc := range u.table.Ancestors(class) {
		other, ok := u.table.OwnField(anc, field.Name)
		if !ok {
			continue
		}
		otherSym := u.table.Symbols.Get(other)
		if !otherSym.Type.IsValid() || otherSym.Type == field.Type {
			continue
		}
		owner := u.table.ClassName(class)
		diag.ReportError(u.reporter, diag.SemaFieldRedefinition, u.span(member), "Redefinition of field: "+owner+"::"+field.Name).
			WithNote(otherSym.Span, u.table.ClassName(anc)+"::"+field.Name+" has type "+u.table.ClassName(otherSym.Type)).
			Emit()
		return
	}
}

func indexOf(ids []symbols.SymbolID, id symbols.SymbolID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
