package sema

import (
	"context"
	"fmt"

	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/source"
	"opp/internal/symbols"
)

// declRole tells the later passes how a var or param node was bound.
type declRole uint8

const (
	declFresh    declRole = iota // introduced its own instance symbol
	declField                    // var naming an existing field; checked as an assignment
	declRejected                 // registration failed, only the initializer is checked
)

// unit carries the state shared by all passes over one program.
type unit struct {
	ctx      context.Context
	builder  *ast.Builder
	nodes    *ast.Nodes
	program  ast.NodeID
	opts     Options
	table    *symbols.Table
	index    *symbols.Index
	reporter *diag.CountingReporter

	// classScopes and memberScopes hold the scopes registered by the
	// collectors; nodes missing here were rejected and their subtrees skipped.
	classScopes  map[ast.NodeID]symbols.ScopeID
	memberScopes map[ast.NodeID]symbols.ScopeID
	decls        map[ast.NodeID]declRole

	// double commits are an AST sharing bug, surfaced by validation
	commitConflicts []ast.NodeID
}

func newUnit(ctx context.Context, builder *ast.Builder, program ast.NodeID, opts Options, bag *diag.Bag) *unit {
	return &unit{
		ctx:          ctx,
		builder:      builder,
		nodes:        builder.Nodes,
		program:      program,
		opts:         opts,
		table:        symbols.NewTable(opts.Hints),
		index:        symbols.NewIndex(int(builder.Nodes.Len())),
		reporter:     &diag.CountingReporter{Next: diag.BagReporter{Bag: bag}},
		classScopes:  make(map[ast.NodeID]symbols.ScopeID),
		memberScopes: make(map[ast.NodeID]symbols.ScopeID),
		decls:        make(map[ast.NodeID]declRole),
	}
}

func (u *unit) report(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportError(u.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

// errors is the running error count, used to suppress follow-up reports.
func (u *unit) errors() int { return u.reporter.Errors() }

func (u *unit) span(id ast.NodeID) source.Span { return u.nodes.Span(id) }

func (u *unit) classes() []ast.NodeID { return u.builder.Classes(u.program) }

// registeredMembers calls fn for each member of every registered class.
func (u *unit) registeredMembers(fn func(classID, member ast.NodeID, scope symbols.ScopeID)) {
	for _, classID := range u.classes() {
		scope, ok := u.classScopes[classID]
		if !ok {
			continue
		}
		cls, ok := u.nodes.Class(classID)
		if !ok {
			continue
		}
		for _, member := range cls.Members {
			fn(classID, member, scope)
		}
	}
}

func (u *unit) commit(node ast.NodeID, scope symbols.ScopeID) {
	if !u.index.Commit(node, scope) {
		u.commitConflicts = append(u.commitConflicts, node)
	}
}

// typeOf returns the class recorded for an instance symbol.
func (u *unit) typeOf(id symbols.SymbolID) symbols.SymbolID {
	if sym := u.table.Symbols.Get(id); sym.IsInstance() {
		return sym.Type
	}
	return symbols.NoSymbolID
}
