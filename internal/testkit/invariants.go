package testkit

import (
	"errors"
	"fmt"

	"opp/internal/ast"
	"opp/internal/symbols"
)

// CheckSpanInvariants runs a minimal set of span invariants on a decoded program:
// 1) every located span is ordered (Start not after End)
// 2) every node of a class points to the same file as the program
// 3) located class spans cover the located spans of their members
func CheckSpanInvariants(b *ast.Builder, program ast.NodeID) error {
	if b == nil {
		return fmt.Errorf("nil builder")
	}
	p, ok := b.Nodes.Program(program)
	if !ok {
		return fmt.Errorf("node %d is not a program", program)
	}
	file := b.Nodes.Span(program).File

	var errs []error
	b.Nodes.Walk(program, func(id ast.NodeID) bool {
		sp := b.Nodes.Span(id)
		if sp.File != file {
			errs = append(errs, fmt.Errorf("node %d (%s): span file mismatch: got=%d want=%d", id, b.Nodes.Kind(id), sp.File, file))
		}
		if !sp.Empty() && sp.End.IsValid() && sp.End.Before(sp.Start) {
			errs = append(errs, fmt.Errorf("node %d (%s): span end before start: %v", id, b.Nodes.Kind(id), sp))
		}
		return true
	})

	for _, c := range p.Classes {
		cls, _ := b.Nodes.Class(c)
		outer := b.Nodes.Span(c)
		if outer.Empty() || !outer.End.IsValid() {
			continue
		}
		for _, m := range cls.Members {
			sp := b.Nodes.Span(m)
			if sp.Empty() {
				continue
			}
			if outer.Cover(sp) != outer {
				errs = append(errs, fmt.Errorf("member span %v is outside class %s span %v", sp, cls.Name, outer))
			}
		}
	}
	return errors.Join(errs...)
}

// CheckIndexInvariants verifies that every node under program has exactly
// one index entry pointing at an existing scope, and that the table itself
// is consistent. Only meaningful for programs without declaration errors.
func CheckIndexInvariants(b *ast.Builder, program ast.NodeID, table *symbols.Table, ix *symbols.Index) error {
	if table == nil || ix == nil {
		return fmt.Errorf("nil table or index")
	}
	errs := []error{table.Validate()}
	b.Nodes.Walk(program, func(id ast.NodeID) bool {
		scope, ok := ix.Lookup(id)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("node %d (%s) at %v has no scope", id, b.Nodes.Kind(id), b.Nodes.Span(id)))
		case table.Scopes.Get(scope) == nil:
			errs = append(errs, fmt.Errorf("node %d (%s) maps to unknown scope %d", id, b.Nodes.Kind(id), scope))
		}
		return true
	})
	return errors.Join(errs...)
}
