package sema

import (
	"errors"
	"fmt"

	"opp/internal/ast"
)

// validate checks the table invariants and that every node the scope
// builder was expected to reach has exactly one index entry.
func (u *unit) validate() error {
	var errs []error
	if err := u.table.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, id := range u.commitConflicts {
		errs = append(errs, fmt.Errorf("node %d (%s) committed twice", id, u.nodes.Kind(id)))
	}
	u.nodes.Walk(u.program, func(id ast.NodeID) bool {
		if _, ok := u.index.Lookup(id); !ok {
			errs = append(errs, fmt.Errorf("node %d (%s) at %s has no scope", id, u.nodes.Kind(id), u.span(id)))
			return false
		}
		switch u.nodes.Kind(id) {
		case ast.NodeClass:
			_, ok := u.classScopes[id]
			return ok
		case ast.NodeCtor, ast.NodeMethod:
			_, ok := u.memberScopes[id]
			return ok
		}
		return true
	})
	return errors.Join(errs...)
}
