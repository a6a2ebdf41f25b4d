package ast

// Children returns the direct children of a node in source order.
// Absent optional children are skipped.
func (n *Nodes) Children(id NodeID) []NodeID {
	node := n.Get(id)
	if node == nil {
		return nil
	}
	var out []NodeID
	push := func(ids ...NodeID) {
		for _, c := range ids {
			if c.IsValid() {
				out = append(out, c)
			}
		}
	}
	switch node.Kind {
	case NodeProgram:
		p, _ := n.Program(id)
		push(p.Classes...)
		push(p.Entry)
	case NodeClass:
		c, _ := n.Class(id)
		push(c.Members...)
	case NodeVar:
		v, _ := n.Var(id)
		push(v.Init)
	case NodeCtor:
		c, _ := n.Ctor(id)
		push(c.Params...)
		push(c.Body)
	case NodeMethod:
		m, _ := n.Method(id)
		push(m.Params...)
		push(m.Body)
	case NodeBody:
		b, _ := n.Body(id)
		push(b.Stmts...)
	case NodeReturn:
		r, _ := n.Return(id)
		push(r.Value)
	case NodeAssign:
		a, _ := n.Assign(id)
		push(a.Value)
	case NodeIf:
		i, _ := n.If(id)
		push(i.Cond, i.Then, i.Else)
	case NodeWhile:
		w, _ := n.While(id)
		push(w.Cond, w.Body)
	case NodeCall:
		c, _ := n.Call(id)
		push(c.Args...)
	case NodeMember:
		m, _ := n.Member(id)
		push(m.Lhs, m.Rhs)
	}
	return out
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the subtree of the current node.
func (n *Nodes) Walk(id NodeID, fn func(NodeID) bool) {
	if !id.IsValid() || !fn(id) {
		return
	}
	for _, c := range n.Children(id) {
		n.Walk(c, fn)
	}
}
