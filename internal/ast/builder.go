package ast

type Hints struct{ Nodes uint }

// Builder owns all nodes of one compilation unit.
type Builder struct {
	Nodes *Nodes
}

func NewBuilder(hints Hints) *Builder {
	if hints.Nodes == 0 {
		hints.Nodes = 1 << 8
	}
	return &Builder{
		Nodes: NewNodes(hints.Nodes),
	}
}

// Classes returns the program's class list, nil when id is not a program.
func (b *Builder) Classes(program NodeID) []NodeID {
	if p, ok := b.Nodes.Program(program); ok {
		return p.Classes
	}
	return nil
}
