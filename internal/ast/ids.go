package ast

type (
	// NodeID is the stable identity of a node: dense, allocation ordered, 1-based.
	NodeID uint32
	// PayloadID indexes a per-kind payload arena.
	PayloadID uint32
)

const (
	NoNodeID    NodeID    = 0
	NoPayloadID PayloadID = 0
)

func (id NodeID) IsValid() bool    { return id != NoNodeID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }
