package ast

import (
	"opp/internal/source"
)

// Nodes manages allocation of nodes and their per-kind payloads.
type Nodes struct {
	Arena    *Arena[Node]
	Programs *Arena[ProgramData]
	Classes  *Arena[ClassData]
	Vars     *Arena[VarData]
	Ctors    *Arena[CtorData]
	Methods  *Arena[MethodData]
	Params   *Arena[ParamData]
	Bodies   *Arena[BodyData]
	Returns  *Arena[ReturnData]
	Assigns  *Arena[AssignData]
	Ifs      *Arena[IfData]
	Whiles   *Arena[WhileData]
	Literals *Arena[LiteralData]
	Idents   *Arena[IdentData]
	Calls    *Arena[CallData]
	Members  *Arena[MemberData]
}

// NewNodes creates per-kind arenas preallocated with capHint (1<<8 when zero).
func NewNodes(capHint uint) *Nodes {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint/8 + 1
	return &Nodes{
		Arena:    NewArena[Node](capHint),
		Programs: NewArena[ProgramData](1),
		Classes:  NewArena[ClassData](small),
		Vars:     NewArena[VarData](small),
		Ctors:    NewArena[CtorData](small),
		Methods:  NewArena[MethodData](small),
		Params:   NewArena[ParamData](small),
		Bodies:   NewArena[BodyData](small),
		Returns:  NewArena[ReturnData](small),
		Assigns:  NewArena[AssignData](small),
		Ifs:      NewArena[IfData](small),
		Whiles:   NewArena[WhileData](small),
		Literals: NewArena[LiteralData](capHint),
		Idents:   NewArena[IdentData](capHint),
		Calls:    NewArena[CallData](capHint),
		Members:  NewArena[MemberData](capHint),
	}
}

func (n *Nodes) new(kind NodeKind, span source.Span, payload uint32) NodeID {
	return NodeID(n.Arena.Allocate(Node{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

// Get returns the node with the given ID or nil.
func (n *Nodes) Get(id NodeID) *Node {
	return n.Arena.Get(uint32(id))
}

// Kind returns the kind of the node, NodeInvalid for unknown IDs.
func (n *Nodes) Kind(id NodeID) NodeKind {
	if node := n.Get(id); node != nil {
		return node.Kind
	}
	return NodeInvalid
}

// Span returns the node's source span, the zero span for unknown IDs.
func (n *Nodes) Span(id NodeID) source.Span {
	if node := n.Get(id); node != nil {
		return node.Span
	}
	return source.Span{}
}

// Len reports the number of allocated nodes.
func (n *Nodes) Len() uint32 {
	return n.Arena.Len()
}

func (n *Nodes) payload(id NodeID, kind NodeKind) (uint32, bool) {
	node := n.Get(id)
	if node == nil || node.Kind != kind {
		return 0, false
	}
	return uint32(node.Payload), true
}

func (n *Nodes) NewProgram(span source.Span, classes []NodeID, entry NodeID) NodeID {
	payload := n.Programs.Allocate(ProgramData{Classes: classes, Entry: entry})
	return n.new(NodeProgram, span, payload)
}

func (n *Nodes) Program(id NodeID) (*ProgramData, bool) {
	p, ok := n.payload(id, NodeProgram)
	if !ok {
		return nil, false
	}
	return n.Programs.Get(p), true
}

func (n *Nodes) NewClass(span source.Span, name, parent string, members []NodeID) NodeID {
	payload := n.Classes.Allocate(ClassData{Name: name, Parent: parent, Members: members})
	return n.new(NodeClass, span, payload)
}

func (n *Nodes) Class(id NodeID) (*ClassData, bool) {
	p, ok := n.payload(id, NodeClass)
	if !ok {
		return nil, false
	}
	return n.Classes.Get(p), true
}

func (n *Nodes) NewVar(span source.Span, name string, init NodeID) NodeID {
	payload := n.Vars.Allocate(VarData{Name: name, Init: init})
	return n.new(NodeVar, span, payload)
}

func (n *Nodes) Var(id NodeID) (*VarData, bool) {
	p, ok := n.payload(id, NodeVar)
	if !ok {
		return nil, false
	}
	return n.Vars.Get(p), true
}

func (n *Nodes) NewCtor(span source.Span, params []NodeID, body NodeID) NodeID {
	payload := n.Ctors.Allocate(CtorData{Params: params, Body: body})
	return n.new(NodeCtor, span, payload)
}

func (n *Nodes) Ctor(id NodeID) (*CtorData, bool) {
	p, ok := n.payload(id, NodeCtor)
	if !ok {
		return nil, false
	}
	return n.Ctors.Get(p), true
}

func (n *Nodes) NewMethod(span source.Span, name string, params []NodeID, result string, body NodeID) NodeID {
	payload := n.Methods.Allocate(MethodData{Name: name, Params: params, Result: result, Body: body})
	return n.new(NodeMethod, span, payload)
}

func (n *Nodes) Method(id NodeID) (*MethodData, bool) {
	p, ok := n.payload(id, NodeMethod)
	if !ok {
		return nil, false
	}
	return n.Methods.Get(p), true
}

func (n *Nodes) NewParam(span source.Span, name, typ string) NodeID {
	payload := n.Params.Allocate(ParamData{Name: name, Type: typ})
	return n.new(NodeParam, span, payload)
}

func (n *Nodes) Param(id NodeID) (*ParamData, bool) {
	p, ok := n.payload(id, NodeParam)
	if !ok {
		return nil, false
	}
	return n.Params.Get(p), true
}

func (n *Nodes) NewBody(span source.Span, stmts []NodeID) NodeID {
	payload := n.Bodies.Allocate(BodyData{Stmts: stmts})
	return n.new(NodeBody, span, payload)
}

func (n *Nodes) Body(id NodeID) (*BodyData, bool) {
	p, ok := n.payload(id, NodeBody)
	if !ok {
		return nil, false
	}
	return n.Bodies.Get(p), true
}

func (n *Nodes) NewReturn(span source.Span, value NodeID) NodeID {
	payload := n.Returns.Allocate(ReturnData{Value: value})
	return n.new(NodeReturn, span, payload)
}

func (n *Nodes) Return(id NodeID) (*ReturnData, bool) {
	p, ok := n.payload(id, NodeReturn)
	if !ok {
		return nil, false
	}
	return n.Returns.Get(p), true
}

func (n *Nodes) NewAssign(span source.Span, name string, value NodeID) NodeID {
	payload := n.Assigns.Allocate(AssignData{Name: name, Value: value})
	return n.new(NodeAssign, span, payload)
}

func (n *Nodes) Assign(id NodeID) (*AssignData, bool) {
	p, ok := n.payload(id, NodeAssign)
	if !ok {
		return nil, false
	}
	return n.Assigns.Get(p), true
}

func (n *Nodes) NewIf(span source.Span, cond, then, els NodeID) NodeID {
	payload := n.Ifs.Allocate(IfData{Cond: cond, Then: then, Else: els})
	return n.new(NodeIf, span, payload)
}

func (n *Nodes) If(id NodeID) (*IfData, bool) {
	p, ok := n.payload(id, NodeIf)
	if !ok {
		return nil, false
	}
	return n.Ifs.Get(p), true
}

func (n *Nodes) NewWhile(span source.Span, cond, body NodeID) NodeID {
	payload := n.Whiles.Allocate(WhileData{Cond: cond, Body: body})
	return n.new(NodeWhile, span, payload)
}

func (n *Nodes) While(id NodeID) (*WhileData, bool) {
	p, ok := n.payload(id, NodeWhile)
	if !ok {
		return nil, false
	}
	return n.Whiles.Get(p), true
}

// NewLiteral creates a literal of one of the four builtin literal kinds.
func (n *Nodes) NewLiteral(span source.Span, kind NodeKind, value string) NodeID {
	if !kind.IsLiteral() {
		panic("ast.NewLiteral: not a literal kind: " + kind.String())
	}
	payload := n.Literals.Allocate(LiteralData{Value: value})
	return n.new(kind, span, payload)
}

func (n *Nodes) Literal(id NodeID) (*LiteralData, bool) {
	node := n.Get(id)
	if node == nil || !node.Kind.IsLiteral() {
		return nil, false
	}
	return n.Literals.Get(uint32(node.Payload)), true
}

func (n *Nodes) NewThis(span source.Span) NodeID {
	return n.new(NodeThis, span, 0)
}

func (n *Nodes) NewIdent(span source.Span, name string) NodeID {
	payload := n.Idents.Allocate(IdentData{Name: name})
	return n.new(NodeIdent, span, payload)
}

func (n *Nodes) Ident(id NodeID) (*IdentData, bool) {
	p, ok := n.payload(id, NodeIdent)
	if !ok {
		return nil, false
	}
	return n.Idents.Get(p), true
}

func (n *Nodes) NewCall(span source.Span, name string, args []NodeID) NodeID {
	payload := n.Calls.Allocate(CallData{Name: name, Args: args})
	return n.new(NodeCall, span, payload)
}

func (n *Nodes) Call(id NodeID) (*CallData, bool) {
	p, ok := n.payload(id, NodeCall)
	if !ok {
		return nil, false
	}
	return n.Calls.Get(p), true
}

func (n *Nodes) NewMember(span source.Span, lhs, rhs NodeID) NodeID {
	payload := n.Members.Allocate(MemberData{Lhs: lhs, Rhs: rhs})
	return n.new(NodeMember, span, payload)
}

func (n *Nodes) Member(id NodeID) (*MemberData, bool) {
	p, ok := n.payload(id, NodeMember)
	if !ok {
		return nil, false
	}
	return n.Members.Get(p), true
}
