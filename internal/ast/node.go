package ast

import (
	"opp/internal/source"
)

// NodeKind is the closed set of node kinds produced by the parser.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeProgram
	NodeClass
	NodeVar // field when listed in class members, local when listed in a body
	NodeCtor
	NodeMethod
	NodeParam
	NodeBody
	NodeReturn
	NodeAssign
	NodeIf
	NodeWhile
	NodeBoolLit
	NodeIntLit
	NodeRealLit
	NodeStringLit
	NodeThis
	NodeIdent
	NodeCall
	NodeMember
)

var nodeKindNames = [...]string{
	NodeInvalid:   "invalid",
	NodeProgram:   "program",
	NodeClass:     "class",
	NodeVar:       "var",
	NodeCtor:      "ctor",
	NodeMethod:    "method",
	NodeParam:     "param",
	NodeBody:      "body",
	NodeReturn:    "return",
	NodeAssign:    "assign",
	NodeIf:        "if",
	NodeWhile:     "while",
	NodeBoolLit:   "bool",
	NodeIntLit:    "int",
	NodeRealLit:   "real",
	NodeStringLit: "string",
	NodeThis:      "this",
	NodeIdent:     "ident",
	NodeCall:      "call",
	NodeMember:    "member",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "invalid"
}

// ParseNodeKind maps the textual kind used by AST documents back to NodeKind.
func ParseNodeKind(s string) (NodeKind, bool) {
	for k, name := range nodeKindNames {
		if name == s && NodeKind(k) != NodeInvalid {
			return NodeKind(k), true
		}
	}
	return NodeInvalid, false
}

// IsExpr reports whether nodes of this kind synthesize a value.
func (k NodeKind) IsExpr() bool {
	switch k {
	case NodeBoolLit, NodeIntLit, NodeRealLit, NodeStringLit,
		NodeThis, NodeIdent, NodeCall, NodeMember:
		return true
	default:
		return false
	}
}

// IsLiteral reports whether the kind is one of the builtin literal kinds.
func (k NodeKind) IsLiteral() bool {
	switch k {
	case NodeBoolLit, NodeIntLit, NodeRealLit, NodeStringLit:
		return true
	default:
		return false
	}
}

// IsMember reports whether the kind may appear in a class member list.
func (k NodeKind) IsMember() bool {
	return k == NodeVar || k == NodeCtor || k == NodeMethod
}

// IsStmt reports whether the kind may appear in a body statement list.
func (k NodeKind) IsStmt() bool {
	switch k {
	case NodeVar, NodeAssign, NodeReturn, NodeIf, NodeWhile:
		return true
	default:
		return k.IsExpr()
	}
}

type Node struct {
	Kind    NodeKind
	Span    source.Span
	Payload PayloadID
}

type ProgramData struct {
	Classes []NodeID
	Entry   NodeID // optional "main class" constructor call
}

type ClassData struct {
	Name       string
	Parent     string // "" when the class has no explicit parent
	ParentSpan source.Span
	Members    []NodeID
}

type VarData struct {
	Name string
	Init NodeID
}

type CtorData struct {
	Params []NodeID
	Body   NodeID // NoNodeID for a forward declaration
}

type MethodData struct {
	Name   string
	Params []NodeID
	Result string // "" means void
	Body   NodeID // NoNodeID for a forward declaration
}

type ParamData struct {
	Name string
	Type string
}

type BodyData struct {
	Stmts []NodeID
}

type ReturnData struct {
	Value NodeID // NoNodeID for a bare return
}

type AssignData struct {
	Name  string
	Value NodeID
}

type IfData struct {
	Cond NodeID
	Then NodeID
	Else NodeID // optional
}

type WhileData struct {
	Cond NodeID
	Body NodeID
}

type LiteralData struct {
	Value string // raw spelling
}

type IdentData struct {
	Name string
}

type CallData struct {
	Name string
	Args []NodeID
}

type MemberData struct {
	Lhs NodeID
	Rhs NodeID
}
