// Package astio loads AST documents produced by the parser into an
// ast.Builder. Documents are JSON or YAML trees of nodes tagged by "kind":
//
//	{
//	  "source": "hello.opp",
//	  "classes": [
//	    {"kind": "class", "name": "Main", "loc": {"line": 1, "col": 1},
//	     "members": [{"kind": "ctor", "params": [], "body": {"kind": "body", "stmts": []}}]}
//	  ],
//	  "entry": {"kind": "member", "lhs": {"kind": "this"}, "rhs": {"kind": "call", "name": "Main"}}
//	}
//
// Identifiers are NFC-normalised while decoding so that visually equal names
// mangle to the same key.
package astio

// Document is the top-level AST document.
type Document struct {
	// Source names the program the parser read; spans refer to it.
	Source  string  `json:"source,omitempty" yaml:"source,omitempty"`
	Classes []*Node `json:"classes" yaml:"classes"`
	Entry   *Node   `json:"entry,omitempty" yaml:"entry,omitempty"`
}

// Node is the wire form of every node kind; fields not used by a kind
// must be absent.
type Node struct {
	Kind string `json:"kind" yaml:"kind"`
	Loc  *Loc   `json:"loc,omitempty" yaml:"loc,omitempty"`

	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Parent    string `json:"parent,omitempty" yaml:"parent,omitempty"`
	ParentLoc *Loc   `json:"parent_loc,omitempty" yaml:"parent_loc,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Result    string `json:"result,omitempty" yaml:"result,omitempty"`
	Value     any    `json:"value,omitempty" yaml:"value,omitempty"`

	Members []*Node `json:"members,omitempty" yaml:"members,omitempty"`
	Params  []*Node `json:"params,omitempty" yaml:"params,omitempty"`
	Stmts   []*Node `json:"stmts,omitempty" yaml:"stmts,omitempty"`
	Args    []*Node `json:"args,omitempty" yaml:"args,omitempty"`

	Body *Node `json:"body,omitempty" yaml:"body,omitempty"`
	Init *Node `json:"init,omitempty" yaml:"init,omitempty"`
	Expr *Node `json:"expr,omitempty" yaml:"expr,omitempty"`
	Cond *Node `json:"cond,omitempty" yaml:"cond,omitempty"`
	Then *Node `json:"then,omitempty" yaml:"then,omitempty"`
	Else *Node `json:"else,omitempty" yaml:"else,omitempty"`
	Lhs  *Node `json:"lhs,omitempty" yaml:"lhs,omitempty"`
	Rhs  *Node `json:"rhs,omitempty" yaml:"rhs,omitempty"`
}

// Loc is a 1-based source range; a missing end collapses to the start.
type Loc struct {
	Line    uint32 `json:"line" yaml:"line"`
	Col     uint32 `json:"col" yaml:"col"`
	EndLine uint32 `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndCol  uint32 `json:"end_col,omitempty" yaml:"end_col,omitempty"`
}
