package astio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"opp/internal/ast"
	"opp/internal/source"
)

// Format selects the document encoding.
type Format uint8

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// ParseFormat converts a flag value to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatAuto, fmt.Errorf("unknown AST format %q (expected auto|json|yaml)", s)
	}
}

// DetectFormat picks the encoding from the file extension, JSON by default.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// IsDocument reports whether path has an AST document extension.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Unmarshal parses raw bytes into a Document.
func Unmarshal(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode YAML AST: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode JSON AST: %w", err)
		}
	}
	return &doc, nil
}

// Build converts doc into nodes of a fresh builder. Spans are attributed to
// file. All structural errors are collected into an ErrorList.
func Build(doc *Document, file source.FileID) (*ast.Builder, ast.NodeID, error) {
	b := &docBuilder{
		builder: ast.NewBuilder(ast.Hints{Nodes: uint(estimateNodes(doc))}),
		file:    file,
	}
	b.nodes = b.builder.Nodes

	classes := make([]ast.NodeID, 0, len(doc.Classes))
	for i, c := range doc.Classes {
		if id := b.class(fmt.Sprintf("classes[%d]", i), c); id.IsValid() {
			classes = append(classes, id)
		}
	}
	entry := ast.NoNodeID
	if doc.Entry != nil {
		entry = b.expr("entry", doc.Entry)
	}
	program := b.nodes.NewProgram(source.Span{File: file}, classes, entry)
	if err := b.errs.err(); err != nil {
		return nil, ast.NoNodeID, err
	}
	return b.builder, program, nil
}

type docBuilder struct {
	builder *ast.Builder
	nodes   *ast.Nodes
	file    source.FileID
	errs    ErrorList
}

func (b *docBuilder) span(loc *Loc) source.Span {
	if loc == nil {
		return source.Span{File: b.file}
	}
	start := source.Pos{Line: loc.Line, Col: loc.Col}
	end := start
	if loc.EndLine != 0 {
		end = source.Pos{Line: loc.EndLine, Col: loc.EndCol}
	}
	return source.Span{File: b.file, Start: start, End: end}
}

// kind checks n and returns its kind; path is used for errors.
func (b *docBuilder) kind(path string, n *Node) (ast.NodeKind, bool) {
	if n == nil {
		b.errs.add(path, "missing node")
		return ast.NodeInvalid, false
	}
	k, ok := ast.ParseNodeKind(n.Kind)
	if !ok {
		b.errs.add(path, "unknown node kind %q", n.Kind)
		return ast.NodeInvalid, false
	}
	return k, true
}

func (b *docBuilder) ident(path, field, name string) string {
	if name == "" {
		b.errs.add(path, "%s is required", field)
		return ""
	}
	return norm.NFC.String(name)
}

func (b *docBuilder) class(path string, n *Node) ast.NodeID {
	k, ok := b.kind(path, n)
	if !ok {
		return ast.NoNodeID
	}
	if k != ast.NodeClass {
		b.errs.add(path, "expected class, got %s", k)
		return ast.NoNodeID
	}
	name := b.ident(path, "name", n.Name)
	members := make([]ast.NodeID, 0, len(n.Members))
	for i, m := range n.Members {
		mp := fmt.Sprintf("%s.members[%d]", path, i)
		mk, ok := b.kind(mp, m)
		if !ok {
			continue
		}
		var id ast.NodeID
		switch mk {
		case ast.NodeVar:
			id = b.varDecl(mp, m)
		case ast.NodeCtor:
			id = b.ctor(mp, m)
		case ast.NodeMethod:
			id = b.method(mp, m)
		default:
			b.errs.add(mp, "%s cannot be a class member", mk)
		}
		if id.IsValid() {
			members = append(members, id)
		}
	}
	id := b.nodes.NewClass(b.span(n.Loc), name, norm.NFC.String(n.Parent), members)
	if cls, ok := b.nodes.Class(id); ok && n.ParentLoc != nil {
		cls.ParentSpan = b.span(n.ParentLoc)
	}
	return id
}

func (b *docBuilder) varDecl(path string, n *Node) ast.NodeID {
	name := b.ident(path, "name", n.Name)
	if n.Init == nil {
		b.errs.add(path, "init is required")
		return ast.NoNodeID
	}
	init := b.expr(path+".init", n.Init)
	return b.nodes.NewVar(b.span(n.Loc), name, init)
}

func (b *docBuilder) params(path string, in []*Node) []ast.NodeID {
	out := make([]ast.NodeID, 0, len(in))
	for i, p := range in {
		pp := fmt.Sprintf("%s.params[%d]", path, i)
		k, ok := b.kind(pp, p)
		if !ok {
			continue
		}
		if k != ast.NodeParam {
			b.errs.add(pp, "expected param, got %s", k)
			continue
		}
		name := b.ident(pp, "name", p.Name)
		typ := b.ident(pp, "type", p.Type)
		out = append(out, b.nodes.NewParam(b.span(p.Loc), name, typ))
	}
	return out
}

func (b *docBuilder) ctor(path string, n *Node) ast.NodeID {
	params := b.params(path, n.Params)
	body := ast.NoNodeID
	if n.Body != nil {
		body = b.body(path+".body", n.Body)
	}
	return b.nodes.NewCtor(b.span(n.Loc), params, body)
}

func (b *docBuilder) method(path string, n *Node) ast.NodeID {
	name := b.ident(path, "name", n.Name)
	params := b.params(path, n.Params)
	body := ast.NoNodeID
	if n.Body != nil {
		body = b.body(path+".body", n.Body)
	}
	return b.nodes.NewMethod(b.span(n.Loc), name, params, norm.NFC.String(n.Result), body)
}

// body accepts an explicit body node; the kind may be omitted.
func (b *docBuilder) body(path string, n *Node) ast.NodeID {
	if n.Kind == "" {
		n.Kind = ast.NodeBody.String()
	}
	k, ok := b.kind(path, n)
	if !ok {
		return ast.NoNodeID
	}
	if k != ast.NodeBody {
		b.errs.add(path, "expected body, got %s", k)
		return ast.NoNodeID
	}
	stmts := make([]ast.NodeID, 0, len(n.Stmts))
	for i, s := range n.Stmts {
		if id := b.stmt(fmt.Sprintf("%s.stmts[%d]", path, i), s); id.IsValid() {
			stmts = append(stmts, id)
		}
	}
	return b.nodes.NewBody(b.span(n.Loc), stmts)
}

func (b *docBuilder) stmt(path string, n *Node) ast.NodeID {
	k, ok := b.kind(path, n)
	if !ok {
		return ast.NoNodeID
	}
	span := b.span(n.Loc)
	switch k {
	case ast.NodeBody:
		return b.body(path, n)
	case ast.NodeVar:
		return b.varDecl(path, n)
	case ast.NodeAssign:
		name := b.ident(path, "name", n.Name)
		if n.Expr == nil {
			b.errs.add(path, "expr is required")
			return ast.NoNodeID
		}
		return b.nodes.NewAssign(span, name, b.expr(path+".expr", n.Expr))
	case ast.NodeReturn:
		value := ast.NoNodeID
		if n.Expr != nil {
			value = b.expr(path+".expr", n.Expr)
		}
		return b.nodes.NewReturn(span, value)
	case ast.NodeIf:
		cond := b.expr(path+".cond", n.Cond)
		then := b.branch(path+".then", n.Then, true)
		els := b.branch(path+".else", n.Else, false)
		return b.nodes.NewIf(span, cond, then, els)
	case ast.NodeWhile:
		cond := b.expr(path+".cond", n.Cond)
		body := b.branch(path+".body", n.Body, true)
		return b.nodes.NewWhile(span, cond, body)
	default:
		if !k.IsStmt() {
			b.errs.add(path, "%s is not a statement", k)
			return ast.NoNodeID
		}
		return b.expr(path, n)
	}
}

func (b *docBuilder) branch(path string, n *Node, required bool) ast.NodeID {
	if n == nil {
		if required {
			b.errs.add(path, "missing node")
		}
		return ast.NoNodeID
	}
	if n.Kind == "" || n.Kind == ast.NodeBody.String() {
		return b.body(path, n)
	}
	return b.stmt(path, n)
}

func (b *docBuilder) expr(path string, n *Node) ast.NodeID {
	k, ok := b.kind(path, n)
	if !ok {
		return ast.NoNodeID
	}
	span := b.span(n.Loc)
	switch k {
	case ast.NodeBoolLit, ast.NodeIntLit, ast.NodeRealLit, ast.NodeStringLit:
		value, ok := literalValue(k, n.Value)
		if !ok {
			b.errs.add(path, "invalid %s literal %v", k, n.Value)
			return ast.NoNodeID
		}
		return b.nodes.NewLiteral(span, k, value)
	case ast.NodeThis:
		return b.nodes.NewThis(span)
	case ast.NodeIdent:
		return b.nodes.NewIdent(span, b.ident(path, "name", n.Name))
	case ast.NodeCall:
		name := b.ident(path, "name", n.Name)
		args := make([]ast.NodeID, 0, len(n.Args))
		for i, a := range n.Args {
			if id := b.expr(fmt.Sprintf("%s.args[%d]", path, i), a); id.IsValid() {
				args = append(args, id)
			}
		}
		return b.nodes.NewCall(span, name, args)
	case ast.NodeMember:
		lhs := b.expr(path+".lhs", n.Lhs)
		rhs := ast.NoNodeID
		if rk, ok := b.kind(path+".rhs", n.Rhs); ok {
			if rk != ast.NodeIdent && rk != ast.NodeCall {
				b.errs.add(path+".rhs", "member access needs a name or call, got %s", rk)
			} else {
				rhs = b.expr(path+".rhs", n.Rhs)
			}
		}
		if !lhs.IsValid() || !rhs.IsValid() {
			return ast.NoNodeID
		}
		return b.nodes.NewMember(span, lhs, rhs)
	default:
		b.errs.add(path, "%s is not an expression", k)
		return ast.NoNodeID
	}
}

// literalValue normalises the decoded value of a literal to its text form.
func literalValue(k ast.NodeKind, v any) (string, bool) {
	var text string
	switch x := v.(type) {
	case string:
		text = x
	case json.Number:
		text = x.String()
	case bool:
		text = strconv.FormatBool(x)
	case int:
		text = strconv.Itoa(x)
	case int64:
		text = strconv.FormatInt(x, 10)
	case uint64:
		text = strconv.FormatUint(x, 10)
	case float64:
		text = strconv.FormatFloat(x, 'g', -1, 64)
	case nil:
		return "", k == ast.NodeStringLit
	default:
		return "", false
	}
	switch k {
	case ast.NodeBoolLit:
		return text, text == "true" || text == "false"
	case ast.NodeIntLit:
		_, err := strconv.ParseInt(text, 10, 64)
		return text, err == nil
	case ast.NodeRealLit:
		_, err := strconv.ParseFloat(text, 64)
		return text, err == nil
	default:
		return text, true
	}
}

func estimateNodes(doc *Document) int {
	n := 2
	var count func(*Node)
	count = func(x *Node) {
		if x == nil {
			return
		}
		n++
		for _, list := range [][]*Node{x.Members, x.Params, x.Stmts, x.Args} {
			for _, c := range list {
				count(c)
			}
		}
		for _, c := range []*Node{x.Body, x.Init, x.Expr, x.Cond, x.Then, x.Else, x.Lhs, x.Rhs} {
			count(c)
		}
	}
	for _, c := range doc.Classes {
		count(c)
	}
	count(doc.Entry)
	return n
}
