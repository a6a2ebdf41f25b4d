package sema

import (
	"context"
	"strings"
	"testing"

	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/source"
)

// fixture builds small programs by hand; every node gets its own line so
// diagnostics can be told apart by position.
type fixture struct {
	b    *ast.Builder
	n    *ast.Nodes
	line uint32
}

func newFixture() *fixture {
	b := ast.NewBuilder(ast.Hints{})
	return &fixture{b: b, n: b.Nodes}
}

func (f *fixture) sp() source.Span {
	f.line++
	return source.Span{
		File:  1,
		Start: source.Pos{Line: f.line, Col: 1},
		End:   source.Pos{Line: f.line, Col: 8},
	}
}

func (f *fixture) class(name, parent string, members ...ast.NodeID) ast.NodeID {
	return f.n.NewClass(f.sp(), name, parent, members)
}

func (f *fixture) vr(name string, init ast.NodeID) ast.NodeID {
	return f.n.NewVar(f.sp(), name, init)
}

func (f *fixture) ctor(params []ast.NodeID, stmts ...ast.NodeID) ast.NodeID {
	return f.n.NewCtor(f.sp(), params, f.body(stmts...))
}

func (f *fixture) method(name, result string, params []ast.NodeID, stmts ...ast.NodeID) ast.NodeID {
	return f.n.NewMethod(f.sp(), name, params, result, f.body(stmts...))
}

func (f *fixture) param(name, typ string) ast.NodeID {
	return f.n.NewParam(f.sp(), name, typ)
}

func params(ids ...ast.NodeID) []ast.NodeID { return ids }

func (f *fixture) body(stmts ...ast.NodeID) ast.NodeID {
	return f.n.NewBody(f.sp(), stmts)
}

func (f *fixture) num(v string) ast.NodeID  { return f.n.NewLiteral(f.sp(), ast.NodeIntLit, v) }
func (f *fixture) real(v string) ast.NodeID { return f.n.NewLiteral(f.sp(), ast.NodeRealLit, v) }
func (f *fixture) str(v string) ast.NodeID  { return f.n.NewLiteral(f.sp(), ast.NodeStringLit, v) }

func (f *fixture) boolean(v bool) ast.NodeID {
	value := "false"
	if v {
		value = "true"
	}
	return f.n.NewLiteral(f.sp(), ast.NodeBoolLit, value)
}

func (f *fixture) this() ast.NodeID             { return f.n.NewThis(f.sp()) }
func (f *fixture) ident(name string) ast.NodeID { return f.n.NewIdent(f.sp(), name) }

func (f *fixture) call(name string, args ...ast.NodeID) ast.NodeID {
	return f.n.NewCall(f.sp(), name, args)
}

func (f *fixture) member(lhs, rhs ast.NodeID) ast.NodeID {
	return f.n.NewMember(f.sp(), lhs, rhs)
}

func (f *fixture) ret(value ast.NodeID) ast.NodeID { return f.n.NewReturn(f.sp(), value) }

func (f *fixture) assign(name string, value ast.NodeID) ast.NodeID {
	return f.n.NewAssign(f.sp(), name, value)
}

func (f *fixture) ifStmt(cond, then, els ast.NodeID) ast.NodeID {
	return f.n.NewIf(f.sp(), cond, then, els)
}

func (f *fixture) while(cond, body ast.NodeID) ast.NodeID {
	return f.n.NewWhile(f.sp(), cond, body)
}

func (f *fixture) program(entry ast.NodeID, classes ...ast.NodeID) ast.NodeID {
	return f.n.NewProgram(f.sp(), classes, entry)
}

// check runs the full analysis with invariant validation enabled.
func (f *fixture) check(t *testing.T, entry ast.NodeID, classes ...ast.NodeID) Result {
	t.Helper()
	return f.checkWith(t, Options{Validate: true}, entry, classes...)
}

func (f *fixture) checkWith(t *testing.T, opts Options, entry ast.NodeID, classes ...ast.NodeID) Result {
	t.Helper()
	program := f.program(entry, classes...)
	res, err := Check(context.Background(), f.b, program, opts)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Bag.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics:\n%s", dump(res))
	}
	return res
}

func countCode(res Result, code diag.Code) int {
	n := 0
	for _, d := range res.Bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func dump(res Result) string {
	var sb strings.Builder
	for _, d := range res.Bag.Items() {
		sb.WriteString(d.Code.ID())
		sb.WriteString(" ")
		sb.WriteString(d.Primary.String())
		sb.WriteString(" ")
		sb.WriteString(d.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

func requireClean(t *testing.T, res Result) {
	t.Helper()
	if res.Bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got:\n%s", dump(res))
	}
}

// requireOnly asserts that the bag holds exactly one diagnostic with code
// and the given message.
func requireOnly(t *testing.T, res Result, code diag.Code, msg string) {
	t.Helper()
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != code || items[0].Message != msg {
		t.Fatalf("expected only %s %q, got:\n%s", code.ID(), msg, dump(res))
	}
}
