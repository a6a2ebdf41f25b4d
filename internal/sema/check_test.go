package sema

import (
	"context"
	"errors"
	"testing"

	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/observ"
	"opp/internal/testkit"
	"opp/internal/trace"
)

func TestCheckRecordsEveryPass(t *testing.T) {
	f := newFixture()
	timer := observ.NewTimer()
	res := f.checkWith(t, Options{Validate: true, Timer: timer}, ast.NoNodeID, f.class("A", ""))
	requireClean(t, res)

	rep := res.Timings.Report()
	if len(rep.Phases) != len(passes) {
		t.Fatalf("expected %d phases, got %d", len(passes), len(rep.Phases))
	}
	for i, p := range passes {
		if rep.Phases[i].Name != p.name {
			t.Errorf("phase %d: got %q, want %q", i, rep.Phases[i].Name, p.name)
		}
	}
}

func TestCheckTracesPasses(t *testing.T) {
	f := newFixture()
	program := f.program(ast.NoNodeID, f.class("A", ""), f.class("B", ""))
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := Check(ctx, f.b, program, Options{}); err != nil {
		t.Fatal(err)
	}

	ends, points := 0, 0
	for _, ev := range ring.Snapshot() {
		switch {
		case ev.Kind == trace.KindSpanEnd && ev.Scope == trace.ScopePass:
			ends++
			if ev.Extra["classes"] != "2" || ev.Extra["errors"] != "0" {
				t.Errorf("%s: unexpected extras %v", ev.Name, ev.Extra)
			}
		case ev.Kind == trace.KindPoint && ev.Name == "collect:B":
			points++
			if ev.Detail != "0 members" {
				t.Errorf("collect:B detail = %q", ev.Detail)
			}
		}
	}
	if ends != len(passes) || points != 1 {
		t.Fatalf("got %d pass ends and %d class points, want %d and 1", ends, points, len(passes))
	}
}

func TestCheckStopsOnCancel(t *testing.T) {
	f := newFixture()
	program := f.program(ast.NoNodeID, f.class("A", ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Check(ctx, f.b, program, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCheckRejectsNonProgram(t *testing.T) {
	f := newFixture()
	res, err := Check(context.Background(), f.b, f.num("1"), Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Bag.HasFatal() || countCode(res, diag.SemaInvariantViolation) != 1 {
		t.Fatalf("expected a fatal invariant violation, got:\n%s", dump(res))
	}
}

func TestErrorsAccumulateAcrossPasses(t *testing.T) {
	f := newFixture()
	a := f.class("A", "Nope",
		f.vr("f", f.num("1")),
		f.vr("f", f.num("2")),
		f.method("m", "Integer", nil),
	)
	res := f.check(t, f.num("0"), a)

	for _, code := range []diag.Code{
		diag.SemaDuplicateSymbol,
		diag.SemaUnresolvedSymbol,
		diag.SemaMissingReturn,
		diag.SemaEntrypointExpected,
	} {
		if countCode(res, code) != 1 {
			t.Errorf("expected one %s, got:\n%s", code.ID(), dump(res))
		}
	}
	if res.Bag.Len() != 4 {
		t.Fatalf("expected 4 diagnostics, got:\n%s", dump(res))
	}
}

func TestDumpShowsInferredTypes(t *testing.T) {
	f := newFixture()
	res := f.check(t, ast.NoNodeID, f.class("A", "", f.vr("f", f.str("s"))))
	requireClean(t, res)

	d := res.Table.Dump()
	for _, entry := range d.Symbols {
		if entry.Key != "A" {
			continue
		}
		for _, field := range entry.Scope.Symbols {
			if field.Key == "f" {
				if field.Scope.Symbol == nil || field.Scope.Symbol.Clazz != "String" {
					t.Fatalf("unexpected field dump %+v", field.Scope.Symbol)
				}
				return
			}
		}
	}
	t.Fatal("field A::f missing from dump")
}

func TestIndexCoversCleanProgram(t *testing.T) {
	f := newFixture()
	main := f.class("Main", "",
		f.vr("count", f.num("0")),
		f.ctor(nil, f.assign("count", f.num("1"))),
		f.method("inc", "Integer", params(f.param("n", "Integer")),
			f.vr("x", f.ident("n")),
			f.while(f.boolean(false), f.body(f.assign("x", f.ident("count")))),
			f.ifStmt(f.boolean(true), f.body(f.ret(f.ident("x"))), f.body(f.ret(f.ident("count")))),
		),
	)
	program := f.program(f.call("Main"), main)
	res, err := Check(context.Background(), f.b, program, Options{Validate: true, RequireEntry: true})
	if err != nil {
		t.Fatal(err)
	}
	requireClean(t, res)
	if err := testkit.CheckIndexInvariants(f.b, program, res.Table, res.Index); err != nil {
		t.Fatal(err)
	}
}
