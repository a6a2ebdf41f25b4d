package sema

import (
	"testing"

	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/symbols"
)

func TestReassignWithOtherClassIsMismatch(t *testing.T) {
	f := newFixture()
	m := f.method("m", "", nil,
		f.vr("x", f.num("5")),
		f.assign("x", f.str("hello")),
	)
	res := f.check(t, ast.NoNodeID, f.class("A", "", m))
	requireOnly(t, res, diag.SemaTypeMismatch, "Expected type: Integer, but found: String")
}

func TestInferredTypeIsSetOnce(t *testing.T) {
	f := newFixture()
	decl := f.vr("x", f.real("1.5"))
	m := f.method("m", "", nil, decl, f.assign("x", f.real("2.5")))
	res := f.check(t, ast.NoNodeID, f.class("A", "", m))
	requireClean(t, res)

	sym := res.Table.Symbol(mustLookup(t, res, decl))
	if res.Table.ClassName(sym.Type) != symbols.ClassReal {
		t.Fatalf("expected Real, got %s", res.Table.ClassName(sym.Type))
	}
	if res.Table.SetInstanceType(res.Table.SymbolID(mustLookup(t, res, decl)), res.Table.Builtin(symbols.ClassString)) {
		t.Fatal("second type assignment must be refused")
	}
}

func TestUnqualifiedCallFallsBackToConstructor(t *testing.T) {
	f := newFixture()
	foo := f.class("Foo", "",
		f.ctor(params(f.param("a", "Integer"), f.param("b", "Integer"))),
	)
	decl := f.vr("x", f.call("Foo", f.num("1"), f.num("2")))
	main := f.class("Main", "", f.method("run", "", nil, decl))
	res := f.check(t, ast.NoNodeID, foo, main)
	requireClean(t, res)

	sym := res.Table.Symbol(mustLookup(t, res, decl))
	if res.Table.ClassName(sym.Type) != "Foo" {
		t.Fatalf("expected x to be a Foo, got %s", res.Table.ClassName(sym.Type))
	}
}

func TestEnclosingMethodWinsOverConstructor(t *testing.T) {
	f := newFixture()
	foo := f.class("Foo", "", f.ctor(params(f.param("a", "Integer"))))
	decl := f.vr("x", f.call("Foo", f.num("1")))
	main := f.class("Main", "",
		f.method("Foo", "String", params(f.param("n", "Integer")), f.ret(f.str("s"))),
		f.method("run", "", nil, decl),
	)
	res := f.check(t, ast.NoNodeID, foo, main)
	requireClean(t, res)

	sym := res.Table.Symbol(mustLookup(t, res, decl))
	if res.Table.ClassName(sym.Type) != symbols.ClassString {
		t.Fatalf("expected the method result String, got %s", res.Table.ClassName(sym.Type))
	}
}

func TestConstructorOverloadMissing(t *testing.T) {
	f := newFixture()
	foo := f.class("Foo", "", f.ctor(nil))
	main := f.class("Main", "", f.method("run", "", nil, f.call("Foo", f.num("1"))))
	res := f.check(t, ast.NoNodeID, foo, main)
	requireOnly(t, res, diag.SemaUnresolvedOverload, "Cant get overload for constructor: Foo(Integer)")
}

func TestUnknownCallReportsMethodOverload(t *testing.T) {
	f := newFixture()
	main := f.class("Main", "", f.method("run", "", nil, f.call("nope", f.boolean(false))))
	res := f.check(t, ast.NoNodeID, main)
	requireOnly(t, res, diag.SemaUnresolvedOverload, "Cant get overload for method: nope(Boolean)")
}

func TestMemberAccessUsesReceiverAndAncestors(t *testing.T) {
	f := newFixture()
	a := f.class("A", "",
		f.vr("v", f.num("1")),
		f.method("get", "Integer", nil, f.ret(f.ident("v"))),
	)
	b := f.class("B", "A", f.ctor(nil))
	main := f.class("Main", "",
		f.method("run", "Integer", nil,
			f.vr("b", f.call("B")),
			f.vr("n", f.member(f.ident("b"), f.ident("v"))),
			f.ret(f.member(f.ident("b"), f.call("get"))),
		),
	)
	res := f.check(t, ast.NoNodeID, a, b, main)
	requireClean(t, res)
}

func TestInheritedFieldWithoutReceiver(t *testing.T) {
	f := newFixture()
	a := f.class("A", "", f.vr("v", f.num("1")))
	b := f.class("B", "A", f.method("bump", "", nil, f.assign("v", f.num("2"))))
	res := f.check(t, ast.NoNodeID, a, b)
	requireClean(t, res)
}

func TestMissingPropertyOnReceiver(t *testing.T) {
	f := newFixture()
	a := f.class("A", "",
		f.ctor(nil),
		f.method("m", "", nil, f.member(f.call("A"), f.ident("nope"))),
	)
	res := f.check(t, ast.NoNodeID, a)
	requireOnly(t, res, diag.SemaUnresolvedSymbol, "Missing property: nope")
}

func TestReceiverDoesNotLeakIntoArguments(t *testing.T) {
	f := newFixture()
	// a.set(v): v is resolved in the caller, not as a field of a
	a := f.class("A", "",
		f.ctor(nil),
		f.method("set", "", params(f.param("x", "Integer"))),
	)
	main := f.class("Main", "",
		f.method("run", "", nil,
			f.vr("v", f.num("3")),
			f.member(f.call("A"), f.call("set", f.ident("v"))),
		),
	)
	res := f.check(t, ast.NoNodeID, a, main)
	requireClean(t, res)
}

func TestVoidInitializerCannotBeInferred(t *testing.T) {
	f := newFixture()
	a := f.class("A", "",
		f.method("noop", "", nil),
		f.method("m", "", nil, f.vr("x", f.call("noop"))),
	)
	res := f.check(t, ast.NoNodeID, a)
	requireOnly(t, res, diag.SemaAmbiguousType, "Can`t infer type: x")
}

func TestArgumentErrorsDoNotCascade(t *testing.T) {
	f := newFixture()
	a := f.class("A", "",
		f.method("take", "", params(f.param("x", "Integer"))),
		f.method("m", "", nil, f.call("take", f.ident("missing"))),
	)
	res := f.check(t, ast.NoNodeID, a)
	requireOnly(t, res, diag.SemaUnresolvedSymbol, "Unexpected identifier: missing")
}

func TestConditionMustBeBoolean(t *testing.T) {
	f := newFixture()
	a := f.class("A", "",
		f.method("m", "", nil, f.while(f.num("1"), f.body())),
	)
	res := f.check(t, ast.NoNodeID, a)
	requireOnly(t, res, diag.SemaTypeMismatch, "Expected type: Boolean, but found: Integer")
}

func TestReturnTypeChecks(t *testing.T) {
	tests := []struct {
		name   string
		result string
		value  func(f *fixture) ast.NodeID
		want   string
	}{
		{"void method returns value", "", func(f *fixture) ast.NodeID { return f.num("1") }, "Expected type: void, but found: Integer"},
		{"value method returns nothing", "Integer", func(f *fixture) ast.NodeID { return ast.NoNodeID }, "Expected type: Integer, but found: void"},
		{"wrong class", "String", func(f *fixture) ast.NodeID { return f.boolean(true) }, "Expected type: String, but found: Boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			m := f.method("m", tt.result, nil, f.ret(tt.value(f)))
			res := f.check(t, ast.NoNodeID, f.class("A", "", m))
			requireOnly(t, res, diag.SemaTypeMismatch, tt.want)
		})
	}
}

func TestRecursiveFieldForbidden(t *testing.T) {
	f := newFixture()
	a := f.class("A", "", f.ctor(nil), f.vr("me", f.call("A")))
	res := f.check(t, ast.NoNodeID, a)
	requireOnly(t, res, diag.SemaRecursiveType, "Recursive type forbidden: me")
}

func TestRecursiveLocalForbidden(t *testing.T) {
	f := newFixture()
	decl := f.vr("x", f.call("A"))
	a := f.class("A", "", f.ctor(nil), f.method("m", "", nil, decl))
	res := f.check(t, ast.NoNodeID, a)
	requireOnly(t, res, diag.SemaRecursiveType, "Recursive type forbidden: x")

	sym := res.Table.Symbol(mustLookup(t, res, decl))
	if sym.Type.IsValid() {
		t.Fatalf("x must stay untyped, got %s", res.Table.ClassName(sym.Type))
	}
}

func TestRecursiveConstructorParam(t *testing.T) {
	f := newFixture()
	a := f.class("A", "", f.ctor(params(f.param("other", "A"))))
	res := f.check(t, ast.NoNodeID, a)
	requireOnly(t, res, diag.SemaRecursiveType, "Recursive type in constructor: other")
}

func TestSelfTypedMethodParamAllowed(t *testing.T) {
	f := newFixture()
	a := f.class("A", "", f.method("same", "Boolean", params(f.param("other", "A")), f.ret(f.boolean(true))))
	res := f.check(t, ast.NoNodeID, a)
	requireClean(t, res)
}
