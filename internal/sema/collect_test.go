package sema

import (
	"testing"

	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/symbols"
)

func TestDuplicateClassKeepsFirst(t *testing.T) {
	f := newFixture()
	first := f.class("A", "")
	second := f.class("A", "")
	res := f.check(t, ast.NoNodeID, first, second)

	requireOnly(t, res, diag.SemaDuplicateSymbol, "Symbol already defined: A")
	cls, ok := res.Table.ResolveClass(res.Table.Root, "A")
	if !ok || res.Table.Symbols.Get(cls).Decl != first {
		t.Fatalf("expected the first declaration to stay bound")
	}
}

func TestClassShadowingBuiltinRejected(t *testing.T) {
	f := newFixture()
	res := f.check(t, ast.NoNodeID, f.class("Integer", ""))
	requireOnly(t, res, diag.SemaDuplicateSymbol, "Symbol already defined: Integer")
}

func TestDuplicateFieldNamesClass(t *testing.T) {
	f := newFixture()
	a := f.class("A", "",
		f.vr("f", f.num("1")),
		f.vr("f", f.num("2")),
	)
	res := f.check(t, ast.NoNodeID, a)
	requireOnly(t, res, diag.SemaDuplicateSymbol, "Symbol already defined: A::f")
}

func TestOverloadsByParameterClasses(t *testing.T) {
	f := newFixture()
	a := f.class("A", "",
		f.method("m", "", params(f.param("x", "Integer"))),
		f.method("m", "", params(f.param("x", "String"))),
		f.method("m", "", params(f.param("y", "Integer"))),
	)
	res := f.check(t, ast.NoNodeID, a)
	requireOnly(t, res, diag.SemaDuplicateSymbol, "Symbol already defined: A::m(Integer)")

	cls, _ := res.Table.ResolveClass(res.Table.Root, "A")
	integer := res.Table.Builtin(symbols.ClassInteger)
	str := res.Table.Builtin(symbols.ClassString)
	if _, ok := res.Table.ResolveMethod(cls, "m", []symbols.SymbolID{integer}); !ok {
		t.Error("m(Integer) not registered")
	}
	if _, ok := res.Table.ResolveMethod(cls, "m", []symbols.SymbolID{str}); !ok {
		t.Error("m(String) not registered")
	}
}

func TestUnknownParameterClassSkipsMember(t *testing.T) {
	f := newFixture()
	m := f.method("m", "", params(f.param("x", "Nope")), f.assign("y", f.num("1")))
	res := f.check(t, ast.NoNodeID, f.class("A", "", m))

	// the body is not analysed, so the unknown y is not reported
	requireOnly(t, res, diag.SemaUnresolvedSymbol, "Missing class: Nope")
}

func TestMethodSymbolShape(t *testing.T) {
	f := newFixture()
	decl := f.n.NewMethod(f.sp(), "size", nil, "Integer", ast.NoNodeID)
	ctor := f.ctor(params(f.param("n", "Integer")))
	res := f.check(t, ast.NoNodeID, f.class("A", "", decl, ctor))
	requireClean(t, res)

	cls, _ := res.Table.ResolveClass(res.Table.Root, "A")
	id, ok := res.Table.ResolveMethod(cls, "size", nil)
	if !ok {
		t.Fatal("size() not registered")
	}
	sym := res.Table.Symbols.Get(id)
	if sym.Method != symbols.MethodDecl || sym.Display != "size" || sym.Owner != cls {
		t.Fatalf("unexpected method symbol %+v", sym)
	}
	if res.Table.ClassName(sym.Return) != symbols.ClassInteger {
		t.Fatalf("expected Integer result, got %s", res.Table.ClassName(sym.Return))
	}
	integer := res.Table.Builtin(symbols.ClassInteger)
	cid, ok := res.Table.ResolveConstructor(cls, []symbols.SymbolID{integer})
	if !ok || res.Table.Symbols.Get(cid).Method != symbols.CtorDef {
		t.Fatal("constructor A(Integer) not registered as a definition")
	}
	if got := res.Table.Symbols.Get(cid).Name; got != symbols.Mangle("A", []string{"Integer"}) {
		t.Fatalf("unexpected constructor key %q", got)
	}
}
