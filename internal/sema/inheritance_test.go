package sema

import (
	"testing"

	"opp/internal/ast"
	"opp/internal/diag"
)

func TestMutualInheritanceReportedOnce(t *testing.T) {
	f := newFixture()
	res := f.check(t, ast.NoNodeID, f.class("B", "A"), f.class("A", "B"))
	requireOnly(t, res, diag.SemaInheritanceCycle, "Class loop on: B")
}

func TestCycleReachedFromOutsideNotRepeated(t *testing.T) {
	f := newFixture()
	res := f.check(t, ast.NoNodeID,
		f.class("C", "A"),
		f.class("A", "B"),
		f.class("B", "A"),
	)
	if got := countCode(res, diag.SemaInheritanceCycle); got != 1 {
		t.Fatalf("expected one cycle report, got %d:\n%s", got, dump(res))
	}
}

func TestSelfInheritance(t *testing.T) {
	f := newFixture()
	res := f.check(t, ast.NoNodeID, f.class("A", "A"), f.class("B", "A"))
	requireOnly(t, res, diag.SemaSelfInheritance, "Self inheritance forbidden: A")
}

func TestMissingParent(t *testing.T) {
	f := newFixture()
	res := f.check(t, ast.NoNodeID, f.class("A", "Nope"))
	requireOnly(t, res, diag.SemaUnresolvedSymbol, "Missing class: Nope")
}

func TestFieldRedefinitionWithOtherClass(t *testing.T) {
	f := newFixture()
	a := f.class("A", "", f.vr("f", f.num("1")))
	b := f.class("B", "A", f.vr("f", f.str("str")))
	res := f.check(t, ast.NoNodeID, a, b)
	requireOnly(t, res, diag.SemaFieldRedefinition, "Redefinition of field: B::f")
	if notes := res.Bag.Items()[0].Notes; len(notes) != 1 || notes[0].Msg != "A::f has type Integer" {
		t.Fatalf("unexpected notes %+v", notes)
	}
}

func TestFieldRedefinitionSameClassAllowed(t *testing.T) {
	f := newFixture()
	a := f.class("A", "", f.vr("f", f.num("1")))
	b := f.class("B", "A", f.vr("f", f.num("2")))
	c := f.class("C", "B", f.vr("g", f.boolean(true)))
	res := f.check(t, ast.NoNodeID, a, b, c)
	requireClean(t, res)
}

func TestFieldRedefinitionThroughGrandparent(t *testing.T) {
	f := newFixture()
	a := f.class("A", "", f.vr("f", f.num("1")))
	b := f.class("B", "A")
	c := f.class("C", "B", f.vr("f", f.real("1.0")))
	res := f.check(t, ast.NoNodeID, a, b, c)
	requireOnly(t, res, diag.SemaFieldRedefinition, "Redefinition of field: C::f")
}
