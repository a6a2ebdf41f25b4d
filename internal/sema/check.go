package sema

import (
	"context"
	"strconv"
	"time"

	"opp/internal/ast"
	"opp/internal/diag"
	"opp/internal/observ"
	"opp/internal/source"
	"opp/internal/symbols"
	"opp/internal/trace"
)

// Options configure a semantic analysis run over one program.
type Options struct {
	// MaxDiagnostics caps the bag; 0 means unlimited.
	MaxDiagnostics int
	// Validate checks table and index invariants after scope building.
	Validate bool
	// RequireEntry makes a program without an entry call an error.
	RequireEntry bool
	Hints        symbols.Hints
	// Timer receives per-pass durations; a fresh one is used when nil.
	Timer *observ.Timer
}

// Result stores the artefacts produced by the analysis.
type Result struct {
	Table   *symbols.Table
	Index   *symbols.Index
	Bag     *diag.Bag
	Timings *observ.Timer
}

type pass struct {
	name string
	run  func(*unit)
}

// passes run in this order; each reads what the previous ones wrote. Types
// are inferred before the inheritance check because field redefinition
// compares inferred field classes.
var passes = [...]pass{
	{"class-collector", (*unit).collectClasses},
	{"method-collector", (*unit).collectMembers},
	{"scope-builder", (*unit).buildScopes},
	{"type-checker", (*unit).checkTypes},
	{"inheritance-checker", (*unit).checkInheritance},
	{"return-paths", (*unit).checkReturnPaths},
	{"entrypoint", (*unit).checkEntrypoint},
}

const scopeBuilderPass = 2

// Check performs semantic analysis of program. Diagnostics are collected in
// Result.Bag; the error is only returned when ctx is cancelled between passes.
func Check(ctx context.Context, builder *ast.Builder, program ast.NodeID, opts Options) (Result, error) {
	if opts.Timer == nil {
		opts.Timer = observ.NewTimer()
	}
	bag := diag.NewBag(opts.MaxDiagnostics)
	res := Result{Bag: bag, Timings: opts.Timer}
	if builder == nil || builder.Nodes.Kind(program) != ast.NodeProgram {
		var span source.Span
		if builder != nil {
			span = builder.Nodes.Span(program)
		}
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.SemaInvariantViolation, span, "program node expected").
			Fatal().
			Emit()
		return res, nil
	}

	u := newUnit(ctx, builder, program, opts, bag)
	res.Table, res.Index = u.table, u.index

	for i, p := range passes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		u.runPass(p)
		if i == scopeBuilderPass && opts.Validate {
			if err := u.validate(); err != nil {
				diag.ReportError(u.reporter, diag.SemaInvariantViolation, u.span(program), err.Error()).
					Fatal().
					Emit()
				return res, nil
			}
		}
	}
	return res, nil
}

func (u *unit) runPass(p pass) {
	_, span := trace.Start(u.ctx, trace.ScopePass, "pass:"+p.name)
	before := u.errors()
	start := time.Now()
	p.run(u)
	dur := time.Since(start)
	span.WithExtra("errors", strconv.Itoa(u.errors()-before)).
		WithExtra("classes", strconv.Itoa(len(u.classScopes))).
		WithExtra("symbols", strconv.Itoa(u.table.Symbols.Len())).
		End("")
	u.opts.Timer.Record(p.name, dur)
}
