package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"opp/internal/diag"
	"opp/internal/sema"
)

const cleanDoc = `{
  "classes": [
    {"kind": "class", "name": "Main", "loc": {"line": 1, "col": 1},
     "members": [{"kind": "ctor", "loc": {"line": 2, "col": 3}, "body": {"stmts": []}}]}
  ],
  "entry": {"kind": "call", "name": "Main"}
}`

const brokenDoc = `{
  "source": "broken.opp",
  "classes": [
    {"kind": "class", "name": "Main", "loc": {"line": 1, "col": 1},
     "members": [
       {"kind": "method", "name": "size", "result": "Integer", "loc": {"line": 2, "col": 5, "end_line": 2, "end_col": 30},
        "body": {"stmts": [
          {"kind": "var", "name": "x", "loc": {"line": 3, "col": 9}, "init": {"kind": "int", "value": 5}},
          {"kind": "assign", "name": "x", "loc": {"line": 4, "col": 9, "end_line": 4, "end_col": 20},
           "expr": {"kind": "string", "value": "hello"}}
        ]}}
     ]}
  ]
}`

const brokenSource = "class Main is\n    method size : Integer is\n        var x : 5\n        x := 'hello'\n    end\nend\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestAnalyzeFileClean(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.json", cleanDoc)
	res, err := AnalyzeFile(context.Background(), path, Options{Sema: sema.Options{RequireEntry: true, Validate: true}})
	if err != nil {
		t.Fatal(err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", codes(res.Bag))
	}
	if res.Sema == nil || res.Unit == nil || res.Cached {
		t.Fatal("fresh analysis should carry sema artefacts")
	}
	if len(res.Timings.Phases()) == 0 || res.Timings.Phases()[0].Name != "load" {
		t.Fatalf("expected load phase first, got %+v", res.Timings.Phases())
	}
}

func TestAnalyzeFileReportsInSourceFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.opp", brokenSource)
	path := writeFile(t, dir, "broken.json", brokenDoc)

	res, err := AnalyzeFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	got := codes(res.Bag)
	if len(got) != 2 || got[0] != diag.SemaTypeMismatch || got[1] != diag.SemaMissingReturn {
		t.Fatalf("unexpected codes %v", got)
	}
	d := res.Bag.Items()[0]
	f := res.Files.Get(d.Primary.File)
	if f == nil || !strings.HasSuffix(f.Path, "broken.opp") {
		t.Fatalf("span should point at the program text, got %+v", f)
	}
	if f.GetLine(d.Primary.Start.Line) != "        x := 'hello'" {
		t.Fatalf("unexpected line %q", f.GetLine(d.Primary.Start.Line))
	}
}

func TestAnalyzeFileSortsByPosition(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.opp", brokenSource)
	path := writeFile(t, dir, "broken.json", brokenDoc)

	cache, err := OpenDiskCache("oppc-test", filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Sort: true, Cache: cache}
	for _, cached := range []bool{false, true} {
		res, err := AnalyzeFile(context.Background(), path, opts)
		if err != nil {
			t.Fatal(err)
		}
		if res.Cached != cached {
			t.Fatalf("Cached = %v, want %v", res.Cached, cached)
		}
		// метод объявлен раньше присваивания
		got := codes(res.Bag)
		if len(got) != 2 || got[0] != diag.SemaMissingReturn || got[1] != diag.SemaTypeMismatch {
			t.Fatalf("cached=%v: unexpected order %v", cached, got)
		}
	}
}

func TestAnalyzeFileLoadErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.json")
	res, err := AnalyzeFile(context.Background(), missing, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := codes(res.Bag); len(got) != 1 || got[0] != diag.IOLoadFileError {
		t.Fatalf("expected an I/O diagnostic, got %v", got)
	}

	bad := writeFile(t, dir, "bad.json", `{"classes": [{"kind": "class"}, {"kind": "loop"}]}`)
	res, err = AnalyzeFile(context.Background(), bad, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := codes(res.Bag); len(got) != 2 || got[0] != diag.IOMalformedInput {
		t.Fatalf("expected one diagnostic per structural error, got %v", got)
	}

	garbage := writeFile(t, dir, "garbage.json", `{"classes": [`)
	res, _ = AnalyzeFile(context.Background(), garbage, Options{})
	if got := codes(res.Bag); len(got) != 1 || got[0] != diag.IOMalformedInput {
		t.Fatalf("expected a decoding diagnostic, got %v", got)
	}
}

func TestAnalyzeDirOrderAndProgress(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b/second.yaml", "classes: []\n")
	writeFile(t, dir, "a/first.json", cleanDoc)
	writeFile(t, dir, "notes.txt", "ignored")

	events := make(chan Event, 64)
	results, err := AnalyzeDir(context.Background(), dir, Options{Jobs: 2, Progress: events})
	close(events)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(results))
	}
	if !strings.HasSuffix(results[0].Path, "first.json") || !strings.HasSuffix(results[1].Path, "second.yaml") {
		t.Fatalf("results must follow sorted paths: %s, %s", results[0].Path, results[1].Path)
	}

	final := map[string]Status{}
	for ev := range events {
		final[ev.File] = ev.Status
	}
	for _, r := range results {
		if final[r.Path] != StatusDone {
			t.Errorf("%s: last status %d, want done", r.Path, final[r.Path])
		}
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "main.json", cleanDoc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AnalyzeFiles(ctx, []string{path}, Options{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.opp", brokenSource)
	path := writeFile(t, dir, "broken.json", brokenDoc)

	cache, err := OpenDiskCache("oppc", filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Cache: cache}

	first, err := AnalyzeFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Fatal("first run cannot be cached")
	}

	reopened, err := OpenDiskCache("oppc", cache.Dir())
	if err != nil {
		t.Fatal(err)
	}
	opts.Cache = reopened
	second, err := AnalyzeFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || second.Sema != nil {
		t.Fatal("second run should be restored from the cache")
	}

	want := diag.FormatGoldenDiagnostics(first.Bag.Items(), first.Files, true)
	got := diag.FormatGoldenDiagnostics(second.Bag.Items(), second.Files, true)
	if want == "" || got != want {
		t.Fatalf("cached diagnostics differ:\nwant:\n%s\ngot:\n%s", want, got)
	}
	d := second.Bag.Items()[0]
	if line := second.Files.Get(d.Primary.File).GetLine(d.Primary.Start.Line); !strings.Contains(line, "'hello'") {
		t.Fatalf("restored span should point at the program text, got %q", line)
	}

	// другие опции - другой ключ
	opts.Sema.RequireEntry = true
	third, err := AnalyzeFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Fatal("changed options must miss the cache")
	}

	if err := reopened.DropAll(); err != nil {
		t.Fatal(err)
	}
	opts.Sema.RequireEntry = false
	fourth, _ := AnalyzeFile(context.Background(), path, opts)
	if fourth.Cached {
		t.Fatal("DropAll must invalidate entries")
	}
}
