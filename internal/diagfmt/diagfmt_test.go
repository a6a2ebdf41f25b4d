package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"opp/internal/diag"
	"opp/internal/source"
)

func span(file source.FileID, line, col, endCol uint32) source.Span {
	return source.Span{
		File:  file,
		Start: source.Pos{Line: line, Col: col},
		End:   source.Pos{Line: line, Col: endCol},
	}
}

func sampleBag(file source.FileID) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaTypeMismatch, span(file, 3, 5, 16), "Expected type: Integer, but found: String").
		WithNote(span(file, 2, 5, 14), "x declared here"))
	d := diag.NewError(diag.SemaInvariantViolation, source.Span{File: file}, "Symbol table invariant violated")
	d.Fatal = true
	bag.Add(d)
	return bag
}

func TestPlain(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("prog.opp", nil)

	var buf bytes.Buffer
	if err := Plain(&buf, sampleBag(file), fs, PlainOpts{}); err != nil {
		t.Fatal(err)
	}
	want := "ERROR:Expected type: Integer, but found: String at location: prog.opp:3.5-16\n" +
		"FATAL ERROR:Symbol table invariant violated at location: prog.opp:?\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestPlainColorWrapsLabel(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("prog.opp", nil)
	var buf bytes.Buffer
	if err := Plain(&buf, sampleBag(file), fs, PlainOpts{Color: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "Expected type: Integer, but found: String") {
		t.Fatal("message must stay uncoloured")
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("prog.opp", nil)
	var buf bytes.Buffer
	if err := Short(&buf, sampleBag(file), fs, PathModeAuto); err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if first != "prog.opp:3:5: SEM3005 Expected type: Integer, but found: String" {
		t.Fatalf("unexpected line %q", first)
	}
}

func TestPrettyExcerpt(t *testing.T) {
	fs := source.NewFileSet()
	content := "class Main is\n    var x : 5\n    x := 'hello'\nend\n"
	file := fs.AddVirtual("prog.opp", []byte(content))

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaTypeMismatch, span(file, 3, 5, 16), "Expected type: Integer, but found: String").
		WithNote(span(file, 2, 5, 13), "x is Integer"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"error[SEM3005]: Expected type: Integer, but found: String",
		"  --> prog.opp:3.5-16",
		"  |",
		"3 |     x := 'hello'",
		"  |     ^^^^^^^^^^^^",
		"   = note: x is Integer (prog.opp:2.5-13)",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("w.opp", []byte("var 名前 := 1\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SemaDuplicateSymbol, span(file, 1, 5, 6), "Symbol already defined: 名前"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[4] != "  |     ^^^^" {
		t.Fatalf("carets should cover two wide runes, got %q", lines[4])
	}
}

func TestPrettyWithoutSource(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("gone.opp", nil)
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleBag(file), fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "|") {
		t.Fatalf("no excerpt expected without source text:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "fatal error[SEM3014]") {
		t.Fatalf("fatal header missing:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("prog.opp", nil)
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(file), fs, JSONOpts{IncludeNotes: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("Max should truncate output, got %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "SEM3005" || d.Location.StartLine != 3 || d.Location.EndCol != 16 || len(d.Notes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPretty, "PLAIN": FormatPlain, "short": FormatShort, "json": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("sarif"); err == nil {
		t.Error("expected error")
	}
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("/home/user/project/src/test.opp", nil)
	fs.SetBaseDir("/home/user/project")

	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/project/src/test.opp"},
		{PathModeRelative, "src/test.opp"},
		{PathModeBasename, "test.opp"},
	}
	for _, tt := range tests {
		if got := fs.DisplayPath(file, tt.mode); got != tt.want {
			t.Errorf("mode %d: got %q, want %q", tt.mode, got, tt.want)
		}
	}
}
