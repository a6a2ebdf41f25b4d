package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"opp/internal/diagfmt"
	"opp/internal/driver"
)

const okDoc = `{
  "classes": [
    {"kind": "class", "name": "Main", "loc": {"line": 1, "col": 1},
     "members": [{"kind": "ctor", "loc": {"line": 2, "col": 3}, "body": {"stmts": []}}]}
  ],
  "entry": {"kind": "call", "name": "Main"}
}`

const badDoc = `{
  "classes": [
    {"kind": "class", "name": "Main", "loc": {"line": 1, "col": 1},
     "members": [
       {"kind": "var", "name": "x", "loc": {"line": 2, "col": 3}, "init": {"kind": "ident", "name": "missing"}}
     ]}
  ]
}`

func writeDoc(t *testing.T, dir, name, content string) string {
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

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "b/a.json", okDoc)
	b := writeDoc(t, dir, "c.yaml", "classes: []\n")
	writeDoc(t, dir, "notes.txt", "skip me")

	files, err := expandInputs([]string{dir, a, filepath.Join(dir, "missing.json")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{a, b, filepath.Join(dir, "missing.json")}
	if strings.Join(files, "\n") != strings.Join(want, "\n") {
		t.Fatalf("expandInputs:\n got %v\nwant %v", files, want)
	}
}

func TestRenderResultsJSON(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeDoc(t, dir, "ok.json", okDoc), writeDoc(t, dir, "bad.json", badDoc)}
	results, err := driver.AnalyzeFiles(context.Background(), files, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	st := settings{format: diagfmt.FormatJSON, maxDiagnostics: 10, notes: true}
	var buf bytes.Buffer
	if err := renderResults(&buf, results, st); err != nil {
		t.Fatal(err)
	}
	var got []fileDiagnosticsJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("want one entry per file, got %d", len(got))
	}
	if got[0].File != files[0] || got[0].Count != 0 {
		t.Fatalf("clean file entry: %+v", got[0])
	}
	if got[1].Count == 0 || got[1].Diagnostics[0].Severity != "ERROR" {
		t.Fatalf("broken file entry: %+v", got[1])
	}
}

func TestPrintSummary(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeDoc(t, dir, "ok.json", okDoc), writeDoc(t, dir, "bad.json", badDoc)}
	results, err := driver.AnalyzeFiles(context.Background(), files, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	printSummary(&buf, results, false)
	if !strings.HasPrefix(buf.String(), "failed: 2 file(s) checked, ") || !strings.Contains(buf.String(), "in 1 file(s)") {
		t.Fatalf("unexpected summary %q", buf.String())
	}

	buf.Reset()
	printSummary(&buf, results[:1], false)
	if buf.String() != "ok: 1 file(s) checked\n" {
		t.Fatalf("unexpected summary %q", buf.String())
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	ok := writeDoc(t, dir, "ok.json", okDoc)
	bad := writeDoc(t, dir, "bad.json", badDoc)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"check", "--quiet", "--ui=off", "--color=off", "--format=short", ok})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("clean file: %v\n%s", err, out.String())
	}
	if out.Len() != 0 {
		t.Fatalf("clean file printed %q", out.String())
	}

	rootCmd.SetArgs([]string{"check", "--quiet", "--ui=off", "--color=off", "--format=short", bad})
	err := rootCmd.Execute()
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("want errDiagnostics, got %v", err)
	}
	if !strings.Contains(out.String(), "bad.json") || !strings.Contains(out.String(), "SEM") {
		t.Fatalf("missing short diagnostic in %q", out.String())
	}
}
