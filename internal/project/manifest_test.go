package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[check]
max_diagnostics = 20
require_entry = true

[output]
format = "plain"

[build]
jobs = 2
cache_dir = ".opp-cache"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	doc := filepath.Join(nested, "x.json")
	if err := os.WriteFile(doc, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(doc)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if m.Config.Check.MaxDiagnostics != 20 || !m.Config.Check.RequireEntry || m.Config.Build.Jobs != 2 {
		t.Fatalf("unexpected config %+v", m.Config)
	}
	if !m.IsSet("output", "format") || m.IsSet("output", "color") {
		t.Fatal("IsSet must follow the file, not the zero values")
	}
	if m.CacheDir() != filepath.Join(root, ".opp-cache") {
		t.Fatalf("unexpected cache dir %q", m.CacheDir())
	}
}

func TestLoadMissing(t *testing.T) {
	m, ok, err := Load(t.TempDir())
	if err != nil || ok || m != nil {
		t.Fatalf("expected no manifest, got %v %v %v", m, ok, err)
	}
}

func TestValidationCollectsAllErrors(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[check]
max_diagnostics = 0
[output]
format = "sarif"
color = "sometimes"
`)
	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"max_diagnostics", "[output].format", "[output].color"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestUnknownKeys(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[check]\nstrict = true\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "check.strict") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestCombineOrderMatters(t *testing.T) {
	a, b := HashString("a"), HashString("b")
	if Combine(a, b) == Combine(b, a) {
		t.Fatal("Combine must depend on order")
	}
	if Combine(a).IsZero() {
		t.Fatal("unexpected zero digest")
	}
}
